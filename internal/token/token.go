// Package token defines the lexical token kinds produced by the lexer and
// consumed by the parser.
package token

import "github.com/wuu-lang/wuu/internal/wuuerr"

// Kind enumerates every token shape the lexer produces. Whitespace and
// Comment are preserved by the lexer but filtered by the parser.
type Kind int

const (
	Whitespace Kind = iota
	Comment
	KeywordTok
	Ident
	Number
	StringLiteral
	PunctTok
	Other
	EOF
)

func (k Kind) String() string {
	switch k {
	case Whitespace:
		return "Whitespace"
	case Comment:
		return "Comment"
	case KeywordTok:
		return "Keyword"
	case Ident:
		return "Ident"
	case Number:
		return "Number"
	case StringLiteral:
		return "StringLiteral"
	case PunctTok:
		return "Punct"
	case Other:
		return "Other"
	case EOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

// Keyword is the closed set of reserved words recognized by the lexer.
type Keyword int

const (
	KwEffects Keyword = iota
	KwRequires
	KwFn
	KwWorkflow
	KwType
	KwRecord
	KwEnum
	KwLet
	KwIf
	KwElse
	KwMatch
	KwLoop
	KwReturn
	KwStep
	KwPre
	KwPost
	KwInvariant
	KwUnsafe
	KwTrue
	KwFalse
)

var keywordNames = map[string]Keyword{
	"effects":   KwEffects,
	"requires":  KwRequires,
	"fn":        KwFn,
	"workflow":  KwWorkflow,
	"type":      KwType,
	"record":    KwRecord,
	"enum":      KwEnum,
	"let":       KwLet,
	"if":        KwIf,
	"else":      KwElse,
	"match":     KwMatch,
	"loop":      KwLoop,
	"return":    KwReturn,
	"step":      KwStep,
	"pre":       KwPre,
	"post":      KwPost,
	"invariant": KwInvariant,
	"unsafe":    KwUnsafe,
	"true":      KwTrue,
	"false":     KwFalse,
}

var keywordText = func() map[Keyword]string {
	m := make(map[Keyword]string, len(keywordNames))
	for s, k := range keywordNames {
		m[k] = s
	}
	return m
}()

// KeywordFromString returns the Keyword for a string, if it is one.
func KeywordFromString(s string) (Keyword, bool) {
	k, ok := keywordNames[s]
	return k, ok
}

// String returns the reserved word for a Keyword.
func (k Keyword) String() string {
	return keywordText[k]
}

// Token pairs a Kind with its byte span and literal text. For KeywordTok,
// Keyword holds which reserved word matched. For Punct, the literal is a
// single-byte string.
type Token struct {
	Kind    Kind
	Span    wuuerr.Span
	Text    string
	Keyword Keyword
}

// IsTrivia reports whether a token is whitespace or a comment.
func (t Token) IsTrivia() bool {
	return t.Kind == Whitespace || t.Kind == Comment
}
