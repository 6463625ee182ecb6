package lexer

import (
	"strconv"
	"strings"

	"github.com/wuu-lang/wuu/internal/token"
)

// Dump renders the non-trivia token stream as newline-joined "<Kind> <text>"
// lines, the format __lex_tokens exposes to self-hosted code and the `lex`
// CLI command prints.
func Dump(tokens []token.Token) string {
	nontrivia := NonTrivia(tokens)
	lines := make([]string, len(nontrivia))
	for i, t := range nontrivia {
		lines[i] = tokenKindText(t) + " " + t.Text
	}
	return strings.Join(lines, "\n")
}

// DumpSpanned is Dump with each line prefixed by "@start:end ".
func DumpSpanned(tokens []token.Token) string {
	nontrivia := NonTrivia(tokens)
	lines := make([]string, len(nontrivia))
	for i, t := range nontrivia {
		lines[i] = "@" + strconv.Itoa(t.Span.Start) + ":" + strconv.Itoa(t.Span.End) + " " + tokenKindText(t) + " " + t.Text
	}
	return strings.Join(lines, "\n")
}

func tokenKindText(t token.Token) string {
	if t.Kind == token.KeywordTok {
		return "Keyword(" + t.Keyword.String() + ")"
	}
	return t.Kind.String()
}
