package lexer

import (
	"testing"

	"github.com/wuu-lang/wuu/internal/token"
)

func TestLexKeywordsIdentsPunct(t *testing.T) {
	tokens, err := Lex("fn greet(name: String) { return name; }")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	nontrivia := NonTrivia(tokens)

	want := []struct {
		kind token.Kind
		text string
	}{
		{token.KeywordTok, "fn"},
		{token.Ident, "greet"},
		{token.PunctTok, "("},
		{token.Ident, "name"},
		{token.PunctTok, ":"},
		{token.Ident, "String"},
		{token.PunctTok, ")"},
		{token.PunctTok, "{"},
		{token.KeywordTok, "return"},
		{token.Ident, "name"},
		{token.PunctTok, ";"},
		{token.PunctTok, "}"},
	}
	if len(nontrivia) != len(want) {
		t.Fatalf("got %d non-trivia tokens, want %d: %+v", len(nontrivia), len(want), nontrivia)
	}
	for i, w := range want {
		if nontrivia[i].Kind != w.kind || nontrivia[i].Text != w.text {
			t.Errorf("token[%d] = %v %q; want %v %q", i, nontrivia[i].Kind, nontrivia[i].Text, w.kind, w.text)
		}
	}
}

func TestLexStringLiteralWithEscape(t *testing.T) {
	tokens, err := Lex(`"hi \"there\""`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Kind != token.StringLiteral {
		t.Fatalf("tokens = %+v", tokens)
	}
	if tokens[0].Text != `"hi \"there\""` {
		t.Fatalf("Text = %q", tokens[0].Text)
	}
}

func TestLexUnterminatedStringIsLexError(t *testing.T) {
	_, err := Lex(`"unterminated`)
	if err == nil {
		t.Fatal("expected a lex error")
	}
}

func TestLexUnterminatedBlockCommentIsLexError(t *testing.T) {
	_, err := Lex("/* never closed")
	if err == nil {
		t.Fatal("expected a lex error")
	}
}

func TestLexPreservesTriviaUntilFiltered(t *testing.T) {
	tokens, err := Lex("a // comment\nb")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	hasComment := false
	for _, tok := range tokens {
		if tok.Kind == token.Comment {
			hasComment = true
		}
	}
	if !hasComment {
		t.Fatal("expected raw Lex output to retain comment tokens")
	}
	nontrivia := NonTrivia(tokens)
	if len(nontrivia) != 2 || nontrivia[0].Text != "a" || nontrivia[1].Text != "b" {
		t.Fatalf("NonTrivia = %+v", nontrivia)
	}
}

func TestDumpFormatsKindAndText(t *testing.T) {
	tokens, err := Lex("fn x")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	got := Dump(tokens)
	want := "Keyword(fn) fn\nIdent x"
	if got != want {
		t.Fatalf("Dump = %q; want %q", got, want)
	}
}
