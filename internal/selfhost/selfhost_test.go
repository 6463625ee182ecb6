package selfhost

import (
	"testing"

	"github.com/wuu-lang/wuu/internal/lexer"
)

func TestLexMatchesStage0Dump(t *testing.T) {
	src := `fn greet(name: String) -> String { return name; }`

	stage0Tokens, lerr := lexer.Lex(src)
	if lerr != nil {
		t.Fatalf("lexer.Lex: %v", lerr)
	}
	stage0 := lexer.Dump(stage0Tokens)

	stage1, serr := Lex(src)
	if serr != nil {
		t.Fatalf("selfhost.Lex: %v", serr)
	}
	if stage1 != stage0 {
		t.Fatalf("stage1 = %q; want stage0 %q", stage1, stage0)
	}
}

func TestLexSpannedMatchesStage0Dump(t *testing.T) {
	src := `let x = "hi";`

	stage0Tokens, lerr := lexer.Lex(src)
	if lerr != nil {
		t.Fatalf("lexer.Lex: %v", lerr)
	}
	stage0 := lexer.DumpSpanned(stage0Tokens)

	stage1, serr := LexSpanned(src)
	if serr != nil {
		t.Fatalf("selfhost.LexSpanned: %v", serr)
	}
	if stage1 != stage0 {
		t.Fatalf("stage1 = %q; want stage0 %q", stage1, stage0)
	}
}

func TestParseAndFormatDelegateToStage0(t *testing.T) {
	src := `fn id(x: String) -> String {
    return x;
}
`
	module, perr := Parse(src)
	if perr != nil {
		t.Fatalf("Parse: %v", perr)
	}
	if len(module.Items) != 1 || module.Items[0].Name() != "id" {
		t.Fatalf("module.Items = %+v", module.Items)
	}

	out, ferr := Format(src)
	if ferr != nil {
		t.Fatalf("Format: %v", ferr)
	}
	if out == "" {
		t.Fatal("Format returned empty output")
	}
}
