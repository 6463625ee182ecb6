package bytecodetext

import (
	"strings"
	"testing"

	"github.com/wuu-lang/wuu/internal/ast"
	"github.com/wuu-lang/wuu/internal/bytecode"
	"github.com/wuu-lang/wuu/internal/types"
)

func compiledGreet(t *testing.T) *bytecode.Module {
	t.Helper()
	fn := &ast.FnDecl{
		NameIdent: "greet",
		Params:    []ast.Param{{Name: "name"}},
		Body: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.ReturnStmt{
					Expr: &ast.CallExpr{
						Callee: ast.Path{"__str_concat"},
						Args: []ast.Expr{
							&ast.StringExpr{Value: "hi "},
							&ast.IdentExpr{NameIdent: "name"},
						},
					},
				},
			},
		},
	}
	module, err := bytecode.Compile(&ast.Module{Items: []ast.Item{fn}})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return module
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	module := compiledGreet(t)
	text := Encode(module)
	if !strings.Contains(text, "fn greet") || !strings.Contains(text, "end") {
		t.Fatalf("unexpected encoding:\n%s", text)
	}

	decoded, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	result, rerr := decoded.RunEntry("greet", []types.Value{types.StringValue("ada")})
	if rerr != nil {
		t.Fatalf("RunEntry: %v", rerr)
	}
	s, ok := result.StringOrEmpty()
	if !ok || s != "hi ada" {
		t.Fatalf("got %v, want %q", result, "hi ada")
	}
}

func TestDecodeRejectsDuplicateFunction(t *testing.T) {
	text := "fn f\nend\nfn f\nend\n"
	if _, err := Decode(text); err == nil {
		t.Fatal("expected a duplicate function name error")
	}
}

func TestDecodeRejectsUnresolvedCall(t *testing.T) {
	text := "fn f\ncall_builtin __str_eq 2\nreturn\nend\nfn g\narg\ncall missing\nreturn\nend\n"
	if _, err := Decode(text); err == nil {
		t.Fatal("expected an unresolved call target error")
	}
}

func TestDecodeRejectsUnknownEscape(t *testing.T) {
	text := "fn f\nconst_string \"bad \\q escape\"\nreturn\nend\n"
	if _, err := Decode(text); err == nil {
		t.Fatal("expected an unknown escape error")
	}
}

func TestDecodeResolvesForwardCall(t *testing.T) {
	text := "fn main\narg\ncall helper\nreturn\nend\nfn helper\nconst_int 7\nreturn\nend\n"
	decoded, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	helper, ok := decoded.NameToIndex["helper"]
	if !ok {
		t.Fatal("expected helper to be registered")
	}
	if got := decoded.Functions[0].Code[0].FuncIndex; got != helper {
		t.Fatalf("call in main resolved to %d, want helper's index %d", got, helper)
	}
}
