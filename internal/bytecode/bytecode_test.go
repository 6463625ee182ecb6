package bytecode

import (
	"testing"

	"github.com/wuu-lang/wuu/internal/ast"
	"github.com/wuu-lang/wuu/internal/interp"
	"github.com/wuu-lang/wuu/internal/parser"
	"github.com/wuu-lang/wuu/internal/types"
)

// fnGreet(name) = __str_concat("hi ", name)
func fnGreet() *ast.FnDecl {
	return &ast.FnDecl{
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
}

// fnPick(flag, name) = if flag { let greeting = greet(name); return greeting } return name
func fnPick() *ast.FnDecl {
	return &ast.FnDecl{
		NameIdent: "pick",
		Params:    []ast.Param{{Name: "flag"}, {Name: "name"}},
		Body: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.IfStmt{
					Cond: &ast.IdentExpr{NameIdent: "flag"},
					Then: &ast.Block{Stmts: []ast.Stmt{
						&ast.LetStmt{
							NameIdent: "greeting",
							Expr: &ast.CallExpr{
								Callee: ast.Path{"greet"},
								Args:   []ast.Expr{&ast.IdentExpr{NameIdent: "name"}},
							},
						},
						&ast.ReturnStmt{Expr: &ast.IdentExpr{NameIdent: "greeting"}},
					}},
				},
				&ast.ReturnStmt{Expr: &ast.IdentExpr{NameIdent: "name"}},
			},
		},
	}
}

func TestCompileAndRunGreet(t *testing.T) {
	module := &ast.Module{Items: []ast.Item{fnGreet()}}
	compiled, err := Compile(module)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	result, rerr := compiled.RunEntry("greet", []types.Value{types.StringValue("ada")})
	if rerr != nil {
		t.Fatalf("RunEntry: %v", rerr)
	}
	s, ok := result.StringOrEmpty()
	if !ok || s != "hi ada" {
		t.Fatalf("got %v, want %q", result, "hi ada")
	}
}

func TestCompileAndRunPickTakesBothBranches(t *testing.T) {
	module := &ast.Module{Items: []ast.Item{fnGreet(), fnPick()}}
	compiled, err := Compile(module)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	for _, tc := range []struct {
		flag bool
		want string
	}{
		{true, "hi ada"},
		{false, "ada"},
	} {
		result, rerr := compiled.RunEntry("pick", []types.Value{types.BoolValue(tc.flag), types.StringValue("ada")})
		if rerr != nil {
			t.Fatalf("RunEntry(flag=%v): %v", tc.flag, rerr)
		}
		s, ok := result.StringOrEmpty()
		if !ok || s != tc.want {
			t.Fatalf("pick(%v) = %v, want %q", tc.flag, result, tc.want)
		}
	}
}

// TestScenarioOneAgreesWithInterpreter is spec.md §8's first concrete
// end-to-end scenario: fn main() { return 42; } must evaluate to Int 42
// through both the tree interpreter and the compiled VM.
func TestScenarioOneAgreesWithInterpreter(t *testing.T) {
	module, perr := parser.ParseModule(`fn main() { return 42; }`)
	if perr != nil {
		t.Fatalf("ParseModule: %v", perr)
	}

	treeResult, terr := interp.RunEntry(module, "main")
	if terr != nil {
		t.Fatalf("interp.RunEntry: %v", terr)
	}
	if v, ok := treeResult.Int(); !ok || v != 42 {
		t.Fatalf("interp.RunEntry() = %v, want Int 42", treeResult)
	}

	compiled, cerr := Compile(module)
	if cerr != nil {
		t.Fatalf("Compile: %v", cerr)
	}
	vmResult, rerr := compiled.RunEntry("main", nil)
	if rerr != nil {
		t.Fatalf("VM RunEntry: %v", rerr)
	}
	if v, ok := vmResult.Int(); !ok || v != 42 {
		t.Fatalf("VM RunEntry() = %v, want Int 42", vmResult)
	}
}

func TestCompileRejectsWorkflow(t *testing.T) {
	module := &ast.Module{Items: []ast.Item{&ast.WorkflowDecl{NameIdent: "w"}}}
	if _, err := Compile(module); err == nil {
		t.Fatal("expected an error compiling a workflow item")
	}
}

func TestCompileRejectsDuplicateFunctionNames(t *testing.T) {
	module := &ast.Module{Items: []ast.Item{fnGreet(), fnGreet()}}
	if _, err := Compile(module); err == nil {
		t.Fatal("expected a duplicate function name error")
	}
}

func TestRunEntryArityMismatch(t *testing.T) {
	module := &ast.Module{Items: []ast.Item{fnGreet()}}
	compiled, err := Compile(module)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, rerr := compiled.RunEntry("greet", nil); rerr == nil {
		t.Fatal("expected an arity mismatch error")
	}
}

func TestRunEntryUnknownName(t *testing.T) {
	module := &ast.Module{Items: []ast.Item{fnGreet()}}
	compiled, err := Compile(module)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, rerr := compiled.RunEntry("nope", nil); rerr == nil {
		t.Fatal("expected an unknown entry error")
	}
}
