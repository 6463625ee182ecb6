package ast

import (
	"testing"

	"github.com/wuu-lang/wuu/internal/wuuerr"
)

func TestPathString(t *testing.T) {
	tests := []struct {
		name string
		path Path
		want string
	}{
		{name: "empty", path: Path{}, want: ""},
		{name: "single segment", path: Path{"Net"}, want: "Net"},
		{name: "dotted", path: Path{"Net", "Http"}, want: "Net.Http"},
		{name: "three segments", path: Path{"a", "b", "c"}, want: "a.b.c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.path.String(); got != tt.want {
				t.Errorf("Path(%v).String() = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestItemNameDispatch(t *testing.T) {
	var fn Item = &FnDecl{NameIdent: "main"}
	var wf Item = &WorkflowDecl{NameIdent: "onboard"}

	if got := fn.Name(); got != "main" {
		t.Errorf("FnDecl.Name() = %q, want %q", got, "main")
	}
	if got := wf.Name(); got != "onboard" {
		t.Errorf("WorkflowDecl.Name() = %q, want %q", got, "onboard")
	}
}

// TestExprNodeVariants asserts every Expr variant implements the interface
// and reports the span it was constructed with, since downstream packages
// (checker, bytecode, format, interp, replay) switch on these concrete
// types directly.
func TestExprNodeVariants(t *testing.T) {
	span := wuuerr.Span{Start: 3, End: 7}
	exprs := []Expr{
		&IdentExpr{NameIdent: "x", SpanVal: span},
		&StringExpr{Value: "hi", SpanVal: span},
		&PathExpr{Segments: Path{"a", "b"}, SpanVal: span},
		&CallExpr{Callee: Path{"f"}, SpanVal: span},
		&IntExpr{Value: 42, SpanVal: span},
		&BoolExpr{Value: true, SpanVal: span},
	}
	for _, e := range exprs {
		if got := e.Span(); got != span {
			t.Errorf("%T.Span() = %+v, want %+v", e, got, span)
		}
	}
}

func TestStmtNodeVariants(t *testing.T) {
	var stmts = []Stmt{
		&LetStmt{NameIdent: "x"},
		&ReturnStmt{},
		&IfStmt{},
		&LoopStmt{},
		&StepStmt{Label: "do it"},
		&ExprStmt{},
	}
	// stmtNode is unexported and only exists to close the Stmt interface;
	// this loop exercises that every listed type actually implements it.
	for _, s := range stmts {
		if s == nil {
			t.Fatal("nil Stmt in variant list")
		}
	}
}
