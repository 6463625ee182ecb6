package replay

import (
	"testing"

	"github.com/wuu-lang/wuu/internal/ast"
)

// workflowRun is `workflow run() { step "fetch" { Net.Http.get(); } }`.
func workflowRun() *ast.WorkflowDecl {
	return &ast.WorkflowDecl{
		NameIdent: "run",
		Body: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.StepStmt{
					Label: "fetch",
					Body: &ast.Block{
						Stmts: []ast.Stmt{
							&ast.ExprStmt{
								Expr: &ast.CallExpr{Callee: ast.Path{"Net", "Http", "get"}},
							},
						},
					},
				},
			},
		},
	}
}

func okLog() []Record {
	return []Record{
		{Kind: KindWorkflowStart, WorkflowName: "run", RunID: "run-1"},
		{Kind: KindStepStart, StepID: 1, StepName: "fetch", Attempt: 1},
		{Kind: KindEffectCall, CallID: 10, Capability: "Net.Http", Op: "get", Input: []byte{0x80}},
		{Kind: KindEffectResult, CallID: 10, Outcome: OutcomeOk},
		{Kind: KindStepEnd, StepID: 1, Outcome: OutcomeOk},
		{Kind: KindWorkflowEnd, Outcome: OutcomeOk},
	}
}

func TestReplayOK(t *testing.T) {
	module := &ast.Module{Items: []ast.Item{workflowRun()}}
	if err := ReplayWorkflow(module, "run", okLog()); err != nil {
		t.Fatalf("ReplayWorkflow: %v", err)
	}
}

func TestReplayDetectsMismatch(t *testing.T) {
	module := &ast.Module{Items: []ast.Item{workflowRun()}}
	log := okLog()
	log[2].Op = "post"

	err := ReplayWorkflow(module, "run", log)
	if err == nil {
		t.Fatal("expected an effect call mismatch error")
	}
	if want := "effect call mismatch"; !contains(err.Error(), want) {
		t.Fatalf("error %q does not contain %q", err.Error(), want)
	}
}

func TestReplayRejectsExtraRecords(t *testing.T) {
	module := &ast.Module{Items: []ast.Item{workflowRun()}}
	log := append(okLog(), Record{Kind: KindWorkflowEnd, Outcome: OutcomeOk})
	if err := ReplayWorkflow(module, "run", log); err == nil {
		t.Fatal("expected an extra-records error")
	}
}

func TestReplayRejectsShortLog(t *testing.T) {
	module := &ast.Module{Items: []ast.Item{workflowRun()}}
	log := okLog()[:3]
	if err := ReplayWorkflow(module, "run", log); err == nil {
		t.Fatal("expected a short-log error")
	}
}

func TestEncodeDecodeRecordRoundTrip(t *testing.T) {
	for _, r := range okLog() {
		data, err := EncodeRecord(r)
		if err != nil {
			t.Fatalf("EncodeRecord: %v", err)
		}
		decoded, err := DecodeRecord(data)
		if err != nil {
			t.Fatalf("DecodeRecord: %v", err)
		}
		if decoded.Kind != r.Kind {
			t.Fatalf("got kind %v, want %v", decoded.Kind, r.Kind)
		}
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
