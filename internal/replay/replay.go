package replay

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/wuu-lang/wuu/internal/ast"
	"github.com/wuu-lang/wuu/internal/wuuerr"
)

// ReplayWorkflow verifies that records is the exact trace of entry's
// declared steps and effect calls, per spec §4.10.
func ReplayWorkflow(module *ast.Module, entry string, records []Record) *wuuerr.Error {
	var workflow *ast.WorkflowDecl
	for _, item := range module.Items {
		if w, ok := item.(*ast.WorkflowDecl); ok && w.NameIdent == entry {
			workflow = w
			break
		}
	}
	if workflow == nil {
		return replayErr(fmt.Sprintf("workflow '%s' not found", entry))
	}

	steps := make([]*ast.StepStmt, 0, len(workflow.Body.Stmts))
	for _, stmt := range workflow.Body.Stmts {
		step, ok := stmt.(*ast.StepStmt)
		if !ok {
			return replayErr("only step statements are supported in workflow body")
		}
		steps = append(steps, step)
	}

	index := 0
	next := func() (Record, *wuuerr.Error) {
		if index >= len(records) {
			return Record{}, replayErr("log is shorter than expected")
		}
		r := records[index]
		index++
		return r, nil
	}

	start, err := next()
	if err != nil {
		return err
	}
	if start.Kind != KindWorkflowStart {
		return replayErr("expected WorkflowStart")
	}
	if start.WorkflowName != entry {
		return replayErr(fmt.Sprintf("workflow start mismatch (expected %s)", entry))
	}

	for _, step := range steps {
		stepStart, err := next()
		if err != nil {
			return err
		}
		if stepStart.Kind != KindStepStart {
			return replayErr("expected StepStart")
		}
		if stepStart.StepName != step.Label {
			return replayErr(fmt.Sprintf("step name mismatch (expected %s)", step.Label))
		}
		stepID := stepStart.StepID

		var expected []expectedCall
		for _, stmt := range step.Body.Stmts {
			calls, err := collectEffectCallsStmt(stmt)
			if err != nil {
				return err
			}
			expected = append(expected, calls...)
		}

		for _, call := range expected {
			callRecord, err := next()
			if err != nil {
				return err
			}
			if callRecord.Kind != KindEffectCall {
				return replayErr("expected EffectCall")
			}
			if callRecord.Capability != call.capability || callRecord.Op != call.op || !bytes.Equal(callRecord.Input, call.input) {
				return replayErr(fmt.Sprintf("effect call mismatch (expected %s.%s)", call.capability, call.op))
			}
			callID := callRecord.CallID

			resultRecord, err := next()
			if err != nil {
				return err
			}
			if resultRecord.Kind != KindEffectResult {
				return replayErr("expected EffectResult")
			}
			if resultRecord.CallID != callID {
				return replayErr("effect result call_id mismatch")
			}
		}

		endRecord, err := next()
		if err != nil {
			return err
		}
		if endRecord.Kind != KindStepEnd {
			return replayErr("expected StepEnd")
		}
		if endRecord.StepID != stepID {
			return replayErr("step end id mismatch")
		}
	}

	endRecord, err := next()
	if err != nil {
		return err
	}
	if endRecord.Kind != KindWorkflowEnd {
		return replayErr("expected WorkflowEnd")
	}

	if index != len(records) {
		return replayErr("log has extra records")
	}

	return nil
}

type expectedCall struct {
	capability string
	op         string
	input      []byte
}

func collectEffectCallsStmt(stmt ast.Stmt) ([]expectedCall, *wuuerr.Error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		return collectEffectCallsExpr(s.Expr)
	case *ast.LetStmt:
		return collectEffectCallsExpr(s.Expr)
	case *ast.ReturnStmt:
		if s.Expr == nil {
			return nil, nil
		}
		return collectEffectCallsExpr(s.Expr)
	default:
		return nil, replayErr("control flow not supported in steps")
	}
}

func collectEffectCallsExpr(expr ast.Expr) ([]expectedCall, *wuuerr.Error) {
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return nil, nil
	}

	var calls []expectedCall
	for _, arg := range call.Args {
		nested, err := collectEffectCallsExpr(arg)
		if err != nil {
			return nil, err
		}
		calls = append(calls, nested...)
	}

	if len(call.Callee) >= 2 {
		op := call.Callee[len(call.Callee)-1]
		capability := call.Callee[:len(call.Callee)-1].String()
		input, err := encodeArgs(call.Args)
		if err != nil {
			return nil, err
		}
		calls = append(calls, expectedCall{capability: capability, op: op, input: input})
	}

	return calls, nil
}

func encodeArgs(args []ast.Expr) ([]byte, *wuuerr.Error) {
	values := make([]any, len(args))
	for i, arg := range args {
		switch e := arg.(type) {
		case *ast.IntExpr:
			values[i] = e.Value
		case *ast.BoolExpr:
			values[i] = e.Value
		case *ast.StringExpr:
			values[i] = e.Value
		default:
			return nil, replayErr("unsupported effect argument")
		}
	}
	out, err := cbor.Marshal(values)
	if err != nil {
		return nil, replayErr(fmt.Sprintf("failed to encode arguments: %v", err))
	}
	return out, nil
}

func replayErr(message string) *wuuerr.Error {
	return wuuerr.New(wuuerr.KindReplay, "replay error: "+message)
}
