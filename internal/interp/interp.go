// Package interp implements C5: a tree-walking interpreter over the AST,
// sharing the intrinsics.Table with the bytecode VM (C7).
package interp

import (
	"fmt"

	"github.com/wuu-lang/wuu/internal/ast"
	"github.com/wuu-lang/wuu/internal/intrinsics"
	"github.com/wuu-lang/wuu/internal/types"
	"github.com/wuu-lang/wuu/internal/wuuerr"
)

// RunEntry evaluates entry with no arguments.
func RunEntry(module *ast.Module, entry string) (types.Value, *wuuerr.Error) {
	return RunEntryWithArgs(module, entry, nil)
}

// RunEntryWithArgs evaluates the named Fn item with the given arguments.
func RunEntryWithArgs(module *ast.Module, entry string, args []types.Value) (types.Value, *wuuerr.Error) {
	functions := map[string]*ast.FnDecl{}
	for _, item := range module.Items {
		if fn, ok := item.(*ast.FnDecl); ok {
			functions[fn.NameIdent] = fn
		}
	}

	entryFn, ok := functions[entry]
	if !ok {
		return types.Value{}, wuuerr.New(wuuerr.KindRuntime, fmt.Sprintf("entry function '%s' not found", entry))
	}

	it := &interpreter{functions: functions}
	return it.evalFn(entryFn, args)
}

type interpreter struct {
	functions map[string]*ast.FnDecl
}

type control struct {
	isReturn bool
	value    types.Value
}

func (it *interpreter) evalFn(fn *ast.FnDecl, args []types.Value) (types.Value, *wuuerr.Error) {
	if len(fn.Params) != len(args) {
		return types.Value{}, wuuerr.New(wuuerr.KindRuntime, fmt.Sprintf(
			"function '%s' expects %d args but got %d", fn.NameIdent, len(fn.Params), len(args)))
	}

	env := map[string]types.Value{}
	for i, p := range fn.Params {
		env[p.Name] = args[i]
	}

	ctrl, err := it.evalBlock(fn.Body, env)
	if err != nil {
		return types.Value{}, err
	}
	if ctrl.isReturn {
		return ctrl.value, nil
	}
	return types.UnitValue(), nil
}

func (it *interpreter) evalBlock(block *ast.Block, env map[string]types.Value) (control, *wuuerr.Error) {
	for _, stmt := range block.Stmts {
		ctrl, err := it.evalStmt(stmt, env)
		if err != nil {
			return control{}, err
		}
		if ctrl.isReturn {
			return ctrl, nil
		}
	}
	return control{}, nil
}

func (it *interpreter) evalStmt(stmt ast.Stmt, env map[string]types.Value) (control, *wuuerr.Error) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		value, err := it.evalExpr(s.Expr, env)
		if err != nil {
			return control{}, err
		}
		env[s.NameIdent] = value
		return control{}, nil

	case *ast.ReturnStmt:
		if s.Expr == nil {
			return control{isReturn: true, value: types.UnitValue()}, nil
		}
		value, err := it.evalExpr(s.Expr, env)
		if err != nil {
			return control{}, err
		}
		return control{isReturn: true, value: value}, nil

	case *ast.ExprStmt:
		if _, err := it.evalExpr(s.Expr, env); err != nil {
			return control{}, err
		}
		return control{}, nil

	case *ast.IfStmt:
		cond, err := it.evalExpr(s.Cond, env)
		if err != nil {
			return control{}, err
		}
		b, ok := cond.Bool()
		if !ok {
			return control{}, wuuerr.New(wuuerr.KindRuntime, "if condition must be boolean")
		}
		if b {
			return it.evalBlock(s.Then, env)
		}
		if s.Else != nil {
			return it.evalBlock(s.Else, env)
		}
		return control{}, nil

	case *ast.LoopStmt:
		return control{}, wuuerr.New(wuuerr.KindRuntime, "loop is not supported in the interpreter yet")

	case *ast.StepStmt:
		return control{}, wuuerr.New(wuuerr.KindRuntime, "step is not supported in the interpreter")

	default:
		return control{}, wuuerr.New(wuuerr.KindRuntime, "unknown statement kind")
	}
}

func (it *interpreter) evalExpr(expr ast.Expr, env map[string]types.Value) (types.Value, *wuuerr.Error) {
	switch e := expr.(type) {
	case *ast.IntExpr:
		return types.IntValue(e.Value), nil
	case *ast.BoolExpr:
		return types.BoolValue(e.Value), nil
	case *ast.StringExpr:
		return types.StringValue(e.Value), nil
	case *ast.IdentExpr:
		v, ok := env[e.NameIdent]
		if !ok {
			return types.Value{}, wuuerr.New(wuuerr.KindRuntime, fmt.Sprintf("unknown variable '%s'", e.NameIdent))
		}
		return v, nil
	case *ast.PathExpr:
		if len(e.Segments) == 1 {
			v, ok := env[e.Segments[0]]
			if !ok {
				return types.Value{}, wuuerr.New(wuuerr.KindRuntime, fmt.Sprintf("unknown variable '%s'", e.Segments[0]))
			}
			return v, nil
		}
		return types.Value{}, wuuerr.New(wuuerr.KindRuntime, "qualified paths are not supported in expressions")
	case *ast.CallExpr:
		args := make([]types.Value, len(e.Args))
		for i, a := range e.Args {
			v, err := it.evalExpr(a, env)
			if err != nil {
				return types.Value{}, err
			}
			args[i] = v
		}
		if len(e.Callee) != 1 {
			return types.Value{}, wuuerr.New(wuuerr.KindRuntime, "qualified function calls are not supported")
		}
		name := e.Callee[0]
		if _, ok := intrinsics.Table[name]; ok {
			return intrinsics.Call(name, args)
		}
		fn, ok := it.functions[name]
		if !ok {
			return types.Value{}, wuuerr.New(wuuerr.KindRuntime, fmt.Sprintf("unknown function '%s'", name))
		}
		return it.evalFn(fn, args)
	default:
		return types.Value{}, wuuerr.New(wuuerr.KindRuntime, "unknown expression kind")
	}
}
