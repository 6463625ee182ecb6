// Package checker implements C3 (type checking) and C4 (effect checking)
// over a parsed Module.
package checker

import (
	"fmt"

	"github.com/wuu-lang/wuu/internal/ast"
	"github.com/wuu-lang/wuu/internal/intrinsics"
	"github.com/wuu-lang/wuu/internal/types"
	"github.com/wuu-lang/wuu/internal/wuuerr"
)

// CheckTypes runs the two-pass type checker (C3) over module.
func CheckTypes(module *ast.Module) *wuuerr.Error {
	signatures := map[string]types.Signature{}
	for name, sig := range intrinsics.Signatures() {
		signatures[name] = sig
	}

	for _, item := range module.Items {
		if err := insertSignature(signatures, item); err != nil {
			return err
		}
	}

	tc := &typeChecker{signatures: signatures}
	for _, item := range module.Items {
		if err := tc.checkItem(item); err != nil {
			return err
		}
	}
	return nil
}

func insertSignature(signatures map[string]types.Signature, item ast.Item) *wuuerr.Error {
	name := item.Name()
	if _, exists := signatures[name]; exists {
		return wuuerr.New(wuuerr.KindType, fmt.Sprintf("type error: duplicate item '%s'", name))
	}

	params, retType := paramsAndReturn(item)
	paramTypes := make([]types.Type, len(params))
	for i, p := range params {
		if p.Type == nil {
			return wuuerr.New(wuuerr.KindType, fmt.Sprintf("type error: parameter '%s' missing type", p.Name))
		}
		paramTypes[i] = types.FromTypeRef(p.Type)
	}

	signatures[name] = types.Signature{Params: paramTypes, Return: types.FromTypeRef(retType)}
	return nil
}

func paramsAndReturn(item ast.Item) ([]ast.Param, *ast.TypeRef) {
	switch it := item.(type) {
	case *ast.FnDecl:
		return it.Params, it.ReturnType
	case *ast.WorkflowDecl:
		return it.Params, it.ReturnType
	default:
		return nil, nil
	}
}

func bodyOf(item ast.Item) *ast.Block {
	switch it := item.(type) {
	case *ast.FnDecl:
		return it.Body
	case *ast.WorkflowDecl:
		return it.Body
	default:
		return nil
	}
}

func contractsOf(item ast.Item) []ast.Contract {
	switch it := item.(type) {
	case *ast.FnDecl:
		return it.Contracts
	case *ast.WorkflowDecl:
		return it.Contracts
	default:
		return nil
	}
}

type typeChecker struct {
	signatures map[string]types.Signature
}

func (tc *typeChecker) checkItem(item ast.Item) *wuuerr.Error {
	name := item.Name()
	params, _ := paramsAndReturn(item)
	sig, ok := tc.signatures[name]
	if !ok {
		return wuuerr.New(wuuerr.KindType, fmt.Sprintf("type error: missing signature for '%s'", name))
	}

	env := map[string]types.Type{}
	for i, p := range params {
		if p.Type == nil {
			return wuuerr.New(wuuerr.KindType, fmt.Sprintf("type error: parameter '%s' missing type", p.Name))
		}
		env[p.Name] = sig.Params[i]
	}

	for _, contract := range contractsOf(item) {
		ty, err := tc.checkExpr(contract.Expr, env)
		if err != nil {
			return err
		}
		if !ty.Equal(types.Bool) {
			return wuuerr.New(wuuerr.KindType, fmt.Sprintf("type error: contract expects Bool but got %s", ty))
		}
	}

	return tc.checkBlock(bodyOf(item), cloneEnv(env), sig.Return)
}

func (tc *typeChecker) checkBlock(block *ast.Block, env map[string]types.Type, expectedReturn types.Type) *wuuerr.Error {
	for _, stmt := range block.Stmts {
		if err := tc.checkStmt(stmt, env, expectedReturn); err != nil {
			return err
		}
	}
	return nil
}

func (tc *typeChecker) checkStmt(stmt ast.Stmt, env map[string]types.Type, expectedReturn types.Type) *wuuerr.Error {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		exprType, err := tc.checkExpr(s.Expr, env)
		if err != nil {
			return err
		}
		boundType := exprType
		if s.Type != nil {
			declared := types.FromTypeRef(s.Type)
			if !declared.Equal(exprType) {
				return wuuerr.New(wuuerr.KindType, fmt.Sprintf("type error: let '%s' expects %s but got %s", s.NameIdent, declared, exprType))
			}
			boundType = declared
		}
		env[s.NameIdent] = boundType
		return nil

	case *ast.ReturnStmt:
		exprType := types.UnitT
		if s.Expr != nil {
			ty, err := tc.checkExpr(s.Expr, env)
			if err != nil {
				return err
			}
			exprType = ty
		}
		if !exprType.Equal(expectedReturn) {
			return wuuerr.New(wuuerr.KindType, fmt.Sprintf("type error: return expects %s but got %s", expectedReturn, exprType))
		}
		return nil

	case *ast.ExprStmt:
		_, err := tc.checkExpr(s.Expr, env)
		return err

	case *ast.IfStmt:
		condType, err := tc.checkExpr(s.Cond, env)
		if err != nil {
			return err
		}
		if !condType.Equal(types.Bool) {
			return wuuerr.New(wuuerr.KindType, fmt.Sprintf("type error: if condition expects Bool but got %s", condType))
		}
		if err := tc.checkBlock(s.Then, cloneEnv(env), expectedReturn); err != nil {
			return err
		}
		if s.Else != nil {
			if err := tc.checkBlock(s.Else, cloneEnv(env), expectedReturn); err != nil {
				return err
			}
		}
		return nil

	case *ast.LoopStmt:
		return tc.checkBlock(s.Body, cloneEnv(env), expectedReturn)

	case *ast.StepStmt:
		return tc.checkBlock(s.Body, cloneEnv(env), expectedReturn)

	default:
		return wuuerr.New(wuuerr.KindType, "type error: unknown statement kind")
	}
}

func (tc *typeChecker) checkExpr(expr ast.Expr, env map[string]types.Type) (types.Type, *wuuerr.Error) {
	switch e := expr.(type) {
	case *ast.IntExpr:
		return types.Int, nil
	case *ast.BoolExpr:
		return types.Bool, nil
	case *ast.StringExpr:
		return types.String, nil
	case *ast.IdentExpr:
		ty, ok := env[e.NameIdent]
		if !ok {
			return types.Type{}, wuuerr.New(wuuerr.KindType, fmt.Sprintf("type error: unknown variable '%s'", e.NameIdent))
		}
		return ty, nil
	case *ast.PathExpr:
		if len(e.Segments) == 1 {
			ty, ok := env[e.Segments[0]]
			if !ok {
				return types.Type{}, wuuerr.New(wuuerr.KindType, fmt.Sprintf("type error: unknown variable '%s'", e.Segments[0]))
			}
			return ty, nil
		}
		return types.Type{}, wuuerr.New(wuuerr.KindType, "type error: qualified paths are not supported in expressions")
	case *ast.CallExpr:
		if len(e.Callee) != 1 {
			return types.Type{}, wuuerr.New(wuuerr.KindType, "type error: qualified function calls are not supported")
		}
		name := e.Callee[0]
		sig, ok := tc.signatures[name]
		if !ok {
			return types.Type{}, wuuerr.New(wuuerr.KindType, fmt.Sprintf("type error: unknown function '%s'", name))
		}
		if len(sig.Params) != len(e.Args) {
			return types.Type{}, wuuerr.New(wuuerr.KindType, fmt.Sprintf("type error: function '%s' expects %d args but got %d", name, len(sig.Params), len(e.Args)))
		}
		for i, arg := range e.Args {
			argType, err := tc.checkExpr(arg, env)
			if err != nil {
				return types.Type{}, err
			}
			if !argType.Equal(sig.Params[i]) {
				return types.Type{}, wuuerr.New(wuuerr.KindType, fmt.Sprintf("type error: argument %d of '%s' expects %s but got %s", i+1, name, sig.Params[i], argType))
			}
		}
		return sig.Return, nil
	default:
		return types.Type{}, wuuerr.New(wuuerr.KindType, "type error: unknown expression kind")
	}
}

func cloneEnv(env map[string]types.Type) map[string]types.Type {
	out := make(map[string]types.Type, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}
