package checker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"github.com/wuu-lang/wuu/internal/ast"
	"github.com/wuu-lang/wuu/internal/wuuerr"
)

// EffectSet is an unordered set of dotted capability names; diagnostics
// render it in natural sort order.
type EffectSet map[string]struct{}

// CheckEffects runs C4 over module: every call's required capability set
// must be a subset of its caller's declared set.
func CheckEffects(module *ast.Module) *wuuerr.Error {
	effectMap := map[string]EffectSet{}
	for _, item := range module.Items {
		effectMap[item.Name()] = effectsFromDecl(effectsDeclOf(item))
	}

	for _, item := range module.Items {
		declared := effectsFromDecl(effectsDeclOf(item))
		if err := checkBlock(bodyOf(item), item.Name(), declared, effectMap); err != nil {
			return err
		}
	}
	return nil
}

func effectsDeclOf(item ast.Item) *ast.EffectsDecl {
	switch it := item.(type) {
	case *ast.FnDecl:
		return it.Effects
	case *ast.WorkflowDecl:
		return it.Effects
	default:
		return nil
	}
}

func checkBlock(block *ast.Block, caller string, declared EffectSet, effectMap map[string]EffectSet) *wuuerr.Error {
	for _, stmt := range block.Stmts {
		if err := checkStmt(stmt, caller, declared, effectMap); err != nil {
			return err
		}
	}
	return nil
}

func checkStmt(stmt ast.Stmt, caller string, declared EffectSet, effectMap map[string]EffectSet) *wuuerr.Error {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		return checkExpr(s.Expr, caller, declared, effectMap)
	case *ast.ReturnStmt:
		if s.Expr != nil {
			return checkExpr(s.Expr, caller, declared, effectMap)
		}
		return nil
	case *ast.ExprStmt:
		return checkExpr(s.Expr, caller, declared, effectMap)
	case *ast.IfStmt:
		if err := checkExpr(s.Cond, caller, declared, effectMap); err != nil {
			return err
		}
		if err := checkBlock(s.Then, caller, declared, effectMap); err != nil {
			return err
		}
		if s.Else != nil {
			return checkBlock(s.Else, caller, declared, effectMap)
		}
		return nil
	case *ast.LoopStmt:
		return checkBlock(s.Body, caller, declared, effectMap)
	case *ast.StepStmt:
		return checkBlock(s.Body, caller, declared, effectMap)
	default:
		return nil
	}
}

func checkExpr(expr ast.Expr, caller string, declared EffectSet, effectMap map[string]EffectSet) *wuuerr.Error {
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return nil
	}
	for _, arg := range call.Args {
		if err := checkExpr(arg, caller, declared, effectMap); err != nil {
			return err
		}
	}
	if len(call.Callee) != 1 {
		return nil
	}
	name := call.Callee[0]
	required, ok := effectMap[name]
	if !ok {
		return nil
	}
	if !isSubset(required, declared) {
		return wuuerr.New(wuuerr.KindEffect, fmt.Sprintf(
			"effect error: %s calls %s requiring %s but declares %s",
			caller, name, formatEffectSet(required), formatEffectSet(declared),
		))
	}
	return nil
}

func effectsFromDecl(decl *ast.EffectsDecl) EffectSet {
	set := EffectSet{}
	if decl == nil {
		return set
	}
	if decl.IsRequires {
		for _, pair := range decl.Pairs {
			set[pair[0]+"."+pair[1]] = struct{}{}
		}
		return set
	}
	for _, path := range decl.Paths {
		set[path.String()] = struct{}{}
	}
	return set
}

func isSubset(required, declared EffectSet) bool {
	for k := range required {
		if _, ok := declared[k]; !ok {
			return false
		}
	}
	return true
}

// Subsumes reports whether declaring b instead of a can only relax checks:
// true when a is a subset of b. Used by the monotonicity property (spec §8).
func Subsumes(a, b EffectSet) bool {
	return isSubset(a, b)
}

func formatEffectSet(set EffectSet) string {
	if len(set) == 0 {
		return "{}"
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	return "{ " + strings.Join(names, ", ") + " }"
}
