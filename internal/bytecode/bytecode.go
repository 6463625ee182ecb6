// Package bytecode implements C6 (the bytecode compiler) and C7 (the
// stack VM), sharing intrinsics.Table with the tree interpreter.
package bytecode

import (
	"fmt"

	"github.com/wuu-lang/wuu/internal/ast"
	"github.com/wuu-lang/wuu/internal/wuuerr"
)

// Op is a bytecode opcode. Constants push their value; LoadLocal/
// StoreLocal index the current frame's locals; Call/CallBuiltin carry
// their own operands inline on the Instr.
type Op int

const (
	OpConstInt Op = iota
	OpConstBool
	OpConstString
	OpConstUnit
	OpLoadLocal
	OpStoreLocal
	OpPop
	OpCall
	OpCallBuiltin
	OpJump
	OpJumpIfFalse
	OpReturn
)

// Instr is one bytecode instruction. Only the fields relevant to Op are
// populated; see the per-opcode doc above.
type Instr struct {
	Op          Op
	IntVal      int64
	BoolVal     bool
	StringVal   string
	LocalIndex  uint32
	FuncIndex   int
	BuiltinName string
	Argc        int
	Target      int
}

// Function is one compiled function: its parameter count, the number of
// local slots its locals table grew to, and its instruction stream.
type Function struct {
	Name   string
	Params int
	Locals int
	Code   []Instr
}

// Module is an ordered list of compiled functions plus a name→index map
// with unique names.
type Module struct {
	Functions   []Function
	NameToIndex map[string]int
}

// Compile lowers every Fn item in module to bytecode. Workflow items and
// duplicate function names are compile errors.
func Compile(module *ast.Module) (*Module, *wuuerr.Error) {
	var functions []Function
	nameToIndex := map[string]int{}

	for _, item := range module.Items {
		switch it := item.(type) {
		case *ast.FnDecl:
			if _, exists := nameToIndex[it.NameIdent]; exists {
				return nil, wuuerr.New(wuuerr.KindLowering, fmt.Sprintf("duplicate function '%s'", it.NameIdent))
			}
			nameToIndex[it.NameIdent] = len(functions)
			functions = append(functions, Function{Name: it.NameIdent})
		case *ast.WorkflowDecl:
			return nil, wuuerr.New(wuuerr.KindLowering, "bytecode VM does not support workflows")
		}
	}

	for _, item := range module.Items {
		fn, ok := item.(*ast.FnDecl)
		if !ok {
			continue
		}
		index := nameToIndex[fn.NameIdent]
		compiled, err := compileFunction(fn, nameToIndex)
		if err != nil {
			return nil, err
		}
		functions[index] = *compiled
	}

	return &Module{Functions: functions, NameToIndex: nameToIndex}, nil
}

func compileFunction(fn *ast.FnDecl, nameToIndex map[string]int) (*Function, *wuuerr.Error) {
	locals := map[string]uint32{}
	var localCount uint32
	for _, param := range fn.Params {
		locals[param.Name] = localCount
		localCount++
	}

	var code []Instr
	if err := compileBlock(fn.Body, locals, &localCount, nameToIndex, &code); err != nil {
		return nil, err
	}
	code = append(code, Instr{Op: OpConstUnit}, Instr{Op: OpReturn})

	return &Function{Name: fn.NameIdent, Params: len(fn.Params), Locals: int(localCount), Code: code}, nil
}

func compileBlock(block *ast.Block, locals map[string]uint32, localCount *uint32, nameToIndex map[string]int, code *[]Instr) *wuuerr.Error {
	for _, stmt := range block.Stmts {
		if err := compileStmt(stmt, locals, localCount, nameToIndex, code); err != nil {
			return err
		}
	}
	return nil
}

func compileStmt(stmt ast.Stmt, locals map[string]uint32, localCount *uint32, nameToIndex map[string]int, code *[]Instr) *wuuerr.Error {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		if err := compileExpr(s.Expr, locals, nameToIndex, code); err != nil {
			return err
		}
		index, exists := locals[s.NameIdent]
		if !exists {
			index = *localCount
			locals[s.NameIdent] = index
			*localCount++
		}
		*code = append(*code, Instr{Op: OpStoreLocal, LocalIndex: index})

	case *ast.ReturnStmt:
		if s.Expr != nil {
			if err := compileExpr(s.Expr, locals, nameToIndex, code); err != nil {
				return err
			}
		} else {
			*code = append(*code, Instr{Op: OpConstUnit})
		}
		*code = append(*code, Instr{Op: OpReturn})

	case *ast.ExprStmt:
		if err := compileExpr(s.Expr, locals, nameToIndex, code); err != nil {
			return err
		}
		*code = append(*code, Instr{Op: OpPop})

	case *ast.IfStmt:
		if err := compileExpr(s.Cond, locals, nameToIndex, code); err != nil {
			return err
		}
		jumpFalseAt := len(*code)
		*code = append(*code, Instr{Op: OpJumpIfFalse, Target: -1})
		if err := compileBlock(s.Then, locals, localCount, nameToIndex, code); err != nil {
			return err
		}
		jumpEndAt := len(*code)
		*code = append(*code, Instr{Op: OpJump, Target: -1})
		elseStart := len(*code)
		if s.Else != nil {
			if err := compileBlock(s.Else, locals, localCount, nameToIndex, code); err != nil {
				return err
			}
		}
		end := len(*code)
		(*code)[jumpFalseAt].Target = elseStart
		(*code)[jumpEndAt].Target = end

	case *ast.LoopStmt:
		return wuuerr.New(wuuerr.KindLowering, "bytecode VM does not support loop yet")

	case *ast.StepStmt:
		return wuuerr.New(wuuerr.KindLowering, "bytecode VM does not support step yet")

	default:
		return wuuerr.New(wuuerr.KindLowering, "unknown statement kind")
	}
	return nil
}

func compileExpr(expr ast.Expr, locals map[string]uint32, nameToIndex map[string]int, code *[]Instr) *wuuerr.Error {
	switch e := expr.(type) {
	case *ast.IntExpr:
		*code = append(*code, Instr{Op: OpConstInt, IntVal: e.Value})
	case *ast.BoolExpr:
		*code = append(*code, Instr{Op: OpConstBool, BoolVal: e.Value})
	case *ast.StringExpr:
		*code = append(*code, Instr{Op: OpConstString, StringVal: e.Value})
	case *ast.IdentExpr:
		index, ok := locals[e.NameIdent]
		if !ok {
			return wuuerr.New(wuuerr.KindLowering, fmt.Sprintf("unknown variable '%s'", e.NameIdent))
		}
		*code = append(*code, Instr{Op: OpLoadLocal, LocalIndex: index})
	case *ast.PathExpr:
		if len(e.Segments) != 1 {
			return wuuerr.New(wuuerr.KindLowering, "qualified paths are not supported")
		}
		index, ok := locals[e.Segments[0]]
		if !ok {
			return wuuerr.New(wuuerr.KindLowering, fmt.Sprintf("unknown variable '%s'", e.Segments[0]))
		}
		*code = append(*code, Instr{Op: OpLoadLocal, LocalIndex: index})
	case *ast.CallExpr:
		for _, arg := range e.Args {
			if err := compileExpr(arg, locals, nameToIndex, code); err != nil {
				return err
			}
		}
		if len(e.Callee) != 1 {
			return wuuerr.New(wuuerr.KindLowering, "qualified function calls are not supported")
		}
		name := e.Callee[0]
		if len(name) >= 2 && name[:2] == "__" {
			*code = append(*code, Instr{Op: OpCallBuiltin, BuiltinName: name, Argc: len(e.Args)})
			return nil
		}
		index, ok := nameToIndex[name]
		if !ok {
			return wuuerr.New(wuuerr.KindLowering, fmt.Sprintf("unknown function '%s'", name))
		}
		*code = append(*code, Instr{Op: OpCall, FuncIndex: index, Argc: len(e.Args)})
	default:
		return wuuerr.New(wuuerr.KindLowering, "unknown expression kind")
	}
	return nil
}
