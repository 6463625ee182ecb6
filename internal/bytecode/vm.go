package bytecode

import (
	"fmt"

	"github.com/wuu-lang/wuu/internal/intrinsics"
	"github.com/wuu-lang/wuu/internal/types"
	"github.com/wuu-lang/wuu/internal/wuuerr"
)

// VM is a frame-stack interpreter over a compiled Module.
type VM struct {
	module *Module
	frames []frame
}

type frame struct {
	fn     int
	ip     int
	locals []types.Value
	stack  []types.Value
}

// NewVM constructs a VM bound to module.
func NewVM(module *Module) *VM {
	return &VM{module: module}
}

// RunEntry resolves name in the module and executes it with args.
func (m *Module) RunEntry(name string, args []types.Value) (types.Value, *wuuerr.Error) {
	index, ok := m.NameToIndex[name]
	if !ok {
		return types.Value{}, wuuerr.New(wuuerr.KindVM, fmt.Sprintf("entry function '%s' not found", name))
	}
	vm := NewVM(m)
	return vm.Run(index, args)
}

// Run executes the function at entry with args, driving frames to
// completion and returning the entry call's result.
func (vm *VM) Run(entry int, args []types.Value) (types.Value, *wuuerr.Error) {
	if entry < 0 || entry >= len(vm.module.Functions) {
		return types.Value{}, wuuerr.New(wuuerr.KindVM, "entry function index out of range")
	}
	fn := vm.module.Functions[entry]
	if fn.Params != len(args) {
		return types.Value{}, wuuerr.New(wuuerr.KindVM, fmt.Sprintf(
			"function '%s' expects %d args but got %d", fn.Name, fn.Params, len(args)))
	}

	locals := make([]types.Value, fn.Locals)
	for i := range locals {
		locals[i] = types.UnitValue()
	}
	copy(locals, args)

	vm.frames = append(vm.frames, frame{fn: entry, locals: locals})

	for {
		if len(vm.frames) == 0 {
			return types.Value{}, wuuerr.New(wuuerr.KindVM, "vm frame stack underflow")
		}
		top := &vm.frames[len(vm.frames)-1]
		fn := vm.module.Functions[top.fn]
		if top.ip >= len(fn.Code) {
			return types.Value{}, wuuerr.New(wuuerr.KindVM, fmt.Sprintf("instruction pointer out of range in '%s'", fn.Name))
		}
		instr := fn.Code[top.ip]
		top.ip++

		switch instr.Op {
		case OpConstInt:
			top.stack = append(top.stack, types.IntValue(instr.IntVal))
		case OpConstBool:
			top.stack = append(top.stack, types.BoolValue(instr.BoolVal))
		case OpConstString:
			top.stack = append(top.stack, types.StringValue(instr.StringVal))
		case OpConstUnit:
			top.stack = append(top.stack, types.UnitValue())

		case OpLoadLocal:
			if int(instr.LocalIndex) >= len(top.locals) {
				return types.Value{}, wuuerr.New(wuuerr.KindVM, "local index out of range")
			}
			top.stack = append(top.stack, top.locals[instr.LocalIndex])

		case OpStoreLocal:
			value, ok := popStack(&top.stack)
			if !ok {
				return types.Value{}, wuuerr.New(wuuerr.KindVM, "stack underflow on store")
			}
			if int(instr.LocalIndex) >= len(top.locals) {
				return types.Value{}, wuuerr.New(wuuerr.KindVM, "local index out of range")
			}
			top.locals[instr.LocalIndex] = value

		case OpPop:
			if _, ok := popStack(&top.stack); !ok {
				return types.Value{}, wuuerr.New(wuuerr.KindVM, "stack underflow on pop")
			}

		case OpCall:
			callArgs, ok := popN(&top.stack, instr.Argc)
			if !ok {
				return types.Value{}, wuuerr.New(wuuerr.KindVM, "stack underflow on call")
			}
			if instr.FuncIndex < 0 || instr.FuncIndex >= len(vm.module.Functions) {
				return types.Value{}, wuuerr.New(wuuerr.KindVM, "function index out of range")
			}
			callee := vm.module.Functions[instr.FuncIndex]
			if callee.Params != instr.Argc {
				return types.Value{}, wuuerr.New(wuuerr.KindVM, fmt.Sprintf(
					"function '%s' expects %d args but got %d", callee.Name, callee.Params, instr.Argc))
			}
			newLocals := make([]types.Value, callee.Locals)
			for i := range newLocals {
				newLocals[i] = types.UnitValue()
			}
			copy(newLocals, callArgs)
			vm.frames = append(vm.frames, frame{fn: instr.FuncIndex, locals: newLocals})

		case OpCallBuiltin:
			callArgs, ok := popN(&top.stack, instr.Argc)
			if !ok {
				return types.Value{}, wuuerr.New(wuuerr.KindVM, "stack underflow on builtin call")
			}
			if _, known := intrinsics.Table[instr.BuiltinName]; !known {
				return types.Value{}, wuuerr.New(wuuerr.KindVM, fmt.Sprintf("unknown builtin '%s'", instr.BuiltinName))
			}
			value, err := intrinsics.Call(instr.BuiltinName, callArgs)
			if err != nil {
				return types.Value{}, wuuerr.New(wuuerr.KindVM, err.Error())
			}
			top.stack = append(top.stack, value)

		case OpJump:
			top.ip = instr.Target

		case OpJumpIfFalse:
			value, ok := popStack(&top.stack)
			if !ok {
				return types.Value{}, wuuerr.New(wuuerr.KindVM, "stack underflow on jump")
			}
			b, isBool := value.Bool()
			if !isBool {
				return types.Value{}, wuuerr.New(wuuerr.KindVM, "if condition must be boolean")
			}
			if !b {
				top.ip = instr.Target
			}

		case OpReturn:
			value, ok := popStack(&top.stack)
			if !ok {
				value = types.UnitValue()
			}
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				return value, nil
			}
			parent := &vm.frames[len(vm.frames)-1]
			parent.stack = append(parent.stack, value)

		default:
			return types.Value{}, wuuerr.New(wuuerr.KindVM, "unknown opcode")
		}
	}
}

func popStack(stack *[]types.Value) (types.Value, bool) {
	s := *stack
	if len(s) == 0 {
		return types.Value{}, false
	}
	v := s[len(s)-1]
	*stack = s[:len(s)-1]
	return v, true
}

// popN pops argc values, restoring declaration (push) order.
func popN(stack *[]types.Value, argc int) ([]types.Value, bool) {
	s := *stack
	if len(s) < argc {
		return nil, false
	}
	args := make([]types.Value, argc)
	copy(args, s[len(s)-argc:])
	*stack = s[:len(s)-argc]
	return args, true
}
