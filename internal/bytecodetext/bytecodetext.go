// Package bytecodetext implements C8: a line-oriented assembly format
// bridging the self-hosted compiler's output to the host VM (C7).
//
// Grammar (one instruction per line, per spec §4.8):
//
//	fn <name> [<params_unused>] [<locals_unused>]
//	param <name>
//	arg
//	const_int <i64> | const_bool true|false | const_string "<escaped>" | const_unit
//	load <name> | store <name> | pop
//	call_builtin <name> [<argc>] | call <name> [<argc>]
//	jump <index> | jump_if_false <index>
//	return
//	end
package bytecodetext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wuu-lang/wuu/internal/bytecode"
	"github.com/wuu-lang/wuu/internal/wuuerr"
)

// Encode renders a compiled module as bytecode text. Functions are
// emitted in module order. Function no longer carries parameter or
// local names past compilation, so every slot, parameters included, is
// named positionally as l<index>; call targets are written by name.
func Encode(module *bytecode.Module) string {
	var b strings.Builder
	for _, fn := range module.Functions {
		fmt.Fprintf(&b, "fn %s\n", fn.Name)
		for i := 0; i < fn.Params; i++ {
			fmt.Fprintf(&b, "param %s\n", localName(i))
		}
		for _, instr := range fn.Code {
			encodeInstr(&b, module, instr)
		}
		b.WriteString("end\n")
	}
	return b.String()
}

func localName(index int) string { return fmt.Sprintf("l%d", index) }

func encodeInstr(b *strings.Builder, module *bytecode.Module, instr bytecode.Instr) {
	switch instr.Op {
	case bytecode.OpConstInt:
		fmt.Fprintf(b, "const_int %d\n", instr.IntVal)
	case bytecode.OpConstBool:
		fmt.Fprintf(b, "const_bool %t\n", instr.BoolVal)
	case bytecode.OpConstString:
		fmt.Fprintf(b, "const_string %s\n", quote(instr.StringVal))
	case bytecode.OpConstUnit:
		b.WriteString("const_unit\n")
	case bytecode.OpLoadLocal:
		fmt.Fprintf(b, "load %s\n", localName(int(instr.LocalIndex)))
	case bytecode.OpStoreLocal:
		fmt.Fprintf(b, "store %s\n", localName(int(instr.LocalIndex)))
	case bytecode.OpPop:
		b.WriteString("pop\n")
	case bytecode.OpCall:
		fmt.Fprintf(b, "call %s %d\n", module.Functions[instr.FuncIndex].Name, instr.Argc)
	case bytecode.OpCallBuiltin:
		fmt.Fprintf(b, "call_builtin %s %d\n", instr.BuiltinName, instr.Argc)
	case bytecode.OpJump:
		fmt.Fprintf(b, "jump %d\n", instr.Target)
	case bytecode.OpJumpIfFalse:
		fmt.Fprintf(b, "jump_if_false %d\n", instr.Target)
	case bytecode.OpReturn:
		b.WriteString("return\n")
	}
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func unquote(s string) (string, *wuuerr.Error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", wuuerr.New(wuuerr.KindDecode, "const_string payload must be quoted")
	}
	inner := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(inner) {
			return "", wuuerr.New(wuuerr.KindDecode, "unterminated escape in const_string")
		}
		switch inner[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		default:
			return "", wuuerr.New(wuuerr.KindDecode, fmt.Sprintf("unknown escape '\\%c' in const_string", inner[i]))
		}
	}
	return b.String(), nil
}

// pendingFunc accumulates one function while decoding.
type pendingFunc struct {
	name    string
	locals  map[string]uint32
	count   uint32
	params  int
	code    []bytecode.Instr
	pending int // pending `arg` markers not yet consumed by a call
}

// Decode parses bytecode text into a Module. Unresolved call targets
// and duplicate function names are decode errors, per spec §4.8.
func Decode(text string) (*bytecode.Module, *wuuerr.Error) {
	var functions []bytecode.Function
	nameToIndex := map[string]int{}
	var cur *pendingFunc

	lines := strings.Split(text, "\n")
	for lineNo, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		fields := splitLine(line)
		kw := fields[0]

		if kw == "fn" {
			if cur != nil {
				return nil, decodeErr(lineNo, "nested 'fn' before matching 'end'")
			}
			if len(fields) < 2 {
				return nil, decodeErr(lineNo, "'fn' requires a name")
			}
			name := fields[1]
			if _, exists := nameToIndex[name]; exists {
				return nil, decodeErr(lineNo, fmt.Sprintf("duplicate function '%s'", name))
			}
			nameToIndex[name] = len(functions)
			functions = append(functions, bytecode.Function{Name: name})
			cur = &pendingFunc{name: name, locals: map[string]uint32{}}
			continue
		}

		if cur == nil {
			return nil, decodeErr(lineNo, fmt.Sprintf("'%s' outside of a function body", kw))
		}

		switch kw {
		case "param":
			if len(fields) < 2 {
				return nil, decodeErr(lineNo, "'param' requires a name")
			}
			cur.locals[fields[1]] = cur.count
			cur.count++
			cur.params++

		case "arg":
			cur.pending++

		case "const_int":
			v, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return nil, decodeErr(lineNo, "invalid const_int literal")
			}
			cur.code = append(cur.code, bytecode.Instr{Op: bytecode.OpConstInt, IntVal: v})

		case "const_bool":
			var v bool
			switch fields[1] {
			case "true":
				v = true
			case "false":
				v = false
			default:
				return nil, decodeErr(lineNo, "const_bool requires true|false")
			}
			cur.code = append(cur.code, bytecode.Instr{Op: bytecode.OpConstBool, BoolVal: v})

		case "const_string":
			payload := strings.TrimSpace(strings.TrimPrefix(line, "const_string"))
			s, uerr := unquote(payload)
			if uerr != nil {
				return nil, uerr
			}
			cur.code = append(cur.code, bytecode.Instr{Op: bytecode.OpConstString, StringVal: s})

		case "const_unit":
			cur.code = append(cur.code, bytecode.Instr{Op: bytecode.OpConstUnit})

		case "load":
			index, derr := localSlot(cur, fields, lineNo, false)
			if derr != nil {
				return nil, derr
			}
			cur.code = append(cur.code, bytecode.Instr{Op: bytecode.OpLoadLocal, LocalIndex: index})

		case "store":
			index, derr := localSlot(cur, fields, lineNo, true)
			if derr != nil {
				return nil, derr
			}
			cur.code = append(cur.code, bytecode.Instr{Op: bytecode.OpStoreLocal, LocalIndex: index})

		case "pop":
			cur.code = append(cur.code, bytecode.Instr{Op: bytecode.OpPop})

		case "call", "call_builtin":
			if len(fields) < 2 {
				return nil, decodeErr(lineNo, fmt.Sprintf("'%s' requires a name", kw))
			}
			argc, derr := resolveArgc(cur, fields, lineNo)
			if derr != nil {
				return nil, derr
			}
			if kw == "call_builtin" {
				cur.code = append(cur.code, bytecode.Instr{Op: bytecode.OpCallBuiltin, BuiltinName: fields[1], Argc: argc})
			} else {
				// Target resolved in the fixup pass below since forward
				// references (calling a function defined later) are legal.
				cur.code = append(cur.code, bytecode.Instr{Op: bytecode.OpCall, FuncIndex: -1, BuiltinName: fields[1], Argc: argc})
			}

		case "jump":
			target, derr := parseTarget(fields, lineNo)
			if derr != nil {
				return nil, derr
			}
			cur.code = append(cur.code, bytecode.Instr{Op: bytecode.OpJump, Target: target})

		case "jump_if_false":
			target, derr := parseTarget(fields, lineNo)
			if derr != nil {
				return nil, derr
			}
			cur.code = append(cur.code, bytecode.Instr{Op: bytecode.OpJumpIfFalse, Target: target})

		case "return":
			cur.code = append(cur.code, bytecode.Instr{Op: bytecode.OpReturn})

		case "end":
			functions[nameToIndex[cur.name]] = bytecode.Function{
				Name:   cur.name,
				Params: cur.params,
				Locals: int(cur.count),
				Code:   cur.code,
			}
			cur = nil

		default:
			return nil, decodeErr(lineNo, fmt.Sprintf("unknown instruction '%s'", kw))
		}
	}

	if cur != nil {
		return nil, wuuerr.New(wuuerr.KindDecode, fmt.Sprintf("function '%s' missing terminating 'end'", cur.name))
	}

	// Fixup pass: resolve call targets now that every function name is known.
	for fi := range functions {
		for ii, instr := range functions[fi].Code {
			if instr.Op != bytecode.OpCall || instr.FuncIndex != -1 {
				continue
			}
			index, ok := nameToIndex[instr.BuiltinName]
			if !ok {
				return nil, wuuerr.New(wuuerr.KindDecode, fmt.Sprintf("unresolved call target '%s'", instr.BuiltinName))
			}
			functions[fi].Code[ii].FuncIndex = index
			functions[fi].Code[ii].BuiltinName = ""
		}
	}

	return &bytecode.Module{Functions: functions, NameToIndex: nameToIndex}, nil
}

func localSlot(cur *pendingFunc, fields []string, lineNo int, allowNew bool) (uint32, *wuuerr.Error) {
	if len(fields) < 2 {
		return 0, decodeErr(lineNo, "load/store requires a name")
	}
	name := fields[1]
	if index, ok := cur.locals[name]; ok {
		return index, nil
	}
	if !allowNew {
		return 0, decodeErr(lineNo, fmt.Sprintf("unknown local '%s'", name))
	}
	index := cur.count
	cur.locals[name] = index
	cur.count++
	return index, nil
}

func resolveArgc(cur *pendingFunc, fields []string, lineNo int) (int, *wuuerr.Error) {
	if len(fields) >= 3 {
		explicit, err := strconv.Atoi(fields[2])
		if err != nil {
			return 0, decodeErr(lineNo, "invalid argc")
		}
		if cur.pending != 0 && cur.pending != explicit {
			return 0, decodeErr(lineNo, fmt.Sprintf("argc mismatch: %d pending args but call declares %d", cur.pending, explicit))
		}
		cur.pending = 0
		return explicit, nil
	}
	argc := cur.pending
	cur.pending = 0
	return argc, nil
}

func parseTarget(fields []string, lineNo int) (int, *wuuerr.Error) {
	if len(fields) < 2 {
		return 0, decodeErr(lineNo, "jump requires a target")
	}
	t, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, decodeErr(lineNo, "invalid jump target")
	}
	return t, nil
}

func decodeErr(lineNo int, message string) *wuuerr.Error {
	return wuuerr.New(wuuerr.KindDecode, fmt.Sprintf("line %d: %s", lineNo+1, message))
}

// splitLine splits on whitespace but keeps a trailing quoted string
// payload intact as the text after the keyword and name.
func splitLine(line string) []string {
	if strings.HasPrefix(line, "const_string") {
		return []string{"const_string", strings.TrimSpace(strings.TrimPrefix(line, "const_string"))}
	}
	return strings.Fields(line)
}
