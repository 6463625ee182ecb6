// Package format implements the pretty-printer the `fmt` CLI command
// and the stage-0/stage-1 fixed-point law (C9) both depend on, ported
// from the original implementation's Formatter.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wuu-lang/wuu/internal/ast"
)

type formatter struct {
	out    strings.Builder
	indent int
}

// Module renders a parsed module back to canonical source text.
func Module(module *ast.Module) string {
	f := &formatter{}
	for i, item := range module.Items {
		if i > 0 {
			f.out.WriteString("\n")
		}
		f.item(item)
	}
	return f.out.String()
}

func (f *formatter) writeLine(line string) {
	f.out.WriteString(strings.Repeat("    ", f.indent))
	f.out.WriteString(line)
	f.out.WriteString("\n")
}

func (f *formatter) item(item ast.Item) {
	switch it := item.(type) {
	case *ast.FnDecl:
		f.fnLike("fn", it.NameIdent, it.Params, it.ReturnType, it.Effects, it.Contracts, it.Body, false)
	case *ast.WorkflowDecl:
		f.workflow(it)
	}
}

func (f *formatter) fnLike(keyword, name string, params []ast.Param, ret *ast.TypeRef, effects *ast.EffectsDecl, contracts []ast.Contract, body *ast.Block, isWorkflow bool) {
	header := fmt.Sprintf("%s %s(%s)", keyword, name, formatParams(params))
	if ret != nil {
		header += " -> " + formatType(ret)
	}
	header += effectsAndContracts(effects, contracts)
	f.writeLine(header + " {")
	f.indent++
	f.block(body, isWorkflow)
	f.indent--
	f.writeLine("}")
}

func (f *formatter) workflow(w *ast.WorkflowDecl) {
	f.fnLike("workflow", w.NameIdent, w.Params, w.ReturnType, w.Effects, w.Contracts, w.Body, true)
}

// effectsAndContracts renders the effects declaration and contracts that
// sit between a signature and its body, each preceded by a space.
func effectsAndContracts(effects *ast.EffectsDecl, contracts []ast.Contract) string {
	var suffix string
	if effects != nil {
		suffix += " " + formatEffectsDecl(effects)
	}
	for _, c := range contracts {
		suffix += " " + formatContract(c)
	}
	return suffix
}

func formatParams(params []ast.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if p.Type != nil {
			parts[i] = p.Name + ": " + formatType(p.Type)
		} else {
			parts[i] = p.Name
		}
	}
	return strings.Join(parts, ", ")
}

func formatType(t *ast.TypeRef) string { return t.Path.String() }

func formatEffectsDecl(e *ast.EffectsDecl) string {
	if e.IsRequires {
		parts := make([]string, len(e.Pairs))
		for i, pair := range e.Pairs {
			parts[i] = pair[0] + ":" + pair[1]
		}
		return "requires { " + strings.Join(parts, ", ") + " }"
	}
	if len(e.Paths) == 0 {
		return "effects {}"
	}
	parts := make([]string, len(e.Paths))
	for i, p := range e.Paths {
		parts[i] = p.String()
	}
	return "effects { " + strings.Join(parts, ", ") + " }"
}

func formatContract(c ast.Contract) string {
	var prefix string
	switch c.Kind {
	case ast.Pre:
		prefix = "pre"
	case ast.Post:
		prefix = "post"
	case ast.Invariant:
		prefix = "invariant"
	}
	return prefix + ": " + formatExpr(c.Expr)
}

func (f *formatter) block(block *ast.Block, inWorkflow bool) {
	for _, stmt := range block.Stmts {
		f.stmt(stmt, inWorkflow)
	}
}

func (f *formatter) stmt(stmt ast.Stmt, inWorkflow bool) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		line := "let " + s.NameIdent
		if s.Type != nil {
			line += ": " + formatType(s.Type)
		}
		line += " = " + formatExpr(s.Expr) + ";"
		f.writeLine(line)

	case *ast.ReturnStmt:
		if s.Expr != nil {
			f.writeLine("return " + formatExpr(s.Expr) + ";")
		} else {
			f.writeLine("return;")
		}

	case *ast.ExprStmt:
		f.writeLine(formatExpr(s.Expr) + ";")

	case *ast.IfStmt:
		f.writeLine("if " + formatExpr(s.Cond) + " {")
		f.indent++
		f.block(s.Then, inWorkflow)
		f.indent--
		if s.Else != nil {
			f.writeLine("} else {")
			f.indent++
			f.block(s.Else, inWorkflow)
			f.indent--
		}
		f.writeLine("}")

	case *ast.LoopStmt:
		f.writeLine("loop {")
		f.indent++
		f.block(s.Body, inWorkflow)
		f.indent--
		f.writeLine("}")

	case *ast.StepStmt:
		f.writeLine("step " + formatStringLiteral(s.Label) + " {")
		f.indent++
		f.block(s.Body, inWorkflow)
		f.indent--
		f.writeLine("}")
	}
}

func formatExpr(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.IdentExpr:
		return e.NameIdent
	case *ast.StringExpr:
		return formatStringLiteral(e.Value)
	case *ast.PathExpr:
		return e.Segments.String()
	case *ast.IntExpr:
		return strconv.FormatInt(e.Value, 10)
	case *ast.BoolExpr:
		if e.Value {
			return "true"
		}
		return "false"
	case *ast.CallExpr:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = formatExpr(a)
		}
		return e.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
	default:
		return ""
	}
}

func formatStringLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
