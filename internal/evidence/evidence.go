// Package evidence implements C12: a literate-doc runner for `example:`,
// `property:`, and `bench:` blocks embedded in Markdown fixtures.
package evidence

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wuu-lang/wuu/internal/ast"
	"github.com/wuu-lang/wuu/internal/checker"
	"github.com/wuu-lang/wuu/internal/interp"
	"github.com/wuu-lang/wuu/internal/parser"
	"github.com/wuu-lang/wuu/internal/types"
)

// BenchBackend selects the execution backend a bench block runs under.
type BenchBackend int

const (
	BackendInterpreter BenchBackend = iota
	BackendWasm                     // acknowledged per SPEC_FULL.md D.3; not implemented.
)

type origin struct {
	path string
	line int
}

func (o origin) prefix() string { return fmt.Sprintf("%s:%d: ", o.path, o.line) }

// Example is one `example:` block.
type Example struct {
	Name   string
	Source string
	Expect types.Value
	origin origin
}

// PropertyCase is one `case:` line under a `property:` block.
type PropertyCase struct {
	Args   []types.Value
	Expect types.Value
}

// Property is one `property:` block.
type Property struct {
	Name   string
	Source string
	Cases  []PropertyCase
	origin origin
}

// Bench is one `bench:` block.
type Bench struct {
	Name       string
	Source     string
	Iterations int
	MaxMs      uint64
	Backend    BenchBackend
	origin     origin
}

// Collection is everything parsed out of a directory of evidence docs.
type Collection struct {
	Examples   []Example
	Properties []Property
	Benches    []Bench
}

// Error is an evidence-block parse or run failure, always prefixed with
// "path:line: " when an origin is known.
type Error struct{ message string }

func (e *Error) Error() string { return e.message }

func newErr(format string, args ...any) *Error { return &Error{message: fmt.Sprintf(format, args...)} }

func withOrigin(o origin, format string, args ...any) *Error {
	return &Error{message: o.prefix() + fmt.Sprintf(format, args...)}
}

// Collect walks dir for *.md files and parses every evidence block they contain.
func Collect(dir string) (*Collection, error) {
	col := &Collection{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if err := parseFile(path, string(content), col); err != nil {
			return nil, err
		}
	}
	return col, nil
}

func parseFile(path, text string, col *Collection) *Error {
	lines := strings.Split(text, "\n")
	index := 0

	for index < len(lines) {
		line := strings.TrimSpace(lines[index])

		if name, ok := strings.CutPrefix(line, "example:"); ok {
			name = strings.TrimSpace(name)
			if name == "" {
				return newErr("%s:%d: example name is required", path, index+1)
			}
			org := origin{path: path, line: index + 1}
			source, next, err := parseCodeBlock(path, lines, index+1)
			if err != nil {
				return err
			}
			expect, next2, err := parseExpectLine(path, lines, next)
			if err != nil {
				return err
			}
			col.Examples = append(col.Examples, Example{Name: name, Source: source, Expect: expect, origin: org})
			index = next2
			continue
		}

		if name, ok := strings.CutPrefix(line, "property:"); ok {
			name = strings.TrimSpace(name)
			if name == "" {
				return newErr("%s:%d: property name is required", path, index+1)
			}
			org := origin{path: path, line: index + 1}
			source, next, err := parseCodeBlock(path, lines, index+1)
			if err != nil {
				return err
			}
			cases, next2, err := parsePropertyCases(path, lines, next)
			if err != nil {
				return err
			}
			col.Properties = append(col.Properties, Property{Name: name, Source: source, Cases: cases, origin: org})
			index = next2
			continue
		}

		if name, ok := strings.CutPrefix(line, "bench:"); ok {
			name = strings.TrimSpace(name)
			if name == "" {
				return newErr("%s:%d: bench name is required", path, index+1)
			}
			org := origin{path: path, line: index + 1}
			source, next, err := parseCodeBlock(path, lines, index+1)
			if err != nil {
				return err
			}
			iterations, maxMs, backend, next2, err := parseBenchConfig(path, lines, next)
			if err != nil {
				return err
			}
			col.Benches = append(col.Benches, Bench{
				Name: name, Source: source, Iterations: iterations, MaxMs: maxMs, Backend: backend, origin: org,
			})
			index = next2
			continue
		}

		index++
	}
	return nil
}

func nextNonEmpty(lines []string, index int) (int, string, bool) {
	for index < len(lines) {
		if strings.TrimSpace(lines[index]) != "" {
			return index, lines[index], true
		}
		index++
	}
	return 0, "", false
}

func parseCodeBlock(path string, lines []string, index int) (string, int, *Error) {
	start, fence, ok := nextNonEmpty(lines, index)
	if !ok {
		return "", 0, newErr("%s:%d: expected code block", path, index+1)
	}
	fenceTrim := strings.TrimSpace(fence)
	if !strings.HasPrefix(fenceTrim, "```") {
		return "", 0, newErr("%s:%d: expected code fence", path, start+1)
	}
	lang := strings.TrimSpace(strings.TrimPrefix(fenceTrim, "```"))
	if lang != "wuu" {
		return "", 0, newErr("%s:%d: expected ```wuu code fence", path, start+1)
	}

	end := start + 1
	for end < len(lines) && strings.TrimSpace(lines[end]) != "```" {
		end++
	}
	if end >= len(lines) {
		return "", 0, newErr("%s:%d: unterminated code fence", path, start+1)
	}

	var source string
	if end > start+1 {
		source = strings.Join(lines[start+1:end], "\n") + "\n"
	}
	return source, end + 1, nil
}

func parseExpectLine(path string, lines []string, index int) (types.Value, int, *Error) {
	lineIndex, line, ok := nextNonEmpty(lines, index)
	if !ok {
		return types.Value{}, 0, newErr("%s:%d: expected expect line", path, index+1)
	}
	trimmed := strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(trimmed, "expect:")
	if !ok {
		return types.Value{}, 0, newErr("%s:%d: expected expect line", path, lineIndex+1)
	}
	value, err := parseValue(path, lineIndex+1, strings.TrimSpace(rest))
	if err != nil {
		return types.Value{}, 0, err
	}
	return value, lineIndex + 1, nil
}

func parsePropertyCases(path string, lines []string, index int) ([]PropertyCase, int, *Error) {
	var cases []PropertyCase

	for {
		lineIndex, line, ok := nextNonEmpty(lines, index)
		if !ok {
			break
		}
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "case:") {
			if len(cases) == 0 {
				return nil, 0, newErr("%s:%d: expected at least one case line", path, lineIndex+1)
			}
			index = lineIndex
			break
		}

		rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "case:"))
		argsText, expectText, ok := strings.Cut(rest, "=>")
		if !ok {
			return nil, 0, newErr("%s:%d: case line must include '=>'", path, lineIndex+1)
		}
		args, err := parseArgs(path, lineIndex+1, strings.TrimSpace(argsText))
		if err != nil {
			return nil, 0, err
		}
		expect, err := parseValue(path, lineIndex+1, strings.TrimSpace(expectText))
		if err != nil {
			return nil, 0, err
		}
		cases = append(cases, PropertyCase{Args: args, Expect: expect})
		index = lineIndex + 1
	}

	if len(cases) == 0 {
		return nil, 0, newErr("%s:%d: expected at least one case line", path, index+1)
	}
	return cases, index, nil
}

func parseBenchConfig(path string, lines []string, index int) (int, uint64, BenchBackend, int, *Error) {
	iterIndex, iterLine, ok := nextNonEmpty(lines, index)
	if !ok {
		return 0, 0, 0, 0, newErr("%s:%d: expected iterations line", path, index+1)
	}
	iterText, ok := strings.CutPrefix(strings.TrimSpace(iterLine), "iterations:")
	if !ok {
		return 0, 0, 0, 0, newErr("%s:%d: expected iterations line", path, iterIndex+1)
	}
	iterations, convErr := strconv.Atoi(strings.TrimSpace(iterText))
	if convErr != nil {
		return 0, 0, 0, 0, newErr("%s:%d: invalid iterations value", path, iterIndex+1)
	}
	if iterations < 1 {
		return 0, 0, 0, 0, newErr("%s:%d: iterations must be >= 1", path, iterIndex+1)
	}

	maxIndex, maxLine, ok := nextNonEmpty(lines, iterIndex+1)
	if !ok {
		return 0, 0, 0, 0, newErr("%s:%d: expected max_ms line", path, iterIndex+2)
	}
	maxText, ok := strings.CutPrefix(strings.TrimSpace(maxLine), "max_ms:")
	if !ok {
		return 0, 0, 0, 0, newErr("%s:%d: expected max_ms line", path, maxIndex+1)
	}
	maxMs, convErr := strconv.ParseUint(strings.TrimSpace(maxText), 10, 64)
	if convErr != nil {
		return 0, 0, 0, 0, newErr("%s:%d: invalid max_ms value", path, maxIndex+1)
	}

	backend := BackendInterpreter
	backendIndex, backendLine, ok := nextNonEmpty(lines, maxIndex+1)
	if !ok {
		return iterations, maxMs, backend, maxIndex + 1, nil
	}
	trimmed := strings.TrimSpace(backendLine)
	rest, ok := strings.CutPrefix(trimmed, "backend:")
	if !ok {
		return iterations, maxMs, backend, maxIndex + 1, nil
	}
	value := strings.TrimSpace(rest)
	switch value {
	case "interpreter":
		backend = BackendInterpreter
	case "wasm":
		backend = BackendWasm
	default:
		return 0, 0, 0, 0, newErr("%s:%d: unknown bench backend '%s'", path, backendIndex+1, value)
	}
	return iterations, maxMs, backend, backendIndex + 1, nil
}

func parseArgs(path string, line int, text string) ([]types.Value, *Error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil, newErr("%s:%d: case args must be in [..]", path, line)
	}
	inner := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	if inner == "" {
		return nil, nil
	}
	parts := strings.Split(inner, ",")
	args := make([]types.Value, len(parts))
	for i, part := range parts {
		v, err := parseValue(path, line, strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func parseValue(path string, line int, text string) (types.Value, *Error) {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "" || trimmed == "unit":
		return types.UnitValue(), nil
	case trimmed == "true":
		return types.BoolValue(true), nil
	case trimmed == "false":
		return types.BoolValue(false), nil
	}
	if strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`) && len(trimmed) >= 2 {
		return types.StringValue(trimmed[1 : len(trimmed)-1]), nil
	}
	if v, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return types.IntValue(v), nil
	}
	return types.Value{}, newErr("%s:%d: unsupported literal '%s'", path, line, trimmed)
}

// RunExamples checks every example's entry evaluates to its declared
// expectation.
func RunExamples(col *Collection) *Error {
	for _, ex := range col.Examples {
		module, value, err := evalEntry(ex.Source, "main", nil)
		if err != nil {
			return withOrigin(ex.origin, "%s", err.Error())
		}
		_ = module
		if !value.Equal(ex.Expect) {
			return withOrigin(ex.origin, "example '%s' expected %s but got %s", ex.Name, formatValue(ex.Expect), formatValue(value))
		}
	}
	return nil
}

// RunProperties checks every property's cases all hold.
func RunProperties(col *Collection) *Error {
	for _, prop := range col.Properties {
		module, params, err := moduleAndParams(prop.Source, "main", prop.origin)
		if err != nil {
			return err
		}
		for _, c := range prop.Cases {
			if derr := ensureArgTypes(prop.origin, params, c.Args); derr != nil {
				return derr
			}
			value, rerr := interp.RunEntryWithArgs(module, "main", c.Args)
			if rerr != nil {
				return withOrigin(prop.origin, "%s", rerr.Error())
			}
			if !value.Equal(c.Expect) {
				return withOrigin(prop.origin, "property '%s' expected %s but got %s", prop.Name, formatValue(c.Expect), formatValue(value))
			}
		}
	}
	return nil
}

// BenchResult is the timing outcome of one Bench run.
type BenchResult struct {
	Name       string
	Iterations int
	ElapsedMs  uint64
	MaxMs      uint64
}

// RunBenches runs every bench's iterations and checks the elapsed time
// against its declared budget. elapsedFn lets callers supply a clock
// (wall time in production, a fixed stub in tests) since this package
// otherwise has no time dependency.
func RunBenches(col *Collection, elapsedFn func(run func() *Error) (uint64, *Error)) ([]BenchResult, *Error) {
	var results []BenchResult
	for _, b := range col.Benches {
		module, params, err := moduleAndParams(b.Source, "main", b.origin)
		if err != nil {
			return nil, err
		}
		if len(params) != 0 {
			return nil, withOrigin(b.origin, "bench main must have zero params")
		}
		if b.Backend == BackendWasm {
			return nil, withOrigin(b.origin, "wasm bench backend is not implemented")
		}

		elapsed, rerr := elapsedFn(func() *Error {
			for i := 0; i < b.Iterations; i++ {
				if _, err := interp.RunEntry(module, "main"); err != nil {
					return withOrigin(b.origin, "%s", err.Error())
				}
			}
			return nil
		})
		if rerr != nil {
			return nil, rerr
		}
		if elapsed > b.MaxMs {
			return nil, withOrigin(b.origin, "bench '%s' exceeded %dms (took %dms)", b.Name, b.MaxMs, elapsed)
		}
		results = append(results, BenchResult{Name: b.Name, Iterations: b.Iterations, ElapsedMs: elapsed, MaxMs: b.MaxMs})
	}
	return results, nil
}

func evalEntry(source, entry string, args []types.Value) (*ast.Module, types.Value, *Error) {
	module, params, err := moduleAndParams(source, entry, origin{})
	if err != nil {
		return nil, types.Value{}, err
	}
	_ = params
	value, rerr := interp.RunEntryWithArgs(module, entry, args)
	if rerr != nil {
		return nil, types.Value{}, newErr("%s", rerr.Error())
	}
	return module, value, nil
}

func moduleAndParams(source, entry string, org origin) (*ast.Module, []ast.Param, *Error) {
	module, perr := parser.ParseModule(source)
	if perr != nil {
		return nil, nil, withOrigin(org, "%s", perr.Error())
	}
	if terr := checker.CheckTypes(module); terr != nil {
		return nil, nil, withOrigin(org, "%s", terr.Error())
	}
	if eerr := checker.CheckEffects(module); eerr != nil {
		return nil, nil, withOrigin(org, "%s", eerr.Error())
	}
	for _, item := range module.Items {
		if fn, ok := item.(*ast.FnDecl); ok && fn.NameIdent == entry {
			return module, fn.Params, nil
		}
	}
	return module, nil, nil
}

func ensureArgTypes(org origin, params []ast.Param, args []types.Value) *Error {
	if len(params) != len(args) {
		return withOrigin(org, "property args length %d does not match params %d", len(args), len(params))
	}
	for i, p := range params {
		if p.Type == nil {
			continue
		}
		if !valueMatchesType(args[i], p.Type) {
			return withOrigin(org, "property arg '%s' expects %s but got %s", p.Name, typeRefName(p.Type), valueTypeName(args[i]))
		}
	}
	return nil
}

func valueMatchesType(v types.Value, ty *ast.TypeRef) bool {
	if len(ty.Path) != 1 {
		return false
	}
	switch ty.Path[0] {
	case "Int":
		_, ok := v.Int()
		return ok
	case "Bool":
		_, ok := v.Bool()
		return ok
	case "String":
		_, ok := v.StringOrEmpty()
		return ok
	case "Unit":
		return v.IsUnit()
	default:
		return false
	}
}

func typeRefName(ty *ast.TypeRef) string { return ty.Path.String() }

func valueTypeName(v types.Value) string {
	switch v.Kind() {
	case types.VInt:
		return "Int"
	case types.VBool:
		return "Bool"
	case types.VString:
		return "String"
	default:
		return "Unit"
	}
}

func formatValue(v types.Value) string {
	if v.Kind() == types.VString {
		s, _ := v.StringOrEmpty()
		return `"` + s + `"`
	}
	if v.IsUnit() {
		return "unit"
	}
	return v.String()
}
