// Package intrinsics is the closed family of `__`-prefixed host functions
// callable from Wuu source, shared verbatim by the tree interpreter (C5)
// and the bytecode VM (C7), per spec §4.11.
package intrinsics

import (
	"fmt"

	"github.com/wuu-lang/wuu/internal/envelope"
	"github.com/wuu-lang/wuu/internal/lexer"
	"github.com/wuu-lang/wuu/internal/types"
	"github.com/wuu-lang/wuu/internal/wuuerr"
)

// Fn is the shape of every intrinsic implementation: it receives
// already-evaluated arguments and returns a Value or a runtime error.
type Fn func(args []types.Value) (types.Value, *wuuerr.Error)

// Names is the complete, ordered list of intrinsic names, mirroring
// intrinsic_names() in the source this was distilled from. The inventory
// file internal/intrinsics/intrinsics.yaml must list exactly these names;
// a test asserts the two agree.
var Names = []string{
	"__str_eq",
	"__str_is_empty",
	"__str_concat",
	"__str_head",
	"__str_tail",
	"__str_starts_with",
	"__str_strip_prefix",
	"__str_take_whitespace",
	"__str_take_ident",
	"__str_take_number",
	"__str_take_string_literal",
	"__str_take_line_comment",
	"__str_take_block_comment",
	"__str_is_ident_start",
	"__str_is_digit",
	"__str_is_ascii",
	"__pair_left",
	"__pair_right",
	"__lex_tokens",
	"__lex_tokens_spanned",
	"__ast_escape",
	"__ast_unescape",
	"__ast_left",
	"__ast_right",
}

// Signatures returns the fixed (paramTypes, returnType) table the type
// checker seeds its signature map with.
func Signatures() map[string]types.Signature {
	str := types.String
	boolT := types.Bool
	return map[string]types.Signature{
		"__str_eq":                 {Params: []types.Type{str, str}, Return: boolT},
		"__str_is_empty":           {Params: []types.Type{str}, Return: boolT},
		"__str_concat":             {Params: []types.Type{str, str}, Return: str},
		"__str_head":               {Params: []types.Type{str}, Return: str},
		"__str_tail":               {Params: []types.Type{str}, Return: str},
		"__str_starts_with":        {Params: []types.Type{str, str}, Return: boolT},
		"__str_strip_prefix":       {Params: []types.Type{str, str}, Return: str},
		"__str_take_whitespace":    {Params: []types.Type{str}, Return: str},
		"__str_take_ident":         {Params: []types.Type{str}, Return: str},
		"__str_take_number":        {Params: []types.Type{str}, Return: str},
		"__str_take_string_literal": {Params: []types.Type{str}, Return: str},
		"__str_take_line_comment":  {Params: []types.Type{str}, Return: str},
		"__str_take_block_comment": {Params: []types.Type{str}, Return: str},
		"__str_is_ident_start":     {Params: []types.Type{str}, Return: boolT},
		"__str_is_digit":           {Params: []types.Type{str}, Return: boolT},
		"__str_is_ascii":           {Params: []types.Type{str}, Return: boolT},
		"__pair_left":              {Params: []types.Type{str}, Return: str},
		"__pair_right":             {Params: []types.Type{str}, Return: str},
		"__lex_tokens":             {Params: []types.Type{str}, Return: str},
		"__lex_tokens_spanned":     {Params: []types.Type{str}, Return: str},
		"__ast_escape":             {Params: []types.Type{str}, Return: str},
		"__ast_unescape":           {Params: []types.Type{str}, Return: str},
		"__ast_left":               {Params: []types.Type{str}, Return: str},
		"__ast_right":              {Params: []types.Type{str}, Return: str},
	}
}

// Table is the shared dispatch registry consumed by both internal/interp
// and internal/bytecode's CallBuiltin — there is exactly one
// implementation of each intrinsic in this module.
var Table = map[string]Fn{
	"__str_eq":                  strEq,
	"__str_is_empty":            strIsEmpty,
	"__str_concat":              strConcat,
	"__str_head":                strHead,
	"__str_tail":                strTail,
	"__str_starts_with":         strStartsWith,
	"__str_strip_prefix":        strStripPrefix,
	"__str_take_whitespace":     strTakeWhitespace,
	"__str_take_ident":          strTakeIdent,
	"__str_take_number":         strTakeNumber,
	"__str_take_string_literal": strTakeStringLiteral,
	"__str_take_line_comment":   strTakeLineComment,
	"__str_take_block_comment":  strTakeBlockComment,
	"__str_is_ident_start":      strIsIdentStart,
	"__str_is_digit":            strIsDigit,
	"__str_is_ascii":            strIsASCII,
	"__pair_left":               pairLeft,
	"__pair_right":              pairRight,
	"__lex_tokens":              lexTokens,
	"__lex_tokens_spanned":      lexTokensSpanned,
	"__ast_escape":              astEscape,
	"__ast_unescape":            astUnescape,
	"__ast_left":                astLeft,
	"__ast_right":               astRight,
}

// Call dispatches name with args through the shared table, or reports
// "unknown builtin" if name is not one of Names.
func Call(name string, args []types.Value) (types.Value, *wuuerr.Error) {
	fn, ok := Table[name]
	if !ok {
		return types.Value{}, wuuerr.New(wuuerr.KindRuntime, fmt.Sprintf("unknown builtin '%s'", name))
	}
	return fn(args)
}

func argErr(name string, want, got int) *wuuerr.Error {
	return wuuerr.New(wuuerr.KindRuntime, fmt.Sprintf("%s expects %d args but got %d", name, want, got))
}

func typeErr(name string) *wuuerr.Error {
	return wuuerr.New(wuuerr.KindRuntime, fmt.Sprintf("%s expects String args", name))
}

func str1(name string, args []types.Value) (string, *wuuerr.Error) {
	if len(args) != 1 {
		return "", argErr(name, 1, len(args))
	}
	s, ok := args[0].StringOrEmpty()
	if !ok {
		return "", typeErr(name)
	}
	return s, nil
}

func str2(name string, args []types.Value) (string, string, *wuuerr.Error) {
	if len(args) != 2 {
		return "", "", argErr(name, 2, len(args))
	}
	a, ok := args[0].StringOrEmpty()
	if !ok {
		return "", "", typeErr(name)
	}
	b, ok := args[1].StringOrEmpty()
	if !ok {
		return "", "", typeErr(name)
	}
	return a, b, nil
}

func strEq(args []types.Value) (types.Value, *wuuerr.Error) {
	a, b, err := str2("__str_eq", args)
	if err != nil {
		return types.Value{}, err
	}
	return types.BoolValue(a == b), nil
}

func strIsEmpty(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__str_is_empty", args)
	if err != nil {
		return types.Value{}, err
	}
	return types.BoolValue(len(a) == 0), nil
}

func strConcat(args []types.Value) (types.Value, *wuuerr.Error) {
	a, b, err := str2("__str_concat", args)
	if err != nil {
		return types.Value{}, err
	}
	return types.StringValue(a + b), nil
}

func strHead(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__str_head", args)
	if err != nil {
		return types.Value{}, err
	}
	if len(a) == 0 {
		return types.Value{}, wuuerr.New(wuuerr.KindRuntime, "__str_head called on empty string")
	}
	r := []rune(a)
	return types.StringValue(string(r[0])), nil
}

func strTail(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__str_tail", args)
	if err != nil {
		return types.Value{}, err
	}
	if len(a) == 0 {
		return types.Value{}, wuuerr.New(wuuerr.KindRuntime, "__str_tail called on empty string")
	}
	r := []rune(a)
	return types.StringValue(string(r[1:])), nil
}

func strStartsWith(args []types.Value) (types.Value, *wuuerr.Error) {
	a, b, err := str2("__str_starts_with", args)
	if err != nil {
		return types.Value{}, err
	}
	return types.BoolValue(len(a) >= len(b) && a[:len(b)] == b), nil
}

func strStripPrefix(args []types.Value) (types.Value, *wuuerr.Error) {
	a, b, err := str2("__str_strip_prefix", args)
	if err != nil {
		return types.Value{}, err
	}
	if len(a) < len(b) || a[:len(b)] != b {
		return types.Value{}, wuuerr.New(wuuerr.KindRuntime, "__str_strip_prefix: prefix mismatch")
	}
	return types.StringValue(a[len(b):]), nil
}

func strTakeWhitespace(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__str_take_whitespace", args)
	if err != nil {
		return types.Value{}, err
	}
	i := 0
	for i < len(a) && isWS(a[i]) {
		i++
	}
	return types.StringValue(a[:i]), nil
}

func strTakeIdent(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__str_take_ident", args)
	if err != nil {
		return types.Value{}, err
	}
	if len(a) == 0 || !isIdentStart(a[0]) {
		return types.StringValue(""), nil
	}
	i := 1
	for i < len(a) && isIdentCont(a[i]) {
		i++
	}
	return types.StringValue(a[:i]), nil
}

func strTakeNumber(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__str_take_number", args)
	if err != nil {
		return types.Value{}, err
	}
	i := 0
	for i < len(a) && isDigit(a[i]) {
		i++
	}
	return types.StringValue(a[:i]), nil
}

func strTakeStringLiteral(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__str_take_string_literal", args)
	if err != nil {
		return types.Value{}, err
	}
	if len(a) == 0 || a[0] != '"' {
		return types.StringValue(""), nil
	}
	i := 1
	for i < len(a) {
		if a[i] == '\\' && i+1 < len(a) {
			i += 2
			continue
		}
		if a[i] == '"' {
			i++
			return types.StringValue(a[:i]), nil
		}
		i++
	}
	return types.Value{}, wuuerr.New(wuuerr.KindRuntime, "unterminated string literal")
}

func strTakeLineComment(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__str_take_line_comment", args)
	if err != nil {
		return types.Value{}, err
	}
	if len(a) < 2 || a[0] != '/' || a[1] != '/' {
		return types.StringValue(""), nil
	}
	i := 2
	for i < len(a) && a[i] != '\n' {
		i++
	}
	return types.StringValue(a[:i]), nil
}

func strTakeBlockComment(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__str_take_block_comment", args)
	if err != nil {
		return types.Value{}, err
	}
	if len(a) < 2 || a[0] != '/' || a[1] != '*' {
		return types.StringValue(""), nil
	}
	i := 2
	for i+1 < len(a) {
		if a[i] == '*' && a[i+1] == '/' {
			return types.StringValue(a[:i+2]), nil
		}
		i++
	}
	return types.Value{}, wuuerr.New(wuuerr.KindRuntime, "unterminated block comment")
}

func strIsIdentStart(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__str_is_ident_start", args)
	if err != nil {
		return types.Value{}, err
	}
	r, err2 := singleRune("__str_is_ident_start", a)
	if err2 != nil {
		return types.Value{}, err2
	}
	return types.BoolValue(r < 0x80 && isIdentStart(byte(r))), nil
}

func strIsDigit(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__str_is_digit", args)
	if err != nil {
		return types.Value{}, err
	}
	r, err2 := singleRune("__str_is_digit", a)
	if err2 != nil {
		return types.Value{}, err2
	}
	return types.BoolValue(r < 0x80 && isDigit(byte(r))), nil
}

func strIsASCII(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__str_is_ascii", args)
	if err != nil {
		return types.Value{}, err
	}
	r, err2 := singleRune("__str_is_ascii", a)
	if err2 != nil {
		return types.Value{}, err2
	}
	return types.BoolValue(r < 0x80), nil
}

func singleRune(name, s string) (rune, *wuuerr.Error) {
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, wuuerr.New(wuuerr.KindRuntime, fmt.Sprintf("%s requires a single-code-point argument", name))
	}
	return runes[0], nil
}

const pairSep = "\n<SEP>\n"

func pairLeft(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__pair_left", args)
	if err != nil {
		return types.Value{}, err
	}
	idx := indexOf(a, pairSep)
	if idx < 0 {
		return types.StringValue(a), nil
	}
	return types.StringValue(a[:idx]), nil
}

func pairRight(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__pair_right", args)
	if err != nil {
		return types.Value{}, err
	}
	idx := indexOf(a, pairSep)
	if idx < 0 {
		return types.StringValue(""), nil
	}
	return types.StringValue(a[idx+len(pairSep):]), nil
}

func lexTokens(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__lex_tokens", args)
	if err != nil {
		return types.Value{}, err
	}
	tokens, lexErr := lexer.Lex(a)
	if lexErr != nil {
		return types.Value{}, lexErr
	}
	return types.StringValue(lexer.Dump(tokens)), nil
}

func lexTokensSpanned(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__lex_tokens_spanned", args)
	if err != nil {
		return types.Value{}, err
	}
	tokens, lexErr := lexer.Lex(a)
	if lexErr != nil {
		return types.Value{}, lexErr
	}
	return types.StringValue(lexer.DumpSpanned(tokens)), nil
}

func astEscape(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__ast_escape", args)
	if err != nil {
		return types.Value{}, err
	}
	return types.StringValue(envelope.Escape(a)), nil
}

func astUnescape(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__ast_unescape", args)
	if err != nil {
		return types.Value{}, err
	}
	out, uerr := envelope.Unescape(a)
	if uerr != nil {
		return types.Value{}, wuuerr.New(wuuerr.KindRuntime, uerr.Error())
	}
	return types.StringValue(out), nil
}

func astLeft(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__ast_left", args)
	if err != nil {
		return types.Value{}, err
	}
	left, _, ok := envelope.SplitShallow(a)
	if !ok {
		return types.StringValue(a), nil
	}
	return types.StringValue(left), nil
}

func astRight(args []types.Value) (types.Value, *wuuerr.Error) {
	a, err := str1("__ast_right", args)
	if err != nil {
		return types.Value{}, err
	}
	_, right, ok := envelope.SplitShallow(a)
	if !ok {
		return types.StringValue(""), nil
	}
	return types.StringValue(right), nil
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}

func isWS(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func isIdentCont(b byte) bool { return isIdentStart(b) || isDigit(b) }
