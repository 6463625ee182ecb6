// Package parser implements C2: a hand-written recursive-descent parser
// over the non-trivia token subsequence, with a single forward cursor plus
// one token of lookahead (needed only to recognize "->").
package parser

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/wuu-lang/wuu/internal/ast"
	"github.com/wuu-lang/wuu/internal/lexer"
	"github.com/wuu-lang/wuu/internal/token"
	"github.com/wuu-lang/wuu/internal/wuuerr"
)

// ParseModule lexes and parses a full source string into a Module.
func ParseModule(src string) (*ast.Module, *wuuerr.Error) {
	tokens, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: lexer.NonTrivia(tokens), src: src}
	return p.parseModule()
}

// ParseModuleBytes decodes input as UTF-8 and parses it.
func ParseModuleBytes(input []byte) (*ast.Module, *wuuerr.Error) {
	if !utf8.Valid(input) {
		return nil, wuuerr.New(wuuerr.KindParse, "invalid utf-8")
	}
	return ParseModule(string(input))
}

// Parser walks a pre-filtered token list with a single cursor.
type Parser struct {
	tokens []token.Token
	pos    int
	src    string
}

func (p *Parser) parseModule() (*ast.Module, *wuuerr.Error) {
	mod := &ast.Module{}
	for !p.atEOF() {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		mod.Items = append(mod.Items, item)
	}
	return mod, nil
}

func (p *Parser) parseItem() (ast.Item, *wuuerr.Error) {
	if p.peekIsKeyword(token.KwFn) {
		return p.parseFnLike(false)
	}
	if p.peekIsKeyword(token.KwWorkflow) {
		return p.parseFnLike(true)
	}
	return nil, p.errHere("expected 'fn' or 'workflow'")
}

func (p *Parser) parseFnLike(isWorkflow bool) (ast.Item, *wuuerr.Error) {
	start := p.peek().Span.Start
	if isWorkflow {
		if err := p.expectKeyword(token.KwWorkflow); err != nil {
			return nil, err
		}
	} else {
		if err := p.expectKeyword(token.KwFn); err != nil {
			return nil, err
		}
	}

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	var retType *ast.TypeRef
	if p.consumeArrow() {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		retType = t
	}

	var effects *ast.EffectsDecl
	if p.peekIsEffectsDecl() {
		e, err := p.parseEffectsDecl()
		if err != nil {
			return nil, err
		}
		effects = e
	}

	contracts, err := p.parseContracts()
	if err != nil {
		return nil, err
	}

	body, err := p.parseBlock(isWorkflow)
	if err != nil {
		return nil, err
	}

	span := wuuerr.Span{Start: start, End: body.Span.End}
	if isWorkflow {
		return &ast.WorkflowDecl{NameIdent: name, Params: params, ReturnType: retType, Effects: effects, Contracts: contracts, Body: body, Span: span}, nil
	}
	return &ast.FnDecl{NameIdent: name, Params: params, ReturnType: retType, Effects: effects, Contracts: contracts, Body: body, Span: span}, nil
}

func (p *Parser) parseParams() ([]ast.Param, *wuuerr.Error) {
	if err := p.expectPunct('('); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.peekIsPunct(')') {
		start := p.peek().Span.Start
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		var typ *ast.TypeRef
		if p.consumePunct(':') {
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			typ = t
		}
		params = append(params, ast.Param{Name: name, Type: typ, Span: wuuerr.Span{Start: start, End: p.prevEnd()}})
		if p.consumePunct(',') {
			continue
		}
		break
	}
	if err := p.expectPunct(')'); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseType() (*ast.TypeRef, *wuuerr.Error) {
	start := p.peek().Span.Start
	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	return &ast.TypeRef{Path: path, Span: wuuerr.Span{Start: start, End: p.prevEnd()}}, nil
}

func (p *Parser) parsePath() (ast.Path, *wuuerr.Error) {
	first, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	path := ast.Path{first}
	for p.peekIsPunct('.') {
		p.advance()
		seg, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		path = append(path, seg)
	}
	return path, nil
}

func (p *Parser) parseEffectsDecl() (*ast.EffectsDecl, *wuuerr.Error) {
	start := p.peek().Span.Start
	isRequires := p.peekIsKeyword(token.KwRequires)
	if isRequires {
		p.advance()
	} else {
		if err := p.expectKeyword(token.KwEffects); err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct('{'); err != nil {
		return nil, err
	}

	decl := &ast.EffectsDecl{IsRequires: isRequires}
	for !p.peekIsPunct('}') {
		if isRequires {
			left, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(':'); err != nil {
				return nil, err
			}
			right, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			decl.Pairs = append(decl.Pairs, [2]string{left, right})
		} else {
			path, err := p.parsePath()
			if err != nil {
				return nil, err
			}
			decl.Paths = append(decl.Paths, path)
		}
		if p.consumePunct(',') {
			continue
		}
		break
	}
	if err := p.expectPunct('}'); err != nil {
		return nil, err
	}
	decl.Span = wuuerr.Span{Start: start, End: p.prevEnd()}
	return decl, nil
}

func (p *Parser) parseContracts() ([]ast.Contract, *wuuerr.Error) {
	var contracts []ast.Contract
	for {
		var kind ast.ContractKind
		switch {
		case p.peekIsKeyword(token.KwPre):
			kind = ast.Pre
		case p.peekIsKeyword(token.KwPost):
			kind = ast.Post
		case p.peekIsKeyword(token.KwInvariant):
			kind = ast.Invariant
		default:
			return contracts, nil
		}
		start := p.peek().Span.Start
		p.advance()
		if err := p.expectPunct(':'); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, ast.Contract{Kind: kind, Expr: expr, Span: wuuerr.Span{Start: start, End: p.prevEnd()}})
	}
}

func (p *Parser) parseBlock(inWorkflow bool) (*ast.Block, *wuuerr.Error) {
	start := p.peek().Span.Start
	if err := p.expectPunct('{'); err != nil {
		return nil, err
	}
	block := &ast.Block{}
	for !p.peekIsPunct('}') {
		stmt, err := p.parseStmt(inWorkflow)
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if err := p.expectPunct('}'); err != nil {
		return nil, err
	}
	block.Span = wuuerr.Span{Start: start, End: p.prevEnd()}
	return block, nil
}

func (p *Parser) parseStmt(inWorkflow bool) (ast.Stmt, *wuuerr.Error) {
	start := p.peek().Span.Start

	switch {
	case p.peekIsKeyword(token.KwLet):
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		var typ *ast.TypeRef
		if p.consumePunct(':') {
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			typ = t
		}
		if err := p.expectPunct('='); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(';'); err != nil {
			return nil, err
		}
		return &ast.LetStmt{NameIdent: name, Type: typ, Expr: expr, Span: wuuerr.Span{Start: start, End: p.prevEnd()}}, nil

	case p.peekIsKeyword(token.KwReturn):
		p.advance()
		var expr ast.Expr
		if !p.peekIsPunct(';') {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			expr = e
		}
		if err := p.expectPunct(';'); err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Expr: expr, Span: wuuerr.Span{Start: start, End: p.prevEnd()}}, nil

	case p.peekIsKeyword(token.KwIf):
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		then, err := p.parseBlock(inWorkflow)
		if err != nil {
			return nil, err
		}
		var elseBlock *ast.Block
		if p.peekIsKeyword(token.KwElse) {
			p.advance()
			b, err := p.parseBlock(inWorkflow)
			if err != nil {
				return nil, err
			}
			elseBlock = b
		}
		return &ast.IfStmt{Cond: cond, Then: then, Else: elseBlock, Span: wuuerr.Span{Start: start, End: p.prevEnd()}}, nil

	case p.peekIsKeyword(token.KwLoop):
		p.advance()
		body, err := p.parseBlock(inWorkflow)
		if err != nil {
			return nil, err
		}
		return &ast.LoopStmt{Body: body, Span: wuuerr.Span{Start: start, End: p.prevEnd()}}, nil

	case p.peekIsKeyword(token.KwStep):
		if !inWorkflow {
			return nil, p.errHere("'step' is only allowed inside a workflow body")
		}
		p.advance()
		label, err := p.expectStringLiteral()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock(inWorkflow)
		if err != nil {
			return nil, err
		}
		return &ast.StepStmt{Label: unquote(label), Body: body, Span: wuuerr.Span{Start: start, End: p.prevEnd()}}, nil

	default:
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(';'); err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Expr: expr, Span: wuuerr.Span{Start: start, End: p.prevEnd()}}, nil
	}
}

func (p *Parser) parseExpr() (ast.Expr, *wuuerr.Error) {
	start := p.peek().Span.Start

	if p.peekIsKind(token.StringLiteral) {
		text := p.peek().Text
		p.advance()
		return &ast.StringExpr{Value: unquote(text), SpanVal: wuuerr.Span{Start: start, End: p.prevEnd()}}, nil
	}

	if p.peekIsKind(token.Number) {
		text := p.peek().Text
		p.advance()
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, p.errHere(fmt.Sprintf("invalid integer literal '%s'", text))
		}
		return &ast.IntExpr{Value: v, SpanVal: wuuerr.Span{Start: start, End: p.prevEnd()}}, nil
	}

	if p.peekIsKeyword(token.KwTrue) {
		p.advance()
		return &ast.BoolExpr{Value: true, SpanVal: wuuerr.Span{Start: start, End: p.prevEnd()}}, nil
	}

	if p.peekIsKeyword(token.KwFalse) {
		p.advance()
		return &ast.BoolExpr{Value: false, SpanVal: wuuerr.Span{Start: start, End: p.prevEnd()}}, nil
	}

	if p.peekIsKind(token.Ident) {
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		if p.peekIsPunct('(') {
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			return &ast.CallExpr{Callee: path, Args: args, SpanVal: wuuerr.Span{Start: start, End: p.prevEnd()}}, nil
		}
		if len(path) == 1 {
			return &ast.IdentExpr{NameIdent: path[0], SpanVal: wuuerr.Span{Start: start, End: p.prevEnd()}}, nil
		}
		return &ast.PathExpr{Segments: path, SpanVal: wuuerr.Span{Start: start, End: p.prevEnd()}}, nil
	}

	return nil, p.errHere("expected an expression")
}

func (p *Parser) parseCallArgs() ([]ast.Expr, *wuuerr.Error) {
	if err := p.expectPunct('('); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.peekIsPunct(')') {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.consumePunct(',') {
			continue
		}
		break
	}
	if err := p.expectPunct(')'); err != nil {
		return nil, err
	}
	return args, nil
}

// unquote strips only the two outer quote bytes; it does not process
// backslash escapes, matching the original parser's unquote.
func unquote(text string) string {
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		return text[1 : len(text)-1]
	}
	return text
}

// --- token-matching helpers ---

func (p *Parser) atEOF() bool { return p.pos >= len(p.tokens) }

func (p *Parser) peek() token.Token {
	if p.atEOF() {
		end := 0
		if len(p.tokens) > 0 {
			end = p.tokens[len(p.tokens)-1].Span.End
		}
		return token.Token{Kind: token.EOF, Span: wuuerr.Span{Start: end, End: end}}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		end := 0
		if len(p.tokens) > 0 {
			end = p.tokens[len(p.tokens)-1].Span.End
		}
		return token.Token{Kind: token.EOF, Span: wuuerr.Span{Start: end, End: end}}
	}
	return p.tokens[idx]
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if !p.atEOF() {
		p.pos++
	}
	return t
}

func (p *Parser) prevEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.tokens[p.pos-1].Span.End
}

func (p *Parser) peekIsKeyword(kw token.Keyword) bool {
	t := p.peek()
	return t.Kind == token.KeywordTok && t.Keyword == kw
}

func (p *Parser) peekIsKind(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) peekIsPunct(ch byte) bool {
	t := p.peek()
	return t.Kind == token.PunctTok && len(t.Text) == 1 && t.Text[0] == ch
}

func (p *Parser) peekIsEffectsDecl() bool {
	return p.peekIsKeyword(token.KwEffects) || p.peekIsKeyword(token.KwRequires)
}

func (p *Parser) consumePunct(ch byte) bool {
	if p.peekIsPunct(ch) {
		p.advance()
		return true
	}
	return false
}

// consumeArrow recognizes the two-token sequence '-' '>' as "->", the one
// place this parser needs a second token of lookahead.
func (p *Parser) consumeArrow() bool {
	t := p.peek()
	if t.Kind != token.PunctTok || t.Text != "-" {
		return false
	}
	next := p.peekAt(1)
	if next.Kind != token.PunctTok || next.Text != ">" {
		return false
	}
	p.advance()
	p.advance()
	return true
}

func (p *Parser) expectPunct(ch byte) *wuuerr.Error {
	if !p.consumePunct(ch) {
		return p.errHere("expected '" + string(ch) + "'")
	}
	return nil
}

func (p *Parser) expectKeyword(kw token.Keyword) *wuuerr.Error {
	if !p.peekIsKeyword(kw) {
		return p.errHere("expected '" + kw.String() + "'")
	}
	p.advance()
	return nil
}

func (p *Parser) expectIdent() (string, *wuuerr.Error) {
	t := p.peek()
	if t.Kind != token.Ident {
		return "", p.errHere("expected an identifier")
	}
	p.advance()
	return t.Text, nil
}

func (p *Parser) expectStringLiteral() (string, *wuuerr.Error) {
	t := p.peek()
	if t.Kind != token.StringLiteral {
		return "", p.errHere("expected a string literal")
	}
	p.advance()
	return t.Text, nil
}

func (p *Parser) errHere(message string) *wuuerr.Error {
	t := p.peek()
	return wuuerr.WithSpan(wuuerr.KindParse, message, t.Span, p.src)
}
