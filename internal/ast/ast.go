// Package ast defines the node types the parser (C2) produces: items,
// statements, expressions, effects declarations, and contracts.
package ast

import "github.com/wuu-lang/wuu/internal/wuuerr"

// Path is a dotted sequence of identifiers, e.g. Net.Http.
type Path []string

// String renders a Path joined by '.'.
func (p Path) String() string {
	out := ""
	for i, seg := range p {
		if i > 0 {
			out += "."
		}
		out += seg
	}
	return out
}

// Module is the root node: an ordered sequence of top-level items.
type Module struct {
	Items []Item
}

// Item is a top-level declaration: Fn or Workflow.
type Item interface {
	itemNode()
	Name() string
}

// Param is a function/workflow parameter: a name with an optional type.
type Param struct {
	Name string
	Type *TypeRef
	Span wuuerr.Span
}

// TypeRef is a dotted-path type reference.
type TypeRef struct {
	Path Path
	Span wuuerr.Span
}

// ContractKind distinguishes pre/post/invariant contracts.
type ContractKind int

const (
	Pre ContractKind = iota
	Post
	Invariant
)

// Contract pairs a kind with a boolean expression.
type Contract struct {
	Kind ContractKind
	Expr Expr
	Span wuuerr.Span
}

// EffectsDecl is either an `effects { paths }` set or a `requires { a:b }`
// set of identifier pairs.
type EffectsDecl struct {
	IsRequires bool
	Paths      []Path          // populated when !IsRequires
	Pairs      [][2]string     // populated when IsRequires
	Span       wuuerr.Span
}

// FnDecl is a `fn` item.
type FnDecl struct {
	NameIdent  string
	Params     []Param
	ReturnType *TypeRef
	Effects    *EffectsDecl
	Contracts  []Contract
	Body       *Block
	Span       wuuerr.Span
}

func (*FnDecl) itemNode()       {}
func (f *FnDecl) Name() string  { return f.NameIdent }

// WorkflowDecl is a `workflow` item. Identical shape to FnDecl but its
// body may legally contain Step statements.
type WorkflowDecl struct {
	NameIdent  string
	Params     []Param
	ReturnType *TypeRef
	Effects    *EffectsDecl
	Contracts  []Contract
	Body       *Block
	Span       wuuerr.Span
}

func (*WorkflowDecl) itemNode()      {}
func (w *WorkflowDecl) Name() string { return w.NameIdent }

// Block is an ordered sequence of statements.
type Block struct {
	Stmts []Stmt
	Span  wuuerr.Span
}

// Stmt is one of Let, Return, If, Loop, Step, or a bare Expr statement.
type Stmt interface {
	stmtNode()
}

type LetStmt struct {
	NameIdent string
	Type      *TypeRef
	Expr      Expr
	Span      wuuerr.Span
}

type ReturnStmt struct {
	Expr Expr // nil when bare `return;`
	Span wuuerr.Span
}

type IfStmt struct {
	Cond      Expr
	Then      *Block
	Else      *Block // nil when no else branch
	Span      wuuerr.Span
}

type LoopStmt struct {
	Body *Block
	Span wuuerr.Span
}

type StepStmt struct {
	Label string // text between the quotes, backslash escapes kept as written
	Body  *Block
	Span  wuuerr.Span
}

type ExprStmt struct {
	Expr Expr
	Span wuuerr.Span
}

func (*LetStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode() {}
func (*IfStmt) stmtNode()     {}
func (*LoopStmt) stmtNode()   {}
func (*StepStmt) stmtNode()   {}
func (*ExprStmt) stmtNode()   {}

// Expr is one of Ident, String, Path, Call (and the literal extensions Int
// and Bool).
type Expr interface {
	exprNode()
	Span() wuuerr.Span
}

type IdentExpr struct {
	NameIdent string
	SpanVal   wuuerr.Span
}

type StringExpr struct {
	Value   string // outer quotes stripped, backslash escapes kept as written
	SpanVal wuuerr.Span
}

type PathExpr struct {
	Segments Path
	SpanVal  wuuerr.Span
}

type CallExpr struct {
	Callee  Path
	Args    []Expr
	SpanVal wuuerr.Span
}

type IntExpr struct {
	Value   int64
	SpanVal wuuerr.Span
}

type BoolExpr struct {
	Value   bool
	SpanVal wuuerr.Span
}

func (e *IdentExpr) exprNode()  {}
func (e *StringExpr) exprNode() {}
func (e *PathExpr) exprNode()   {}
func (e *CallExpr) exprNode()   {}
func (e *IntExpr) exprNode()    {}
func (e *BoolExpr) exprNode()   {}

func (e *IdentExpr) Span() wuuerr.Span  { return e.SpanVal }
func (e *StringExpr) Span() wuuerr.Span { return e.SpanVal }
func (e *PathExpr) Span() wuuerr.Span   { return e.SpanVal }
func (e *CallExpr) Span() wuuerr.Span   { return e.SpanVal }
func (e *IntExpr) Span() wuuerr.Span    { return e.SpanVal }
func (e *BoolExpr) Span() wuuerr.Span   { return e.SpanVal }
