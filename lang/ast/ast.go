// Package ast defines the abstract syntax tree produced by lang/parser for
// a function body (spec.md §4.3), grounded on the node taxonomy of
// _examples/original_source/hpl_runtime/models.py and styled after the
// Node/Expr/Stmt interface split of github.com/mna/nenuphar/lang/ast, scaled
// down to the degree HPL's smaller grammar needs (no comment tracking, no
// Visitor/Formatter machinery — a plain Span() suffices for HPL's debug
// and error-reporting needs).
package ast

import "github.com/mna/hpl/lang/token"

// Node is any node of the AST: every node knows its own source span.
type Node interface {
	Span() token.Position
}

// Expr is an expression node: it produces a value when evaluated.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Block is an ordered sequence of statements, the body of a function, loop
// or branch.
type Block struct {
	Pos   token.Position
	Stmts []Stmt
}

func (b *Block) Span() token.Position { return b.Pos }

// Param is a single formal parameter of a function definition.
type Param struct {
	Name string
	Pos  token.Position
}

// FunctionBody is the parsed `(params) => { ... }` (or colon/bare form)
// inline function body attached to a class method or top-level function
// (spec.md §4.2, §4.3).
type FunctionBody struct {
	Pos    token.Position
	Params []Param
	Body   *Block
}

func (f *FunctionBody) Span() token.Position { return f.Pos }
