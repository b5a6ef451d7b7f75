package ast

import "github.com/mna/hpl/lang/token"

// ExprStmt wraps an expression evaluated for its side effect (a bare call,
// or a PostfixIncrement/IncrementStatement target).
type ExprStmt struct {
	Pos token.Position
	X   Expr
}

func (*ExprStmt) stmtNode()              {}
func (n *ExprStmt) Span() token.Position { return n.Pos }

// AssignStmt is `name = expr`. Op is always token.ASSIGN: the scanner has
// no compound-assignment (`+=` etc.) tokens.
type AssignStmt struct {
	Pos    token.Position
	Target string
	Op     token.Token
	Value  Expr
}

func (*AssignStmt) stmtNode()              {}
func (n *AssignStmt) Span() token.Position { return n.Pos }

// ArrayAssignStmt is `arr[index] = expr`.
type ArrayAssignStmt struct {
	Pos   token.Position
	Array Expr
	Index Expr
	Value Expr
}

func (*ArrayAssignStmt) stmtNode()              {}
func (n *ArrayAssignStmt) Span() token.Position { return n.Pos }

// AttrAssignStmt is `receiver.name = expr`.
type AttrAssignStmt struct {
	Pos      token.Position
	Receiver Expr
	Name     string
	Value    Expr
}

func (*AttrAssignStmt) stmtNode()              {}
func (n *AttrAssignStmt) Span() token.Position { return n.Pos }

// IncrementStatement is the standalone `x++;` statement form.
type IncrementStatement struct {
	Pos    token.Position
	Target string
}

func (*IncrementStatement) stmtNode()              {}
func (n *IncrementStatement) Span() token.Position { return n.Pos }

// ReturnStatement is `return expr` or a bare `return`.
type ReturnStatement struct {
	Pos   token.Position
	Value Expr // nil for a bare return
}

func (*ReturnStatement) stmtNode()              {}
func (n *ReturnStatement) Span() token.Position { return n.Pos }

// BreakStatement is `break`.
type BreakStatement struct {
	Pos token.Position
}

func (*BreakStatement) stmtNode()              {}
func (n *BreakStatement) Span() token.Position { return n.Pos }

// ContinueStatement is `continue`.
type ContinueStatement struct {
	Pos token.Position
}

func (*ContinueStatement) stmtNode()              {}
func (n *ContinueStatement) Span() token.Position { return n.Pos }

// EchoStatement is `echo expr` (or `echo(expr)`), the built-in output
// primitive (spec.md §4.4).
type EchoStatement struct {
	Pos   token.Position
	Value Expr
}

func (*EchoStatement) stmtNode()              {}
func (n *EchoStatement) Span() token.Position { return n.Pos }

// IfStatement is `if cond { then } else { alt }`; Else may be nil, and may
// itself hold a single *IfStatement wrapped in a Block for `else if`
// chains.
type IfStatement struct {
	Pos  token.Position
	Cond Expr
	Then *Block
	Else *Block
}

func (*IfStatement) stmtNode()              {}
func (n *IfStatement) Span() token.Position { return n.Pos }

// WhileStatement is `while cond { body }`.
type WhileStatement struct {
	Pos  token.Position
	Cond Expr
	Body *Block
}

func (*WhileStatement) stmtNode()              {}
func (n *WhileStatement) Span() token.Position { return n.Pos }

// ForStatement is the C-like three-clause `for (init; cond; post) { body }`.
// Any of Init, Cond, Post may be nil.
type ForStatement struct {
	Pos  token.Position
	Init Stmt
	Cond Expr
	Post Stmt
	Body *Block
}

func (*ForStatement) stmtNode()              {}
func (n *ForStatement) Span() token.Position { return n.Pos }

// CatchClause pairs an optional bound error-variable name with the handler
// body of a TryCatchStatement.
type CatchClause struct {
	Pos     token.Position
	ErrName string // empty if the catch does not bind the error
	Body    *Block
}

// TryCatchStatement is `try { body } catch (err) { handler }`.
type TryCatchStatement struct {
	Pos   token.Position
	Body  *Block
	Catch *CatchClause
}

func (*TryCatchStatement) stmtNode()              {}
func (n *TryCatchStatement) Span() token.Position { return n.Pos }

// ImportStatement is `import name` or `import name as alias` appearing
// inside a function body (spec.md §4.6 permits scoped imports in addition
// to the document-level `imports:` key).
type ImportStatement struct {
	Pos   token.Position
	Name  string
	Alias string // empty if no `as` clause
}

func (*ImportStatement) stmtNode()              {}
func (n *ImportStatement) Span() token.Position { return n.Pos }
