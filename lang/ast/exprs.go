package ast

import "github.com/mna/hpl/lang/token"

// IntLiteral is an integer literal, e.g. `42`.
type IntLiteral struct {
	Pos   token.Position
	Value int64
}

func (*IntLiteral) exprNode()              {}
func (n *IntLiteral) Span() token.Position { return n.Pos }

// FloatLiteral is a floating-point literal, e.g. `3.14`.
type FloatLiteral struct {
	Pos   token.Position
	Value float64
}

func (*FloatLiteral) exprNode()              {}
func (n *FloatLiteral) Span() token.Position { return n.Pos }

// StringLiteral is a double-quoted string literal, already unescaped.
type StringLiteral struct {
	Pos   token.Position
	Value string
}

func (*StringLiteral) exprNode()              {}
func (n *StringLiteral) Span() token.Position { return n.Pos }

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	Pos   token.Position
	Value bool
}

func (*BoolLiteral) exprNode()              {}
func (n *BoolLiteral) Span() token.Position { return n.Pos }

// NullLiteral is the `null` literal.
type NullLiteral struct {
	Pos token.Position
}

func (*NullLiteral) exprNode()              {}
func (n *NullLiteral) Span() token.Position { return n.Pos }

// ArrayLiteral is a bracketed list of element expressions, e.g. `[1, 2, 3]`.
type ArrayLiteral struct {
	Pos      token.Position
	Elements []Expr
}

func (*ArrayLiteral) exprNode()              {}
func (n *ArrayLiteral) Span() token.Position { return n.Pos }

// Variable is a bare identifier reference, resolved dynamically at
// evaluation time against the local frame then the global table (spec.md
// §4.4's two-level scoping).
type Variable struct {
	Pos  token.Position
	Name string
}

func (*Variable) exprNode()              {}
func (n *Variable) Span() token.Position { return n.Pos }

// BinaryOp is a binary operator expression, e.g. `a + b`.
type BinaryOp struct {
	Pos   token.Position
	Op    token.Token
	Left  Expr
	Right Expr
}

func (*BinaryOp) exprNode()              {}
func (n *BinaryOp) Span() token.Position { return n.Pos }

// UnaryOp is a unary prefix operator expression, e.g. `-a`, `!b`.
type UnaryOp struct {
	Pos     token.Position
	Op      token.Token
	Operand Expr
}

func (*UnaryOp) exprNode()              {}
func (n *UnaryOp) Span() token.Position { return n.Pos }

// PostfixIncrement is `x++` used inside an expression (e.g. `y = x++`): it
// stores x+1 and evaluates to the old value. A statement that is just
// `x++` is parsed as an IncrementStatement instead.
type PostfixIncrement struct {
	Pos    token.Position
	Target Expr
}

func (*PostfixIncrement) exprNode()              {}
func (n *PostfixIncrement) Span() token.Position { return n.Pos }

// FunctionCall is a call to a built-in or top-level function, e.g.
// `foo(1, 2)`. A module function call (`mod.fn(1)`) is a MethodCall.
type FunctionCall struct {
	Pos    token.Position
	Callee Expr
	Args   []Expr
}

func (*FunctionCall) exprNode()              {}
func (n *FunctionCall) Span() token.Position { return n.Pos }

// MethodCall is a call of the form `receiver.method(args)`.
type MethodCall struct {
	Pos      token.Position
	Receiver Expr
	Method   string
	Args     []Expr
}

func (*MethodCall) exprNode()              {}
func (n *MethodCall) Span() token.Position { return n.Pos }

// AttrAccess is a `receiver.name` member access (field read, not a call).
type AttrAccess struct {
	Pos      token.Position
	Receiver Expr
	Name     string
}

func (*AttrAccess) exprNode()              {}
func (n *AttrAccess) Span() token.Position { return n.Pos }

// ArrayAccess is an indexing expression, e.g. `arr[i]`.
type ArrayAccess struct {
	Pos   token.Position
	Array Expr
	Index Expr
}

func (*ArrayAccess) exprNode()              {}
func (n *ArrayAccess) Span() token.Position { return n.Pos }

// NewObject is an object-construction expression, e.g. `new Foo(1, 2)`.
type NewObject struct {
	Pos       token.Position
	ClassName string
	Args      []Expr
}

func (*NewObject) exprNode()              {}
func (n *NewObject) Span() token.Position { return n.Pos }
