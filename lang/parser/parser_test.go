package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/hpl/lang/ast"
	"github.com/mna/hpl/lang/parser"
	"github.com/mna/hpl/lang/token"
)

func parseBlockOK(t *testing.T, src string) *ast.Block {
	t.Helper()
	b, err := parser.ParseBlock("test.hpl", []byte(src))
	require.NoError(t, err)
	return b
}

func TestParseAssignmentAndReturn(t *testing.T) {
	b := parseBlockOK(t, "x = 1 + 2\nreturn x")
	require.Len(t, b.Stmts, 2)

	assign, ok := b.Stmts[0].(*ast.AssignStmt)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Target)
	bin, ok := assign.Value.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, token.PLUS, bin.Op)

	ret, ok := b.Stmts[1].(*ast.ReturnStatement)
	require.True(t, ok)
	v, ok := ret.Value.(*ast.Variable)
	require.True(t, ok)
	assert.Equal(t, "x", v.Name)
}

func TestParseOperatorPrecedence(t *testing.T) {
	b := parseBlockOK(t, "x = 1 + 2 * 3")
	assign := b.Stmts[0].(*ast.AssignStmt)
	top, ok := assign.Value.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, token.PLUS, top.Op)
	_, ok = top.Left.(*ast.IntLiteral)
	require.True(t, ok)
	mul, ok := top.Right.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, token.STAR, mul.Op)
}

func TestParseIfElseBraces(t *testing.T) {
	b := parseBlockOK(t, "if (x > 0) { echo x } else { echo 0 }")
	ifs, ok := b.Stmts[0].(*ast.IfStatement)
	require.True(t, ok)
	require.Len(t, ifs.Then.Stmts, 1)
	require.NotNil(t, ifs.Else)
	require.Len(t, ifs.Else.Stmts, 1)
}

func TestParseWhileColonSingleStatement(t *testing.T) {
	b := parseBlockOK(t, "while (x < 10): x++")
	ws, ok := b.Stmts[0].(*ast.WhileStatement)
	require.True(t, ok)
	require.Len(t, ws.Body.Stmts, 1)
	_, ok = ws.Body.Stmts[0].(*ast.IncrementStatement)
	assert.True(t, ok)
}

func TestParseForLoop(t *testing.T) {
	b := parseBlockOK(t, "for (i = 0; i < 10; i++) { echo i }")
	fs, ok := b.Stmts[0].(*ast.ForStatement)
	require.True(t, ok)
	require.NotNil(t, fs.Init)
	require.NotNil(t, fs.Cond)
	require.NotNil(t, fs.Post)
	require.Len(t, fs.Body.Stmts, 1)
}

func TestParseTryCatch(t *testing.T) {
	b := parseBlockOK(t, "try { x = 1 / 0 } catch (err) { echo err }")
	tc, ok := b.Stmts[0].(*ast.TryCatchStatement)
	require.True(t, ok)
	require.NotNil(t, tc.Catch)
	assert.Equal(t, "err", tc.Catch.ErrName)
}

func TestParseMethodCallChain(t *testing.T) {
	b := parseBlockOK(t, "result = obj.compute(1, 2)")
	assign := b.Stmts[0].(*ast.AssignStmt)
	mc, ok := assign.Value.(*ast.MethodCall)
	require.True(t, ok)
	assert.Equal(t, "compute", mc.Method)
	require.Len(t, mc.Args, 2)
}

func TestParseArrayLiteralAndAccess(t *testing.T) {
	b := parseBlockOK(t, "arr = [1, 2, 3]\nx = arr[0]")
	assign := b.Stmts[0].(*ast.AssignStmt)
	lit, ok := assign.Value.(*ast.ArrayLiteral)
	require.True(t, ok)
	require.Len(t, lit.Elements, 3)

	assign2 := b.Stmts[1].(*ast.AssignStmt)
	acc, ok := assign2.Value.(*ast.ArrayAccess)
	require.True(t, ok)
	_, ok = acc.Index.(*ast.IntLiteral)
	assert.True(t, ok)
}

func TestParseArrayAssignment(t *testing.T) {
	b := parseBlockOK(t, "arr[0] = 5")
	as, ok := b.Stmts[0].(*ast.ArrayAssignStmt)
	require.True(t, ok)
	v, ok := as.Value.(*ast.IntLiteral)
	require.True(t, ok)
	assert.EqualValues(t, 5, v.Value)
}

func TestParseNewObject(t *testing.T) {
	b := parseBlockOK(t, "c = new Counter(0)")
	assign := b.Stmts[0].(*ast.AssignStmt)
	n, ok := assign.Value.(*ast.NewObject)
	require.True(t, ok)
	assert.Equal(t, "Counter", n.ClassName)
	require.Len(t, n.Args, 1)
}

func TestParseUnaryMinusAndNot(t *testing.T) {
	b := parseBlockOK(t, "x = -1\ny = !true")
	assign := b.Stmts[0].(*ast.AssignStmt)
	u, ok := assign.Value.(*ast.UnaryOp)
	require.True(t, ok)
	assert.Equal(t, token.MINUS, u.Op)

	assign2 := b.Stmts[1].(*ast.AssignStmt)
	u2, ok := assign2.Value.(*ast.UnaryOp)
	require.True(t, ok)
	assert.Equal(t, token.NOT, u2.Op)
}

func TestParseImportStatement(t *testing.T) {
	b := parseBlockOK(t, "import math as m")
	imp, ok := b.Stmts[0].(*ast.ImportStatement)
	require.True(t, ok)
	assert.Equal(t, "math", imp.Name)
	assert.Equal(t, "m", imp.Alias)
}

func TestParseIndentedBlock(t *testing.T) {
	src := "if (x)\n    echo 1\n    echo 2\n"
	b := parseBlockOK(t, src)
	ifs, ok := b.Stmts[0].(*ast.IfStatement)
	require.True(t, ok)
	require.Len(t, ifs.Then.Stmts, 2)
}

func TestParseSyntaxErrorReported(t *testing.T) {
	_, err := parser.ParseBlock("test.hpl", []byte("x = )"))
	require.Error(t, err)
}
