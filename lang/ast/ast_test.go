package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mna/hpl/lang/ast"
	"github.com/mna/hpl/lang/token"
)

func TestExprSpan(t *testing.T) {
	pos := token.Position{Filename: "f.hpl", Line: 3, Column: 5}
	var e ast.Expr = &ast.BinaryOp{
		Pos:   pos,
		Op:    token.PLUS,
		Left:  &ast.IntLiteral{Pos: pos, Value: 1},
		Right: &ast.IntLiteral{Pos: pos, Value: 2},
	}
	assert.Equal(t, pos, e.Span())
}

func TestStmtSpan(t *testing.T) {
	pos := token.Position{Filename: "f.hpl", Line: 1, Column: 1}
	var s ast.Stmt = &ast.ReturnStatement{Pos: pos, Value: &ast.NullLiteral{Pos: pos}}
	assert.Equal(t, pos, s.Span())
}

func TestDocumentHoldsDeclarations(t *testing.T) {
	doc := &ast.Document{
		Classes: map[string]*ast.ClassDecl{
			"Counter": {
				Name: "Counter",
				Methods: map[string]*ast.FunctionBody{
					"increment": {Params: []ast.Param{{Name: "by"}}},
				},
			},
		},
		Objects: map[string]*ast.ObjectDecl{
			"c": {Name: "c", ClassName: "Counter"},
		},
	}
	assert.Contains(t, doc.Classes, "Counter")
	assert.Contains(t, doc.Classes["Counter"].Methods, "increment")
	assert.Equal(t, "Counter", doc.Objects["c"].ClassName)
}
