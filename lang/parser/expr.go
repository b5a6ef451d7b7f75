package parser

import (
	"github.com/mna/hpl/lang/ast"
	"github.com/mna/hpl/lang/token"
)

// parseExpression is the entry point of the precedence-climbing chain
// below, ordered from loosest to tightest binding exactly as
// _examples/original_source/hpl_runtime/ast_parser.py does it:
// || , && , ==/!= , </<=/>/>= , +/- , */ / /%  , unary !/- , postfix.
func (p *parser) parseExpression() ast.Expr {
	return p.parseOr()
}

func (p *parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.tok == token.OR {
		pos := p.pos()
		p.advance()
		right := p.parseAnd()
		left = &ast.BinaryOp{Pos: pos, Op: token.OR, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.tok == token.AND {
		pos := p.pos()
		p.advance()
		right := p.parseEquality()
		left = &ast.BinaryOp{Pos: pos, Op: token.AND, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	for p.at(token.EQL, token.NEQ) {
		op, pos := p.tok, p.pos()
		p.advance()
		right := p.parseComparison()
		left = &ast.BinaryOp{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for p.at(token.LT, token.LE, token.GT, token.GE) {
		op, pos := p.tok, p.pos()
		p.advance()
		right := p.parseAdditive()
		left = &ast.BinaryOp{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.at(token.PLUS, token.MINUS) {
		op, pos := p.tok, p.pos()
		p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryOp{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.at(token.STAR, token.SLASH, token.PERCENT) {
		op, pos := p.tok, p.pos()
		p.advance()
		right := p.parseUnary()
		left = &ast.BinaryOp{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseUnary() ast.Expr {
	if p.tok == token.NOT {
		pos := p.pos()
		p.advance()
		return &ast.UnaryOp{Pos: pos, Op: token.NOT, Operand: p.parseUnary()}
	}
	if p.tok == token.MINUS {
		pos := p.pos()
		p.advance()
		return &ast.UnaryOp{Pos: pos, Op: token.MINUS, Operand: p.parseUnary()}
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any chain of
// `[index]`, `.member`/`.method(args)`, or `++` postfix operators.
func (p *parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	return p.finishPostfix(expr)
}

func (p *parser) parsePrimary() ast.Expr {
	pos := p.pos()
	switch p.tok {
	case token.BOOLEAN:
		v := p.val.BoolVal
		p.advance()
		return &ast.BoolLiteral{Pos: pos, Value: v}

	case token.INT:
		v := p.val.Int
		p.advance()
		return &ast.IntLiteral{Pos: pos, Value: v}

	case token.FLOAT:
		v := p.val.Float
		p.advance()
		return &ast.FloatLiteral{Pos: pos, Value: v}

	case token.STRING:
		v := p.val.Str
		p.advance()
		return &ast.StringLiteral{Pos: pos, Value: v}

	case token.IDENT:
		name := p.val.Raw
		p.advance()
		if name == "null" {
			return &ast.NullLiteral{Pos: pos}
		}
		if name == "new" {
			return p.parseNewObject(pos)
		}
		return p.identOrCall(pos, name)

	case token.LPAREN:
		p.advance()
		expr := p.parseExpression()
		p.expect(token.RPAREN)
		return expr

	case token.LBRACK:
		p.advance()
		lit := &ast.ArrayLiteral{Pos: pos}
		if p.tok != token.RBRACK {
			lit.Elements = append(lit.Elements, p.parseExpression())
			for p.tok == token.COMMA {
				p.advance()
				lit.Elements = append(lit.Elements, p.parseExpression())
			}
		}
		p.expect(token.RBRACK)
		return lit

	default:
		p.error("unexpected %s in expression", p.tok)
		p.advance()
		return &ast.NullLiteral{Pos: pos}
	}
}

func (p *parser) parseNewObject(pos token.Position) ast.Expr {
	className := p.expect(token.IDENT).Raw
	args := p.parseArgs()
	return &ast.NewObject{Pos: pos, ClassName: className, Args: args}
}
