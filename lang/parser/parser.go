// Package parser implements the recursive-descent parser that turns a
// lang/scanner token stream into a lang/ast tree for a single function
// body (spec.md §4.3), grounded on
// _examples/original_source/hpl_runtime/ast_parser.py and structured after
// github.com/mna/nenuphar/lang/parser (a parser struct holding the scanner,
// the lookahead token/value pair, and an error list; ParseX helper
// functions at the package level).
package parser

import (
	"github.com/mna/hpl/lang/ast"
	"github.com/mna/hpl/lang/hplerror"
	"github.com/mna/hpl/lang/scanner"
	"github.com/mna/hpl/lang/token"
)

// ParseFunctionBody parses src as the block of a function body whose
// parameter names are given separately in params (src holds neither the
// parameter list nor the arrow), and returns its AST, along with any syntax
// errors encountered. On error, the returned body is whatever could be recovered
// and should not be evaluated.
func ParseFunctionBody(filename string, params []string, src []byte) (*ast.FunctionBody, error) {
	var p parser
	p.init(filename, src)

	pos := p.pos()
	body := p.parseBlock()

	fb := &ast.FunctionBody{Pos: pos, Body: body}
	for _, name := range params {
		fb.Params = append(fb.Params, ast.Param{Name: name, Pos: pos})
	}
	return fb, p.errors.Err()
}

// ParseBlock parses src as a standalone statement block (used by tests; the
// loader goes through ParseFunctionBody and ParseExpr).
func ParseBlock(filename string, src []byte) (*ast.Block, error) {
	var p parser
	p.init(filename, src)
	b := p.parseBlock()
	return b, p.errors.Err()
}

// ParseExpr parses src as a single standalone expression, used by
// lang/loader for the `objects:` entry's `ClassName(arg, …)` constructor
// call and the `call:` directive's `name(arg, …)`/`obj.method(arg, …)`
// form (both are ordinary call/method-call expressions of the same
// grammar the function-body parser already implements).
func ParseExpr(filename string, src []byte) (ast.Expr, error) {
	var p parser
	p.init(filename, src)
	expr := p.parseExpression()
	p.expect(token.EOF)
	return expr, p.errors.Err()
}

type parser struct {
	scan   scanner.Scanner
	errors hplerror.List

	tok token.Token
	val token.Value
}

func (p *parser) init(filename string, src []byte) {
	p.scan.Init(filename, src, func(pos token.Position, msg string) {
		p.errors.Add(hplerror.New(hplerror.SyntaxError, "PARSE_ERROR", "%s", msg).WithPos(pos))
	})
	p.advance()
}

func (p *parser) pos() token.Position { return p.val.Pos }

func (p *parser) advance() {
	p.tok, p.val = p.scan.Scan()
}

func (p *parser) error(format string, args ...any) {
	p.errors.Add(hplerror.New(hplerror.SyntaxError, "PARSE_ERROR", format, args...).WithPos(p.pos()))
}

// expect consumes the current token if it matches tok, reporting an error
// and leaving the stream positioned on the offending token otherwise.
func (p *parser) expect(tok token.Token) token.Value {
	val := p.val
	if p.tok != tok {
		p.error("expected %s, got %s", tok, p.tok)
		return val
	}
	p.advance()
	return val
}

func (p *parser) at(toks ...token.Token) bool {
	for _, t := range toks {
		if p.tok == t {
			return true
		}
	}
	return false
}

// isBlockTerminator reports whether the current token ends an enclosing
// block: DEDENT, RBRACE, EOF, or a leading `else`/`catch` of an outer
// construct.
func (p *parser) isBlockTerminator() bool {
	if p.at(token.DEDENT, token.RBRACE, token.EOF) {
		return true
	}
	return p.at(token.ELSE, token.CATCH)
}

// parseBlock parses a statement block in any of the four forms spec.md
// §4.2/§4.3 allows: INDENT/DEDENT, braces, a colon followed by either an
// indented block or a single inline statement, or a bare sequence of
// statements with no delimiter at all (used for a single-statement `if`
// body written without braces).
func (p *parser) parseBlock() *ast.Block {
	pos := p.pos()
	b := &ast.Block{Pos: pos}

	switch {
	case p.tok == token.INDENT:
		p.advance()
		b.Stmts = p.parseStatementsUntilTerminator()
		if p.tok == token.DEDENT {
			p.advance()
		}
	case p.tok == token.LBRACE:
		p.advance()
		for !p.at(token.RBRACE, token.EOF) {
			// line breaks inside braces still produce INDENT/DEDENT tokens
			if p.at(token.INDENT, token.DEDENT, token.SEMI) {
				p.advance()
				continue
			}
			b.Stmts = append(b.Stmts, p.parseStatement())
		}
		p.expect(token.RBRACE)
	case p.tok == token.COLON:
		p.advance()
		if p.tok == token.INDENT {
			p.advance()
			b.Stmts = p.parseStatementsUntilTerminator()
			if p.tok == token.DEDENT {
				p.advance()
			}
		} else {
			for !p.isBlockTerminator() {
				if p.tok == token.SEMI {
					p.advance()
					continue
				}
				b.Stmts = append(b.Stmts, p.parseStatement())
			}
		}
	default:
		b.Stmts = p.parseStatementsUntilTerminator()
	}
	return b
}

func (p *parser) parseStatementsUntilTerminator() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.isBlockTerminator() {
		if p.at(token.INDENT, token.SEMI) {
			p.advance()
			continue
		}
		stmts = append(stmts, p.parseStatement())
	}
	return stmts
}

func (p *parser) parseStatement() ast.Stmt {
	pos := p.pos()
	switch p.tok {
	case token.RETURN:
		p.advance()
		var val ast.Expr
		if !p.at(token.SEMI, token.RBRACE, token.DEDENT, token.EOF) {
			val = p.parseExpression()
		}
		return &ast.ReturnStatement{Pos: pos, Value: val}

	case token.BREAK:
		p.advance()
		return &ast.BreakStatement{Pos: pos}

	case token.CONTINUE:
		p.advance()
		return &ast.ContinueStatement{Pos: pos}

	case token.IMPORT:
		return p.parseImportStatement()

	case token.IF:
		return p.parseIfStatement()

	case token.FOR:
		return p.parseForStatement()

	case token.WHILE:
		return p.parseWhileStatement()

	case token.TRY:
		return p.parseTryCatchStatement()

	case token.IDENT:
		if p.val.Raw == "echo" {
			p.advance()
			return &ast.EchoStatement{Pos: pos, Value: p.parseExpression()}
		}
		return p.parseIdentStatement()

	default:
		return &ast.ExprStmt{Pos: pos, X: p.parseExpression()}
	}
}

// parseIdentStatement disambiguates the statement forms that start with an
// identifier: plain assignment, array-index assignment, attribute
// assignment, postfix increment, or a bare expression statement (e.g. a
// function/method call evaluated for effect).
func (p *parser) parseIdentStatement() ast.Stmt {
	pos := p.pos()
	name := p.val.Raw
	p.advance()

	switch p.tok {
	case token.LBRACK:
		p.advance()
		index := p.parseExpression()
		p.expect(token.RBRACK)
		if p.tok == token.ASSIGN {
			p.advance()
			value := p.parseExpression()
			return &ast.ArrayAssignStmt{
				Pos:   pos,
				Array: &ast.Variable{Pos: pos, Name: name},
				Index: index,
				Value: value,
			}
		}
		expr := p.finishPostfix(&ast.ArrayAccess{Pos: pos, Array: &ast.Variable{Pos: pos, Name: name}, Index: index})
		return &ast.ExprStmt{Pos: pos, X: expr}

	case token.INCR:
		p.advance()
		return &ast.IncrementStatement{Pos: pos, Target: name}

	case token.ASSIGN:
		p.advance()
		return &ast.AssignStmt{Pos: pos, Target: name, Op: token.ASSIGN, Value: p.parseExpression()}

	case token.DOT:
		// receiver.name[.method(...) | = value]
		recv := ast.Expr(&ast.Variable{Pos: pos, Name: name})
		for p.tok == token.DOT {
			p.advance()
			member := p.expect(token.IDENT).Raw
			if p.tok == token.LPAREN {
				recv = &ast.MethodCall{Pos: pos, Receiver: recv, Method: member, Args: p.parseArgs()}
			} else if p.tok == token.ASSIGN {
				p.advance()
				value := p.parseExpression()
				return &ast.AttrAssignStmt{Pos: pos, Receiver: recv, Name: member, Value: value}
			} else {
				recv = &ast.AttrAccess{Pos: pos, Receiver: recv, Name: member}
			}
		}
		return &ast.ExprStmt{Pos: pos, X: p.finishPostfix(recv)}

	default:
		expr := p.finishPostfix(p.identOrCall(pos, name))
		return &ast.ExprStmt{Pos: pos, X: expr}
	}
}

func (p *parser) identOrCall(pos token.Position, name string) ast.Expr {
	if p.tok == token.LPAREN {
		return &ast.FunctionCall{Pos: pos, Callee: &ast.Variable{Pos: pos, Name: name}, Args: p.parseArgs()}
	}
	return &ast.Variable{Pos: pos, Name: name}
}

func (p *parser) parseImportStatement() ast.Stmt {
	pos := p.pos()
	p.expect(token.IMPORT)
	name := p.expect(token.IDENT).Raw
	alias := ""
	if p.tok == token.AS {
		p.advance()
		alias = p.expect(token.IDENT).Raw
	}
	return &ast.ImportStatement{Pos: pos, Name: name, Alias: alias}
}

func (p *parser) parseIfStatement() ast.Stmt {
	pos := p.pos()
	p.expect(token.IF)
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	then := p.parseBlock()

	var els *ast.Block
	if p.tok == token.ELSE {
		p.advance()
		if p.tok == token.IF {
			// else-if chains as a single-statement Block wrapping the nested if
			elsPos := p.pos()
			els = &ast.Block{Pos: elsPos, Stmts: []ast.Stmt{p.parseIfStatement()}}
		} else {
			els = p.parseBlock()
		}
	}
	return &ast.IfStatement{Pos: pos, Cond: cond, Then: then, Else: els}
}

func (p *parser) parseForStatement() ast.Stmt {
	pos := p.pos()
	p.expect(token.FOR)
	p.expect(token.LPAREN)
	init := p.parseStatement()
	p.expect(token.SEMI)
	cond := p.parseExpression()
	p.expect(token.SEMI)
	post := p.parseStatement()
	p.expect(token.RPAREN)
	body := p.parseBlock()
	return &ast.ForStatement{Pos: pos, Init: init, Cond: cond, Post: post, Body: body}
}

func (p *parser) parseWhileStatement() ast.Stmt {
	pos := p.pos()
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	body := p.parseBlock()
	return &ast.WhileStatement{Pos: pos, Cond: cond, Body: body}
}

func (p *parser) parseTryCatchStatement() ast.Stmt {
	pos := p.pos()
	p.expect(token.TRY)
	body := p.parseBlock()

	p.expect(token.CATCH)
	catchPos := p.pos()
	p.expect(token.LPAREN)
	errName := ""
	if p.tok == token.IDENT {
		errName = p.val.Raw
		p.advance()
	}
	p.expect(token.RPAREN)
	catchBody := p.parseBlock()

	return &ast.TryCatchStatement{
		Pos:  pos,
		Body: body,
		Catch: &ast.CatchClause{
			Pos:     catchPos,
			ErrName: errName,
			Body:    catchBody,
		},
	}
}

// parseArgs parses a parenthesised, comma-separated argument list. The
// opening LPAREN must be the current token.
func (p *parser) parseArgs() []ast.Expr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	if p.tok != token.RPAREN {
		args = append(args, p.parseExpression())
		for p.tok == token.COMMA {
			p.advance()
			args = append(args, p.parseExpression())
		}
	}
	p.expect(token.RPAREN)
	return args
}

// finishPostfix wraps expr in any trailing `[index]`/`.member(...)`/`++`
// postfix operators that follow it, used when an identifier statement
// turns out to be an expression statement after all.
func (p *parser) finishPostfix(expr ast.Expr) ast.Expr {
	for {
		switch p.tok {
		case token.LBRACK:
			pos := p.pos()
			p.advance()
			idx := p.parseExpression()
			p.expect(token.RBRACK)
			expr = &ast.ArrayAccess{Pos: pos, Array: expr, Index: idx}
		case token.DOT:
			pos := p.pos()
			p.advance()
			member := p.expect(token.IDENT).Raw
			if p.tok == token.LPAREN {
				expr = &ast.MethodCall{Pos: pos, Receiver: expr, Method: member, Args: p.parseArgs()}
			} else {
				expr = &ast.AttrAccess{Pos: pos, Receiver: expr, Name: member}
			}
		case token.INCR:
			pos := p.pos()
			p.advance()
			expr = &ast.PostfixIncrement{Pos: pos, Target: expr}
		default:
			return expr
		}
	}
}
