// Package parser implements a recursive-descent parser that turns a token
// stream into an ast.Program. It stops at the first syntax error rather than
// attempting statement-level recovery.
package parser

import (
	"github.com/samdecook/lox/internal/ast"
	"github.com/samdecook/lox/internal/loxerr"
	"github.com/samdecook/lox/internal/token"
)

type Parser struct {
	tokens []token.Token
	idx    int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// parseError aborts parsing by panicking with a *loxerr.Error, recovered at
// the top of Parse/ParseExpression.
type parseError struct{ err *loxerr.Error }

// Parse consumes the whole token stream and returns the program, or the
// first syntax error encountered.
func (p *Parser) Parse() (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(parseError)
			if !ok {
				panic(r)
			}
			err = pe.err
		}
	}()

	program := &ast.Program{}
	for !p.atEnd() {
		program.Stmts = append(program.Stmts, p.declaration())
	}
	return program, nil
}

// ParseExpression parses a single expression, for debug/REPL use.
func (p *Parser) ParseExpression() (expr ast.Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(parseError)
			if !ok {
				panic(r)
			}
			err = pe.err
		}
	}()
	return p.expression(), nil
}

func (p *Parser) declaration() ast.Stmt {
	switch {
	case p.match(token.Class):
		return p.classDecl()
	case p.match(token.Fun):
		return p.function("function")
	case p.match(token.Var):
		return p.varDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) classDecl() ast.Stmt {
	name := p.consume(token.Identifier, loxerr.MissingIdentifier, "Expect class name.")

	var superclass *ast.Variable
	if p.match(token.Less) {
		superName := p.consume(token.Identifier, loxerr.MissingIdentifier, "Expect superclass name.")
		superclass = &ast.Variable{Name: superName}
	}

	p.consume(token.LeftBrace, loxerr.MissingLeftBrace, "Expect '{' before class body.")

	var methods []*ast.Function
	for !p.check(token.RightBrace) && !p.atEnd() {
		methods = append(methods, p.function("method").(*ast.Function))
	}

	p.consume(token.RightBrace, loxerr.MissingRightBrace, "Expect '}' after class body.")

	return &ast.Class{Name: name, Superclass: superclass, Methods: methods}
}

func (p *Parser) function(kind string) ast.Stmt {
	name := p.consume(token.Identifier, loxerr.MissingIdentifier, "Expect "+kind+" name.")
	p.consume(token.LeftParen, loxerr.MissingLeftParen, "Expect '(' after "+kind+" name.")

	var params []token.Token
	if !p.check(token.RightParen) {
		params = append(params, p.consume(token.Identifier, loxerr.MissingIdentifier, "Expect parameter name."))
		for p.match(token.Comma) {
			params = append(params, p.consume(token.Identifier, loxerr.MissingIdentifier, "Expect parameter name."))
		}
	}
	p.consume(token.RightParen, loxerr.MissingRightParen, "Expect ')' after parameters.")

	p.consume(token.LeftBrace, loxerr.MissingLeftBrace, "Expect '{' before "+kind+" body.")
	body := p.block().(*ast.Block)

	return &ast.Function{Name: name, Params: params, Body: body.Stmts}
}

func (p *Parser) varDecl() ast.Stmt {
	name := p.consume(token.Identifier, loxerr.MissingIdentifier, "Expect variable name.")

	var init ast.Expr
	if p.match(token.Equal) {
		init = p.expression()
	}
	p.consume(token.Semicolon, loxerr.MissingSemicolon, "Expect ';' after variable declaration.")

	return &ast.Var{Name: name, Initializer: init}
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.For):
		return p.forStmt()
	case p.match(token.If):
		return p.ifStmt()
	case p.match(token.Print):
		return p.printStmt()
	case p.match(token.Return):
		return p.returnStmt()
	case p.match(token.While):
		return p.whileStmt()
	case p.match(token.LeftBrace):
		return p.block()
	default:
		return p.exprStmt()
	}
}

func (p *Parser) exprStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.Semicolon, loxerr.MissingSemicolon, "Expect ';' after expression.")
	return &ast.Expression{Expr: expr}
}

func (p *Parser) printStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.Semicolon, loxerr.MissingSemicolon, "Expect ';' after value.")
	return &ast.Print{Expr: expr}
}

func (p *Parser) returnStmt() ast.Stmt {
	keyword := p.previous()
	var value ast.Expr
	if !p.check(token.Semicolon) {
		value = p.expression()
	}
	p.consume(token.Semicolon, loxerr.MissingSemicolon, "Expect ';' after return value.")
	return &ast.Return{Keyword: keyword, Value: value}
}

func (p *Parser) ifStmt() ast.Stmt {
	p.consume(token.LeftParen, loxerr.MissingLeftParen, "Expect '(' after 'if'.")
	cond := p.expression()
	p.consume(token.RightParen, loxerr.MissingRightParen, "Expect ')' after if condition.")

	then := p.statement()
	var els ast.Stmt
	if p.match(token.Else) {
		els = p.statement()
	}
	return &ast.If{Cond: cond, Then: then, Else: els}
}

func (p *Parser) whileStmt() ast.Stmt {
	p.consume(token.LeftParen, loxerr.MissingLeftParen, "Expect '(' after 'while'.")
	cond := p.expression()
	p.consume(token.RightParen, loxerr.MissingRightParen, "Expect ')' after while condition.")
	body := p.statement()
	return &ast.While{Cond: cond, Body: body}
}

// forStmt desugars `for (init; cond; incr) body` into
// `{ init; while (cond) { body; incr; } }`.
func (p *Parser) forStmt() ast.Stmt {
	p.consume(token.LeftParen, loxerr.MissingLeftParen, "Expect '(' after 'for'.")

	var initializer ast.Stmt
	switch {
	case p.match(token.Semicolon):
		initializer = nil
	case p.match(token.Var):
		initializer = p.varDecl()
	default:
		initializer = p.exprStmt()
	}

	var condition ast.Expr
	if !p.check(token.Semicolon) {
		condition = p.expression()
	}
	p.consume(token.Semicolon, loxerr.MissingSemicolon, "Expect ';' after loop condition.")

	var increment ast.Expr
	if !p.check(token.RightParen) {
		increment = p.expression()
	}
	p.consume(token.RightParen, loxerr.MissingRightParen, "Expect ')' after for clauses.")

	body := p.statement()

	if increment != nil {
		body = &ast.Block{Stmts: []ast.Stmt{body, &ast.Expression{Expr: increment}}}
	}
	if condition == nil {
		condition = &ast.Literal{Value: true}
	}
	loop := ast.Stmt(&ast.While{Cond: condition, Body: body})
	if initializer != nil {
		loop = &ast.Block{Stmts: []ast.Stmt{initializer, loop}}
	}
	return loop
}

func (p *Parser) block() ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.atEnd() {
		stmts = append(stmts, p.declaration())
	}
	p.consume(token.RightBrace, loxerr.MissingRightBrace, "Expect '}' after block.")
	return &ast.Block{Stmts: stmts}
}

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

// assignment parses the left side as an r-expression and reinterprets it if
// an '=' follows.
func (p *Parser) assignment() ast.Expr {
	expr := p.logicOr()

	if p.match(token.Equal) {
		equals := p.previous()
		value := p.assignment()

		switch target := expr.(type) {
		case *ast.Variable:
			return &ast.Assign{Name: target.Name, Value: value}
		case *ast.Get:
			return &ast.Set{Object: target.Object, Name: target.Name, Value: value}
		default:
			panic(parseError{loxerr.New(loxerr.InvalidAssignmentTarget, equals.Line, "Invalid assignment target.")})
		}
	}

	return expr
}

func (p *Parser) logicOr() ast.Expr {
	expr := p.logicAnd()
	for p.match(token.Or) {
		op := p.previous()
		right := p.logicAnd()
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) logicAnd() ast.Expr {
	expr := p.equality()
	for p.match(token.And) {
		op := p.previous()
		right := p.equality()
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.EqualEqual, token.BangEqual) {
		op := p.previous()
		right := p.comparison()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.Less, token.LessEqual, token.Greater, token.GreaterEqual) {
		op := p.previous()
		right := p.term()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.Plus, token.Minus) {
		op := p.previous()
		right := p.factor()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.Star, token.Slash) {
		op := p.previous()
		right := p.unary()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.match(token.Bang, token.Minus) {
		op := p.previous()
		right := p.unary()
		return &ast.Unary{Op: op, Right: right}
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()

	for {
		switch {
		case p.match(token.LeftParen):
			expr = p.finishCall(expr)
		case p.match(token.Dot):
			name := p.consume(token.Identifier, loxerr.MissingIdentifier, "Expect property name after '.'.")
			expr = &ast.Get{Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		args = append(args, p.expression())
		for p.match(token.Comma) {
			args = append(args, p.expression())
		}
	}
	paren := p.consume(token.RightParen, loxerr.MissingRightParen, "Expect ')' after arguments.")
	return &ast.Call{Callee: callee, Paren: paren, Args: args}
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.False):
		return &ast.Literal{Value: false}
	case p.match(token.True):
		return &ast.Literal{Value: true}
	case p.match(token.Nil):
		return &ast.Literal{Value: nil}
	case p.match(token.Number):
		return &ast.Literal{Value: p.previous().Literal}
	case p.match(token.String):
		return &ast.Literal{Value: p.previous().Literal}
	case p.match(token.Super):
		keyword := p.previous()
		p.consume(token.Dot, loxerr.MissingExpression, "Expect '.' after 'super'.")
		method := p.consume(token.Identifier, loxerr.MissingIdentifier, "Expect superclass method name.")
		return &ast.Super{Keyword: keyword, Method: method}
	case p.match(token.This):
		return &ast.This{Keyword: p.previous()}
	case p.match(token.Identifier):
		return &ast.Variable{Name: p.previous()}
	case p.match(token.LeftParen):
		inner := p.expression()
		p.consume(token.RightParen, loxerr.MissingRightParen, "Expect ')' after expression.")
		return &ast.Grouping{Inner: inner}
	default:
		tok := p.current()
		panic(parseError{loxerr.At(loxerr.MissingExpression, tok.Line, tok.Lexeme, "Expect expression.")})
	}
}

// --- token cursor helpers ---

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(kind token.Kind, errKind loxerr.Kind, msg string) token.Token {
	if p.check(kind) {
		return p.advance()
	}
	tok := p.current()
	panic(parseError{loxerr.At(errKind, tok.Line, tok.Lexeme, msg)})
}

func (p *Parser) check(kind token.Kind) bool {
	return !p.atEnd() && p.current().Kind == kind
}

func (p *Parser) advance() token.Token {
	tok := p.current()
	if !p.atEnd() {
		p.idx++
	}
	return tok
}

func (p *Parser) atEnd() bool { return p.current().Kind == token.EOF }

func (p *Parser) current() token.Token { return p.tokens[p.idx] }

func (p *Parser) previous() token.Token {
	if p.idx > 0 {
		return p.tokens[p.idx-1]
	}
	return p.current()
}
