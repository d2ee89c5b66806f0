// Package parser implements the recursive-descent parser for D.
//
// The parser works over an eagerly lexed token vector. Trivia tokens
// (newlines, comments, semicolons) are consumed between statements and at
// the start of blocks; inside an expression trivia is not consumed, so a
// line break never silently splits an expression. Parsing stops at the
// first error.
package parser

import (
	"fmt"
	"strconv"

	"github.com/dscript-lang/dscript/internal/ast"
	"github.com/dscript-lang/dscript/internal/lexer"
)

// ParseError is a parse failure with the offending token's position when
// it is known (zero otherwise).
type ParseError struct {
	Message string
	Line    int
	Col     int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (at %d:%d)", e.Message, e.Line, e.Col)
	}
	return e.Message
}

// Parser holds the token vector and the cursor position.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New creates a Parser for the given source, lexing it eagerly.
func New(source string) *Parser {
	l := lexer.New(source)
	var tokens []lexer.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == lexer.EOF {
			break
		}
	}
	return &Parser{tokens: tokens}
}

func (p *Parser) peek() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return lexer.Token{Type: lexer.EOF}
}

// peekAt returns the token n positions past the cursor.
func (p *Parser) peekAt(n int) lexer.Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return lexer.Token{Type: lexer.EOF}
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.peek().Type == t
}

// match consumes the current token if it has the expected type.
func (p *Parser) match(t lexer.TokenType) bool {
	if p.curTokenIs(t) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it has the expected type, or
// returns a parse error describing what was found instead.
func (p *Parser) expect(t lexer.TokenType) error {
	if p.match(t) {
		return nil
	}
	return p.errFromToken(fmt.Sprintf("Expected '%s', got %s", t, p.peek().Describe()), p.peek())
}

// errFromToken builds a ParseError, pulling line/col from ERROR tokens
// (the only tokens that carry a position in this design).
func (p *Parser) errFromToken(message string, tok lexer.Token) *ParseError {
	line, col := 0, 0
	if tok.Type == lexer.ERROR {
		line, col = tok.Line, tok.Col
	}
	return &ParseError{Message: message, Line: line, Col: col}
}

// consumeTrivia skips newline, comment and semicolon tokens. Called
// between statements and at the start of blocks only.
func (p *Parser) consumeTrivia() {
	for {
		switch p.peek().Type {
		case lexer.NEWLINE, lexer.COMMENT, lexer.SEMICOLON:
			p.advance()
		default:
			return
		}
	}
}

// ParseProgram parses the entire input and returns the AST root node.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{Statements: []ast.Statement{}}
	p.consumeTrivia()
	for !p.curTokenIs(lexer.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
		p.consumeTrivia()
	}
	return program, nil
}

// parseStatement dispatches on the first token of a statement.
func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.peek().Type {
	case lexer.VAR:
		return p.parseVarDecl()
	case lexer.PRINT:
		return p.parsePrint()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.EXIT:
		tok := p.advance()
		return &ast.ExitStatement{Token: tok}, nil
	default:
		tok := p.peek()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.curTokenIs(lexer.ASSIGN) {
			assignTok := p.advance()
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			return &ast.AssignStatement{Token: assignTok, Target: expr, Value: value}, nil
		}
		return &ast.ExpressionStatement{Token: tok, Expression: expr}, nil
	}
}

// parseVarDecl parses `var name [:= expr]`. A missing initializer is
// modeled as the literal none.
func (p *Parser) parseVarDecl() (ast.Statement, error) {
	tok := p.advance() // 'var'
	nameTok := p.advance()
	if nameTok.Type != lexer.IDENT {
		return nil, p.errFromToken(fmt.Sprintf("Expected identifier after 'var', got %s", nameTok.Describe()), nameTok)
	}
	var init ast.Expression = &ast.NoneLiteral{Token: lexer.Token{Type: lexer.NONE, Literal: "none"}}
	if p.match(lexer.ASSIGN) {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		init = expr
	}
	return &ast.VarDeclStatement{Token: tok, Name: nameTok.Literal, Init: init}, nil
}

// parsePrint parses `print expr [, expr]*`.
func (p *Parser) parsePrint() (ast.Statement, error) {
	tok := p.advance() // 'print'
	var args []ast.Expression
	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	args = append(args, arg)
	for p.match(lexer.COMMA) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return &ast.PrintStatement{Token: tok, Args: args}, nil
}

// parseIf parses `if cond then block [else block] end` or the short form
// `if cond => stmt`, which never takes an else.
func (p *Parser) parseIf() (ast.Statement, error) {
	tok := p.advance() // 'if'
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.match(lexer.ARROW) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &ast.IfStatement{Token: tok, Cond: cond, ThenBranch: []ast.Statement{stmt}}, nil
	}
	if err := p.expect(lexer.THEN); err != nil {
		return nil, err
	}
	thenBranch, err := p.parseBlockUntil(lexer.ELSE, lexer.END)
	if err != nil {
		return nil, err
	}
	var elseBranch []ast.Statement
	if p.match(lexer.ELSE) {
		elseBranch, err = p.parseBlockUntil(lexer.END)
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(lexer.END); err != nil {
		return nil, err
	}
	return &ast.IfStatement{Token: tok, Cond: cond, ThenBranch: thenBranch, ElseBranch: elseBranch}, nil
}

// parseWhile parses `while cond loop block end`.
func (p *Parser) parseWhile() (ast.Statement, error) {
	tok := p.advance() // 'while'
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.LOOP); err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntil(lexer.END)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.END); err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Token: tok, Cond: cond, Body: body}, nil
}

// parseFor parses `for [name [in iterable]] loop block end`. With no
// loop variable the sentinel "_" is bound; with no iterable the literal
// none stands in and the evaluator loops forever. A bare `for e loop`
// with a non-identifier head is rejected.
func (p *Parser) parseFor() (ast.Statement, error) {
	tok := p.advance() // 'for'
	varName := "_"
	var iterable ast.Expression = &ast.NoneLiteral{Token: lexer.Token{Type: lexer.NONE, Literal: "none"}}

	if p.curTokenIs(lexer.IDENT) {
		varName = p.advance().Literal
		if p.match(lexer.IN) {
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			iterable = expr
		}
	} else if !p.curTokenIs(lexer.LOOP) {
		return nil, p.errFromToken(fmt.Sprintf("Expected loop variable or 'loop' after 'for', got %s", p.peek().Describe()), p.peek())
	}

	if err := p.expect(lexer.LOOP); err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntil(lexer.END)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.END); err != nil {
		return nil, err
	}
	return &ast.ForStatement{Token: tok, Var: varName, Iterable: iterable, Body: body}, nil
}

// parseReturn parses `return [expr]`. The expression is absent when the
// next token closes the surrounding construct or separates statements.
func (p *Parser) parseReturn() (ast.Statement, error) {
	tok := p.advance() // 'return'
	switch p.peek().Type {
	case lexer.END, lexer.ELSE, lexer.LOOP, lexer.NEWLINE, lexer.SEMICOLON, lexer.EOF:
		return &ast.ReturnStatement{Token: tok}, nil
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStatement{Token: tok, Value: value}, nil
}

// parseBlockUntil parses statements until one of the end tokens (or EOF,
// which the caller's expect will report).
func (p *Parser) parseBlockUntil(ends ...lexer.TokenType) ([]ast.Statement, error) {
	isEnd := func(t lexer.TokenType) bool {
		for _, e := range ends {
			if t == e {
				return true
			}
		}
		return false
	}
	stmts := []ast.Statement{}
	p.consumeTrivia()
	for !isEnd(p.peek().Type) && !p.curTokenIs(lexer.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		p.consumeTrivia()
	}
	return stmts, nil
}

// parseInt converts an INT token literal to int64. The lexer only emits
// digit runs, so failures indicate literals exceeding the int64 range.
func (p *Parser) parseInt(tok lexer.Token) (int64, error) {
	n, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		return 0, p.errFromToken(fmt.Sprintf("Invalid integer literal %q", tok.Literal), tok)
	}
	return n, nil
}

// parseReal converts a REAL token literal to float64.
func (p *Parser) parseReal(tok lexer.Token) (float64, error) {
	f, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		return 0, p.errFromToken(fmt.Sprintf("Invalid real literal %q", tok.Literal), tok)
	}
	return f, nil
}
