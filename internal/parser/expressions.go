package parser

import (
	"fmt"

	"github.com/dscript-lang/dscript/internal/ast"
	"github.com/dscript-lang/dscript/internal/lexer"
)

// Expression grammar, precedence low to high:
//
//	expression  : relation (('or'|'and'|'xor') relation)*
//	relation    : range [relop range]            (non-associative)
//	range       : additive ['..' additive]       (non-associative)
//	additive    : term (('+'|'-') term)*
//	term        : unary (('*'|'/') unary)*
//	unary       : ('+'|'-'|'not') unary | postfix ['is' type-indicator]
//	postfix     : primary ( '(' args ')' | '[' expr ']' | '.' field )*
//
// `is` followed by a type indicator binds at the unary level and produces
// the dedicated is-type node; any other `is` is a relation-level binary
// operator.

var relationOps = map[lexer.TokenType]ast.BinOp{
	lexer.LESS:       ast.Lt,
	lexer.LESS_EQ:    ast.Le,
	lexer.GREATER:    ast.Gt,
	lexer.GREATER_EQ: ast.Ge,
	lexer.EQ:         ast.Eq,
	lexer.NOT_EQ:     ast.Ne,
	lexer.IS:         ast.Is,
}

var logicOps = map[lexer.TokenType]ast.BinOp{
	lexer.OR:  ast.Or,
	lexer.AND: ast.And,
	lexer.XOR: ast.Xor,
}

// parseExpression parses the lowest-precedence level: left-associative
// or/and/xor chains over relations.
func (p *Parser) parseExpression() (ast.Expression, error) {
	node, err := p.parseRelation()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := logicOps[p.peek().Type]
		if !ok {
			return node, nil
		}
		tok := p.advance()
		rhs, err := p.parseRelation()
		if err != nil {
			return nil, err
		}
		node = &ast.BinaryExpression{Token: tok, Left: node, Op: op, Right: rhs}
	}
}

// parseRelation parses a single, non-associative relational operator.
func (p *Parser) parseRelation() (ast.Expression, error) {
	node, err := p.parseRange()
	if err != nil {
		return nil, err
	}
	if op, ok := relationOps[p.peek().Type]; ok {
		tok := p.advance()
		rhs, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpression{Token: tok, Left: node, Op: op, Right: rhs}, nil
	}
	return node, nil
}

// parseRange parses a single, non-associative `..`. A nested range has
// nowhere to attach and is rejected by the surrounding grammar.
func (p *Parser) parseRange() (ast.Expression, error) {
	node, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.curTokenIs(lexer.DOTDOT) {
		tok := p.advance()
		high, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.RangeExpression{Token: tok, Low: node, High: high}, nil
	}
	return node, nil
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	node, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinOp
		switch p.peek().Type {
		case lexer.PLUS:
			op = ast.Add
		case lexer.MINUS:
			op = ast.Sub
		default:
			return node, nil
		}
		tok := p.advance()
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		node = &ast.BinaryExpression{Token: tok, Left: node, Op: op, Right: rhs}
	}
}

func (p *Parser) parseTerm() (ast.Expression, error) {
	node, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinOp
		switch p.peek().Type {
		case lexer.ASTERISK:
			op = ast.Mul
		case lexer.SLASH:
			op = ast.Div
		default:
			return node, nil
		}
		tok := p.advance()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		node = &ast.BinaryExpression{Token: tok, Left: node, Op: op, Right: rhs}
	}
}

// parseUnary parses prefix operators, then offers the is-type suffix on
// the resulting operand. Unary plus is the identity.
func (p *Parser) parseUnary() (ast.Expression, error) {
	switch p.peek().Type {
	case lexer.PLUS:
		p.advance()
		return p.parseUnary()
	case lexer.MINUS:
		tok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return p.parseIsTypeSuffix(&ast.UnaryExpression{Token: tok, Op: ast.Neg, Right: operand})
	case lexer.NOT:
		tok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return p.parseIsTypeSuffix(&ast.UnaryExpression{Token: tok, Op: ast.Not, Right: operand})
	default:
		expr, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		return p.parseIsTypeSuffix(expr)
	}
}

// parseIsTypeSuffix wraps expr into an is-type node when the cursor sits
// on `is` followed by a type indicator. Any other `is` is left for the
// relation level.
func (p *Parser) parseIsTypeSuffix(expr ast.Expression) (ast.Expression, error) {
	if !p.curTokenIs(lexer.IS) {
		return expr, nil
	}
	if _, ok := p.typeIndicatorAt(1); !ok {
		return expr, nil
	}
	tok := p.advance() // 'is'
	indicator, _ := p.typeIndicatorAt(0)
	p.advance()
	if indicator == ast.TypeArray || indicator == ast.TypeTuple {
		// The [] and {} indicators are two-token forms.
		p.advance()
	}
	return &ast.IsTypeExpression{Token: tok, Expr: expr, Type: indicator}, nil
}

// typeIndicatorAt reports whether a type indicator starts n tokens past
// the cursor: int | real | bool | string | none | [] | {} | func.
func (p *Parser) typeIndicatorAt(n int) (ast.TypeIndicator, bool) {
	switch p.peekAt(n).Type {
	case lexer.TYPE_INT:
		return ast.TypeInt, true
	case lexer.TYPE_REAL:
		return ast.TypeReal, true
	case lexer.TYPE_BOOL:
		return ast.TypeBool, true
	case lexer.TYPE_STRING:
		return ast.TypeString, true
	case lexer.NONE:
		return ast.TypeNone, true
	case lexer.FUNC:
		return ast.TypeFunc, true
	case lexer.LBRACK:
		if p.peekAt(n+1).Type == lexer.RBRACK {
			return ast.TypeArray, true
		}
	case lexer.LBRACE:
		if p.peekAt(n+1).Type == lexer.RBRACE {
			return ast.TypeTuple, true
		}
	}
	return 0, false
}

// parsePostfix parses a primary expression followed by any chain of
// calls, index accesses and member accesses.
func (p *Parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case lexer.LPAREN:
			tok := p.advance()
			args, err := p.parseCallArguments()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpression{Token: tok, Callee: expr, Arguments: args}
		case lexer.LBRACK:
			tok := p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expect(lexer.RBRACK); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpression{Token: tok, Target: expr, Index: index}
		case lexer.DOT:
			tok := p.advance()
			field := p.advance()
			switch field.Type {
			case lexer.IDENT, lexer.INT:
				expr = &ast.MemberExpression{Token: tok, Target: expr, Field: field.Literal}
			default:
				return nil, p.errFromToken(fmt.Sprintf("Expected identifier or integer after '.', got %s", field.Describe()), field)
			}
		default:
			return expr, nil
		}
	}
}

// parseCallArguments parses a comma-separated argument list; the opening
// '(' is already consumed.
func (p *Parser) parseCallArguments() ([]ast.Expression, error) {
	var args []ast.Expression
	if p.curTokenIs(lexer.RPAREN) {
		p.advance()
		return args, nil
	}
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
	if err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// parsePrimary parses literals, identifiers, grouping, array/tuple
// literals and function literals.
func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.INT:
		p.advance()
		n, err := p.parseInt(tok)
		if err != nil {
			return nil, err
		}
		return &ast.IntegerLiteral{Token: tok, Value: n}, nil
	case lexer.REAL:
		p.advance()
		f, err := p.parseReal(tok)
		if err != nil {
			return nil, err
		}
		return &ast.RealLiteral{Token: tok, Value: f}, nil
	case lexer.TRUE:
		p.advance()
		return &ast.BooleanLiteral{Token: tok, Value: true}, nil
	case lexer.FALSE:
		p.advance()
		return &ast.BooleanLiteral{Token: tok, Value: false}, nil
	case lexer.NONE:
		p.advance()
		return &ast.NoneLiteral{Token: tok}, nil
	case lexer.STRING:
		p.advance()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}, nil
	case lexer.IDENT:
		p.advance()
		return &ast.Identifier{Token: tok, Value: tok.Literal}, nil
	case lexer.LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case lexer.LBRACK:
		return p.parseArrayLiteral()
	case lexer.LBRACE:
		return p.parseTupleLiteral()
	case lexer.FUNC:
		return p.parseFuncLiteral()
	case lexer.ERROR:
		p.advance()
		return nil, p.errFromToken(tok.Literal, tok)
	default:
		return nil, p.errFromToken(fmt.Sprintf("Unexpected token in expression: %s", tok.Describe()), tok)
	}
}

// parseArrayLiteral parses [e1, e2, ...].
func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	tok := p.advance() // '['
	elems := []ast.Expression{}
	if !p.curTokenIs(lexer.RBRACK) {
		elem, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		for p.match(lexer.COMMA) {
			elem, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
		}
	}
	if err := p.expect(lexer.RBRACK); err != nil {
		return nil, err
	}
	return &ast.ArrayLiteral{Token: tok, Elements: elems}, nil
}

// parseTupleLiteral parses {name := e, ...}. A `name :=` prefix marks a
// named element; otherwise the element is positional.
func (p *Parser) parseTupleLiteral() (ast.Expression, error) {
	tok := p.advance() // '{'
	elems := []ast.TupleElement{}
	if !p.curTokenIs(lexer.RBRACE) {
		for {
			elem, err := p.parseTupleElement()
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	if err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.TupleLiteral{Token: tok, Elements: elems}, nil
}

func (p *Parser) parseTupleElement() (ast.TupleElement, error) {
	if p.curTokenIs(lexer.IDENT) && p.peekAt(1).Type == lexer.ASSIGN {
		name := p.advance().Literal
		p.advance() // ':='
		value, err := p.parseExpression()
		if err != nil {
			return ast.TupleElement{}, err
		}
		return ast.TupleElement{Name: name, Value: value}, nil
	}
	value, err := p.parseExpression()
	if err != nil {
		return ast.TupleElement{}, err
	}
	return ast.TupleElement{Value: value}, nil
}

// parseFuncLiteral parses `func(params) => expr` or
// `func(params) is block end`.
func (p *Parser) parseFuncLiteral() (ast.Expression, error) {
	tok := p.advance() // 'func'
	if err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	params := []string{}
	if !p.curTokenIs(lexer.RPAREN) {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		params = append(params, name)
		for p.match(lexer.COMMA) {
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			params = append(params, name)
		}
	}
	if err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}

	switch {
	case p.match(lexer.ARROW):
		body, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.FuncLiteral{Token: tok, Params: params, Body: &ast.ExprBody{Expr: body}}, nil
	case p.match(lexer.IS):
		body, err := p.parseBlockUntil(lexer.END)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.END); err != nil {
			return nil, err
		}
		return &ast.FuncLiteral{Token: tok, Params: params, Body: &ast.BlockBody{Statements: body}}, nil
	default:
		return nil, p.errFromToken(fmt.Sprintf("Expected '=>' or 'is' after func parameters, got %s", p.peek().Describe()), p.peek())
	}
}

func (p *Parser) expectIdent() (string, error) {
	tok := p.advance()
	if tok.Type != lexer.IDENT {
		return "", p.errFromToken(fmt.Sprintf("Expected identifier, got %s", tok.Describe()), tok)
	}
	return tok.Literal, nil
}
