package ast

import (
	"bytes"
	"strings"

	"github.com/dscript-lang/dscript/internal/lexer"
)

// FuncBody is the body of a function literal: either a single expression
// (arrow form) or a block of statements (is ... end form).
type FuncBody interface {
	funcBodyNode()
	String() string
}

// ExprBody is the arrow form: func(params) => expr.
type ExprBody struct {
	Expr Expression
}

func (eb *ExprBody) funcBodyNode()  {}
func (eb *ExprBody) String() string { return "=> " + eb.Expr.String() }

// BlockBody is the block form: func(params) is ... end.
type BlockBody struct {
	Statements []Statement
}

func (bb *BlockBody) funcBodyNode() {}
func (bb *BlockBody) String() string {
	var out bytes.Buffer
	out.WriteString("is\n")
	for _, stmt := range bb.Statements {
		out.WriteString("  " + stmt.String() + "\n")
	}
	out.WriteString("end")
	return out.String()
}

// FuncLiteral represents a function literal expression. Function values
// close over the environment chain active at evaluation time.
type FuncLiteral struct {
	Token  lexer.Token // the 'func' token
	Params []string
	Body   FuncBody
}

func (fl *FuncLiteral) expressionNode()      {}
func (fl *FuncLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FuncLiteral) String() string {
	return "func(" + strings.Join(fl.Params, ", ") + ") " + fl.Body.String()
}
