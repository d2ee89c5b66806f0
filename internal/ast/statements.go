package ast

import (
	"bytes"
	"strings"

	"github.com/dscript-lang/dscript/internal/lexer"
)

// VarDeclStatement introduces a name in the current lexical scope.
// A missing initializer is represented as the literal none.
type VarDeclStatement struct {
	Token lexer.Token // the 'var' token
	Name  string
	Init  Expression
}

func (vd *VarDeclStatement) statementNode()       {}
func (vd *VarDeclStatement) TokenLiteral() string { return vd.Token.Literal }
func (vd *VarDeclStatement) String() string {
	return "var " + vd.Name + " := " + vd.Init.String()
}

// AssignStatement assigns a value to a target. The target is restricted
// at evaluation time to an identifier, index, or member expression.
type AssignStatement struct {
	Token  lexer.Token // the ':=' token
	Target Expression
	Value  Expression
}

func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) String() string {
	return as.Target.String() + " := " + as.Value.String()
}

// PrintStatement writes its arguments, joined by single spaces, as one
// line on the interpreter's output sink.
type PrintStatement struct {
	Token lexer.Token // the 'print' token
	Args  []Expression
}

func (ps *PrintStatement) statementNode()       {}
func (ps *PrintStatement) TokenLiteral() string { return ps.Token.Literal }
func (ps *PrintStatement) String() string {
	args := make([]string, len(ps.Args))
	for i, a := range ps.Args {
		args[i] = a.String()
	}
	return "print " + strings.Join(args, ", ")
}

// ReturnStatement raises the return control signal. Value is nil for a
// bare return.
type ReturnStatement struct {
	Token lexer.Token // the 'return' token
	Value Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return"
	}
	return "return " + rs.Value.String()
}

// ExitStatement terminates the dynamically enclosing loop.
type ExitStatement struct {
	Token lexer.Token // the 'exit' token
}

func (es *ExitStatement) statementNode()       {}
func (es *ExitStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExitStatement) String() string       { return "exit" }

// ExpressionStatement is an expression evaluated for its side effects.
type ExpressionStatement struct {
	Token      lexer.Token // first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string       { return es.Expression.String() }

func writeBlock(out *bytes.Buffer, stmts []Statement) {
	for _, stmt := range stmts {
		out.WriteString("  " + stmt.String() + "\n")
	}
}
