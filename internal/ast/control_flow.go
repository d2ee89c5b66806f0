package ast

import (
	"bytes"

	"github.com/dscript-lang/dscript/internal/lexer"
)

// IfStatement represents both the full form
// `if cond then block [else block] end` and the short form
// `if cond => stmt` (which never takes an else).
type IfStatement struct {
	Token      lexer.Token // the 'if' token
	Cond       Expression
	ThenBranch []Statement
	ElseBranch []Statement // nil when absent
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if " + is.Cond.String() + " then\n")
	writeBlock(&out, is.ThenBranch)
	if is.ElseBranch != nil {
		out.WriteString("else\n")
		writeBlock(&out, is.ElseBranch)
	}
	out.WriteString("end")
	return out.String()
}

// WhileStatement represents `while cond loop block end`.
type WhileStatement struct {
	Token lexer.Token // the 'while' token
	Cond  Expression
	Body  []Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) String() string {
	var out bytes.Buffer
	out.WriteString("while " + ws.Cond.String() + " loop\n")
	writeBlock(&out, ws.Body)
	out.WriteString("end")
	return out.String()
}

// ForStatement represents `for [name [in iterable]] loop block end`.
// When the loop variable is omitted the sentinel "_" is bound. When no
// iterable is given, Iterable is the literal none and the evaluator
// loops forever.
type ForStatement struct {
	Token    lexer.Token // the 'for' token
	Var      string
	Iterable Expression
	Body     []Statement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for " + fs.Var + " in " + fs.Iterable.String() + " loop\n")
	writeBlock(&out, fs.Body)
	out.WriteString("end")
	return out.String()
}
