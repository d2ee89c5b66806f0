package ast

import (
	"bytes"
	"strings"

	"github.com/dscript-lang/dscript/internal/lexer"
)

// BinOp identifies a binary operator.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or
	Xor
	Is
)

var binOpNames = map[BinOp]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/",
	Eq: "=", Ne: "/=", Lt: "<", Le: "<=", Gt: ">", Ge: ">=",
	And: "and", Or: "or", Xor: "xor", Is: "is",
}

func (op BinOp) String() string { return binOpNames[op] }

// UnOp identifies a unary operator.
type UnOp int

const (
	Neg UnOp = iota
	Not
)

func (op UnOp) String() string {
	if op == Not {
		return "not"
	}
	return "-"
}

// BinaryExpression represents a binary operation (e.g. a + b, x < y).
type BinaryExpression struct {
	Token lexer.Token // the operator token
	Left  Expression
	Op    BinOp
	Right Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) String() string {
	return "(" + be.Left.String() + " " + be.Op.String() + " " + be.Right.String() + ")"
}

// UnaryExpression represents a unary operation (e.g. -x, not b).
type UnaryExpression struct {
	Token lexer.Token // the operator token
	Op    UnOp
	Right Expression
}

func (ue *UnaryExpression) expressionNode()      {}
func (ue *UnaryExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UnaryExpression) String() string {
	if ue.Op == Not {
		return "(not " + ue.Right.String() + ")"
	}
	return "(-" + ue.Right.String() + ")"
}

// RangeExpression represents lo..hi. Ranges are non-associative (a..b..c
// does not parse without parentheses) and bind more loosely than additive
// operators but more tightly than relations; the evaluator materializes
// them to inclusive integer arrays.
type RangeExpression struct {
	Token lexer.Token // the '..' token
	Low   Expression
	High  Expression
}

func (re *RangeExpression) expressionNode()      {}
func (re *RangeExpression) TokenLiteral() string { return re.Token.Literal }
func (re *RangeExpression) String() string {
	return "(" + re.Low.String() + " .. " + re.High.String() + ")"
}

// CallExpression represents callee(args...).
type CallExpression struct {
	Token     lexer.Token // the '(' token
	Callee    Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	args := make([]string, len(ce.Arguments))
	for i, a := range ce.Arguments {
		args[i] = a.String()
	}
	return ce.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}

// IndexExpression represents target[index]. Source-level indices are
// 1-based.
type IndexExpression struct {
	Token  lexer.Token // the '[' token
	Target Expression
	Index  Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) String() string {
	return ie.Target.String() + "[" + ie.Index.String() + "]"
}

// MemberExpression represents target.field. Member access by integer
// (t.1) addresses a tuple's positional slot; the parser stores the
// decimal string form in Field.
type MemberExpression struct {
	Token  lexer.Token // the '.' token
	Target Expression
	Field  string
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MemberExpression) String() string {
	return me.Target.String() + "." + me.Field
}

// ArrayLiteral represents [e1, e2, ...].
type ArrayLiteral struct {
	Token    lexer.Token // the '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) String() string {
	elems := make([]string, len(al.Elements))
	for i, e := range al.Elements {
		elems[i] = e.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

// TupleElement is a single tuple literal element. Name is empty for
// positional elements, which are keyed by their 1-based position at
// evaluation time.
type TupleElement struct {
	Name  string
	Value Expression
}

// TupleLiteral represents {name := e, ...}.
type TupleLiteral struct {
	Token    lexer.Token // the '{' token
	Elements []TupleElement
}

func (tl *TupleLiteral) expressionNode()      {}
func (tl *TupleLiteral) TokenLiteral() string { return tl.Token.Literal }
func (tl *TupleLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("{")
	for i, e := range tl.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		if e.Name != "" {
			out.WriteString(e.Name + " := ")
		}
		out.WriteString(e.Value.String())
	}
	out.WriteString("}")
	return out.String()
}

// TypeIndicator names a dynamic type tag for the is-type test.
type TypeIndicator int

const (
	TypeInt TypeIndicator = iota
	TypeReal
	TypeBool
	TypeString
	TypeNone
	TypeArray // []
	TypeTuple // {}
	TypeFunc
)

var typeIndicatorNames = map[TypeIndicator]string{
	TypeInt:    "int",
	TypeReal:   "real",
	TypeBool:   "bool",
	TypeString: "string",
	TypeNone:   "none",
	TypeArray:  "[]",
	TypeTuple:  "{}",
	TypeFunc:   "func",
}

func (ti TypeIndicator) String() string { return typeIndicatorNames[ti] }

// IsTypeExpression represents `expr is <type-indicator>`. This dedicated
// form is produced whenever the right operand of `is` is a type
// indicator; it is the only `is` form the evaluator defines.
type IsTypeExpression struct {
	Token lexer.Token // the 'is' token
	Expr  Expression
	Type  TypeIndicator
}

func (it *IsTypeExpression) expressionNode()      {}
func (it *IsTypeExpression) TokenLiteral() string { return it.Token.Literal }
func (it *IsTypeExpression) String() string {
	return "(" + it.Expr.String() + " is " + it.Type.String() + ")"
}
