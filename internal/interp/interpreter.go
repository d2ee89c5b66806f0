package interp

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dscript-lang/dscript/internal/ast"
)

// Interpreter walks the AST and produces observable side effects on the
// output writer. The ambient state is the current environment chain and
// two flags used to reject stray return/exit at run time as a backstop
// behind the semantic checker.
type Interpreter struct {
	env            *Environment
	out            io.Writer
	insideFunction bool
	insideLoop     bool
}

// New creates an interpreter writing print output to out.
func New(out io.Writer) *Interpreter {
	return &Interpreter{
		env: NewEnvironment(),
		out: out,
	}
}

// Env exposes the global environment.
func (i *Interpreter) Env() *Environment {
	return i.env
}

// Interpret executes the program. Control-flow signals never escape a
// legal program; any error returned is a runtime failure.
func (i *Interpreter) Interpret(program *ast.Program) error {
	for _, stmt := range program.Statements {
		if err := i.execStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) execStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.VarDeclStatement:
		val, err := i.evalExpression(s.Init)
		if err != nil {
			return err
		}
		i.env.Define(s.Name, val)
		return nil

	case *ast.AssignStatement:
		val, err := i.evalExpression(s.Value)
		if err != nil {
			return err
		}
		return i.assignToTarget(s.Target, val)

	case *ast.PrintStatement:
		parts := make([]string, len(s.Args))
		for idx, arg := range s.Args {
			val, err := i.evalExpression(arg)
			if err != nil {
				return err
			}
			parts[idx] = val.String()
		}
		fmt.Fprintln(i.out, strings.Join(parts, " "))
		return nil

	case *ast.IfStatement:
		cond, err := i.evalExpression(s.Cond)
		if err != nil {
			return err
		}
		if truthy(cond) {
			return i.execBlock(s.ThenBranch)
		}
		if s.ElseBranch != nil {
			return i.execBlock(s.ElseBranch)
		}
		return nil

	case *ast.WhileStatement:
		return i.execWhile(s)

	case *ast.ForStatement:
		return i.execFor(s)

	case *ast.ReturnStatement:
		if !i.insideFunction {
			return &RuntimeError{Message: "Return statement outside of function"}
		}
		var val Value = &NoneValue{}
		if s.Value != nil {
			v, err := i.evalExpression(s.Value)
			if err != nil {
				return err
			}
			val = v
		}
		return &returnSignal{value: val}

	case *ast.ExitStatement:
		if !i.insideLoop {
			return &RuntimeError{Message: "Exit statement outside of loop"}
		}
		return &exitSignal{}

	case *ast.ExpressionStatement:
		_, err := i.evalExpression(s.Expression)
		return err

	default:
		return &RuntimeError{Message: fmt.Sprintf("unknown statement %T", stmt)}
	}
}

// execBlock runs a statement sequence in a fresh child frame and
// restores the caller's chain on exit. Control-flow signals propagate
// outward unchanged.
func (i *Interpreter) execBlock(stmts []ast.Statement) error {
	return i.execStatementsIn(NewEnclosedEnvironment(i.env), stmts)
}

func (i *Interpreter) execStatementsIn(env *Environment, stmts []ast.Statement) error {
	prev := i.env
	i.env = env
	defer func() { i.env = prev }()

	for _, stmt := range stmts {
		if err := i.execStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// execWhile runs the loop body in a fresh frame per iteration. The loop
// absorbs the exit signal; return and runtime errors propagate.
func (i *Interpreter) execWhile(s *ast.WhileStatement) error {
	prevLoop := i.insideLoop
	i.insideLoop = true
	defer func() { i.insideLoop = prevLoop }()

	for {
		cond, err := i.evalExpression(s.Cond)
		if err != nil {
			return err
		}
		if !truthy(cond) {
			return nil
		}
		if err := i.execBlock(s.Body); err != nil {
			if _, ok := err.(*exitSignal); ok {
				return nil
			}
			return err
		}
	}
}

// execFor iterates arrays and materialized ranges, or loops forever when
// the iterable is the literal none. The loop variable is bound in a
// fresh frame each iteration.
func (i *Interpreter) execFor(s *ast.ForStatement) error {
	prevLoop := i.insideLoop
	i.insideLoop = true
	defer func() { i.insideLoop = prevLoop }()

	// `for loop ... end` and `for i loop ... end` run forever; exit is
	// the only way out.
	if _, infinite := s.Iterable.(*ast.NoneLiteral); infinite {
		for {
			frame := NewEnclosedEnvironment(i.env)
			if s.Var != "_" {
				frame.Define(s.Var, &NoneValue{})
			}
			if err := i.execStatementsIn(frame, s.Body); err != nil {
				if _, ok := err.(*exitSignal); ok {
					return nil
				}
				return err
			}
		}
	}

	iterable, err := i.evalExpression(s.Iterable)
	if err != nil {
		return err
	}
	arr, ok := iterable.(*ArrayValue)
	if !ok {
		return &TypeError{Message: "Cannot iterate over non-iterable value"}
	}

	for _, item := range arr.Elements {
		frame := NewEnclosedEnvironment(i.env)
		frame.Define(s.Var, item)
		if err := i.execStatementsIn(frame, s.Body); err != nil {
			if _, ok := err.(*exitSignal); ok {
				return nil
			}
			return err
		}
	}
	return nil
}

// assignToTarget dispatches on the shape of the assignment target.
// Element and member assignment mutate the container value and rebind
// it through the base identifier, so arrays and tuples behave as value
// types for assignment.
func (i *Interpreter) assignToTarget(target ast.Expression, val Value) error {
	switch t := target.(type) {
	case *ast.Identifier:
		if err := i.env.Set(t.Value, val); err != nil {
			return &UndefinedVariableError{Name: t.Value}
		}
		return nil

	case *ast.IndexExpression:
		return i.assignIndexed(t, val)

	case *ast.MemberExpression:
		return i.assignMember(t, val)

	default:
		return &RuntimeError{Message: "Invalid assignment target"}
	}
}

func (i *Interpreter) assignIndexed(t *ast.IndexExpression, val Value) error {
	container, err := i.evalExpression(t.Target)
	if err != nil {
		return err
	}
	index, err := i.evalExpression(t.Index)
	if err != nil {
		return err
	}

	switch c := container.(type) {
	case *ArrayValue:
		idx, ok := index.(*IntegerValue)
		if !ok {
			return &TypeError{Message: "Array index must be an integer"}
		}
		if idx.Value < 1 || idx.Value > int64(len(c.Elements)) {
			return &IndexOutOfBoundsError{Index: idx.Value, Size: len(c.Elements)}
		}
		elements := make([]Value, len(c.Elements))
		copy(elements, c.Elements)
		elements[idx.Value-1] = val
		return i.rebind(t.Target, &ArrayValue{Elements: elements}, "array")

	case *TupleValue:
		var key string
		switch idx := index.(type) {
		case *IntegerValue:
			key = strconv.FormatInt(idx.Value, 10)
		case *StringValue:
			key = idx.Value
		default:
			return &TypeError{Message: "Tuple index must be integer or string"}
		}
		fields := make(map[string]Value, len(c.Fields))
		for k, v := range c.Fields {
			fields[k] = v
		}
		fields[key] = val
		return i.rebind(t.Target, &TupleValue{Fields: fields}, "tuple")

	default:
		return &TypeError{Message: "Cannot assign to non-array/non-tuple value"}
	}
}

func (i *Interpreter) assignMember(t *ast.MemberExpression, val Value) error {
	container, err := i.evalExpression(t.Target)
	if err != nil {
		return err
	}
	tuple, ok := container.(*TupleValue)
	if !ok {
		return &TypeError{Message: "Cannot assign to member of non-tuple value"}
	}
	fields := make(map[string]Value, len(tuple.Fields))
	for k, v := range tuple.Fields {
		fields[k] = v
	}
	fields[t.Field] = val
	return i.rebind(t.Target, &TupleValue{Fields: fields}, "tuple")
}

// rebind stores the updated container back through its base identifier.
func (i *Interpreter) rebind(target ast.Expression, val Value, kind string) error {
	ident, ok := target.(*ast.Identifier)
	if !ok {
		return &RuntimeError{Message: "Cannot assign to non-variable " + kind}
	}
	if err := i.env.Set(ident.Value, val); err != nil {
		return &UndefinedVariableError{Name: ident.Value}
	}
	return nil
}

func (i *Interpreter) evalExpression(expr ast.Expression) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return &IntegerValue{Value: e.Value}, nil
	case *ast.RealLiteral:
		return &RealValue{Value: e.Value}, nil
	case *ast.BooleanLiteral:
		return &BooleanValue{Value: e.Value}, nil
	case *ast.StringLiteral:
		return &StringValue{Value: e.Value}, nil
	case *ast.NoneLiteral:
		return &NoneValue{}, nil

	case *ast.Identifier:
		if val, ok := i.env.Get(e.Value); ok {
			return val, nil
		}
		return nil, &UndefinedVariableError{Name: e.Value}

	case *ast.BinaryExpression:
		return i.evalBinary(e)

	case *ast.UnaryExpression:
		return i.evalUnary(e)

	case *ast.RangeExpression:
		low, err := i.evalExpression(e.Low)
		if err != nil {
			return nil, err
		}
		high, err := i.evalExpression(e.High)
		if err != nil {
			return nil, err
		}
		return makeRange(low, high)

	case *ast.CallExpression:
		callee, err := i.evalExpression(e.Callee)
		if err != nil {
			return nil, err
		}
		args := make([]Value, len(e.Arguments))
		for idx, arg := range e.Arguments {
			val, err := i.evalExpression(arg)
			if err != nil {
				return nil, err
			}
			args[idx] = val
		}
		return i.callFunction(callee, args)

	case *ast.IndexExpression:
		target, err := i.evalExpression(e.Target)
		if err != nil {
			return nil, err
		}
		index, err := i.evalExpression(e.Index)
		if err != nil {
			return nil, err
		}
		return evalIndex(target, index)

	case *ast.MemberExpression:
		target, err := i.evalExpression(e.Target)
		if err != nil {
			return nil, err
		}
		return evalMember(target, e.Field)

	case *ast.ArrayLiteral:
		elements := make([]Value, len(e.Elements))
		for idx, elem := range e.Elements {
			val, err := i.evalExpression(elem)
			if err != nil {
				return nil, err
			}
			elements[idx] = val
		}
		return &ArrayValue{Elements: elements}, nil

	case *ast.TupleLiteral:
		fields := make(map[string]Value, len(e.Elements))
		for idx, elem := range e.Elements {
			val, err := i.evalExpression(elem.Value)
			if err != nil {
				return nil, err
			}
			key := elem.Name
			if key == "" {
				key = strconv.Itoa(idx + 1)
			}
			fields[key] = val
		}
		return &TupleValue{Fields: fields}, nil

	case *ast.IsTypeExpression:
		val, err := i.evalExpression(e.Expr)
		if err != nil {
			return nil, err
		}
		return &BooleanValue{Value: checkType(val, e.Type)}, nil

	case *ast.FuncLiteral:
		return &FunctionValue{Params: e.Params, Body: e.Body, Env: i.env}, nil

	default:
		return nil, &RuntimeError{Message: fmt.Sprintf("unknown expression %T", expr)}
	}
}

// evalBinary evaluates a binary operation. and/or short-circuit on the
// left operand's boolean coercion; everything else evaluates both sides.
func (i *Interpreter) evalBinary(e *ast.BinaryExpression) (Value, error) {
	switch e.Op {
	case ast.And:
		left, err := i.evalExpression(e.Left)
		if err != nil {
			return nil, err
		}
		if !truthy(left) {
			return &BooleanValue{Value: false}, nil
		}
		right, err := i.evalExpression(e.Right)
		if err != nil {
			return nil, err
		}
		return &BooleanValue{Value: truthy(right)}, nil

	case ast.Or:
		left, err := i.evalExpression(e.Left)
		if err != nil {
			return nil, err
		}
		if truthy(left) {
			return &BooleanValue{Value: true}, nil
		}
		right, err := i.evalExpression(e.Right)
		if err != nil {
			return nil, err
		}
		return &BooleanValue{Value: truthy(right)}, nil
	}

	left, err := i.evalExpression(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpression(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.Add:
		return addValues(left, right)
	case ast.Sub:
		return subValues(left, right)
	case ast.Mul:
		return mulValues(left, right)
	case ast.Div:
		return divValues(left, right)
	case ast.Eq:
		return &BooleanValue{Value: valuesEqual(left, right)}, nil
	case ast.Ne:
		return &BooleanValue{Value: !valuesEqual(left, right)}, nil
	case ast.Lt:
		return compareValues(left, right, func(a, b float64) bool { return a < b })
	case ast.Le:
		return compareValues(left, right, func(a, b float64) bool { return a <= b })
	case ast.Gt:
		return compareValues(left, right, func(a, b float64) bool { return a > b })
	case ast.Ge:
		return compareValues(left, right, func(a, b float64) bool { return a >= b })
	case ast.Xor:
		return &BooleanValue{Value: truthy(left) != truthy(right)}, nil
	case ast.Is:
		return nil, &InvalidOperationError{Message: "'is' operator should be used as 'expr is type'"}
	default:
		return nil, &RuntimeError{Message: "unknown binary operator"}
	}
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpression) (Value, error) {
	val, err := i.evalExpression(e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case ast.Neg:
		switch v := val.(type) {
		case *IntegerValue:
			return &IntegerValue{Value: -v.Value}, nil
		case *RealValue:
			return &RealValue{Value: -v.Value}, nil
		default:
			return nil, &TypeError{Message: "Cannot negate non-numeric value"}
		}
	case ast.Not:
		return &BooleanValue{Value: !truthy(val)}, nil
	default:
		return nil, &RuntimeError{Message: "unknown unary operator"}
	}
}

// callFunction invokes a function value: the current chain is replaced
// by the callee's captured chain extended with a fresh frame holding
// the parameters. Only the call absorbs the return signal; the exit
// signal keeps unwinding so a loop enclosing the call can absorb it.
func (i *Interpreter) callFunction(callee Value, args []Value) (Value, error) {
	fn, ok := callee.(*FunctionValue)
	if !ok {
		return nil, &TypeError{Message: "Cannot call non-function value"}
	}
	if len(args) != len(fn.Params) {
		return nil, &RuntimeError{Message: fmt.Sprintf(
			"Function expects %d arguments, got %d", len(fn.Params), len(args))}
	}

	callEnv := NewEnclosedEnvironment(fn.Env)
	for idx, param := range fn.Params {
		callEnv.Define(param, args[idx])
	}

	prevEnv, prevFunction := i.env, i.insideFunction
	i.env = callEnv
	i.insideFunction = true
	defer func() {
		i.env = prevEnv
		i.insideFunction = prevFunction
	}()

	switch body := fn.Body.(type) {
	case *ast.ExprBody:
		val, err := i.evalExpression(body.Expr)
		if ret, ok := err.(*returnSignal); ok {
			return ret.value, nil
		}
		return val, err

	case *ast.BlockBody:
		for _, stmt := range body.Statements {
			if err := i.execStatement(stmt); err != nil {
				if ret, ok := err.(*returnSignal); ok {
					return ret.value, nil
				}
				return nil, err
			}
		}
		return &NoneValue{}, nil

	default:
		return nil, &RuntimeError{Message: "unknown function body"}
	}
}

// Arithmetic promotes mixed integer/real operands to real. `+` on
// strings concatenates; with exactly one string operand the other is
// coerced to its textual form.

func addValues(left, right Value) (Value, error) {
	switch l := left.(type) {
	case *IntegerValue:
		switch r := right.(type) {
		case *IntegerValue:
			return &IntegerValue{Value: l.Value + r.Value}, nil
		case *RealValue:
			return &RealValue{Value: float64(l.Value) + r.Value}, nil
		}
	case *RealValue:
		switch r := right.(type) {
		case *IntegerValue:
			return &RealValue{Value: l.Value + float64(r.Value)}, nil
		case *RealValue:
			return &RealValue{Value: l.Value + r.Value}, nil
		}
	}
	if l, ok := left.(*StringValue); ok {
		return &StringValue{Value: l.Value + right.String()}, nil
	}
	if r, ok := right.(*StringValue); ok {
		return &StringValue{Value: left.String() + r.Value}, nil
	}
	return nil, &TypeError{Message: "Invalid operands for addition"}
}

func subValues(left, right Value) (Value, error) {
	switch l := left.(type) {
	case *IntegerValue:
		switch r := right.(type) {
		case *IntegerValue:
			return &IntegerValue{Value: l.Value - r.Value}, nil
		case *RealValue:
			return &RealValue{Value: float64(l.Value) - r.Value}, nil
		}
	case *RealValue:
		switch r := right.(type) {
		case *IntegerValue:
			return &RealValue{Value: l.Value - float64(r.Value)}, nil
		case *RealValue:
			return &RealValue{Value: l.Value - r.Value}, nil
		}
	}
	return nil, &TypeError{Message: "Invalid operands for subtraction"}
}

func mulValues(left, right Value) (Value, error) {
	switch l := left.(type) {
	case *IntegerValue:
		switch r := right.(type) {
		case *IntegerValue:
			return &IntegerValue{Value: l.Value * r.Value}, nil
		case *RealValue:
			return &RealValue{Value: float64(l.Value) * r.Value}, nil
		}
	case *RealValue:
		switch r := right.(type) {
		case *IntegerValue:
			return &RealValue{Value: l.Value * float64(r.Value)}, nil
		case *RealValue:
			return &RealValue{Value: l.Value * r.Value}, nil
		}
	}
	return nil, &TypeError{Message: "Invalid operands for multiplication"}
}

// divValues truncates integer division toward zero; any real operand
// yields a real; division by zero traps for both.
func divValues(left, right Value) (Value, error) {
	switch l := left.(type) {
	case *IntegerValue:
		switch r := right.(type) {
		case *IntegerValue:
			if r.Value == 0 {
				return nil, &DivisionByZeroError{}
			}
			return &IntegerValue{Value: l.Value / r.Value}, nil
		case *RealValue:
			if r.Value == 0.0 {
				return nil, &DivisionByZeroError{}
			}
			return &RealValue{Value: float64(l.Value) / r.Value}, nil
		}
	case *RealValue:
		switch r := right.(type) {
		case *IntegerValue:
			if r.Value == 0 {
				return nil, &DivisionByZeroError{}
			}
			return &RealValue{Value: l.Value / float64(r.Value)}, nil
		case *RealValue:
			if r.Value == 0.0 {
				return nil, &DivisionByZeroError{}
			}
			return &RealValue{Value: l.Value / r.Value}, nil
		}
	}
	return nil, &TypeError{Message: "Invalid operands for division"}
}

// compareValues implements the ordered comparisons, which require both
// operands numeric and compare them as doubles.
func compareValues(left, right Value, cmp func(a, b float64) bool) (Value, error) {
	l, err := toNumber(left)
	if err != nil {
		return nil, err
	}
	r, err := toNumber(right)
	if err != nil {
		return nil, err
	}
	return &BooleanValue{Value: cmp(l, r)}, nil
}

func toNumber(v Value) (float64, error) {
	switch val := v.(type) {
	case *IntegerValue:
		return float64(val.Value), nil
	case *RealValue:
		return val.Value, nil
	}
	return 0, &TypeError{Message: "Expected numeric value"}
}

// evalIndex resolves target[index]: 1-based for arrays; tuples convert
// the integer index to its decimal string key.
func evalIndex(target, index Value) (Value, error) {
	idx, ok := index.(*IntegerValue)
	if !ok {
		return nil, &TypeError{Message: "Array index must be an integer"}
	}

	switch t := target.(type) {
	case *ArrayValue:
		if idx.Value < 1 || idx.Value > int64(len(t.Elements)) {
			return nil, &IndexOutOfBoundsError{Index: idx.Value, Size: len(t.Elements)}
		}
		return t.Elements[idx.Value-1], nil
	case *TupleValue:
		key := strconv.FormatInt(idx.Value, 10)
		if val, ok := t.Fields[key]; ok {
			return val, nil
		}
		return nil, &RuntimeError{Message: fmt.Sprintf("Tuple field '%s' not found", key)}
	default:
		return nil, &TypeError{Message: "Cannot index non-array/non-tuple value"}
	}
}

func evalMember(target Value, field string) (Value, error) {
	tuple, ok := target.(*TupleValue)
	if !ok {
		return nil, &TypeError{Message: "Cannot access member of non-tuple value"}
	}
	if val, ok := tuple.Fields[field]; ok {
		return val, nil
	}
	return nil, &RuntimeError{Message: fmt.Sprintf("Tuple field '%s' not found", field)}
}

// makeRange materializes lo..hi inclusively as an integer array,
// reversed when lo > hi.
func makeRange(low, high Value) (Value, error) {
	lo, ok := low.(*IntegerValue)
	if !ok {
		return nil, &TypeError{Message: "Range start must be an integer"}
	}
	hi, ok := high.(*IntegerValue)
	if !ok {
		return nil, &TypeError{Message: "Range end must be an integer"}
	}

	var elements []Value
	if lo.Value <= hi.Value {
		for v := lo.Value; v <= hi.Value; v++ {
			elements = append(elements, &IntegerValue{Value: v})
		}
	} else {
		for v := lo.Value; v >= hi.Value; v-- {
			elements = append(elements, &IntegerValue{Value: v})
		}
	}
	return &ArrayValue{Elements: elements}, nil
}

// checkType matches a value's dynamic tag against a type indicator.
func checkType(val Value, indicator ast.TypeIndicator) bool {
	switch indicator {
	case ast.TypeInt:
		_, ok := val.(*IntegerValue)
		return ok
	case ast.TypeReal:
		_, ok := val.(*RealValue)
		return ok
	case ast.TypeBool:
		_, ok := val.(*BooleanValue)
		return ok
	case ast.TypeString:
		_, ok := val.(*StringValue)
		return ok
	case ast.TypeNone:
		_, ok := val.(*NoneValue)
		return ok
	case ast.TypeArray:
		_, ok := val.(*ArrayValue)
		return ok
	case ast.TypeTuple:
		_, ok := val.(*TupleValue)
		return ok
	case ast.TypeFunc:
		_, ok := val.(*FunctionValue)
		return ok
	}
	return false
}
