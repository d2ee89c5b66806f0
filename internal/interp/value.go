// Package interp provides the tree-walking evaluator and runtime for D.
package interp

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dscript-lang/dscript/internal/ast"
)

// Value represents a runtime value in the D interpreter.
// All runtime values implement this interface.
type Value interface {
	// Type returns the type name of the value (e.g. "INTEGER", "STRING")
	Type() string
	// String returns the string representation used by print
	String() string
}

// IntegerValue represents an integer value.
type IntegerValue struct {
	Value int64
}

func (i *IntegerValue) Type() string { return "INTEGER" }

func (i *IntegerValue) String() string {
	return strconv.FormatInt(i.Value, 10)
}

// RealValue represents a floating-point value.
type RealValue struct {
	Value float64
}

func (r *RealValue) Type() string { return "REAL" }

// String drops the decimals when the fractional part is zero, otherwise
// uses the shortest decimal form.
func (r *RealValue) String() string {
	if math.Trunc(r.Value) == r.Value && !math.IsInf(r.Value, 0) {
		return strconv.FormatFloat(r.Value, 'f', 0, 64)
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

// BooleanValue represents a boolean value.
type BooleanValue struct {
	Value bool
}

func (b *BooleanValue) Type() string { return "BOOLEAN" }

func (b *BooleanValue) String() string {
	return strconv.FormatBool(b.Value)
}

// StringValue represents a string value.
type StringValue struct {
	Value string
}

func (s *StringValue) Type() string { return "STRING" }

func (s *StringValue) String() string { return s.Value }

// NoneValue represents the none value.
type NoneValue struct{}

func (n *NoneValue) Type() string { return "NONE" }

func (n *NoneValue) String() string { return "none" }

// ArrayValue represents an ordered sequence of values. Indexing is
// 1-based at the source level.
type ArrayValue struct {
	Elements []Value
}

func (a *ArrayValue) Type() string { return "ARRAY" }

func (a *ArrayValue) String() string {
	elems := make([]string, len(a.Elements))
	for i, v := range a.Elements {
		elems[i] = v.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

// TupleValue maps field names to values. Positional elements are keyed
// by the decimal string form of their 1-based position.
type TupleValue struct {
	Fields map[string]Value
}

func (t *TupleValue) Type() string { return "TUPLE" }

// String renders the fields sorted lexicographically for stable output.
func (t *TupleValue) String() string {
	keys := make([]string, 0, len(t.Fields))
	for k := range t.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+": "+t.Fields[k].String())
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// FunctionValue is a first-class function closing over the environment
// chain active when its literal was evaluated.
type FunctionValue struct {
	Params []string
	Body   ast.FuncBody
	Env    *Environment
}

func (f *FunctionValue) Type() string { return "FUNCTION" }

func (f *FunctionValue) String() string { return "<function>" }

// epsilon is the tolerance for real equality comparisons.
const epsilon = 2.220446049250313e-16

// valuesEqual implements structural equality: integers, booleans,
// strings and none by natural equality, reals by absolute difference
// below machine epsilon, arrays and tuples componentwise. Functions are
// never equal to anything.
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case *IntegerValue:
		bv, ok := b.(*IntegerValue)
		return ok && av.Value == bv.Value
	case *RealValue:
		bv, ok := b.(*RealValue)
		if !ok {
			return false
		}
		diff := av.Value - bv.Value
		if diff < 0 {
			diff = -diff
		}
		return diff < epsilon
	case *BooleanValue:
		bv, ok := b.(*BooleanValue)
		return ok && av.Value == bv.Value
	case *StringValue:
		bv, ok := b.(*StringValue)
		return ok && av.Value == bv.Value
	case *NoneValue:
		_, ok := b.(*NoneValue)
		return ok
	case *ArrayValue:
		bv, ok := b.(*ArrayValue)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !valuesEqual(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *TupleValue:
		bv, ok := b.(*TupleValue)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for k, v := range av.Fields {
			other, ok := bv.Fields[k]
			if !ok || !valuesEqual(v, other) {
				return false
			}
		}
		return true
	}
	return false
}

// truthy implements the boolean coercion table: booleans are
// themselves, numbers are non-zero, none is false, strings and
// containers are non-empty, functions are true.
func truthy(v Value) bool {
	switch val := v.(type) {
	case *BooleanValue:
		return val.Value
	case *IntegerValue:
		return val.Value != 0
	case *RealValue:
		return val.Value != 0.0
	case *NoneValue:
		return false
	case *StringValue:
		return val.Value != ""
	case *ArrayValue:
		return len(val.Elements) > 0
	case *TupleValue:
		return len(val.Fields) > 0
	case *FunctionValue:
		return true
	}
	return false
}
