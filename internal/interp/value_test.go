package interp

import "testing"

func TestValueStrings(t *testing.T) {
	tests := []struct {
		value    Value
		expected string
	}{
		{&IntegerValue{Value: 42}, "42"},
		{&IntegerValue{Value: -7}, "-7"},
		{&RealValue{Value: 3.14}, "3.14"},
		{&RealValue{Value: 10.0}, "10"},
		{&BooleanValue{Value: true}, "true"},
		{&BooleanValue{Value: false}, "false"},
		{&StringValue{Value: "hi"}, "hi"},
		{&NoneValue{}, "none"},
		{&ArrayValue{Elements: []Value{
			&IntegerValue{Value: 1}, &StringValue{Value: "x"},
		}}, "[1, x]"},
		{&TupleValue{Fields: map[string]Value{
			"b": &IntegerValue{Value: 2},
			"a": &IntegerValue{Value: 1},
		}}, "{a: 1, b: 2}"},
		{&FunctionValue{}, "<function>"},
	}

	for _, tt := range tests {
		if got := tt.value.String(); got != tt.expected {
			t.Errorf("%s value: expected %q, got %q", tt.value.Type(), tt.expected, got)
		}
	}
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		a, b     Value
		expected bool
	}{
		{&IntegerValue{Value: 1}, &IntegerValue{Value: 1}, true},
		{&IntegerValue{Value: 1}, &IntegerValue{Value: 2}, false},
		{&IntegerValue{Value: 1}, &RealValue{Value: 1.0}, false},
		{&RealValue{Value: 0.3}, &RealValue{Value: 0.3}, true},
		{&StringValue{Value: "a"}, &StringValue{Value: "a"}, true},
		{&NoneValue{}, &NoneValue{}, true},
		{&NoneValue{}, &BooleanValue{Value: false}, false},
		{
			&ArrayValue{Elements: []Value{&IntegerValue{Value: 1}}},
			&ArrayValue{Elements: []Value{&IntegerValue{Value: 1}}},
			true,
		},
		{
			&ArrayValue{Elements: []Value{&IntegerValue{Value: 1}}},
			&ArrayValue{Elements: []Value{&IntegerValue{Value: 2}}},
			false,
		},
		{
			&TupleValue{Fields: map[string]Value{"x": &IntegerValue{Value: 1}}},
			&TupleValue{Fields: map[string]Value{"x": &IntegerValue{Value: 1}}},
			true,
		},
		{&FunctionValue{}, &FunctionValue{}, false},
	}

	for _, tt := range tests {
		if got := valuesEqual(tt.a, tt.b); got != tt.expected {
			t.Errorf("valuesEqual(%s, %s): expected %v, got %v", tt.a, tt.b, tt.expected, got)
		}
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		value    Value
		expected bool
	}{
		{&BooleanValue{Value: true}, true},
		{&BooleanValue{Value: false}, false},
		{&IntegerValue{Value: 0}, false},
		{&IntegerValue{Value: 5}, true},
		{&RealValue{Value: 0.0}, false},
		{&RealValue{Value: 0.1}, true},
		{&NoneValue{}, false},
		{&StringValue{Value: ""}, false},
		{&StringValue{Value: "x"}, true},
		{&ArrayValue{}, false},
		{&ArrayValue{Elements: []Value{&NoneValue{}}}, true},
		{&TupleValue{Fields: map[string]Value{}}, false},
		{&FunctionValue{}, true},
	}

	for _, tt := range tests {
		if got := truthy(tt.value); got != tt.expected {
			t.Errorf("truthy(%s): expected %v, got %v", tt.value.Type(), tt.expected, got)
		}
	}
}
