package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dscript-lang/dscript/internal/parser"
)

// run parses and interprets the source, returning the printed lines.
func run(t *testing.T, source string) []string {
	t.Helper()
	out, err := tryRun(source)
	if err != nil {
		t.Fatalf("run of %q failed: %v", source, err)
	}
	return out
}

// tryRun parses and interprets the source, returning output lines and
// any runtime error.
func tryRun(source string) ([]string, error) {
	program, err := parser.New(source).ParseProgram()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := New(&buf).Interpret(program); err != nil {
		return nil, err
	}
	text := strings.TrimRight(buf.String(), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

func expectOutput(t *testing.T, source string, expected ...string) {
	t.Helper()
	lines := run(t, source)
	if len(lines) != len(expected) {
		t.Fatalf("source %q: expected %d lines, got %d: %v", source, len(expected), len(lines), lines)
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("source %q: line %d: expected %q, got %q", source, i, expected[i], lines[i])
		}
	}
}

func TestArithmetic(t *testing.T) {
	expectOutput(t, "var x := 10; var y := 20; print x + y", "30")
}

func TestIfElse(t *testing.T) {
	expectOutput(t,
		`var age := 18; if age >= 18 then print "Adult" else print "Minor" end`,
		"Adult")
	expectOutput(t,
		`var age := 15; if age >= 18 then print "Adult" else print "Minor" end`,
		"Minor")
}

func TestShortIf(t *testing.T) {
	expectOutput(t, "var x := 1; if x > 0 => print \"pos\"", "pos")
	expectOutput(t, "var x := -1\nif x > 0 => print \"pos\"")
}

func TestWhileLoop(t *testing.T) {
	expectOutput(t, "var i := 1; while i <= 3 loop print i; i := i + 1 end", "1", "2", "3")
}

func TestForOverRange(t *testing.T) {
	expectOutput(t, "for i in 1..3 loop print i end", "1", "2", "3")
}

func TestForOverReversedRange(t *testing.T) {
	expectOutput(t, "for i in 3..1 loop print i end", "3", "2", "1")
}

func TestForOverArray(t *testing.T) {
	expectOutput(t, "for x in [10, 20, 30] loop print x end", "10", "20", "30")
}

func TestInfiniteForWithExit(t *testing.T) {
	expectOutput(t, `
		var n := 0
		for loop
			n := n + 1
			if n = 3 => exit
		end
		print n
	`, "3")
}

func TestExitBreaksInnermostLoop(t *testing.T) {
	expectOutput(t, `
		var i := 0
		while i < 2 loop
			var j := 0
			while true loop
				j := j + 1
				if j = 2 => exit
			end
			print j
			i := i + 1
		end
	`, "2", "2")
}

func TestClosureCounter(t *testing.T) {
	expectOutput(t, `
		var mk := func() is
			var c := 0
			return func() is
				c := c + 1
				return c
			end
		end
		var k := mk()
		print k()
		print k()
		print k()
	`, "1", "2", "3")
}

func TestClosuresAreIndependent(t *testing.T) {
	expectOutput(t, `
		var mk := func() is
			var c := 0
			return func() is
				c := c + 1
				return c
			end
		end
		var a := mk()
		var b := mk()
		print a()
		print a()
		print b()
	`, "1", "2", "1")
}

func TestRecursion(t *testing.T) {
	expectOutput(t, `
		var fact := func(n) is
			if n <= 1 then return 1 end
			return n * fact(n - 1)
		end
		print fact(5)
	`, "120")
}

func TestArrowFunction(t *testing.T) {
	expectOutput(t, "var f := func(x, y) => x * y\nprint f(3, 4)", "12")
}

func TestBlockFunctionWithoutReturnYieldsNone(t *testing.T) {
	expectOutput(t, "var f := func() is print \"side\" end\nprint f()", "side", "none")
}

func TestReturnInsideLoopInsideFunction(t *testing.T) {
	// The return signal carries its payload through the loop boundary.
	expectOutput(t, `
		var find := func(limit) is
			var i := 0
			while true loop
				i := i + 1
				if i = limit then return i end
			end
		end
		print find(4)
	`, "4")
}

func TestOneBasedIndexing(t *testing.T) {
	expectOutput(t, "print [10, 20, 30][1]", "10")
	expectOutput(t, "print [10, 20, 30][3]", "30")

	for _, source := range []string{"print [10, 20, 30][0]", "print [10, 20, 30][4]"} {
		_, err := tryRun(source)
		if err == nil {
			t.Fatalf("source %q: expected index error", source)
		}
		if _, ok := err.(*IndexOutOfBoundsError); !ok {
			t.Errorf("source %q: expected IndexOutOfBoundsError, got %T", source, err)
		}
	}
}

func TestIndexAssignmentRebindsContainer(t *testing.T) {
	expectOutput(t, `
		var arr := [1, 2, 3]
		arr[2] := 20
		print arr
	`, "[1, 20, 3]")
}

func TestTuples(t *testing.T) {
	expectOutput(t, "var p := {x := 2, y := 3}\nprint p.y", "3")
	expectOutput(t, "var p := {7, 8}\nprint p.1, p.2", "7 8")
	expectOutput(t, "var p := {7, 8}\nprint p[2]", "8")
	expectOutput(t, `
		var p := {x := 1}
		p.x := 5
		p[2] := "two"
		print p.x, p[2]
	`, "5 two")
}

func TestTupleMissingField(t *testing.T) {
	_, err := tryRun("var p := {x := 1}\nprint p.y")
	if err == nil {
		t.Fatal("expected runtime error")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDivision(t *testing.T) {
	expectOutput(t, "print 7 / 2", "3")
	expectOutput(t, "print -7 / 2", "-3")
	expectOutput(t, "print 7.0 / 2", "3.5")
	expectOutput(t, "print 7 / 2.0", "3.5")
}

func TestDivisionByZero(t *testing.T) {
	for _, source := range []string{
		"var x := 10\nvar y := 0\nprint x / y",
		"var x := 10.0\nvar y := 0.0\nprint x / y",
	} {
		_, err := tryRun(source)
		if err == nil {
			t.Fatalf("source %q: expected division error", source)
		}
		if _, ok := err.(*DivisionByZeroError); !ok {
			t.Errorf("source %q: expected DivisionByZeroError, got %T (%v)", source, err, err)
		}
	}
}

func TestNumericPromotion(t *testing.T) {
	expectOutput(t, "print 1 + 2.5", "3.5")
	expectOutput(t, "print 2.5 + 1", "3.5")
	expectOutput(t, "print 2 * 1.5", "3")
}

func TestStringConcatenation(t *testing.T) {
	expectOutput(t, `print "foo" + "bar"`, "foobar")
	expectOutput(t, `print "n = " + 42`, "n = 42")
	expectOutput(t, `print 42 + "!"`, "42!")
}

func TestComparisons(t *testing.T) {
	expectOutput(t, "print 1 < 2, 2 <= 2, 3 > 2, 2 >= 3", "true true true false")
	expectOutput(t, "print 1 = 1, 1 /= 1", "true false")
	expectOutput(t, "print 1.0 = 1, [1, 2] = [1, 2], {x := 1} = {x := 1}", "false true true")
	expectOutput(t, "var f := func() => 1\nprint f = f", "false")
}

func TestOrderedComparisonRequiresNumbers(t *testing.T) {
	_, err := tryRun(`print "a" < "b"`)
	if err == nil {
		t.Fatal("expected type error")
	}
	if _, ok := err.(*TypeError); !ok {
		t.Errorf("expected TypeError, got %T", err)
	}
}

func TestShortCircuit(t *testing.T) {
	// The right operand must not be evaluated when the left decides.
	expectOutput(t, `
		var called := false
		var effect := func() is
			called := true
			return true
		end
		print false and effect()
		print true or effect()
		print called
	`, "false", "true", "false")
}

func TestBooleanCoercion(t *testing.T) {
	expectOutput(t, `if 5 then print "int" end`, "int")
	expectOutput(t, `if 0.0 then print "real" else print "zero" end`, "zero")
	expectOutput(t, `if "" then print "s" else print "empty" end`, "empty")
	expectOutput(t, `if [1] then print "arr" end`, "arr")
	expectOutput(t, `if none then print "n" else print "nope" end`, "nope")
	expectOutput(t, "print not 0, not 3", "true false")
}

func TestIsTypeChecks(t *testing.T) {
	expectOutput(t, "print 1 is int, 1 is real", "true false")
	expectOutput(t, "print 1.5 is real, true is bool", "true true")
	expectOutput(t, `print "s" is string, none is none`, "true true")
	expectOutput(t, "print [1] is [], {x := 1} is {}", "true true")
	expectOutput(t, "var f := func() => 1\nprint f is func", "true")
}

func TestBareIsIsInvalid(t *testing.T) {
	_, err := tryRun("var a := 1\nvar b := 2\nprint a is b")
	if err == nil {
		t.Fatal("expected invalid operation")
	}
	if _, ok := err.(*InvalidOperationError); !ok {
		t.Errorf("expected InvalidOperationError, got %T", err)
	}
}

func TestRangeOutsideForMaterializes(t *testing.T) {
	expectOutput(t, "var r := 1..4\nprint r", "[1, 2, 3, 4]")
}

func TestScopeDiscipline(t *testing.T) {
	// A shadowing binding restores the outer value on block exit.
	expectOutput(t, `
		var x := 5
		if true then
			var x := 10
			print x
		end
		print x
	`, "10", "5")

	// Assignment without declaration reaches the outer binding.
	expectOutput(t, `
		var x := 5
		if true then
			x := 10
		end
		print x
	`, "10")
}

func TestUndefinedVariable(t *testing.T) {
	_, err := tryRun("print missing")
	if err == nil {
		t.Fatal("expected undefined variable error")
	}
	uv, ok := err.(*UndefinedVariableError)
	if !ok {
		t.Fatalf("expected UndefinedVariableError, got %T", err)
	}
	if uv.Name != "missing" {
		t.Errorf("expected name missing, got %s", uv.Name)
	}
}

func TestStrayReturnAndExit(t *testing.T) {
	for _, source := range []string{"return 1", "exit"} {
		_, err := tryRun(source)
		if err == nil {
			t.Fatalf("source %q: expected runtime error", source)
		}
		if _, ok := err.(*RuntimeError); !ok {
			t.Errorf("source %q: expected RuntimeError, got %T", source, err)
		}
	}
}

func TestIndirectCallArityFailsAtRuntime(t *testing.T) {
	_, err := tryRun(`
		var f := func(x, y) => x + y
		var fs := [f]
		print fs[1](1)
	`)
	if err == nil {
		t.Fatal("expected arity error")
	}
	if !strings.Contains(err.Error(), "expects 2 arguments, got 1") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCallNonFunction(t *testing.T) {
	_, err := tryRun("var x := 1\nx(2)")
	if err == nil {
		t.Fatal("expected type error")
	}
	if _, ok := err.(*TypeError); !ok {
		t.Errorf("expected TypeError, got %T", err)
	}
}

func TestExitInsideCalledFunctionUnwindsToLoop(t *testing.T) {
	expectOutput(t, `
		var stop := func() is exit end
		var n := 0
		while true loop
			n := n + 1
			if n = 2 => stop()
		end
		print n
	`, "2")
}

func TestPrintJoinsWithSpaces(t *testing.T) {
	expectOutput(t, `print 1, "two", 3.5, true, none`, "1 two 3.5 true none")
}

func TestValueFormatting(t *testing.T) {
	expectOutput(t, "print 10.0", "10")
	expectOutput(t, "print [1, [2, 3], \"s\"]", "[1, [2, 3], s]")
	expectOutput(t, "print {b := 2, a := 1}", "{a: 1, b: 2}")
	expectOutput(t, "print {9, 10}", "{1: 9, 2: 10}")
	expectOutput(t, "var f := func() => 1\nprint f", "<function>")
}
