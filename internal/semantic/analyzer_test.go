package semantic

import (
	"strings"
	"testing"

	"github.com/dscript-lang/dscript/internal/ast"
	"github.com/dscript-lang/dscript/internal/parser"
)

func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := parser.New(source).ParseProgram()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return program
}

// checkSource parses and analyzes the source, returning the diagnostics.
func checkSource(t *testing.T, source string) []string {
	t.Helper()
	a := NewAnalyzer()
	a.Analyze(mustParse(t, source))
	return a.Errors()
}

func expectClean(t *testing.T, source string) {
	t.Helper()
	if errs := checkSource(t, source); len(errs) != 0 {
		t.Fatalf("expected no errors for %q, got %v", source, errs)
	}
}

func expectError(t *testing.T, source, fragment string) {
	t.Helper()
	errs := checkSource(t, source)
	if len(errs) == 0 {
		t.Fatalf("expected an error for %q", source)
	}
	for _, e := range errs {
		if strings.Contains(e, fragment) {
			return
		}
	}
	t.Fatalf("expected an error containing %q for %q, got %v", fragment, source, errs)
}

func TestDeclarationBeforeUse(t *testing.T) {
	expectError(t, "var x := y\nprint x", "used before declaration")
	expectClean(t, "var x := 10\nprint x")
}

func TestSelfReferentialInitializer(t *testing.T) {
	// Non-function declarations publish their name only after the
	// initializer is checked.
	expectError(t, "var x := x", "used before declaration")
}

func TestRecursiveFunctionResolves(t *testing.T) {
	// Function declarations publish before their body is checked.
	expectClean(t, `
		var fact := func(n) is
			if n <= 1 then return 1 end
			return n * fact(n - 1)
		end
		print fact(5)
	`)
}

func TestRedeclaration(t *testing.T) {
	expectError(t, "var x := 10\nvar x := 20", "already declared")
}

func TestShadowingAllowed(t *testing.T) {
	expectClean(t, `
		var x := 5
		if true then
			var x := 10
			print x
		end
		print x
	`)
}

func TestBlockScopeInvisibleOutside(t *testing.T) {
	expectError(t, `
		if true then
			var inner := 1
		end
		print inner
	`, "used before declaration")
}

func TestLoopVariableScope(t *testing.T) {
	expectClean(t, "for i in 1..3 loop print i end")
	expectError(t, "for i in 1..3 loop print i end\nprint i", "used before declaration")
}

func TestReturnPlacement(t *testing.T) {
	expectError(t, "return 1", "Return statement outside of function")
	expectClean(t, "var f := func() is return 1 end\nprint f()")
}

func TestExitPlacement(t *testing.T) {
	expectError(t, "exit", "Exit statement outside of loop")
	expectClean(t, "while true loop exit end")
	// An exit in a function defined inside a loop unwinds into that
	// loop at run time, so it passes the static check.
	expectClean(t, `
		while true loop
			var f := func() is exit end
			f()
		end
	`)
	expectError(t, "var f := func() is exit end", "Exit statement outside of loop")
}

func TestDirectCallArity(t *testing.T) {
	expectError(t, "var f := func(x, y) => x + y\nf(1)", "expects 2 arguments, got 1")
	expectClean(t, "var f := func(x, y) => x + y\nprint f(1, 2)")
}

func TestIndirectCallNotChecked(t *testing.T) {
	// Calls through an array element cannot be arity-checked statically.
	expectClean(t, `
		var f := func(x, y) => x + y
		var fs := [f]
		fs[1](1)
	`)
}

func TestLiteralDivisionByZero(t *testing.T) {
	expectError(t, "var x := 10 / 0", "Division by zero")
	expectError(t, "var x := 5.0 / 0.0", "Division by zero")
	expectClean(t, "var x := 10 / 2")
}

func TestConstantIndexBounds(t *testing.T) {
	expectClean(t, "var x := [1, 2, 3][2]")
	expectError(t, "var x := [1, 2, 3][20]", "out of bounds")
	expectError(t, "var x := [1, 2, 3][0]", "out of bounds")

	// Identifier targets declared from array literals carry their length.
	expectError(t, "var arr := [10, 20, 30]\nprint arr[4]", "out of bounds")
	expectClean(t, "var arr := [10, 20, 30]\nprint arr[3]")
}

func TestDynamicIndexNotChecked(t *testing.T) {
	expectClean(t, "var arr := [1, 2]\nvar i := 5\nprint arr[i]")
}

func TestFunctionParamsScopedToBody(t *testing.T) {
	expectError(t, "var f := func(x) => x + 1\nprint x", "used before declaration")
}

func TestUndefinedInFunctionBody(t *testing.T) {
	expectError(t, "var f := func(x) => y + 1", "used before declaration")
}

func TestErrorsAccumulate(t *testing.T) {
	errs := checkSource(t, "var a := b\nvar c := d")
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
}

func TestAnalyzeJoinsErrors(t *testing.T) {
	a := NewAnalyzer()
	err := a.Analyze(mustParse(t, "var a := b\nvar c := d"))
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := err.(*AnalysisError); !ok {
		t.Fatalf("expected *AnalysisError, got %T", err)
	}
	if !strings.Contains(err.Error(), "\n") {
		t.Errorf("expected newline-joined message, got %q", err.Error())
	}
}

func TestAnalyzeDoesNotMutate(t *testing.T) {
	program := mustParse(t, "var x := 5 + 3\nprint x")
	before := program.String()
	NewAnalyzer().Analyze(program)
	if program.String() != before {
		t.Error("analysis must not modify the AST")
	}
}
