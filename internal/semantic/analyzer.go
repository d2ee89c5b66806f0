// Package semantic implements the semantic checker for D programs.
//
// The checker is a single non-mutating traversal that accumulates
// diagnostics. It enforces declaration before use, same-scope
// redeclaration, return/exit placement, arity on direct calls, literal
// division by zero, and constant-index array bounds.
package semantic

import (
	"fmt"
	"strings"

	"github.com/dscript-lang/dscript/internal/ast"
)

// AnalysisError is the combined failure of a semantic check: all
// accumulated diagnostics joined by newlines.
type AnalysisError struct {
	Message string
}

func (e *AnalysisError) Error() string { return e.Message }

// Analyzer performs semantic analysis on a D program.
type Analyzer struct {
	scopes         []*scope
	errors         []string
	insideFunction bool
	insideLoop     bool
}

// NewAnalyzer creates a new semantic analyzer with an empty global scope.
func NewAnalyzer() *Analyzer {
	return &Analyzer{scopes: []*scope{newScope()}}
}

// Errors returns all accumulated diagnostics.
func (a *Analyzer) Errors() []string {
	return a.errors
}

// Analyze checks the program without modifying it. It returns an
// AnalysisError joining all diagnostics if any check failed.
func (a *Analyzer) Analyze(program *ast.Program) error {
	for _, stmt := range program.Statements {
		a.checkStatement(stmt)
	}
	if len(a.errors) > 0 {
		return &AnalysisError{Message: strings.Join(a.errors, "\n")}
	}
	return nil
}

func (a *Analyzer) addError(format string, args ...any) {
	a.errors = append(a.errors, fmt.Sprintf(format, args...))
}

func (a *Analyzer) checkStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarDeclStatement:
		a.checkVarDecl(s)
	case *ast.AssignStatement:
		a.checkExpression(s.Target)
		a.checkExpression(s.Value)
	case *ast.PrintStatement:
		for _, arg := range s.Args {
			a.checkExpression(arg)
		}
	case *ast.IfStatement:
		a.checkExpression(s.Cond)
		a.checkBlock(s.ThenBranch)
		if s.ElseBranch != nil {
			a.checkBlock(s.ElseBranch)
		}
	case *ast.WhileStatement:
		a.checkExpression(s.Cond)
		a.checkLoopBody(s.Body, "")
	case *ast.ForStatement:
		a.checkExpression(s.Iterable)
		a.checkLoopBody(s.Body, s.Var)
	case *ast.ReturnStatement:
		if !a.insideFunction {
			a.addError("Return statement outside of function")
		}
		if s.Value != nil {
			a.checkExpression(s.Value)
		}
	case *ast.ExitStatement:
		if !a.insideLoop {
			a.addError("Exit statement outside of loop")
		}
	case *ast.ExpressionStatement:
		a.checkExpression(s.Expression)
	}
}

// checkVarDecl enforces same-frame redeclaration and publishes the name.
// A function-typed declaration publishes before the checker descends
// into the body so recursive self-references resolve; all other
// declarations publish after checking the initializer, so `var x := x`
// fails.
func (a *Analyzer) checkVarDecl(s *ast.VarDeclStatement) {
	if a.declaredInCurrent(s.Name) {
		a.addError("Variable '%s' already declared", s.Name)
		a.checkExpression(s.Init)
		return
	}

	if fl, ok := s.Init.(*ast.FuncLiteral); ok {
		a.declare(&SymbolInfo{
			Name:       s.Name,
			IsFunction: true,
			ParamCount: len(fl.Params),
			ArrayLen:   -1,
		})
		a.checkExpression(s.Init)
		return
	}

	a.checkExpression(s.Init)
	sym := &SymbolInfo{Name: s.Name, ArrayLen: -1}
	if al, ok := s.Init.(*ast.ArrayLiteral); ok {
		sym.ArrayLen = len(al.Elements)
	}
	a.declare(sym)
}

// checkBlock checks a statement sequence in a fresh scope frame.
func (a *Analyzer) checkBlock(stmts []ast.Statement) {
	a.pushScope()
	for _, stmt := range stmts {
		a.checkStatement(stmt)
	}
	a.popScope()
}

// checkLoopBody checks a loop body with the loop flag raised and the
// loop variable, when named, declared in the body's frame.
func (a *Analyzer) checkLoopBody(stmts []ast.Statement, loopVar string) {
	a.pushScope()
	if loopVar != "" {
		a.declare(&SymbolInfo{Name: loopVar, ArrayLen: -1})
	}
	prevLoop := a.insideLoop
	a.insideLoop = true
	for _, stmt := range stmts {
		a.checkStatement(stmt)
	}
	a.insideLoop = prevLoop
	a.popScope()
}

func (a *Analyzer) checkExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.Identifier:
		if _, ok := a.resolve(e.Value); !ok {
			a.addError("Variable '%s' used before declaration", e.Value)
		}
	case *ast.BinaryExpression:
		a.checkExpression(e.Left)
		a.checkExpression(e.Right)
		if e.Op == ast.Div {
			a.checkLiteralDivisor(e.Right)
		}
	case *ast.UnaryExpression:
		a.checkExpression(e.Right)
	case *ast.RangeExpression:
		a.checkExpression(e.Low)
		a.checkExpression(e.High)
	case *ast.CallExpression:
		a.checkCall(e)
	case *ast.IndexExpression:
		a.checkIndex(e)
	case *ast.MemberExpression:
		a.checkExpression(e.Target)
	case *ast.ArrayLiteral:
		for _, elem := range e.Elements {
			a.checkExpression(elem)
		}
	case *ast.TupleLiteral:
		for _, elem := range e.Elements {
			a.checkExpression(elem.Value)
		}
	case *ast.IsTypeExpression:
		a.checkExpression(e.Expr)
	case *ast.FuncLiteral:
		a.checkFuncLiteral(e)
	}
}

// checkLiteralDivisor flags a division whose right operand is the
// literal 0 or 0.0. The evaluator traps the same condition at run time;
// both behaviors are kept.
func (a *Analyzer) checkLiteralDivisor(right ast.Expression) {
	switch lit := right.(type) {
	case *ast.IntegerLiteral:
		if lit.Value == 0 {
			a.addError("Division by zero")
		}
	case *ast.RealLiteral:
		if lit.Value == 0.0 {
			a.addError("Division by zero")
		}
	}
}

// checkCall validates arity when the callee is a bare identifier that
// resolves to a function declared in scope. Indirect calls are checked
// at run time only.
func (a *Analyzer) checkCall(e *ast.CallExpression) {
	a.checkExpression(e.Callee)
	for _, arg := range e.Arguments {
		a.checkExpression(arg)
	}
	ident, ok := e.Callee.(*ast.Identifier)
	if !ok {
		return
	}
	sym, ok := a.resolve(ident.Value)
	if !ok || !sym.IsFunction {
		return
	}
	if len(e.Arguments) != sym.ParamCount {
		a.addError("Function '%s' expects %d arguments, got %d",
			ident.Value, sym.ParamCount, len(e.Arguments))
	}
}

// checkIndex validates constant integer indices against arrays of
// statically known length: array literals and identifiers declared from
// array literals. Indices are 1-based.
func (a *Analyzer) checkIndex(e *ast.IndexExpression) {
	a.checkExpression(e.Target)
	a.checkExpression(e.Index)

	lit, ok := e.Index.(*ast.IntegerLiteral)
	if !ok {
		return
	}

	length := -1
	switch target := e.Target.(type) {
	case *ast.ArrayLiteral:
		length = len(target.Elements)
	case *ast.Identifier:
		if sym, ok := a.resolve(target.Value); ok && sym.ArrayLen >= 0 {
			length = sym.ArrayLen
		}
	}
	if length < 0 {
		return
	}

	if lit.Value < 1 || lit.Value > int64(length) {
		a.addError("Array index %d out of bounds for array of length %d", lit.Value, length)
	}
}

// checkFuncLiteral checks a function body in a fresh frame holding the
// parameters. The loop flag is left alone: at run time an exit inside a
// function called from a loop unwinds into that loop, so a lexically
// enclosing loop keeps exit legal here while the evaluator backstops the
// rest dynamically.
func (a *Analyzer) checkFuncLiteral(e *ast.FuncLiteral) {
	a.pushScope()
	for _, param := range e.Params {
		a.declare(&SymbolInfo{Name: param, ArrayLen: -1})
	}

	prevFunction := a.insideFunction
	a.insideFunction = true

	switch body := e.Body.(type) {
	case *ast.ExprBody:
		a.checkExpression(body.Expr)
	case *ast.BlockBody:
		for _, stmt := range body.Statements {
			a.checkStatement(stmt)
		}
	}

	a.insideFunction = prevFunction
	a.popScope()
}
