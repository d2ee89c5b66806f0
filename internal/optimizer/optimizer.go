// Package optimizer implements the multi-pass AST optimizer for D.
//
// The optimizer rewrites the AST in place and runs to a fixed point:
// each iteration executes the passes in order and iteration repeats as
// long as any pass reports a change. Rewrites preserve evaluation
// semantics for programs that pass semantic checks; when a
// transformation cannot be proven safe it is skipped.
package optimizer

import (
	"github.com/dscript-lang/dscript/internal/ast"
)

// Pass is a single rewrite pass over the program. Collection passes fill
// the shared context and report no change; rewrite passes mutate the AST.
type Pass interface {
	// Name returns the name of this pass for debugging.
	Name() string

	// Run executes the pass and reports whether the AST was modified.
	Run(program *ast.Program, ctx *passContext) bool
}

// passContext is the state shared by the passes of one iteration.
type passContext struct {
	// shadowed holds outer-level names re-declared inside any nested
	// block; they are excluded from constant propagation.
	shadowed map[string]bool
	// constants maps propagation candidates to their literal initializer.
	constants map[string]ast.Expression
}

// Optimizer drives the fixpoint loop.
type Optimizer struct {
	passes []Pass
}

// New creates an Optimizer with the standard pass pipeline.
func New() *Optimizer {
	return &Optimizer{
		passes: []Pass{
			&collectShadowedPass{},
			&collectConstantsPass{},
			&propagateConstantsPass{},
			&foldConstantsPass{},
			&simplifyConditionalsPass{},
			&removeUnreachablePass{},
			&removeUnusedPass{},
		},
	}
}

// Optimize rewrites the program in place until no pass reports a change.
// It returns true when any rewrite was applied.
func (o *Optimizer) Optimize(program *ast.Program) bool {
	modified := false
	for {
		ctx := &passContext{
			shadowed:  make(map[string]bool),
			constants: make(map[string]ast.Expression),
		}
		changed := false
		for _, pass := range o.passes {
			if pass.Run(program, ctx) {
				changed = true
			}
		}
		if !changed {
			return modified
		}
		modified = true
	}
}

// isPureLiteral reports whether the expression is one of the literal
// forms eligible for constant propagation.
func isPureLiteral(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.IntegerLiteral, *ast.RealLiteral, *ast.BooleanLiteral,
		*ast.StringLiteral, *ast.NoneLiteral:
		return true
	}
	return false
}

// cloneLiteral copies a literal node so propagation sites never share
// structure with the declaration.
func cloneLiteral(expr ast.Expression) ast.Expression {
	switch lit := expr.(type) {
	case *ast.IntegerLiteral:
		c := *lit
		return &c
	case *ast.RealLiteral:
		c := *lit
		return &c
	case *ast.BooleanLiteral:
		c := *lit
		return &c
	case *ast.StringLiteral:
		c := *lit
		return &c
	case *ast.NoneLiteral:
		c := *lit
		return &c
	}
	return expr
}

// containsVarDecl reports whether the statement sequence directly
// contains a variable declaration. Blocks that do are skipped by
// constant propagation as a conservative proxy for "this block may
// shadow or re-bind a propagated name".
func containsVarDecl(stmts []ast.Statement) bool {
	for _, stmt := range stmts {
		if _, ok := stmt.(*ast.VarDeclStatement); ok {
			return true
		}
	}
	return false
}

// blocksOf returns the nested statement sequences of a statement, used
// by walkers that descend into control flow.
func blocksOf(stmt ast.Statement) [][]ast.Statement {
	switch s := stmt.(type) {
	case *ast.IfStatement:
		if s.ElseBranch != nil {
			return [][]ast.Statement{s.ThenBranch, s.ElseBranch}
		}
		return [][]ast.Statement{s.ThenBranch}
	case *ast.WhileStatement:
		return [][]ast.Statement{s.Body}
	case *ast.ForStatement:
		return [][]ast.Statement{s.Body}
	}
	return nil
}

// exprsOf returns the expressions held directly by a statement.
func exprsOf(stmt ast.Statement) []ast.Expression {
	switch s := stmt.(type) {
	case *ast.VarDeclStatement:
		return []ast.Expression{s.Init}
	case *ast.AssignStatement:
		return []ast.Expression{s.Target, s.Value}
	case *ast.PrintStatement:
		return s.Args
	case *ast.IfStatement:
		return []ast.Expression{s.Cond}
	case *ast.WhileStatement:
		return []ast.Expression{s.Cond}
	case *ast.ForStatement:
		return []ast.Expression{s.Iterable}
	case *ast.ReturnStatement:
		if s.Value != nil {
			return []ast.Expression{s.Value}
		}
	case *ast.ExpressionStatement:
		return []ast.Expression{s.Expression}
	}
	return nil
}

// walkExpressions visits every expression reachable from expr, including
// the bodies of function literals.
func walkExpressions(expr ast.Expression, visit func(ast.Expression)) {
	if expr == nil {
		return
	}
	visit(expr)
	switch e := expr.(type) {
	case *ast.BinaryExpression:
		walkExpressions(e.Left, visit)
		walkExpressions(e.Right, visit)
	case *ast.UnaryExpression:
		walkExpressions(e.Right, visit)
	case *ast.RangeExpression:
		walkExpressions(e.Low, visit)
		walkExpressions(e.High, visit)
	case *ast.CallExpression:
		walkExpressions(e.Callee, visit)
		for _, arg := range e.Arguments {
			walkExpressions(arg, visit)
		}
	case *ast.IndexExpression:
		walkExpressions(e.Target, visit)
		walkExpressions(e.Index, visit)
	case *ast.MemberExpression:
		walkExpressions(e.Target, visit)
	case *ast.ArrayLiteral:
		for _, elem := range e.Elements {
			walkExpressions(elem, visit)
		}
	case *ast.TupleLiteral:
		for _, elem := range e.Elements {
			walkExpressions(elem.Value, visit)
		}
	case *ast.IsTypeExpression:
		walkExpressions(e.Expr, visit)
	case *ast.FuncLiteral:
		switch body := e.Body.(type) {
		case *ast.ExprBody:
			walkExpressions(body.Expr, visit)
		case *ast.BlockBody:
			walkStatements(body.Statements, visit)
		}
	}
}

// walkStatements visits every expression reachable from the statement
// sequence, descending into nested blocks and function literals.
func walkStatements(stmts []ast.Statement, visit func(ast.Expression)) {
	for _, stmt := range stmts {
		for _, expr := range exprsOf(stmt) {
			walkExpressions(expr, visit)
		}
		for _, block := range blocksOf(stmt) {
			walkStatements(block, visit)
		}
	}
}
