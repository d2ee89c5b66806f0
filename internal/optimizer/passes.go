package optimizer

import (
	"strconv"

	"github.com/dscript-lang/dscript/internal/ast"
	"github.com/dscript-lang/dscript/internal/lexer"
)

// walkAllStatements visits every statement in the sequence, descending
// into control-flow bodies and the block bodies of function literals.
func walkAllStatements(stmts []ast.Statement, visit func(ast.Statement)) {
	for _, stmt := range stmts {
		visit(stmt)
		for _, block := range blocksOf(stmt) {
			walkAllStatements(block, visit)
		}
		for _, expr := range exprsOf(stmt) {
			walkExpressions(expr, func(e ast.Expression) {
				fl, ok := e.(*ast.FuncLiteral)
				if !ok {
					return
				}
				if bb, ok := fl.Body.(*ast.BlockBody); ok {
					walkAllStatements(bb.Statements, visit)
				}
			})
		}
	}
}

// ============================================================================
// Pass 1: shadowed-variable collection
// ============================================================================

// collectShadowedPass records outer-level names that are re-declared
// inside any nested block (including loop variables and function
// parameters). Shadowed names are excluded from constant propagation.
// This pass never changes the AST.
type collectShadowedPass struct{}

func (p *collectShadowedPass) Name() string { return "collect-shadowed" }

func (p *collectShadowedPass) Run(program *ast.Program, ctx *passContext) bool {
	outer := make(map[string]bool)
	for _, stmt := range program.Statements {
		if vd, ok := stmt.(*ast.VarDeclStatement); ok {
			outer[vd.Name] = true
		}
	}

	mark := func(name string) {
		if outer[name] {
			ctx.shadowed[name] = true
		}
	}

	for _, stmt := range program.Statements {
		if fs, ok := stmt.(*ast.ForStatement); ok {
			mark(fs.Var)
		}
		for _, block := range blocksOf(stmt) {
			collectDeclared(block, mark)
		}
		for _, expr := range exprsOf(stmt) {
			walkExpressions(expr, func(e ast.Expression) {
				if fl, ok := e.(*ast.FuncLiteral); ok {
					for _, param := range fl.Params {
						mark(param)
					}
				}
			})
		}
	}
	return false
}

// collectDeclared reports every name bound anywhere inside the sequence.
func collectDeclared(stmts []ast.Statement, mark func(string)) {
	walkAllStatements(stmts, func(stmt ast.Statement) {
		switch s := stmt.(type) {
		case *ast.VarDeclStatement:
			mark(s.Name)
		case *ast.ForStatement:
			mark(s.Var)
		}
	})
	walkStatements(stmts, func(e ast.Expression) {
		if fl, ok := e.(*ast.FuncLiteral); ok {
			for _, param := range fl.Params {
				mark(param)
			}
		}
	})
}

// ============================================================================
// Pass 2: constant collection
// ============================================================================

// collectConstantsPass records top-level declarations whose initializer
// is a pure literal and whose name is never assigned later anywhere in
// the program and not shadowed. This pass never changes the AST.
type collectConstantsPass struct{}

func (p *collectConstantsPass) Name() string { return "collect-constants" }

func (p *collectConstantsPass) Run(program *ast.Program, ctx *passContext) bool {
	assigned := make(map[string]bool)
	walkAllStatements(program.Statements, func(stmt ast.Statement) {
		as, ok := stmt.(*ast.AssignStatement)
		if !ok {
			return
		}
		if name, ok := rootIdent(as.Target); ok {
			assigned[name] = true
		}
	})

	for _, stmt := range program.Statements {
		vd, ok := stmt.(*ast.VarDeclStatement)
		if !ok {
			continue
		}
		if !isPureLiteral(vd.Init) || assigned[vd.Name] || ctx.shadowed[vd.Name] {
			continue
		}
		ctx.constants[vd.Name] = vd.Init
	}
	return false
}

// rootIdent returns the identifier at the base of an assignment target
// chain (x, arr[i], t.field all root at their identifier).
func rootIdent(expr ast.Expression) (string, bool) {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Value, true
	case *ast.IndexExpression:
		return rootIdent(e.Target)
	case *ast.MemberExpression:
		return rootIdent(e.Target)
	}
	return "", false
}

// ============================================================================
// Pass 3: constant propagation
// ============================================================================

// propagateConstantsPass replaces candidate identifiers with clones of
// their recorded literal. It rewrites top-level statements and descends
// only into nested blocks that contain no variable declaration, a
// conservative proxy for "this block cannot shadow or re-bind".
type propagateConstantsPass struct {
	consts  map[string]ast.Expression
	changed bool
}

func (p *propagateConstantsPass) Name() string { return "propagate-constants" }

func (p *propagateConstantsPass) Run(program *ast.Program, ctx *passContext) bool {
	if len(ctx.constants) == 0 {
		return false
	}
	p.consts = ctx.constants
	p.changed = false
	p.rewriteStmts(program.Statements)
	return p.changed
}

func (p *propagateConstantsPass) rewriteStmts(stmts []ast.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VarDeclStatement:
			s.Init = p.rewrite(s.Init)
		case *ast.AssignStatement:
			s.Target = p.rewrite(s.Target)
			s.Value = p.rewrite(s.Value)
		case *ast.PrintStatement:
			for i, arg := range s.Args {
				s.Args[i] = p.rewrite(arg)
			}
		case *ast.IfStatement:
			s.Cond = p.rewrite(s.Cond)
		case *ast.WhileStatement:
			s.Cond = p.rewrite(s.Cond)
		case *ast.ForStatement:
			s.Iterable = p.rewrite(s.Iterable)
		case *ast.ReturnStatement:
			if s.Value != nil {
				s.Value = p.rewrite(s.Value)
			}
		case *ast.ExpressionStatement:
			s.Expression = p.rewrite(s.Expression)
		}
		for _, block := range blocksOf(stmt) {
			if !containsVarDecl(block) {
				p.rewriteStmts(block)
			}
		}
	}
}

func (p *propagateConstantsPass) rewrite(expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.Identifier:
		if lit, ok := p.consts[e.Value]; ok {
			p.changed = true
			return cloneLiteral(lit)
		}
	case *ast.BinaryExpression:
		e.Left = p.rewrite(e.Left)
		e.Right = p.rewrite(e.Right)
	case *ast.UnaryExpression:
		e.Right = p.rewrite(e.Right)
	case *ast.RangeExpression:
		e.Low = p.rewrite(e.Low)
		e.High = p.rewrite(e.High)
	case *ast.CallExpression:
		e.Callee = p.rewrite(e.Callee)
		for i, arg := range e.Arguments {
			e.Arguments[i] = p.rewrite(arg)
		}
	case *ast.IndexExpression:
		e.Target = p.rewrite(e.Target)
		e.Index = p.rewrite(e.Index)
	case *ast.MemberExpression:
		e.Target = p.rewrite(e.Target)
	case *ast.ArrayLiteral:
		for i, elem := range e.Elements {
			e.Elements[i] = p.rewrite(elem)
		}
	case *ast.TupleLiteral:
		for i := range e.Elements {
			e.Elements[i].Value = p.rewrite(e.Elements[i].Value)
		}
	case *ast.IsTypeExpression:
		e.Expr = p.rewrite(e.Expr)
	case *ast.FuncLiteral:
		switch body := e.Body.(type) {
		case *ast.ExprBody:
			body.Expr = p.rewrite(body.Expr)
		case *ast.BlockBody:
			if !containsVarDecl(body.Statements) {
				p.rewriteStmts(body.Statements)
			}
		}
	}
	return expr
}

// ============================================================================
// Pass 4: constant folding
// ============================================================================

// foldConstantsPass simplifies expressions bottom-up: literal integer,
// real and boolean algebra, identity/absorption rewrites for mixed
// literal and identifier operands, and unary folds. A literal division
// by zero is never folded; it was flagged by the checker or traps at
// run time.
type foldConstantsPass struct {
	changed bool
}

func (p *foldConstantsPass) Name() string { return "fold-constants" }

func (p *foldConstantsPass) Run(program *ast.Program, _ *passContext) bool {
	p.changed = false
	p.foldStmts(program.Statements)
	return p.changed
}

func (p *foldConstantsPass) foldStmts(stmts []ast.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VarDeclStatement:
			s.Init = p.fold(s.Init)
		case *ast.AssignStatement:
			s.Target = p.fold(s.Target)
			s.Value = p.fold(s.Value)
		case *ast.PrintStatement:
			for i, arg := range s.Args {
				s.Args[i] = p.fold(arg)
			}
		case *ast.IfStatement:
			s.Cond = p.fold(s.Cond)
		case *ast.WhileStatement:
			s.Cond = p.fold(s.Cond)
		case *ast.ForStatement:
			s.Iterable = p.fold(s.Iterable)
		case *ast.ReturnStatement:
			if s.Value != nil {
				s.Value = p.fold(s.Value)
			}
		case *ast.ExpressionStatement:
			s.Expression = p.fold(s.Expression)
		}
		for _, block := range blocksOf(stmt) {
			p.foldStmts(block)
		}
	}
}

func (p *foldConstantsPass) fold(expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.BinaryExpression:
		e.Left = p.fold(e.Left)
		e.Right = p.fold(e.Right)
		if folded, ok := foldBinary(e); ok {
			p.changed = true
			return folded
		}
	case *ast.UnaryExpression:
		e.Right = p.fold(e.Right)
		if folded, ok := foldUnary(e); ok {
			p.changed = true
			return folded
		}
	case *ast.RangeExpression:
		e.Low = p.fold(e.Low)
		e.High = p.fold(e.High)
	case *ast.CallExpression:
		e.Callee = p.fold(e.Callee)
		for i, arg := range e.Arguments {
			e.Arguments[i] = p.fold(arg)
		}
	case *ast.IndexExpression:
		e.Target = p.fold(e.Target)
		e.Index = p.fold(e.Index)
	case *ast.MemberExpression:
		e.Target = p.fold(e.Target)
	case *ast.ArrayLiteral:
		for i, elem := range e.Elements {
			e.Elements[i] = p.fold(elem)
		}
	case *ast.TupleLiteral:
		for i := range e.Elements {
			e.Elements[i].Value = p.fold(e.Elements[i].Value)
		}
	case *ast.IsTypeExpression:
		e.Expr = p.fold(e.Expr)
	case *ast.FuncLiteral:
		switch body := e.Body.(type) {
		case *ast.ExprBody:
			body.Expr = p.fold(body.Expr)
		case *ast.BlockBody:
			p.foldStmts(body.Statements)
		}
	}
	return expr
}

func intLit(v int64) *ast.IntegerLiteral {
	return &ast.IntegerLiteral{
		Token: lexer.Token{Type: lexer.INT, Literal: strconv.FormatInt(v, 10)},
		Value: v,
	}
}

func realLit(v float64) *ast.RealLiteral {
	return &ast.RealLiteral{
		Token: lexer.Token{Type: lexer.REAL, Literal: strconv.FormatFloat(v, 'g', -1, 64)},
		Value: v,
	}
}

func boolLit(v bool) *ast.BooleanLiteral {
	tok := lexer.Token{Type: lexer.TRUE, Literal: "true"}
	if !v {
		tok = lexer.Token{Type: lexer.FALSE, Literal: "false"}
	}
	return &ast.BooleanLiteral{Token: tok, Value: v}
}

// sideEffectFree reports whether evaluating the expression can be
// skipped without observable effect: literals and bare identifiers only.
// Used by the absorption rewrites (`false and _`, `true or _`).
func sideEffectFree(expr ast.Expression) bool {
	if isPureLiteral(expr) {
		return true
	}
	_, ok := expr.(*ast.Identifier)
	return ok
}

func foldBinary(e *ast.BinaryExpression) (ast.Expression, bool) {
	if li, lok := e.Left.(*ast.IntegerLiteral); lok {
		if ri, rok := e.Right.(*ast.IntegerLiteral); rok {
			return foldIntegers(e.Op, li.Value, ri.Value)
		}
	}
	if lr, lok := e.Left.(*ast.RealLiteral); lok {
		if rr, rok := e.Right.(*ast.RealLiteral); rok {
			return foldReals(e.Op, lr.Value, rr.Value)
		}
	}
	if lb, lok := e.Left.(*ast.BooleanLiteral); lok {
		if rb, rok := e.Right.(*ast.BooleanLiteral); rok {
			switch e.Op {
			case ast.And:
				return boolLit(lb.Value && rb.Value), true
			case ast.Or:
				return boolLit(lb.Value || rb.Value), true
			case ast.Xor:
				return boolLit(lb.Value != rb.Value), true
			}
		}
	}
	return foldAlgebra(e)
}

func foldIntegers(op ast.BinOp, a, b int64) (ast.Expression, bool) {
	switch op {
	case ast.Add:
		return intLit(a + b), true
	case ast.Sub:
		return intLit(a - b), true
	case ast.Mul:
		return intLit(a * b), true
	case ast.Div:
		if b == 0 {
			return nil, false
		}
		return intLit(a / b), true
	case ast.Eq:
		return boolLit(a == b), true
	case ast.Ne:
		return boolLit(a != b), true
	case ast.Lt:
		return boolLit(a < b), true
	case ast.Le:
		return boolLit(a <= b), true
	case ast.Gt:
		return boolLit(a > b), true
	case ast.Ge:
		return boolLit(a >= b), true
	}
	return nil, false
}

func foldReals(op ast.BinOp, a, b float64) (ast.Expression, bool) {
	switch op {
	case ast.Add:
		return realLit(a + b), true
	case ast.Sub:
		return realLit(a - b), true
	case ast.Mul:
		return realLit(a * b), true
	case ast.Div:
		if b == 0.0 {
			return nil, false
		}
		return realLit(a / b), true
	}
	return nil, false
}

// foldAlgebra applies identity and absorption rewrites for mixed
// literal and identifier operands.
func foldAlgebra(e *ast.BinaryExpression) (ast.Expression, bool) {
	lident := isIdent(e.Left)
	rident := isIdent(e.Right)

	switch e.Op {
	case ast.Add:
		if isIntValue(e.Left, 0) && rident {
			return e.Right, true
		}
		if isIntValue(e.Right, 0) && lident {
			return e.Left, true
		}
	case ast.Mul:
		if isIntValue(e.Left, 1) && rident {
			return e.Right, true
		}
		if isIntValue(e.Right, 1) && lident {
			return e.Left, true
		}
		if isIntValue(e.Left, 0) && rident {
			return intLit(0), true
		}
		if isIntValue(e.Right, 0) && lident {
			return intLit(0), true
		}
	case ast.And:
		if isBoolValue(e.Left, true) && rident {
			return e.Right, true
		}
		if isBoolValue(e.Right, true) && lident {
			return e.Left, true
		}
		if isBoolValue(e.Left, false) && sideEffectFree(e.Right) {
			return boolLit(false), true
		}
		if isBoolValue(e.Right, false) && sideEffectFree(e.Left) {
			return boolLit(false), true
		}
	case ast.Or:
		if isBoolValue(e.Left, true) && sideEffectFree(e.Right) {
			return boolLit(true), true
		}
		if isBoolValue(e.Right, true) && sideEffectFree(e.Left) {
			return boolLit(true), true
		}
		if isBoolValue(e.Left, false) && rident {
			return e.Right, true
		}
		if isBoolValue(e.Right, false) && lident {
			return e.Left, true
		}
	}
	return nil, false
}

func isIdent(expr ast.Expression) bool {
	_, ok := expr.(*ast.Identifier)
	return ok
}

func isIntValue(expr ast.Expression, v int64) bool {
	lit, ok := expr.(*ast.IntegerLiteral)
	return ok && lit.Value == v
}

func isBoolValue(expr ast.Expression, v bool) bool {
	lit, ok := expr.(*ast.BooleanLiteral)
	return ok && lit.Value == v
}

func foldUnary(e *ast.UnaryExpression) (ast.Expression, bool) {
	switch operand := e.Right.(type) {
	case *ast.BooleanLiteral:
		if e.Op == ast.Not {
			return boolLit(!operand.Value), true
		}
	case *ast.IntegerLiteral:
		if e.Op == ast.Neg {
			return intLit(-operand.Value), true
		}
	case *ast.RealLiteral:
		if e.Op == ast.Neg {
			return realLit(-operand.Value), true
		}
	}
	return nil, false
}

// ============================================================================
// Pass 5: conditional simplification
// ============================================================================

// simplifyConditionalsPass splices conditionals whose condition folded
// to a boolean literal, provided the surviving branch declares no
// variables (splicing a declaring branch would leak its scope).
type simplifyConditionalsPass struct {
	changed bool
}

func (p *simplifyConditionalsPass) Name() string { return "simplify-conditionals" }

func (p *simplifyConditionalsPass) Run(program *ast.Program, _ *passContext) bool {
	p.changed = false
	program.Statements = p.simplify(program.Statements)
	return p.changed
}

func (p *simplifyConditionalsPass) simplify(stmts []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, 0, len(stmts))
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.IfStatement:
			s.ThenBranch = p.simplify(s.ThenBranch)
			if s.ElseBranch != nil {
				s.ElseBranch = p.simplify(s.ElseBranch)
			}
			if lit, ok := s.Cond.(*ast.BooleanLiteral); ok {
				if lit.Value && !containsVarDecl(s.ThenBranch) {
					out = append(out, s.ThenBranch...)
					p.changed = true
					continue
				}
				if !lit.Value {
					if s.ElseBranch == nil {
						p.changed = true
						continue
					}
					if !containsVarDecl(s.ElseBranch) {
						out = append(out, s.ElseBranch...)
						p.changed = true
						continue
					}
				}
			}
		case *ast.WhileStatement:
			s.Body = p.simplify(s.Body)
		case *ast.ForStatement:
			s.Body = p.simplify(s.Body)
		}
		out = append(out, stmt)
	}
	return out
}

// ============================================================================
// Pass 6: unreachable-code elimination
// ============================================================================

// removeUnreachablePass truncates every statement sequence at the first
// return or exit, recursing into control-flow bodies and function
// literals.
type removeUnreachablePass struct {
	changed bool
}

func (p *removeUnreachablePass) Name() string { return "remove-unreachable" }

func (p *removeUnreachablePass) Run(program *ast.Program, _ *passContext) bool {
	p.changed = false
	program.Statements = p.truncate(program.Statements)
	return p.changed
}

func (p *removeUnreachablePass) truncate(stmts []ast.Statement) []ast.Statement {
	for i, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.IfStatement:
			s.ThenBranch = p.truncate(s.ThenBranch)
			if s.ElseBranch != nil {
				s.ElseBranch = p.truncate(s.ElseBranch)
			}
		case *ast.WhileStatement:
			s.Body = p.truncate(s.Body)
		case *ast.ForStatement:
			s.Body = p.truncate(s.Body)
		}
		p.truncateFuncBodies(stmt)

		switch stmt.(type) {
		case *ast.ReturnStatement, *ast.ExitStatement:
			if i+1 < len(stmts) {
				p.changed = true
				return stmts[:i+1]
			}
		}
	}
	return stmts
}

func (p *removeUnreachablePass) truncateFuncBodies(stmt ast.Statement) {
	for _, expr := range exprsOf(stmt) {
		walkExpressions(expr, func(e ast.Expression) {
			fl, ok := e.(*ast.FuncLiteral)
			if !ok {
				return
			}
			if bb, ok := fl.Body.(*ast.BlockBody); ok {
				bb.Statements = p.truncate(bb.Statements)
			}
		})
	}
}

// ============================================================================
// Pass 7: unused-variable elimination
// ============================================================================

// removeUnusedPass drops declarations whose name is never referenced
// anywhere in the program. Declarations whose initializer contains a
// call are kept: dropping them would delete an observable effect.
type removeUnusedPass struct {
	changed bool
	used    map[string]bool
}

func (p *removeUnusedPass) Name() string { return "remove-unused" }

func (p *removeUnusedPass) Run(program *ast.Program, _ *passContext) bool {
	p.changed = false
	p.used = make(map[string]bool)

	walkStatements(program.Statements, func(e ast.Expression) {
		if ident, ok := e.(*ast.Identifier); ok {
			p.used[ident.Value] = true
		}
	})
	walkAllStatements(program.Statements, func(stmt ast.Statement) {
		if fs, ok := stmt.(*ast.ForStatement); ok {
			p.used[fs.Var] = true
		}
	})

	program.Statements = p.remove(program.Statements)
	return p.changed
}

func (p *removeUnusedPass) remove(stmts []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, 0, len(stmts))
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VarDeclStatement:
			if !p.used[s.Name] && !hasCall(s.Init) {
				p.changed = true
				continue
			}
		case *ast.IfStatement:
			s.ThenBranch = p.remove(s.ThenBranch)
			if s.ElseBranch != nil {
				s.ElseBranch = p.remove(s.ElseBranch)
			}
		case *ast.WhileStatement:
			s.Body = p.remove(s.Body)
		case *ast.ForStatement:
			s.Body = p.remove(s.Body)
		}
		out = append(out, stmt)
	}
	return out
}

// hasCall reports whether evaluating the expression may invoke a
// function. Function literal bodies do not run at evaluation time and
// are not descended into.
func hasCall(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.CallExpression:
		return true
	case *ast.BinaryExpression:
		return hasCall(e.Left) || hasCall(e.Right)
	case *ast.UnaryExpression:
		return hasCall(e.Right)
	case *ast.RangeExpression:
		return hasCall(e.Low) || hasCall(e.High)
	case *ast.IndexExpression:
		return hasCall(e.Target) || hasCall(e.Index)
	case *ast.MemberExpression:
		return hasCall(e.Target)
	case *ast.ArrayLiteral:
		for _, elem := range e.Elements {
			if hasCall(elem) {
				return true
			}
		}
	case *ast.TupleLiteral:
		for _, elem := range e.Elements {
			if hasCall(elem.Value) {
				return true
			}
		}
	case *ast.IsTypeExpression:
		return hasCall(e.Expr)
	}
	return false
}
