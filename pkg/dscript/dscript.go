// Package dscript is the public entry point to the D pipeline: parse,
// semantic check, optimize, interpret. The stages are strictly
// sequential; a failure in an earlier stage halts the pipeline and the
// evaluator only runs on programs that pass semantic checks.
package dscript

import (
	"io"

	"github.com/dscript-lang/dscript/internal/ast"
	"github.com/dscript-lang/dscript/internal/interp"
	"github.com/dscript-lang/dscript/internal/optimizer"
	"github.com/dscript-lang/dscript/internal/parser"
	"github.com/dscript-lang/dscript/internal/semantic"
)

// Program is a parsed D program ready for checking, optimization and
// interpretation.
type Program struct {
	prog *ast.Program
}

// Parse parses source text into a Program. The returned error is a
// *parser.ParseError carrying the offending position when known.
func Parse(source string) (*Program, error) {
	prog, err := parser.New(source).ParseProgram()
	if err != nil {
		return nil, err
	}
	return &Program{prog: prog}, nil
}

// String returns the program's AST rendered as text, for debugging and
// the `parse` CLI command.
func (p *Program) String() string {
	return p.prog.String()
}

// Check runs the semantic checker without modifying the AST. The
// returned error is a *semantic.AnalysisError joining all diagnostics.
func (p *Program) Check() error {
	return semantic.NewAnalyzer().Analyze(p.prog)
}

// CheckDiagnostics runs the semantic checker and returns the individual
// diagnostics instead of a joined error.
func (p *Program) CheckDiagnostics() []string {
	a := semantic.NewAnalyzer()
	a.Analyze(p.prog)
	return a.Errors()
}

// Optimize rewrites the AST in place until fixpoint and reports whether
// anything changed.
func (p *Program) Optimize() bool {
	return optimizer.New().Optimize(p.prog)
}

// Interpret executes the program, writing print output to out.
func (p *Program) Interpret(out io.Writer) error {
	return interp.New(out).Interpret(p.prog)
}

// RunOption configures the convenience Run pipeline.
type RunOption func(*runConfig)

type runConfig struct {
	optimize bool
}

// WithOptimization toggles the optimizer stage. It defaults to on.
func WithOptimization(enabled bool) RunOption {
	return func(c *runConfig) {
		c.optimize = enabled
	}
}

// Run executes the full pipeline on the source: parse, check, optimize
// (unless disabled), interpret. The first failing stage's error is
// returned and later stages do not run.
func Run(source string, out io.Writer, opts ...RunOption) error {
	cfg := runConfig{optimize: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	program, err := Parse(source)
	if err != nil {
		return err
	}
	if err := program.Check(); err != nil {
		return err
	}
	if cfg.optimize {
		program.Optimize()
	}
	return program.Interpret(out)
}
