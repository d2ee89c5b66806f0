package cmd

import (
	"fmt"
	"os"

	"github.com/dscript-lang/dscript/internal/errors"
	"github.com/dscript-lang/dscript/internal/parser"
	"github.com/dscript-lang/dscript/internal/semantic"
	"github.com/dscript-lang/dscript/pkg/dscript"
	"github.com/spf13/cobra"
)

var (
	evalExpr   string
	dumpAST    bool
	noOptimize bool
	colorize   bool
)

// demoProgram runs when no file or expression is given.
const demoProgram = `var greeting := "hello from dscript"
print greeting

var mk := func() is
    var c := 0
    return func() is
        c := c + 1
        return c
    end
end
var counter := mk()
print "counter:", counter(), counter(), counter()

for i in 1..5 loop
    if i = 4 => exit
    print "i =", i
end
`

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a D script file or expression",
	Long: `Execute a D program from a file or inline expression.

Examples:
  # Run a script file
  dscript run script.ds

  # Evaluate an inline expression
  dscript run -e 'print 1 + 2'

  # Run with AST dump (for debugging)
  dscript run --dump-ast script.ds

  # Run the built-in demo program
  dscript run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST (for debugging)")
	runCmd.Flags().BoolVar(&noOptimize, "no-optimize", false, "skip the optimizer stage")
	runCmd.Flags().BoolVar(&colorize, "color", true, "colorize diagnostics")
}

func runScript(cmd *cobra.Command, args []string) error {
	input, filename, err := readInput(evalExpr, args)
	if err != nil {
		return err
	}
	if input == "" {
		input, filename = demoProgram, "<demo>"
	}

	program, err := dscript.Parse(input)
	if err != nil {
		reportParseError(err, input, filename)
		return err
	}

	if diags := program.CheckDiagnostics(); len(diags) > 0 {
		scriptErrs := errors.FromMessages(diags, input, filename)
		fmt.Fprintln(os.Stderr, errors.FormatErrors(scriptErrs, colorize))
		return fmt.Errorf("semantic analysis failed with %d error(s)", len(diags))
	}

	if !noOptimize {
		modified := program.Optimize()
		if verbose && modified {
			fmt.Fprintln(os.Stderr, "optimizer: AST was modified")
		}
	}

	if dumpAST {
		fmt.Println("AST:")
		fmt.Println(program.String())
	}

	if err := program.Interpret(cmd.OutOrStdout()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

// reportParseError renders a parse failure with source context when the
// offending position is known.
func reportParseError(err error, source, filename string) {
	if perr, ok := err.(*parser.ParseError); ok {
		scriptErr := errors.NewScriptError(perr.Message, source, filename, perr.Line, perr.Col)
		fmt.Fprintln(os.Stderr, scriptErr.Format(colorize))
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

// reportCheckError renders semantic diagnostics.
func reportCheckError(err *semantic.AnalysisError, source, filename string) {
	scriptErrs := errors.FromMessages([]string{err.Message}, source, filename)
	fmt.Fprintln(os.Stderr, errors.FormatErrors(scriptErrs, colorize))
}
