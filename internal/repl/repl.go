// Package repl implements the interactive session for D. Input is read
// line by line with history support, parsed, and executed against a
// persistent environment so bindings survive across inputs.
package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dscript-lang/dscript/internal/interp"
	"github.com/dscript-lang/dscript/internal/parser"
	"github.com/fatih/color"
)

var (
	bannerColor = color.New(color.FgGreen)
	infoColor   = color.New(color.FgCyan)
	errorColor  = color.New(color.FgRed)
)

// Repl is an interactive session.
type Repl struct {
	Version string
	Prompt  string
	out     io.Writer
}

// New creates a REPL writing program output to out.
func New(version string, out io.Writer) *Repl {
	return &Repl{
		Version: version,
		Prompt:  "ds> ",
		out:     out,
	}
}

// Start runs the read-eval-print loop until EOF or the quit command.
func (r *Repl) Start() error {
	rl, err := readline.New(r.Prompt)
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	bannerColor.Fprintf(r.out, "D interpreter %s\n", r.Version)
	infoColor.Fprintln(r.out, `Type D statements; "quit" or Ctrl-D exits.`)

	interpreter := interp.New(r.out)

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF on Ctrl-D, readline.ErrInterrupt on Ctrl-C
			if err == readline.ErrInterrupt {
				continue
			}
			return nil
		}

		input := strings.TrimSpace(line)
		switch input {
		case "":
			continue
		case "quit", "exit":
			return nil
		}

		r.eval(interpreter, input)
	}
}

// eval parses and executes one input against the persistent
// environment. The semantic checker is skipped here: it starts from an
// empty scope and cannot see bindings made by earlier inputs, so the
// evaluator's dynamic checks take over.
func (r *Repl) eval(interpreter *interp.Interpreter, input string) {
	program, err := parser.New(input).ParseProgram()
	if err != nil {
		errorColor.Fprintf(r.out, "Parse error: %v\n", err)
		return
	}
	if err := interpreter.Interpret(program); err != nil {
		errorColor.Fprintf(r.out, "%v\n", err)
	}
}
