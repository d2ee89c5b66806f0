package cmd

import (
	"fmt"

	"github.com/dscript-lang/dscript/internal/lexer"
	"github.com/spf13/cobra"
)

var lexEvalExpr string

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Dump the token stream of a D script",
	Long: `Tokenize a D program and print one token per line, including
trivia (newlines and comments). Useful for debugging the scanner.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _, err := readInput(lexEvalExpr, args)
		if err != nil {
			return err
		}
		if input == "" {
			return fmt.Errorf("either provide a file path or use -e flag for inline code")
		}

		out := cmd.OutOrStdout()
		l := lexer.New(input)
		for {
			tok := l.NextToken()
			switch tok.Type {
			case lexer.EOF:
				fmt.Fprintln(out, "EOF")
				return nil
			case lexer.ERROR:
				fmt.Fprintf(out, "ERROR %q at %d:%d\n", tok.Literal, tok.Line, tok.Col)
			case lexer.NEWLINE:
				fmt.Fprintln(out, "NEWLINE")
			default:
				fmt.Fprintf(out, "%-10s %q\n", tok.Type, tok.Literal)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEvalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
}
