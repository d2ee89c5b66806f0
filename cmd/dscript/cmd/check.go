package cmd

import (
	"fmt"

	"github.com/dscript-lang/dscript/internal/semantic"
	"github.com/dscript-lang/dscript/pkg/dscript"
	"github.com/spf13/cobra"
)

var checkEvalExpr string

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Parse and semantically check a D script without running it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, filename, err := readInput(checkEvalExpr, args)
		if err != nil {
			return err
		}
		if input == "" {
			return fmt.Errorf("either provide a file path or use -e flag for inline code")
		}

		program, err := dscript.Parse(input)
		if err != nil {
			reportParseError(err, input, filename)
			return err
		}

		if err := program.Check(); err != nil {
			if aerr, ok := err.(*semantic.AnalysisError); ok {
				reportCheckError(aerr, input, filename)
			}
			return fmt.Errorf("semantic check failed")
		}

		fmt.Fprintln(cmd.OutOrStdout(), "No errors found")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkEvalExpr, "eval", "e", "", "check inline code instead of reading from file")
}
