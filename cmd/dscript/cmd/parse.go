package cmd

import (
	"fmt"

	"github.com/dscript-lang/dscript/pkg/dscript"
	"github.com/spf13/cobra"
)

var parseEvalExpr string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a D script and print its AST",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, filename, err := readInput(parseEvalExpr, args)
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
		fmt.Fprint(cmd.OutOrStdout(), program.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEvalExpr, "eval", "e", "", "parse inline code instead of reading from file")
}
