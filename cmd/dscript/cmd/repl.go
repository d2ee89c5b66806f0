package cmd

import (
	"os"

	"github.com/dscript-lang/dscript/internal/repl"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive D session",
	Long: `Start a read-eval-print loop. Statements are evaluated against a
persistent environment, so variables and functions defined on earlier
lines stay available. Use arrow keys for history; quit or Ctrl-D exits.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return repl.New(Version, os.Stdout).Start()
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
