package cmd

import (
	"github.com/spf13/cobra"
)

var fixCmd = &cobra.Command{
	Use:   "fix [files...]",
	Short: "Lint documents and write safe automatic fixes back in place",
	Long: `fix is shorthand for linting with --fix: every enabled fixable rule
applies its edit, conflicting edits are skipped, and fixed files are written
back to disk. Remaining findings are reported as usual.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFixes = true
		return runLint(cmd, args)
	},
	SilenceUsage: true,
}

func init() {
	fixCmd.Flags().IntVar(&concurrency, "concurrency", 4, "Maximum number of files linted in parallel")
	rootCmd.AddCommand(fixCmd)
}
