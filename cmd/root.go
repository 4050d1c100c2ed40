package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath     string
	quiet          bool
	verbose        bool
	outputFormat   string
	outputFile     string
	failOn         string
	applyFixes     bool
	concurrency    int
	baselinePath   string
	createBaseline bool
	changedOnly    bool
	stagedOnly     bool
)

var rootCmd = &cobra.Command{
	Use:   "atiplint [files...]",
	Short: "atiplint - a linter for ATIP tool-description documents",
	Long: `atiplint validates ATIP documents: JSON files that describe a command-line
tool's commands, arguments, options, and effect metadata for agent consumers.

By default atiplint lints the given files (or **/*.atip.json under the current
directory) against the resolved configuration: schema conformance first, then
the enabled rules. Use --fix to apply safe automatic fixes in place.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLint(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (discovered in ancestors if not specified)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "console", "Output format for reports (console|json|markdown)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Output file for reports (stdout if not specified)")
	rootCmd.PersistentFlags().StringVar(&failOn, "fail-on", "error", "Exit non-zero on the given level (error|warning)")

	rootCmd.Flags().BoolVar(&applyFixes, "fix", false, "Apply safe automatic fixes and write files back")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 4, "Maximum number of files linted in parallel")
	rootCmd.Flags().StringVar(&baselinePath, "baseline", "", "Suppress findings recorded in this baseline file")
	rootCmd.Flags().BoolVar(&createBaseline, "create-baseline", false, "Write current findings to the --baseline file and exit clean")
	rootCmd.Flags().BoolVar(&changedOnly, "changed", false, "Lint only documents with uncommitted git changes")
	rootCmd.Flags().BoolVar(&stagedOnly, "staged", false, "Lint only documents in the git staging area")

	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("fail-on", rootCmd.PersistentFlags().Lookup("fail-on"))
}
