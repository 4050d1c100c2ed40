package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atiptools/atiplint/internal/config"
	"github.com/atiptools/atiplint/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List registered rules and their resolved severities",
	Long: `The rules command prints every registered rule with its category, default
severity, and the severity the current configuration resolves it to. Rules
the configuration turns off show as "off".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRules(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("cannot determine working directory: %w", err)
	}
	fileCfg, _, err := config.Load(configPath, cwd)
	if err != nil {
		return err
	}
	resolved, err := config.Resolve(fileCfg)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-36s %-12s %-8s %-8s %s\n", "RULE", "CATEGORY", "DEFAULT", "ACTIVE", "FIXABLE")
	for _, rule := range rules.All() {
		active := "off"
		if setting, ok := resolved.Rules[rule.ID]; ok && setting.Severity != config.SeverityOff {
			active = setting.Severity.String()
		}
		fixable := ""
		if rule.Fixable {
			fixable = "yes"
		}
		fmt.Fprintf(w, "%-36s %-12s %-8s %-8s %s\n",
			rule.ID, rule.Category, rule.DefaultSeverity.String(), active, fixable)
	}
	return nil
}
