package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/atiptools/atiplint/internal/config"
)

var presetsAsYAML bool

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in presets and the rule severities they set",
	Long: `The presets command prints every built-in preset with the rule severities
it resolves to, extends chains included. Use --yaml to emit the resolved
rule map as YAML, ready to paste into a configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPresets(cmd)
	},
}

func init() {
	presetsCmd.Flags().BoolVar(&presetsAsYAML, "yaml", false, "Emit resolved presets as YAML")
	rootCmd.AddCommand(presetsCmd)
}

func runPresets(cmd *cobra.Command) error {
	w := cmd.OutOrStdout()

	if presetsAsYAML {
		export := map[string]map[string]string{}
		for _, name := range config.PresetNames() {
			resolved, err := config.Resolve(&config.FileConfig{Extends: name})
			if err != nil {
				return err
			}
			ruleMap := map[string]string{}
			for id, setting := range resolved.Rules {
				ruleMap[id] = setting.Severity.String()
			}
			export[name] = ruleMap
		}
		out, err := yaml.Marshal(export)
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(out))
		return nil
	}

	for _, name := range config.PresetNames() {
		resolved, err := config.Resolve(&config.FileConfig{Extends: name})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s:\n", name)
		ids := make([]string, 0, len(resolved.Rules))
		for id := range resolved.Rules {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(w, "  %-36s %s\n", id, resolved.Rules[id].Severity.String())
		}
	}
	return nil
}
