package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/recast-dev/recast/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter rules file",
	Long: `Generate a rules file scaffold with a single rule targeting entry
values. Prompts for the rule details unless --no-interactive is set.`,
	Example: `  recast init
  recast init --output team-rules.yaml --no-interactive`,
	Args: cobra.NoArgs,
	RunE: runInitAction,
}

func init() {
	initCmd.Flags().String("output", "recast-rules.yaml", "Output file path")
	initCmd.Flags().Bool("no-interactive", false, "Disable interactive prompts")

	rootCmd.AddCommand(initCmd)
}

func runInitAction(cmd *cobra.Command, _ []string) error {
	output, _ := cmd.Flags().GetString("output")
	noInteractive, _ := cmd.Flags().GetBool("no-interactive")

	ruleName := "example-rule"
	entryKey := "port"
	setExpr := "value"

	if !noInteractive {
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Rule name").
					Value(&ruleName),
				huh.NewInput().
					Title("Entry key to target").
					Value(&entryKey),
				huh.NewInput().
					Title("Replacement expression").
					Description("Variables: value, key, path").
					Value(&setExpr),
			),
		).Run()
		if err != nil {
			return err
		}
	}

	ruleSet := config.RuleSet{
		Version: "1.0.0",
		Rules: []config.Rule{
			{
				Name: ruleName,
				Match: []config.Step{
					{Type: "document", Name: "sections"},
					{Type: "list"},
					{Type: "section", Name: "entries"},
					{Type: "list"},
					{Type: "entry", Name: "value"},
				},
				When: fmt.Sprintf("key == %q", entryKey),
				Set:  setExpr,
			},
		},
	}

	data, err := yaml.Marshal(ruleSet)
	if err != nil {
		return fmt.Errorf("failed to encode rules file: %w", err)
	}

	if _, err := os.Stat(output); err == nil {
		return fmt.Errorf("refusing to overwrite existing file %q", output)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}

	fmt.Printf("Rules file written to %s\n", output)
	fmt.Println("Next: recast apply <document.yaml> --rules " + output)
	return nil
}
