package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/recast-dev/recast/internal/apply"
	"github.com/recast-dev/recast/internal/config"
	"github.com/recast-dev/recast/internal/document"
	"github.com/recast-dev/recast/internal/rules"
	"github.com/recast-dev/recast/schema"
)

var (
	rulesFile string
	outFile   string
	writeBack bool
	dryRun    bool
	strict    bool
)

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply <document.yaml> [document.yaml...]",
	Short: "Apply a rules file to document files",
	Long: `Load a rules file and run every rule over the given documents in order.
Each rule targets values by their path through the document tree and
replaces them with the result of its set expression. Documents that no
rule changes are left untouched.`,
	Example: `  recast apply config.yaml --rules rules.yaml
  recast apply config.yaml --rules rules.yaml --write
  recast apply staging/*.yaml --rules rules.yaml --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApplyAction(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "Rules file to apply (required)")
	applyCmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file path (single document only; default: stdout)")
	applyCmd.Flags().BoolVarP(&writeBack, "write", "w", false, "Rewrite changed documents in place")
	applyCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report which documents would change without writing")
	applyCmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any document changes (for CI)")
	_ = applyCmd.MarkFlagRequired("rules")
}

// runApplyAction implements the core logic for the apply command
func runApplyAction(ctx context.Context, paths []string) error {
	if outFile != "" && len(paths) > 1 {
		return fmt.Errorf("--output accepts a single document, have %d", len(paths))
	}

	slog.Info("loading rules file", "path", rulesFile)
	ruleSet, err := config.LoadRuleSet(rulesFile)
	if err != nil {
		return fmt.Errorf("failed to load rules file: %w", err)
	}
	slog.Info("rules file loaded", "version", ruleSet.Version, "rules", len(ruleSet.Rules))

	reg := schema.NewRegistry()
	if err := document.RegisterSchemas(reg); err != nil {
		return fmt.Errorf("failed to register document schemas: %w", err)
	}

	compiled, err := rules.Compile(ruleSet, reg)
	if err != nil {
		return fmt.Errorf("failed to compile rules: %w", err)
	}

	svc := apply.NewService(reg, slog.Default())
	results, err := svc.ApplyFiles(ctx, paths, compiled)
	if err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}

	changed := 0
	for _, res := range results {
		if res.Changed {
			changed++
		}
	}
	slog.Info("apply complete", "documents", len(results), "changed", changed)

	if dryRun {
		for _, res := range results {
			if res.Changed {
				fmt.Println(res.Path)
			}
		}
	} else if writeBack {
		if err := writeInPlace(results); err != nil {
			return err
		}
	} else {
		if err := writeOutput(results); err != nil {
			return err
		}
	}

	if strict && changed > 0 {
		return fmt.Errorf("strict mode: %d of %d documents changed", changed, len(results))
	}
	return nil
}

// writeInPlace rewrites every changed document over its source file.
func writeInPlace(results []apply.FileResult) error {
	for _, res := range results {
		if !res.Changed {
			continue
		}
		if err := os.WriteFile(res.Path, res.Output, 0o644); err != nil {
			return fmt.Errorf("failed to write %q: %w", res.Path, err)
		}
		slog.Info("document rewritten", "path", res.Path)
	}
	return nil
}

// writeOutput prints the results, or writes the single result to --output.
func writeOutput(results []apply.FileResult) error {
	writer := os.Stdout
	if outFile != "" {
		//nolint:gosec // G304: User-controlled output file path is intentional
		file, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			_ = file.Close() // Best-effort cleanup
		}()
		writer = file
		slog.Info("writing output", "file", outFile)
	}

	for i, res := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(writer, "---"); err != nil {
				return err
			}
		}
		if _, err := writer.Write(res.Output); err != nil {
			return fmt.Errorf("failed to write output for %q: %w", res.Path, err)
		}
	}
	return nil
}
