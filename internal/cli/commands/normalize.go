package commands

import (
	"fmt"

	"github.com/leapstack-labs/semgen/internal/cli/output"
	"github.com/leapstack-labs/semgen/pkg/semantic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Convert the semantic model to the column format",
		Long: `Convert the semantic model to the unified column format.

Tables written with separate dimensions, time_dimensions and measures lists
become a single columns list where every entry carries its kind. Tables
already in the column format are left unchanged.

Output adapts to environment:
  - Terminal: YAML
  - Piped/Scripted: Markdown with a YAML code block`,
		Example: `  # Print the normalized model
  semgen normalize --model models/shop.yaml

  # Rewrite the model file in place
  semgen normalize --write

  # Print as JSON
  semgen normalize -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNormalize(cmd, write)
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Rewrite the model file instead of printing it")

	return cmd
}

func runNormalize(cmd *cobra.Command, write bool) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	m, err := cmdCtx.LoadModel()
	if err != nil {
		return err
	}
	normalized := semantic.ToColumnFormat(m)

	if write {
		if err := semantic.WriteFile(cmdCtx.Cfg.Model, normalized); err != nil {
			return fmt.Errorf("failed to write %s: %w", cmdCtx.Cfg.Model, err)
		}
		r.Success(fmt.Sprintf("Normalized %d tables in %s", len(normalized.Tables), cmdCtx.Cfg.Model))
		return nil
	}

	return printModel(r, normalized)
}

// printModel writes m in the renderer's mode.
func printModel(r *output.Renderer, m semantic.SemanticModel) error {
	data, err := semantic.Marshal(m)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to convert model to JSON: %w", err)
		}
		return r.JSON(doc)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Semantic model: %s", m.Name)))
		r.Println("")
		r.Println(output.FormatCodeBlock("yaml", string(data)))
	default:
		r.Printf("%s", data)
	}
	return nil
}
