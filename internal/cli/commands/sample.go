package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/semgen/internal/state"
	"github.com/leapstack-labs/semgen/pkg/sampler"
	"github.com/leapstack-labs/semgen/pkg/semantic"
	"github.com/spf13/cobra"
)

// NewSampleCommand creates the sample command.
func NewSampleCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "sample [table...]",
		Short: "Fill sample_values by querying the target",
		Long: `Run the sampling SQL against the configured target and fill every
column's sample_values.

Row-level columns keep up to --max-values distinct non-NULL values. Simple
aggregations keep their single result. The model is printed in the column
format, or written back to the model file with --write.`,
		Example: `  # Sample every table and print the model
  semgen sample

  # Sample two tables against a local DuckDB file and update the model
  semgen sample orders customers --database warehouse.duckdb --write

  # Use the prod environment from semgen.yaml
  semgen sample --target prod`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(cmd, args, write)
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Write sample values back to the model file")

	return cmd
}

func runSample(cmd *cobra.Command, tables []string, write bool) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	ctx := cmd.Context()

	m, err := cmdCtx.LoadModel()
	if err != nil {
		return err
	}
	full := semantic.ToColumnFormat(m)
	subset, err := selectTables(full, tables)
	if err != nil {
		return err
	}

	a, cleanup, err := cmdCtx.Connect(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	s, err := cmdCtx.Sampler(a)
	if err != nil {
		return err
	}

	started := time.Now()
	sampled, result, err := s.SampleModel(ctx, subset)
	if err != nil {
		cmdCtx.recordRun(ctx, &state.Run{
			Kind:      state.RunKindSample,
			Status:    state.RunStatusFailed,
			StartedAt: started,
			Error:     err.Error(),
		}, nil)
		return fmt.Errorf("sampling failed: %w", err)
	}
	cmdCtx.recordRun(ctx, sampleRun(result), sampleTableRuns(result))
	merged := mergeTables(full, sampled)

	_, _ = fmt.Fprintf(r.ErrWriter(), "Sampled %d tables in %s (run %s)\n",
		len(result.Tables), result.Finished.Sub(result.Started).Round(time.Millisecond), result.RunID)

	if write {
		if err := semantic.WriteFile(cmdCtx.Cfg.Model, merged); err != nil {
			return fmt.Errorf("failed to write %s: %w", cmdCtx.Cfg.Model, err)
		}
		r.Success(fmt.Sprintf("Updated %s", cmdCtx.Cfg.Model))
		return nil
	}
	return printModel(r, merged)
}

// mergeTables replaces the tables of base that appear in updated, by name.
func mergeTables(base, updated semantic.SemanticModel) semantic.SemanticModel {
	byName := make(map[string]semantic.Table, len(updated.Tables))
	for _, t := range updated.Tables {
		byName[t.Name] = t
	}
	out := semantic.SemanticModel{Name: base.Name, Description: base.Description}
	for _, t := range base.Tables {
		if u, ok := byName[t.Name]; ok {
			t = u
		}
		out.Tables = append(out.Tables, t)
	}
	return out
}

func sampleRun(result *sampler.Result) *state.Run {
	finished := result.Finished
	return &state.Run{
		ID:          result.RunID,
		Kind:        state.RunKindSample,
		Status:      state.RunStatusCompleted,
		StartedAt:   result.Started,
		CompletedAt: &finished,
	}
}

func sampleTableRuns(result *sampler.Result) []state.TableRun {
	out := make([]state.TableRun, 0, len(result.Tables))
	for _, tr := range result.Tables {
		out = append(out, state.TableRun{
			Table:    tr.Table,
			Status:   state.TableStatusSuccess,
			Queries:  tr.Queries,
			Columns:  tr.Columns,
			Duration: tr.Duration,
		})
	}
	return out
}
