package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/semgen/internal/cli/output"
	"github.com/leapstack-labs/semgen/internal/state"
	"github.com/leapstack-labs/semgen/pkg/sampler"
	"github.com/leapstack-labs/semgen/pkg/semantic"
	"github.com/spf13/cobra"
)

// ValidationResult is the JSON form of one table's validation.
type ValidationResult struct {
	Table      string                 `json:"table" yaml:"table"`
	OK         bool                   `json:"ok" yaml:"ok"`
	Queries    int                    `json:"queries" yaml:"queries"`
	Error      string                 `json:"error,omitempty" yaml:"error,omitempty"`
	Failures   []sampler.QueryFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	DurationMS int64                  `json:"duration_ms" yaml:"duration_ms"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [table...]",
		Short: "Check that every sampling query runs on the target",
		Long: `Run every generated sampling statement against the configured target
and report which tables fail. All tables are checked even after a failure.
The command exits with an error when any table fails.`,
		Example: `  # Validate every table
  semgen validate

  # Validate against a Postgres target as JSON
  semgen validate --target prod -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args)
		},
	}

	return cmd
}

func runValidate(cmd *cobra.Command, tables []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	ctx := cmd.Context()

	m, err := cmdCtx.LoadModel()
	if err != nil {
		return err
	}
	m, err = selectTables(semantic.ToColumnFormat(m), tables)
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
	reports := s.ValidateModel(ctx, m)
	failed := 0
	for _, rep := range reports {
		if !rep.OK() {
			failed++
		}
	}
	var runErr error
	if failed > 0 {
		runErr = fmt.Errorf("%d of %d tables failed validation", failed, len(reports))
	}
	cmdCtx.recordRun(ctx, validateRun(started, runErr), validateTableRuns(reports))

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		results := make([]ValidationResult, 0, len(reports))
		for _, rep := range reports {
			results = append(results, ValidationResult{
				Table:      rep.Table,
				OK:         rep.OK(),
				Queries:    rep.Queries,
				Error:      rep.GenerateErr,
				Failures:   rep.Failures,
				DurationMS: rep.Duration.Milliseconds(),
			})
		}
		var err error
		if r.EffectiveMode() == output.ModeJSON {
			err = r.JSON(results)
		} else {
			err = r.YAML(results)
		}
		if err != nil {
			return err
		}
	default:
		r.Header(1, "Validating "+m.Name)
		for _, rep := range reports {
			printReport(r, rep)
		}
		r.Println("")
		if failed == 0 {
			r.Success(fmt.Sprintf("%d tables validated", len(reports)))
		}
	}

	return runErr
}

func validateRun(started time.Time, runErr error) *state.Run {
	finished := time.Now()
	run := &state.Run{
		Kind:        state.RunKindValidate,
		Status:      state.RunStatusCompleted,
		StartedAt:   started,
		CompletedAt: &finished,
	}
	if runErr != nil {
		run.Status = state.RunStatusFailed
		run.Error = runErr.Error()
	}
	return run
}

func validateTableRuns(reports []sampler.TableReport) []state.TableRun {
	out := make([]state.TableRun, 0, len(reports))
	for _, rep := range reports {
		tr := state.TableRun{
			Table:    rep.Table,
			Status:   state.TableStatusSuccess,
			Queries:  rep.Queries,
			Duration: rep.Duration,
		}
		if !rep.OK() {
			tr.Status = state.TableStatusFailed
			tr.Error = rep.GenerateErr
			if tr.Error == "" {
				tr.Error = rep.Failures[0].Err
			}
		}
		out = append(out, tr)
	}
	return out
}

func printReport(r *output.Renderer, rep sampler.TableReport) {
	detail := fmt.Sprintf("%d queries, %s", rep.Queries, rep.Duration.Round(time.Millisecond))
	if rep.OK() {
		r.StatusLine(rep.Table, "success", detail)
		return
	}
	if rep.GenerateErr != "" {
		r.StatusLine(rep.Table, "failed", rep.GenerateErr)
		return
	}
	r.StatusLine(rep.Table, "failed", detail)
	for _, f := range rep.Failures {
		target := "base select"
		if f.Column != "" {
			target = f.Column
		}
		r.Printf("    %s: %s\n", target, f.Err)
	}
}
