package commands

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/leapstack-labs/semgen/internal/cli/output"
	"github.com/leapstack-labs/semgen/internal/state"
	"github.com/spf13/cobra"
)

// RunDetail is the JSON form of one run with its tables.
type RunDetail struct {
	Run    *state.Run       `json:"run" yaml:"run"`
	Tables []state.TableRun `json:"tables" yaml:"tables"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var last int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Show the history of sample and validate runs",
		Long: `Show recent sample and validate runs recorded in the state database.

With a run ID, show the outcome of every table in that run.`,
		Example: `  # List the 20 most recent runs
  semgen runs

  # Show one run
  semgen runs 6f1c2e0a-5b7d-4c55-9d0e-2b1f3a4c5d6e -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runShowRun(cmd, args[0])
			}
			return runListRuns(cmd, last)
		},
	}

	cmd.Flags().IntVarP(&last, "last", "n", 20, "Number of runs to show")

	return cmd
}

func runListRuns(cmd *cobra.Command, last int) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	ctx := cmd.Context()

	store, cleanup, err := cmdCtx.OpenState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := store.ListRuns(ctx, last)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if runs == nil {
			runs = []*state.Run{}
		}
		return r.JSON(runs)
	case output.ModeYAML:
		return r.YAML(runs)
	}

	r.Header(1, "Runs")
	if len(runs) == 0 {
		r.Println("No runs recorded yet.")
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			string(run.Kind),
			string(run.Status),
			run.StartedAt.Local().Format(time.DateTime),
			formatDuration(run.Duration()),
			filepath.Base(run.Model),
		})
	}
	r.Table([]string{"ID", "Kind", "Status", "Started", "Duration", "Model"}, rows)
	return nil
}

func runShowRun(cmd *cobra.Command, id string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	ctx := cmd.Context()

	store, cleanup, err := cmdCtx.OpenState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	run, err := store.GetRun(ctx, id)
	if err != nil {
		return err
	}
	tables, err := store.GetTableRuns(ctx, id)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if tables == nil {
			tables = []state.TableRun{}
		}
		return r.JSON(RunDetail{Run: run, Tables: tables})
	case output.ModeYAML:
		return r.YAML(RunDetail{Run: run, Tables: tables})
	}

	r.Header(1, "Run "+run.ID)
	r.Println(output.FormatKeyValue("Kind", string(run.Kind)))
	r.Println(output.FormatKeyValue("Status", string(run.Status)))
	r.Println(output.FormatKeyValue("Model", run.Model))
	if run.Target != "" {
		r.Println(output.FormatKeyValue("Target", run.Target))
	}
	r.Println(output.FormatKeyValue("Started", run.StartedAt.Local().Format(time.DateTime)))
	r.Println(output.FormatKeyValue("Duration", formatDuration(run.Duration())))
	if run.Error != "" {
		r.Println(output.FormatKeyValue("Error", run.Error))
	}
	r.Println("")

	rows := make([][]string, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, []string{t.Table, string(t.Status), strconv.Itoa(t.Queries), formatDuration(t.Duration), t.Error})
	}
	r.Table([]string{"Table", "Status", "Queries", "Duration", "Error"}, rows)
	return nil
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return fmt.Sprint(d.Round(time.Millisecond))
}
