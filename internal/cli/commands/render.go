package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/semgen/internal/cli/output"
	"github.com/leapstack-labs/semgen/pkg/cte"
	"github.com/leapstack-labs/semgen/pkg/semantic"
	"github.com/spf13/cobra"
)

// RenderedQuery is one aggregate statement.
type RenderedQuery struct {
	Column string `json:"column" yaml:"column"`
	SQL    string `json:"sql" yaml:"sql"`
}

// RenderedTable is the sampling SQL of one table.
type RenderedTable struct {
	Table      string          `json:"table" yaml:"table"`
	Base       string          `json:"base" yaml:"base"`
	Aggregates []RenderedQuery `json:"aggregates" yaml:"aggregates"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "render [table...]",
		Short: "Render the sampling SQL for each table",
		Long: `Render the SQL used to sample each table of the semantic model.

Every table gets a base select that reads its row-level columns through a
common table expression, plus one statement per simple aggregation.

Output adapts to environment:
  - Terminal: Plain SQL (suitable for syntax highlighting)
  - Piped/Scripted: Markdown with code blocks`,
		Example: `  # Render SQL for every table
  semgen render

  # Render one table for DuckDB
  semgen render orders --dialect duckdb

  # Re-render whenever the model file changes
  semgen render --watch

  # Render as JSON
  semgen render orders --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, watch)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-render when the model file changes")

	return cmd
}

func runRender(cmd *cobra.Command, tables []string, watch bool) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	if err := renderOnce(cmdCtx, tables); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	fw, err := newFileWatcher(cmdCtx.Cfg.Model, func() {
		if err := renderOnce(cmdCtx, tables); err != nil {
			r.Warning(err.Error())
		}
	}, cmdCtx.Logger)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(r.ErrWriter(), "Watching %s for changes (Ctrl+C to stop)\n", cmdCtx.Cfg.Model)
	fw.run(cmd.Context())
	return nil
}

func renderOnce(cmdCtx *CommandContext, tables []string) error {
	r := cmdCtx.Renderer

	m, err := cmdCtx.LoadModel()
	if err != nil {
		return err
	}
	m, err = selectTables(semantic.ToColumnFormat(m), tables)
	if err != nil {
		return err
	}
	g, err := cmdCtx.Generator()
	if err != nil {
		return err
	}

	rendered, err := renderModel(g, m, cmdCtx.Cfg.Limit)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(rendered)
	case output.ModeYAML:
		return r.YAML(rendered)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Sampling SQL: %s", m.Name)))
		for _, t := range rendered {
			r.Println("")
			r.Println(output.FormatHeader(2, t.Table))
			r.Println("")
			r.Println(output.FormatCodeBlock("sql", t.SQL()))
		}
	default:
		for i, t := range rendered {
			if i > 0 {
				r.Println("")
			}
			r.Println("-- " + t.Table)
			r.Println(t.SQL())
		}
	}
	return nil
}

func renderModel(g *cte.Generator, m semantic.SemanticModel, limit int) ([]RenderedTable, error) {
	out := make([]RenderedTable, 0, len(m.Tables))
	for _, t := range m.Tables {
		q, err := g.Generate(t, limit)
		if err != nil {
			return nil, err
		}
		rt := RenderedTable{Table: q.Table, Base: q.Base, Aggregates: []RenderedQuery{}}
		for i, stmt := range q.Aggregates {
			rt.Aggregates = append(rt.Aggregates, RenderedQuery{Column: q.AggregateColumns[i], SQL: stmt})
		}
		out = append(out, rt)
	}
	return out, nil
}

// SQL returns every statement of the table terminated by a semicolon.
func (t RenderedTable) SQL() string {
	var b strings.Builder
	b.WriteString(t.Base)
	b.WriteString(";")
	for _, q := range t.Aggregates {
		b.WriteString("\n")
		b.WriteString(q.SQL)
		b.WriteString(";")
	}
	return b.String()
}
