package sampler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/semgen/pkg/semantic"
)

// QueryFailure records one statement that failed against the target.
type QueryFailure struct {
	Column string `json:"column,omitempty" yaml:"column,omitempty"` // empty for the base select
	SQL    string `json:"sql" yaml:"sql"`
	Err    string `json:"error" yaml:"error"`
}

// TableReport is the validation outcome for one table.
type TableReport struct {
	Table    string
	Queries  int
	Failures []QueryFailure
	// GenerateErr is set when no SQL could be generated for the table.
	GenerateErr string
	Duration    time.Duration
}

// OK reports whether every query for the table ran.
func (r TableReport) OK() bool {
	return r.GenerateErr == "" && len(r.Failures) == 0
}

// ValidateModel runs every generated statement of m and reports failures
// per table, in table order. It keeps going past failures; only ctx
// cancellation stops it early, leaving the remaining reports with a
// failure that carries ctx.Err().
func (s *Sampler) ValidateModel(ctx context.Context, m semantic.SemanticModel) []TableReport {
	m = semantic.ToColumnFormat(m)
	reports := make([]TableReport, len(m.Tables))

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, t := range m.Tables {
		g.Go(func() error {
			reports[i] = s.validateTable(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range reports {
		if !r.OK() {
			failed++
		}
	}
	s.logger.Info("validated model", slog.String("model", m.Name), slog.Int("tables", len(reports)), slog.Int("failed", failed))
	return reports
}

func (s *Sampler) validateTable(ctx context.Context, t semantic.Table) TableReport {
	start := time.Now()
	report := TableReport{Table: t.Name}

	q, err := s.gen.Generate(t, s.opts.Limit)
	if err != nil {
		report.GenerateErr = err.Error()
		report.Duration = time.Since(start)
		return report
	}

	run := func(column, stmt string) {
		report.Queries++
		if err := s.drain(ctx, stmt); err != nil {
			s.logger.Debug("query failed", slog.String("table", t.Name), slog.String("sql", stmt), slog.String("error", err.Error()))
			report.Failures = append(report.Failures, QueryFailure{Column: column, SQL: stmt, Err: err.Error()})
		}
	}

	if len(q.PassThroughColumns) > 0 {
		run("", q.Base)
	}
	for i, stmt := range q.Aggregates {
		run(q.AggregateColumns[i], stmt)
	}
	report.Duration = time.Since(start)
	return report
}

func (s *Sampler) drain(ctx context.Context, stmt string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, err := s.adapter.Query(ctx, stmt)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() { //nolint:revive // results are discarded
	}
	return rows.Err()
}
