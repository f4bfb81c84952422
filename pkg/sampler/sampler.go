// Package sampler runs generated sampling SQL against a live target and
// writes representative values back into a semantic model.
package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/semgen/pkg/adapter"
	"github.com/leapstack-labs/semgen/pkg/cte"
	"github.com/leapstack-labs/semgen/pkg/semantic"
)

// Default option values.
const (
	DefaultLimit       = 100
	DefaultMaxValues   = 3
	DefaultConcurrency = 4
)

// Options controls how much data a sampling run reads.
type Options struct {
	// Limit bounds the rows read by every generated statement.
	Limit int
	// MaxValues caps the distinct values kept per pass-through column.
	MaxValues int
	// Concurrency caps the number of tables sampled at once.
	Concurrency int
}

// DefaultOptions returns the default sampling options.
func DefaultOptions() Options {
	return Options{Limit: DefaultLimit, MaxValues: DefaultMaxValues, Concurrency: DefaultConcurrency}
}

func (o Options) withDefaults() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.MaxValues <= 0 {
		o.MaxValues = DefaultMaxValues
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// Sampler executes a Generator's queries through a connected adapter.
// It is safe for concurrent use when the adapter is.
type Sampler struct {
	adapter adapter.Adapter
	gen     *cte.Generator
	opts    Options
	logger  *slog.Logger
}

// New returns a Sampler. A nil g uses the default dialect; a nil logger
// discards output; zero option fields take their defaults.
func New(a adapter.Adapter, g *cte.Generator, opts Options, logger *slog.Logger) *Sampler {
	if g == nil {
		g = cte.New(nil)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sampler{adapter: a, gen: g, opts: opts.withDefaults(), logger: logger}
}

// Options returns the effective options.
func (s *Sampler) Options() Options {
	return s.opts
}

// TableResult summarizes the sampling of one table.
type TableResult struct {
	Table    string
	Queries  int
	Columns  int
	Duration time.Duration
}

// Result summarizes a SampleModel run.
type Result struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Tables   []TableResult
}

// SampleTable samples every column of t and returns a copy whose
// SampleValues hold the observed values. Pass-through columns keep up to
// MaxValues distinct non-NULL values in first-seen order; aggregate
// columns keep their single result. t must be in column format.
func (s *Sampler) SampleTable(ctx context.Context, t semantic.Table) (semantic.Table, error) {
	out, _, err := s.sampleTable(ctx, t)
	return out, err
}

// SampleModel converts m to column format and samples its tables
// concurrently. Table order is preserved. The first failing table cancels
// the run and its error is returned.
func (s *Sampler) SampleModel(ctx context.Context, m semantic.SemanticModel) (semantic.SemanticModel, *Result, error) {
	m = semantic.ToColumnFormat(m)
	res := &Result{RunID: uuid.NewString(), Started: time.Now()}
	log := s.logger.With(slog.String("run_id", res.RunID), slog.String("model", m.Name))
	log.Info("sampling model", slog.Int("tables", len(m.Tables)), slog.Int("concurrency", s.opts.Concurrency))

	tables := make([]semantic.Table, len(m.Tables))
	results := make([]TableResult, len(m.Tables))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, t := range m.Tables {
		g.Go(func() error {
			out, tr, err := s.sampleTable(gctx, t)
			if err != nil {
				return err
			}
			tables[i] = out
			results[i] = tr
			log.Debug("sampled table", slog.String("table", t.Name), slog.Int("queries", tr.Queries), slog.Duration("duration", tr.Duration))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return semantic.SemanticModel{}, nil, err
	}

	m.Tables = tables
	res.Tables = results
	res.Finished = time.Now()
	log.Info("sampling finished", slog.Duration("duration", res.Finished.Sub(res.Started)))
	return m, res, nil
}

func (s *Sampler) sampleTable(ctx context.Context, t semantic.Table) (semantic.Table, TableResult, error) {
	start := time.Now()
	q, err := s.gen.Generate(t, s.opts.Limit)
	if err != nil {
		return semantic.Table{}, TableResult{}, err
	}

	values := make(map[string][]string, len(q.PassThroughColumns)+len(q.AggregateColumns))
	queries := 0
	if len(q.PassThroughColumns) > 0 {
		got, err := s.distinctValues(ctx, q.Base, len(q.PassThroughColumns))
		if err != nil {
			return semantic.Table{}, TableResult{}, fmt.Errorf("table %q: %w", t.Name, err)
		}
		for i, name := range q.PassThroughColumns {
			values[name] = got[i]
		}
		queries++
	}
	for i, stmt := range q.Aggregates {
		v, err := s.singleValue(ctx, stmt)
		if err != nil {
			return semantic.Table{}, TableResult{}, fmt.Errorf("table %q, column %q: %w", t.Name, q.AggregateColumns[i], err)
		}
		values[q.AggregateColumns[i]] = v
		queries++
	}

	cols, _ := t.ColumnList()
	sampled := make([]semantic.Column, len(cols))
	for i, c := range cols {
		c = c.Clone()
		c.SampleValues = values[c.Name]
		sampled[i] = c
	}

	return t.WithColumns(sampled), TableResult{
		Table:    t.Name,
		Queries:  queries,
		Columns:  len(cols),
		Duration: time.Since(start),
	}, nil
}

// distinctValues reads the base select and keeps up to MaxValues distinct
// non-NULL values for each of its n columns.
func (s *Sampler) distinctValues(ctx context.Context, stmt string, n int) ([][]string, error) {
	rows, err := s.adapter.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(cols) != n {
		return nil, fmt.Errorf("base select returned %d columns, want %d", len(cols), n)
	}

	out := make([][]string, n)
	seen := make([]map[string]struct{}, n)
	for i := range seen {
		seen[i] = make(map[string]struct{})
	}
	raw := make([]any, n)
	dest := make([]any, n)
	for i := range raw {
		dest[i] = &raw[i]
	}

	full := 0
	for full < n && rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}
		for i, v := range raw {
			if len(out[i]) >= s.opts.MaxValues {
				continue
			}
			str, ok := formatValue(v)
			if !ok {
				continue
			}
			if _, dup := seen[i][str]; dup {
				continue
			}
			seen[i][str] = struct{}{}
			out[i] = append(out[i], str)
			if len(out[i]) == s.opts.MaxValues {
				full++
			}
		}
	}
	return out, rows.Err()
}

// singleValue runs an aggregate select and returns its first value, or nil
// when the result is NULL or empty.
func (s *Sampler) singleValue(ctx context.Context, stmt string) ([]string, error) {
	rows, err := s.adapter.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var v any
	if err := rows.Scan(&v); err != nil {
		return nil, fmt.Errorf("scan aggregate value: %w", err)
	}
	if str, ok := formatValue(v); ok {
		return []string{str}, rows.Err()
	}
	return nil, rows.Err()
}

// formatValue renders a scanned driver value. NULL reports false.
func formatValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case []byte:
		return string(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly), true
		}
		return x.Format(time.RFC3339Nano), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}
