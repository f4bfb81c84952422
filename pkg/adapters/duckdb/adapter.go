// Package duckdb provides a DuckDB sampling target.
package duckdb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/semgen/pkg/adapter"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	return &Adapter{BaseSQLAdapter: adapter.NewBase(logger)}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "duckdb"
}

// Connect opens the database at cfg.Path (":memory:" when empty) and runs
// the setup statements from cfg.Params.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := ParseParams(cfg.Params)
	if err != nil {
		return err
	}
	setup, err := params.statements()
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	if err := a.Open(ctx, "duckdb", path, cfg); err != nil {
		return err
	}

	for _, stmt := range setup {
		if err := a.Exec(ctx, stmt); err != nil {
			_ = a.Close()
			return fmt.Errorf("duckdb setup: %w", err)
		}
	}
	if len(setup) > 0 {
		a.Logger.Debug("applied duckdb setup", slog.Int("statements", len(setup)))
	}
	return nil
}

var _ adapter.Adapter = (*Adapter)(nil)
