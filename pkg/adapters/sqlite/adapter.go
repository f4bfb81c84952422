// Package sqlite provides a SQLite sampling target backed by the pure-Go
// modernc.org/sqlite driver.
//
// SQLite has no catalog level; pair it with dialect.SQLite so generated
// queries name base tables as <schema>.<table> (usually main.<table>).
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"

	"github.com/leapstack-labs/semgen/pkg/adapter"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	return &Adapter{BaseSQLAdapter: adapter.NewBase(logger)}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "sqlite"
}

// Connect opens cfg.Path (an in-memory database when empty). Every entry
// of cfg.Options is applied as a pragma on each pooled connection.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	if err := a.Open(ctx, "sqlite", buildDSN(cfg), cfg); err != nil {
		return err
	}
	if cfg.Path == "" {
		// Each connection to :memory: is a separate database.
		a.DB.SetMaxOpenConns(1)
	}
	return nil
}

func buildDSN(cfg adapter.Config) string {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	if len(cfg.Options) == 0 {
		return path
	}

	keys := make([]string, 0, len(cfg.Options))
	for k := range cfg.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := url.Values{}
	for _, k := range keys {
		q.Add("_pragma", fmt.Sprintf("%s(%s)", k, cfg.Options[k]))
	}
	return "file:" + path + "?" + q.Encode()
}

var _ adapter.Adapter = (*Adapter)(nil)
