// Package adapter defines the database contract the sampler runs generated
// SQL through.
//
// Concrete adapters live in pkg/adapters/ subdirectories and register
// themselves from init(); import them with a blank identifier.
package adapter

import (
	"context"
	"database/sql"
)

// Config holds connection settings for a sampling target.
type Config struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string
	// Params carries adapter-specific settings decoded by the adapter itself.
	Params map[string]any
}

// Rows wraps sql.Rows. Callers must Close it and check Err after iterating.
type Rows struct {
	*sql.Rows
}

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, sql string) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string) (*Rows, error)

	// DialectName names the dialect generated SQL should target.
	DialectName() string
}
