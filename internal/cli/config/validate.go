package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/semgen/internal/cli/output"
	"github.com/leapstack-labs/semgen/pkg/adapter"
	"github.com/leapstack-labs/semgen/pkg/dialect"
)

// ErrNoTarget is returned by commands that need a database when none is configured.
var ErrNoTarget = errors.New("no target configured\nHint: add a target block to semgen.yaml or pass --database")

// ErrNoModel is returned when no model file is configured.
var ErrNoModel = errors.New("no semantic model configured\nHint: set model in semgen.yaml or pass --model")

// DefaultSchemaForType returns the default schema of the dialect named
// dbType, or "main" when there is none.
func DefaultSchemaForType(dbType string) string {
	if d, ok := dialect.Get(dbType); ok && d.DefaultSchema != "" {
		return d.DefaultSchema
	}
	return "main"
}

// ApplyTargetDefaults normalizes the type and fills schema and port.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}
	t.Type = strings.ToLower(t.Type)
	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}
	if t.Type == "postgres" && t.Port == 0 {
		t.Port = 5432
	}
}

// Validate checks if the target configuration is valid.
// The adapter registry is the source of truth for available types.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}
	return nil
}

// Validate checks the sampling settings, the output format and the dialect.
func (c *Config) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", c.Limit)
	}
	if c.MaxValues <= 0 {
		return fmt.Errorf("max_values must be positive, got %d", c.MaxValues)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	if _, err := c.ResolveDialect(); err != nil {
		return err
	}
	if c.Target != nil {
		if err := c.Target.Validate(); err != nil {
			return fmt.Errorf("invalid target configuration: %w", err)
		}
	}
	return nil
}

// ResolveDialect returns the configured dialect extended with the extra
// aggregates. With no dialect set it follows the target type when that
// names a dialect, and DefaultDialect otherwise.
func (c *Config) ResolveDialect() (*dialect.Dialect, error) {
	name := c.Dialect
	if name == "" {
		name = DefaultDialect
		if c.Target != nil {
			if _, ok := dialect.Get(c.Target.Type); ok {
				name = c.Target.Type
			}
		}
	}
	return dialect.Resolve(name, c.Aggregates)
}
