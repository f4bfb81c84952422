package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Factory builds an adapter for one target type. The adapter is not
// connected yet; a nil logger discards output.
type Factory func(*slog.Logger) Adapter

// ErrTypeRequired is returned by NewAdapter when the target has no type.
var ErrTypeRequired = errors.New("target type not specified")

// Target types are matched case-insensitively, so "DuckDB" in semgen.yaml
// finds the "duckdb" factory.
var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{}
)

func typeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register makes a target type available to NewAdapter.
// The adapters under pkg/adapters call it from init, so a blank import is
// enough to enable a target. Registering a type again replaces its factory.
func Register(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[typeKey(name)] = factory
}

// Get returns the factory for a target type.
func Get(name string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[typeKey(name)]
	return f, ok
}

// NewAdapter builds the adapter for cfg.Type. Call Connect on the result
// before sampling.
func NewAdapter(cfg Config, logger *slog.Logger) (Adapter, error) {
	if typeKey(cfg.Type) == "" {
		return nil, ErrTypeRequired
	}
	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{Type: cfg.Type, Available: ListAdapters()}
	}
	return factory(logger), nil
}

// ListAdapters returns the registered target types in sorted order.
func ListAdapters() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	return slices.Sorted(maps.Keys(factories))
}

// IsRegistered reports whether a target type has a factory.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// UnknownAdapterError reports a target type with no registered adapter.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown target type %q\nAvailable targets: %v\nHint: set target.type in semgen.yaml or pass --database", e.Type, e.Available)
}
