package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/leapstack-labs/semgen/internal/cli/config"
	"github.com/leapstack-labs/semgen/internal/cli/output"
	"github.com/leapstack-labs/semgen/internal/state"
	"github.com/leapstack-labs/semgen/pkg/adapter"
	"github.com/leapstack-labs/semgen/pkg/cte"
	"github.com/leapstack-labs/semgen/pkg/sampler"
	"github.com/leapstack-labs/semgen/pkg/semantic"
	"github.com/spf13/cobra"
)

var errStateDisabled = errors.New("run history is disabled\nHint: set state in semgen.yaml or pass --state")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext for cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// LoadModel reads and validates the configured semantic model.
func (c *CommandContext) LoadModel() (semantic.SemanticModel, error) {
	if c.Cfg.Model == "" {
		return semantic.SemanticModel{}, config.ErrNoModel
	}
	m, err := semantic.LoadFile(c.Cfg.Model)
	if err != nil {
		return semantic.SemanticModel{}, err
	}
	if err := semantic.Validate(m); err != nil {
		return semantic.SemanticModel{}, fmt.Errorf("invalid semantic model %s: %w", c.Cfg.Model, err)
	}
	c.Logger.Debug("loaded semantic model", "path", c.Cfg.Model, "tables", len(m.Tables))
	return m, nil
}

// Generator returns a query generator for the configured dialect.
func (c *CommandContext) Generator() (*cte.Generator, error) {
	d, err := c.Cfg.ResolveDialect()
	if err != nil {
		return nil, err
	}
	return cte.New(d), nil
}

// Connect opens the configured target.
// Returns the adapter and a cleanup function that must be called (typically via defer).
func (c *CommandContext) Connect(ctx context.Context) (adapter.Adapter, func(), error) {
	if c.Cfg.Target == nil {
		return nil, nil, config.ErrNoTarget
	}

	a, err := adapter.NewAdapter(c.Cfg.Target.AdapterConfig(), c.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := a.Connect(ctx, c.Cfg.Target.AdapterConfig()); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s target: %w", c.Cfg.Target.Type, err)
	}
	c.Logger.Debug("connected to target", "type", c.Cfg.Target.Type, "database", c.Cfg.Target.Database)

	cleanup := func() {
		if err := a.Close(); err != nil {
			c.Logger.Warn("failed to close target", "error", err)
		}
	}
	return a, cleanup, nil
}

// Sampler builds a sampler over a using the configured limits.
func (c *CommandContext) Sampler(a adapter.Adapter) (*sampler.Sampler, error) {
	g, err := c.Generator()
	if err != nil {
		return nil, err
	}
	return sampler.New(a, g, sampler.Options{
		Limit:       c.Cfg.Limit,
		MaxValues:   c.Cfg.MaxValues,
		Concurrency: c.Cfg.Concurrency,
	}, c.Logger), nil
}

// OpenState opens the run history store.
// Returns the store and a cleanup function that must be called (typically via defer).
func (c *CommandContext) OpenState(ctx context.Context) (*state.SQLiteStore, func(), error) {
	if c.Cfg.StatePath == "" {
		return nil, nil, errStateDisabled
	}
	store := state.NewSQLiteStore(c.Logger)
	if err := store.Open(ctx, c.Cfg.StatePath); err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// recordRun saves run to the history store. History is best effort: a
// failure is logged and never fails the command.
func (c *CommandContext) recordRun(ctx context.Context, run *state.Run, tables []state.TableRun) {
	if c.Cfg.StatePath == "" {
		return
	}
	store, cleanup, err := c.OpenState(ctx)
	if err != nil {
		c.Logger.Warn("failed to open run history", "path", c.Cfg.StatePath, "error", err)
		return
	}
	defer cleanup()

	if c.Cfg.Target != nil {
		run.Target = c.Cfg.Target.Type
	}
	run.Model = c.Cfg.Model
	if err := store.RecordRun(ctx, run, tables); err != nil {
		c.Logger.Warn("failed to record run", "id", run.ID, "error", err)
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		Model:        os.Getenv("SEMGEN_MODEL"),
		Limit:        getEnvIntOrDefault("SEMGEN_LIMIT", config.DefaultLimit),
		MaxValues:    getEnvIntOrDefault("SEMGEN_MAX_VALUES", config.DefaultMaxValues),
		Concurrency:  getEnvIntOrDefault("SEMGEN_CONCURRENCY", config.DefaultConcurrency),
		Dialect:      getEnvOrDefault("SEMGEN_DIALECT", config.DefaultDialect),
		StatePath:    os.Getenv("SEMGEN_STATE"),
		Verbose:      os.Getenv("SEMGEN_VERBOSE") == "true",
		OutputFormat: os.Getenv("SEMGEN_OUTPUT"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// selectTables keeps the tables named in names, in model order.
// An empty names keeps every table.
func selectTables(m semantic.SemanticModel, names []string) (semantic.SemanticModel, error) {
	if len(names) == 0 {
		return m, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	out := semantic.SemanticModel{Name: m.Name, Description: m.Description}
	for _, t := range m.Tables {
		if want[t.Name] {
			out.Tables = append(out.Tables, t)
			delete(want, t.Name)
		}
	}
	for _, n := range names {
		if want[n] {
			return semantic.SemanticModel{}, fmt.Errorf("table %q not found in model %q", n, m.Name)
		}
	}
	return out, nil
}
