// Package config loads semgen settings from defaults, semgen.yaml, SEMGEN_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"github.com/leapstack-labs/semgen/pkg/adapter"
)

// Default configuration values.
const (
	DefaultLimit       = 100
	DefaultMaxValues   = 3
	DefaultConcurrency = 4
	DefaultDialect     = "snowflake"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultStateFile   = ".semgen/state.db"
)

// Config file names, in lookup order.
const (
	ConfigFileName    = "semgen.yaml"
	ConfigFileNameAlt = "semgen.yml"
)

// EnvPrefix prefixes every environment variable read by the loader.
// Nested keys use a double underscore: SEMGEN_TARGET__HOST -> target.host.
const EnvPrefix = "SEMGEN_"

// Config holds all CLI configuration options.
type Config struct {
	Model        string               `koanf:"model"`
	Limit        int                  `koanf:"limit"`
	MaxValues    int                  `koanf:"max_values"`
	Concurrency  int                  `koanf:"concurrency"`
	Dialect      string               `koanf:"dialect"`
	Aggregates   []string             `koanf:"aggregates"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output"`
	Environment  string               `koanf:"environment"`
	StatePath    string               `koanf:"state"`
	Target       *TargetConfig        `koanf:"target"`
	Environments map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// EnvConfig holds environment-specific overrides.
type EnvConfig struct {
	Model  string        `koanf:"model"`
	Target *TargetConfig `koanf:"target"`
}

// TargetConfig describes the database generated SQL is run against.
type TargetConfig struct {
	Type     string            `koanf:"type"`
	Database string            `koanf:"database"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Schema   string            `koanf:"schema"`
	Options  map[string]string `koanf:"options"`
	Params   map[string]any    `koanf:"params"`
}

// AdapterConfig converts the target into an adapter connection config.
// Database doubles as the file path for file-based engines.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	return adapter.Config{
		Type:     t.Type,
		Path:     t.Database,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
		Params:   t.Params,
	}
}
