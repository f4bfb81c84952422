// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/semgen/internal/cli/output"

	_ "modernc.org/sqlite" // database/sql driver for the fixture database
)

// ShopModel is a legacy-format semantic model over the orders table
// created by SetupTestProject.
const ShopModel = `name: shop
tables:
  - name: orders
    description: One row per order
    base_table:
      database: shop
      schema: main
      table: orders
    dimensions:
      - name: region
        expr: region
        data_type: TEXT
    time_dimensions:
      - name: order_date
        expr: order_date
    measures:
      - name: amount
        expr: amount
      - name: total_amount
        expr: sum(amount)
        default_aggregation: sum
      - name: running_amount
        expr: sum(amount) over (order by id)
`

// Project is a temporary semgen project.
type Project struct {
	Dir        string
	ConfigPath string
	ModelPath  string
	Database   string
}

// SetupTestProject creates a temporary project with semgen.yaml, the shop
// model and a SQLite database holding three orders.
func SetupTestProject(t *testing.T) *Project {
	t.Helper()

	tmpDir := t.TempDir()
	p := &Project{
		Dir:        tmpDir,
		ConfigPath: filepath.Join(tmpDir, "semgen.yaml"),
		ModelPath:  filepath.Join(tmpDir, "models", "shop.yaml"),
		Database:   filepath.Join(tmpDir, "shop.db"),
	}

	if err := os.MkdirAll(filepath.Dir(p.ModelPath), 0o750); err != nil {
		t.Fatalf("failed to create models directory: %v", err)
	}
	if err := os.WriteFile(p.ModelPath, []byte(ShopModel), 0o600); err != nil {
		t.Fatalf("failed to create shop.yaml: %v", err)
	}

	cfg := `model: models/shop.yaml
target:
  type: sqlite
  database: shop.db
`
	if err := os.WriteFile(p.ConfigPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("failed to create semgen.yaml: %v", err)
	}

	db, err := sql.Open("sqlite", p.Database)
	if err != nil {
		t.Fatalf("failed to open fixture database: %v", err)
	}
	defer func() { _ = db.Close() }()

	stmts := []string{
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, region TEXT, order_date TEXT, amount INTEGER)`,
		`INSERT INTO orders VALUES (1, 'east', '2024-01-01', 10), (2, 'west', '2024-01-02', 50), (3, 'east', '2024-01-03', 40)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to seed fixture database: %v", err)
		}
	}

	return p
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
