package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/semgen/internal/cli/config"
	"github.com/leapstack-labs/semgen/pkg/cte"
	"github.com/leapstack-labs/semgen/pkg/dialect"
)

func TestNewExplainCommand(t *testing.T) {
	cmd := NewExplainCommand()

	assert.Equal(t, "explain [expr...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Example)
}

func TestExplainExpr(t *testing.T) {
	g := cte.New(nil)

	tests := []struct {
		expr       string
		class      string
		normalized string
	}{
		{"sum(foo)", ClassAggregate, "SUM(foo)"},
		{"sum(foo) / sum(bar)", ClassAggregate, "SUM(foo) / SUM(bar)"},
		{"foo + bar", ClassPassThrough, "foo + bar"},
		{"sum(foo) over (partition by bar)", ClassPassThrough, "SUM(foo) OVER (PARTITION BY bar)"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			res := explainExpr(g, tt.expr)
			assert.Equal(t, tt.expr, res.Expr)
			assert.Equal(t, tt.class, res.Class)
			assert.Equal(t, tt.normalized, res.Normalized)
		})
	}
}

func newTestSession(cfg *config.Config) (*explainSession, *bytes.Buffer, *bytes.Buffer) {
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	return &explainSession{g: cte.New(nil), cfg: cfg, out: out, errOut: errOut}, out, errOut
}

func TestExplainSession_Scan(t *testing.T) {
	s, out, errOut := newTestSession(&config.Config{})

	in := strings.NewReader("sum(amount)\n\n  amount  \n.bogus\n.quit\nsum(x)\n")
	require.NoError(t, s.scan(in))

	assert.Equal(t, "aggregate    SUM(amount)\npass-through amount\n", out.String())
	assert.Contains(t, errOut.String(), "Unknown command: .bogus")
}

func TestExplainSession_DotCommands(t *testing.T) {
	t.Run("help", func(t *testing.T) {
		s, out, _ := newTestSession(nil)
		assert.False(t, s.handleLine(".help"))
		assert.Contains(t, out.String(), ".dialect [name]")
	})

	t.Run("exit", func(t *testing.T) {
		s, _, _ := newTestSession(nil)
		assert.True(t, s.handleLine(".EXIT"))
	})

	t.Run("aggregates", func(t *testing.T) {
		s, out, _ := newTestSession(nil)
		s.handleLine(".aggregates")
		assert.Contains(t, out.String(), "sum")
	})

	t.Run("show dialect", func(t *testing.T) {
		s, out, _ := newTestSession(nil)
		s.handleLine(".dialect")
		assert.Equal(t, dialect.Default().Name+"\n", out.String())
	})

	t.Run("switch dialect keeps configured aggregates", func(t *testing.T) {
		s, out, _ := newTestSession(&config.Config{Aggregates: []string{"weighted_avg"}})
		s.handleLine(".dialect duckdb")
		assert.Equal(t, "duckdb", s.g.Dialect().Name)
		assert.Contains(t, out.String(), "dialect: duckdb")

		out.Reset()
		s.handleLine("weighted_avg(x, w)")
		assert.Equal(t, "aggregate    WEIGHTED_AVG(x, w)\n", out.String())
	})

	t.Run("unknown dialect", func(t *testing.T) {
		s, _, errOut := newTestSession(nil)
		s.handleLine(".dialect oracle9")
		assert.Contains(t, errOut.String(), "Error:")
		assert.Equal(t, dialect.Default().Name, s.g.Dialect().Name)
	})
}

func TestExplainSession_HistoryFile(t *testing.T) {
	s, _, _ := newTestSession(&config.Config{})
	assert.Empty(t, s.historyFile())

	dir := t.TempDir()
	s.cfg.StatePath = dir + "/.semgen/state.db"
	assert.Equal(t, dir+"/.semgen/explain_history", s.historyFile())
	assert.DirExists(t, dir+"/.semgen")
}
