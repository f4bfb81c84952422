package commands

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/semgen/internal/testutil"
	"github.com/leapstack-labs/semgen/pkg/cte"
	"github.com/leapstack-labs/semgen/pkg/dialect"
	"github.com/leapstack-labs/semgen/pkg/semantic"
)

func TestNewNormalizeCommand(t *testing.T) {
	cmd := NewNormalizeCommand()

	assert.Equal(t, "normalize", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("write"))
}

func TestNewClassifyCommand(t *testing.T) {
	cmd := NewClassifyCommand()

	assert.Equal(t, "classify [table...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

func TestNewRenderCommand(t *testing.T) {
	cmd := NewRenderCommand()

	assert.Equal(t, "render [table...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	watch := cmd.Flags().Lookup("watch")
	require.NotNil(t, watch)
	assert.Equal(t, "w", watch.Shorthand)
}

func TestNewSampleCommand(t *testing.T) {
	cmd := NewSampleCommand()

	assert.Equal(t, "sample [table...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("write"))
}

func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()

	assert.Equal(t, "validate [table...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Long, "Long should not be empty")
}

func TestSelectTables(t *testing.T) {
	m := testutil.ColumnFormatModel()

	tests := []struct {
		name    string
		names   []string
		want    []string
		wantErr string
	}{
		{name: "all", names: nil, want: []string{"t1", "t2"}},
		{name: "one", names: []string{"t2"}, want: []string{"t2"}},
		{name: "model order", names: []string{"t2", "t1"}, want: []string{"t1", "t2"}},
		{name: "unknown", names: []string{"t1", "t9"}, wantErr: `table "t9" not found`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectTables(m, tt.names)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "test_ctx", got.Name)

			var names []string
			for _, tbl := range got.Tables {
				names = append(names, tbl.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestMergeTables(t *testing.T) {
	base := testutil.ColumnFormatModel()
	updated := semantic.SemanticModel{Tables: []semantic.Table{
		{Name: "t2", Description: "sampled"},
	}}

	got := mergeTables(base, updated)
	require.Len(t, got.Tables, 2)
	assert.Equal(t, base.Tables[0], got.Tables[0])
	assert.Equal(t, "sampled", got.Tables[1].Description)
	assert.Empty(t, base.Tables[1].Description)
}

func TestClassifyModel(t *testing.T) {
	m := semantic.SemanticModel{Name: "m", Tables: []semantic.Table{testutil.MixedAggregateTable()}}

	rows := classifyModel(cte.New(nil), m)
	require.Len(t, rows, 3)

	assert.Equal(t, ClassifiedColumn{Table: "t1", Column: "d1", Kind: "dimension", Class: ClassPassThrough, Expr: "d1_expr"}, rows[0])
	assert.Equal(t, ClassifiedColumn{Table: "t1", Column: "d2", Kind: "measure", Class: ClassAggregate, Expr: "SUM(d2)"}, rows[1])
	assert.Equal(t, ClassifiedColumn{Table: "t1", Column: "d3", Kind: "measure", Class: ClassPassThrough, Expr: "SUM(d3) OVER (PARTITION BY d1)"}, rows[2])
}

func TestRenderModel(t *testing.T) {
	t.Run("mixed", func(t *testing.T) {
		m := semantic.SemanticModel{Tables: []semantic.Table{testutil.MixedAggregateTable()}}

		got, err := renderModel(cte.New(nil), m, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)

		assert.Equal(t, "WITH __t1 AS (SELECT d1_expr AS d1, SUM(d3) OVER (PARTITION BY d1) AS d3 FROM db.sc.t1) SELECT * FROM __t1 LIMIT 10", got[0].Base)
		assert.Equal(t, []RenderedQuery{{Column: "d2", SQL: "SELECT SUM(d2) AS d2 FROM db.sc.t1 LIMIT 10"}}, got[0].Aggregates)
		assert.Equal(t,
			"WITH __t1 AS (SELECT d1_expr AS d1, SUM(d3) OVER (PARTITION BY d1) AS d3 FROM db.sc.t1) SELECT * FROM __t1 LIMIT 10;\n"+
				"SELECT SUM(d2) AS d2 FROM db.sc.t1 LIMIT 10;",
			got[0].SQL())
	})

	t.Run("no aggregates", func(t *testing.T) {
		m := semantic.SemanticModel{Tables: []semantic.Table{testutil.DimensionsTable()}}

		got, err := renderModel(cte.New(dialect.DuckDB), m, 10)
		require.NoError(t, err)
		assert.NotNil(t, got[0].Aggregates)
		assert.Empty(t, got[0].Aggregates)
	})

	t.Run("missing base table", func(t *testing.T) {
		tbl := testutil.DimensionsTable()
		tbl.BaseTable = nil

		_, err := renderModel(cte.New(nil), semantic.SemanticModel{Tables: []semantic.Table{tbl}}, 10)
		require.ErrorIs(t, err, cte.ErrMissingBaseTable)
	})
}

func TestFileWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: a\n"), 0o600))

	var changes atomic.Int32
	fw, err := newFileWatcher(path, func() { changes.Add(1) }, testutil.NewTestLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		fw.run(ctx)
		close(done)
	}()

	// Writes to other files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("x"), 0o600))
	time.Sleep(3 * watchDebounce)
	assert.Equal(t, int32(0), changes.Load())

	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("name: b\n"), 0o600)
		return changes.Load() > 0
	}, 5*time.Second, 2*watchDebounce)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
