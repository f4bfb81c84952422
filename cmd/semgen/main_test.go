// Package main provides tests for the semgen CLI.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/semgen/internal/cli"
	"github.com/leapstack-labs/semgen/internal/cli/config"
	"github.com/leapstack-labs/semgen/internal/cli/testutil"
	"github.com/leapstack-labs/semgen/pkg/semantic"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()

	cmd := cli.NewRootCmd()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func columnsByName(t *testing.T, tbl semantic.Table) map[string]semantic.Column {
	t.Helper()
	cols, ok := tbl.ColumnList()
	require.True(t, ok, "table %s should be in column format", tbl.Name)
	byName := make(map[string]semantic.Column, len(cols))
	for _, c := range cols {
		byName[c.Name] = c
	}
	return byName
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "semgen v"+cli.Version)
}

func TestHelpCommand(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)

	for _, want := range []string{"normalize", "classify", "render", "sample", "validate", "explain", "runs", "completion"} {
		assert.Contains(t, out, want)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "semgen")

	_, _, err = execute(t, "completion", "tcsh")
	require.Error(t, err)
}

func TestNormalizeCommand(t *testing.T) {
	p := testutil.SetupTestProject(t)

	t.Run("yaml", func(t *testing.T) {
		out, _, err := execute(t, "normalize", "--config", p.ConfigPath, "-o", "yaml")
		require.NoError(t, err)

		m, err := semantic.Parse([]byte(out))
		require.NoError(t, err)
		require.Len(t, m.Tables, 1)

		cols, ok := m.Tables[0].ColumnList()
		require.True(t, ok)
		names := make([]string, 0, len(cols))
		for _, c := range cols {
			names = append(names, c.Name)
		}
		assert.Equal(t, []string{"region", "order_date", "amount", "total_amount", "running_amount"}, names)
		assert.Equal(t, semantic.KindTimeDimension, cols[1].Kind)
		assert.Equal(t, semantic.AggregationSum, cols[3].DefaultAggregation)
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "normalize", "--config", p.ConfigPath, "-o", "json")
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "shop", doc["name"])
	})

	t.Run("markdown", func(t *testing.T) {
		out, _, err := execute(t, "normalize", "--config", p.ConfigPath, "-o", "markdown")
		require.NoError(t, err)
		assert.Contains(t, out, "# Semantic model: shop")
		assert.Contains(t, out, "```yaml")
		testutil.AssertValidMarkdown(t, out)
	})

	t.Run("write", func(t *testing.T) {
		_, _, err := execute(t, "normalize", "--config", p.ConfigPath, "--write")
		require.NoError(t, err)

		m, err := semantic.LoadFile(p.ModelPath)
		require.NoError(t, err)
		assert.True(t, m.Tables[0].IsColumnFormat())
	})
}

func TestClassifyCommand(t *testing.T) {
	p := testutil.SetupTestProject(t)

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "classify", "--config", p.ConfigPath, "-o", "json")
		require.NoError(t, err)

		var rows []struct {
			Table  string `json:"table"`
			Column string `json:"column"`
			Kind   string `json:"kind"`
			Class  string `json:"class"`
			Expr   string `json:"expr"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &rows))
		require.Len(t, rows, 5)

		classes := make(map[string]string, len(rows))
		for _, r := range rows {
			classes[r.Column] = r.Class
		}
		assert.Equal(t, map[string]string{
			"region":         "pass-through",
			"order_date":     "pass-through",
			"amount":         "pass-through",
			"total_amount":   "aggregate",
			"running_amount": "pass-through",
		}, classes)
		assert.Equal(t, "SUM(amount)", rows[3].Expr)
	})

	t.Run("markdown", func(t *testing.T) {
		out, _, err := execute(t, "classify", "--config", p.ConfigPath, "-o", "markdown")
		require.NoError(t, err)
		assert.Contains(t, out, "| Table | Column | Kind | Class | Expr |")
		assert.Contains(t, out, "| orders | order_date | Time Dimension | pass-through | order_date |")
		assert.Contains(t, out, "| orders | total_amount | Measure | aggregate | SUM(amount) |")
		testutil.AssertNoANSI(t, out)
	})

	t.Run("extra aggregates", func(t *testing.T) {
		model := `name: m
tables:
  - name: t
    base_table: {database: db, schema: sc, table: t}
    columns:
      - name: w
        kind: measure
        expr: weighted_avg(x, y)
`
		modelPath := filepath.Join(t.TempDir(), "m.yaml")
		require.NoError(t, os.WriteFile(modelPath, []byte(model), 0o600))

		out, _, err := execute(t, "classify", "--config", p.ConfigPath, "--model", modelPath, "-o", "json")
		require.NoError(t, err)
		assert.Contains(t, out, `"class": "pass-through"`)

		out, _, err = execute(t, "classify", "--config", p.ConfigPath, "--model", modelPath,
			"--aggregates", "weighted_avg", "-o", "json")
		require.NoError(t, err)
		assert.Contains(t, out, `"class": "aggregate"`)
	})
}

func TestRenderCommand(t *testing.T) {
	p := testutil.SetupTestProject(t)

	t.Run("text uses target dialect", func(t *testing.T) {
		out, _, err := execute(t, "render", "--config", p.ConfigPath, "-o", "text")
		require.NoError(t, err)
		assert.Contains(t, out, "-- orders")
		assert.Contains(t, out, "WITH __orders AS (SELECT region AS region, order_date AS order_date, amount AS amount, ")
		assert.Contains(t, out, "OVER (ORDER BY id) AS running_amount FROM main.orders) SELECT * FROM __orders LIMIT 100;")
		assert.Contains(t, out, "SELECT SUM(amount) AS total_amount FROM main.orders LIMIT 100;")
	})

	t.Run("dialect and limit flags", func(t *testing.T) {
		out, _, err := execute(t, "render", "orders", "--config", p.ConfigPath, "--dialect", "duckdb", "--limit", "5", "-o", "text")
		require.NoError(t, err)
		assert.Contains(t, out, "SELECT SUM(amount) AS total_amount FROM shop.main.orders LIMIT 5;")
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "render", "--config", p.ConfigPath, "-o", "json")
		require.NoError(t, err)

		var tables []struct {
			Table      string `json:"table"`
			Base       string `json:"base"`
			Aggregates []struct {
				Column string `json:"column"`
				SQL    string `json:"sql"`
			} `json:"aggregates"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &tables))
		require.Len(t, tables, 1)
		require.Len(t, tables[0].Aggregates, 1)
		assert.Equal(t, "total_amount", tables[0].Aggregates[0].Column)
		assert.Equal(t, "SELECT SUM(amount) AS total_amount FROM main.orders LIMIT 100", tables[0].Aggregates[0].SQL)
	})

	t.Run("markdown", func(t *testing.T) {
		out, _, err := execute(t, "render", "--config", p.ConfigPath, "-o", "markdown")
		require.NoError(t, err)
		assert.Contains(t, out, "## orders")
		assert.Contains(t, out, "```sql")
		testutil.AssertValidMarkdown(t, out)
	})

	t.Run("unknown table", func(t *testing.T) {
		_, _, err := execute(t, "render", "nope", "--config", p.ConfigPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `table "nope" not found`)
	})

	t.Run("invalid limit", func(t *testing.T) {
		_, _, err := execute(t, "render", "--config", p.ConfigPath, "--limit", "0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "limit must be positive")
	})
}

func TestSampleCommand(t *testing.T) {
	t.Run("prints sampled model", func(t *testing.T) {
		p := testutil.SetupTestProject(t)

		out, stderr, err := execute(t, "sample", "--config", p.ConfigPath, "-o", "yaml")
		require.NoError(t, err)
		assert.Contains(t, stderr, "Sampled 1 tables")

		m, err := semantic.Parse([]byte(out))
		require.NoError(t, err)
		cols := columnsByName(t, m.Tables[0])

		assert.ElementsMatch(t, []string{"east", "west"}, cols["region"].SampleValues)
		assert.ElementsMatch(t, []string{"10", "50", "40"}, cols["amount"].SampleValues)
		assert.Equal(t, []string{"100"}, cols["total_amount"].SampleValues)
		assert.ElementsMatch(t, []string{"10", "60", "100"}, cols["running_amount"].SampleValues)
	})

	t.Run("max values", func(t *testing.T) {
		p := testutil.SetupTestProject(t)

		out, _, err := execute(t, "sample", "--config", p.ConfigPath, "--max-values", "1", "-o", "yaml")
		require.NoError(t, err)

		m, err := semantic.Parse([]byte(out))
		require.NoError(t, err)
		cols := columnsByName(t, m.Tables[0])
		assert.Len(t, cols["amount"].SampleValues, 1)
		assert.Len(t, cols["region"].SampleValues, 1)
	})

	t.Run("write", func(t *testing.T) {
		p := testutil.SetupTestProject(t)

		_, _, err := execute(t, "sample", "--config", p.ConfigPath, "--write")
		require.NoError(t, err)

		m, err := semantic.LoadFile(p.ModelPath)
		require.NoError(t, err)
		cols := columnsByName(t, m.Tables[0])
		assert.Equal(t, []string{"100"}, cols["total_amount"].SampleValues)
	})

	t.Run("database flag without target", func(t *testing.T) {
		p := testutil.SetupTestProject(t)
		cfgPath := filepath.Join(t.TempDir(), "semgen.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("model: "+p.ModelPath+"\n"), 0o600))

		_, _, err := execute(t, "sample", "--config", cfgPath)
		require.ErrorIs(t, err, config.ErrNoTarget)

		out, _, err := execute(t, "sample", "--config", cfgPath, "--database", p.Database, "-o", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "sample_values")
	})
}

func TestValidateCommand(t *testing.T) {
	p := testutil.SetupTestProject(t)

	t.Run("success", func(t *testing.T) {
		out, _, err := execute(t, "validate", "--config", p.ConfigPath, "-o", "json")
		require.NoError(t, err)

		var results []struct {
			Table   string `json:"table"`
			OK      bool   `json:"ok"`
			Queries int    `json:"queries"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 1)
		assert.True(t, results[0].OK)
		assert.Equal(t, 2, results[0].Queries)
	})

	t.Run("failure keeps going", func(t *testing.T) {
		model := testutil.ShopModel + `  - name: ghost
    base_table:
      database: shop
      schema: main
      table: ghost
    columns:
      - name: id
        kind: dimension
        expr: id
`
		modelPath := filepath.Join(t.TempDir(), "shop.yaml")
		require.NoError(t, os.WriteFile(modelPath, []byte(model), 0o600))

		out, _, err := execute(t, "validate", "--config", p.ConfigPath, "--model", modelPath, "-o", "markdown")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 tables failed validation")
		assert.Contains(t, out, "orders")
		assert.Contains(t, out, "ghost")
		assert.Contains(t, out, "base select:")
	})
}

func TestRunsCommand(t *testing.T) {
	p := testutil.SetupTestProject(t)

	out, _, err := execute(t, "runs", "--config", p.ConfigPath, "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)

	_, _, err = execute(t, "sample", "--config", p.ConfigPath, "-o", "yaml")
	require.NoError(t, err)
	_, _, err = execute(t, "validate", "--config", p.ConfigPath, "-o", "json")
	require.NoError(t, err)

	out, _, err = execute(t, "runs", "--config", p.ConfigPath, "-o", "json")
	require.NoError(t, err)

	var runs []struct {
		ID     string `json:"id"`
		Kind   string `json:"kind"`
		Status string `json:"status"`
		Target string `json:"target"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 2)
	kinds := []string{runs[0].Kind, runs[1].Kind}
	assert.ElementsMatch(t, []string{"sample", "validate"}, kinds)
	for _, r := range runs {
		assert.Equal(t, "completed", r.Status)
		assert.Equal(t, "sqlite", r.Target)
	}

	out, _, err = execute(t, "runs", runs[0].ID, "--config", p.ConfigPath, "-o", "json")
	require.NoError(t, err)
	var detail struct {
		Run struct {
			ID string `json:"id"`
		} `json:"run"`
		Tables []struct {
			Table  string `json:"table"`
			Status string `json:"status"`
		} `json:"tables"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &detail))
	assert.Equal(t, runs[0].ID, detail.Run.ID)
	require.Len(t, detail.Tables, 1)
	assert.Equal(t, "orders", detail.Tables[0].Table)
	assert.Equal(t, "success", detail.Tables[0].Status)

	out, _, err = execute(t, "runs", "--config", p.ConfigPath, "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "| ID | Kind | Status | Started | Duration | Model |")
	assert.Contains(t, out, "shop.yaml")

	_, _, err = execute(t, "runs", "--config", p.ConfigPath, "--state", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run history is disabled")
}

func TestMissingModel(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "semgen.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("limit: 10\n"), 0o600))

	_, _, err := execute(t, "render", "--config", cfgPath)
	require.ErrorIs(t, err, config.ErrNoModel)
}

func TestExplainCommand(t *testing.T) {
	t.Run("arguments as json", func(t *testing.T) {
		out, _, err := execute(t, "explain", "-o", "json", "sum(amount)", "sum(amount) over (order by id)")
		require.NoError(t, err)

		var got []map[string]string
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "aggregate", got[0]["class"])
		assert.Equal(t, "SUM(amount)", got[0]["normalized"])
		assert.Equal(t, "pass-through", got[1]["class"])
		assert.Equal(t, "SUM(amount) OVER (ORDER BY id)", got[1]["normalized"])
	})

	t.Run("lines from stdin", func(t *testing.T) {
		config.ResetConfig()
		cmd := cli.NewRootCmd()
		stdout := new(bytes.Buffer)
		cmd.SetOut(stdout)
		cmd.SetErr(new(bytes.Buffer))
		cmd.SetIn(bytes.NewBufferString("count(distinct id)\nregion\n"))
		cmd.SetArgs([]string{"explain"})

		require.NoError(t, cmd.Execute())
		assert.Equal(t, "aggregate    COUNT(DISTINCT id)\npass-through region\n", stdout.String())
	})

	t.Run("unknown dialect", func(t *testing.T) {
		_, _, err := execute(t, "explain", "--dialect", "nope", "sum(x)")
		require.Error(t, err)
	})
}
