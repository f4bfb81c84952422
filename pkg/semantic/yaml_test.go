package semantic_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/semgen/internal/testutil"
	"github.com/leapstack-labs/semgen/pkg/semantic"
)

const legacyYAML = `
name: test_ctx
tables:
  - name: t1
    dimensions:
      - name: d1
        description: d1_description
        synonyms: [d1_synonym1, d1_synonym2]
        expr: d1_expr
        data_type: d1_data_type
        unique: true
        sample_values: [d1_sample_value1, d1_sample_value2]
      - name: d2
        description: d2_description
        expr: d2_expr
  - name: t2
    time_dimensions:
      - name: td1
        description: td1_description
        synonyms: [td1_synonym1, td1_synonym2]
        expr: td1_expr
        data_type: td1_data_type
        unique: true
        sample_values: [td1_sample_value1, td1_sample_value2]
    measures:
      - name: m1
        description: m1_description
        synonyms: [m1_synonym1, m1_synonym2]
        expr: m1_expr
        data_type: m1_data_type
        default_aggregation: avg
        sample_values: [m1_sample_value1, m1_sample_value2]
      - name: m2
        description: m1_description
        expr: m1_expr
`

func TestParse_Legacy(t *testing.T) {
	m, err := semantic.Parse([]byte(legacyYAML))
	require.NoError(t, err)
	assert.Equal(t, testutil.LegacyModel(), m)
}

func TestParse_ColumnFormat(t *testing.T) {
	src := `
name: sales
tables:
  - name: orders
    base_table: {database: db, schema: sc, table: orders}
    columns:
      - name: region
        kind: dimension
        expr: region
      - name: revenue
        kind: measure
        expr: sum(amount)
        default_aggregation: sum
`
	m, err := semantic.Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, m.Tables, 1)

	table := m.Tables[0]
	assert.Equal(t, &semantic.FullyQualifiedTable{Database: "db", Schema: "sc", Table: "orders"}, table.BaseTable)
	cols, ok := table.ColumnList()
	require.True(t, ok)
	require.Len(t, cols, 2)
	assert.Equal(t, semantic.KindMeasure, cols[1].Kind)
	assert.Equal(t, semantic.AggregationSum, cols[1].DefaultAggregation)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		errText string
	}{
		{
			name: "mixed formats",
			src: `
name: m
tables:
  - name: t
    dimensions: [{name: d, expr: d}]
    columns: [{name: c, kind: dimension, expr: c}]
`,
			errText: "mixes legacy",
		},
		{
			name: "unknown kind",
			src: `
name: m
tables:
  - name: t
    columns: [{name: c, kind: metric, expr: c}]
`,
			errText: `unknown column kind "metric"`,
		},
		{
			name: "unknown aggregation",
			src: `
name: m
tables:
  - name: t
    measures: [{name: c, expr: c, default_aggregation: p99}]
`,
			errText: `unknown aggregation type "p99"`,
		},
		{
			name: "kind on legacy record",
			src: `
name: m
tables:
  - name: t
    dimensions: [{name: d, kind: measure, expr: d}]
`,
			errText: "not allowed",
		},
		{
			name: "unknown field",
			src: `
name: m
verified_queries: []
`,
			errText: "verified_queries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := semantic.Parse([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestParse_MixedFormatSentinel(t *testing.T) {
	_, err := semantic.Parse([]byte(`
name: m
tables:
  - name: t
    measures: [{name: m, expr: sum(x)}]
    columns: [{name: c, kind: dimension, expr: c}]
`))
	assert.True(t, errors.Is(err, semantic.ErrMixedColumnFormat))
}

func TestParse_Empty(t *testing.T) {
	m, err := semantic.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, semantic.SemanticModel{}, m)
}

func TestMarshal_RoundTrip(t *testing.T) {
	for _, m := range []semantic.SemanticModel{testutil.LegacyModel(), testutil.ColumnFormatModel()} {
		data, err := semantic.Marshal(m)
		require.NoError(t, err)

		back, err := semantic.Parse(data)
		require.NoError(t, err)
		assert.Equal(t, m, back)
	}
}

func TestMarshal_ColumnFormatShape(t *testing.T) {
	data, err := semantic.Marshal(semantic.ToColumnFormat(testutil.LegacyModel()))
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "columns:")
	assert.Contains(t, out, "kind: time_dimension")
	assert.Contains(t, out, "default_aggregation: avg")
	assert.NotContains(t, out, "dimensions:")
}

func TestLoadFile(t *testing.T) {
	path := testutil.WriteFile(t, "model.yaml", legacyYAML)
	m, err := semantic.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "test_ctx", m.Name)

	_, err = semantic.LoadFile(path + ".missing")
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := testutil.WriteFile(t, "model.yaml", "")
	require.NoError(t, semantic.WriteFile(path, testutil.ColumnFormatModel()))

	m, err := semantic.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testutil.ColumnFormatModel(), m)
}
