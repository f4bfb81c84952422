package sqlexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/semgen/pkg/dialect"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"plain identifier", "d1_expr", "d1_expr"},
		{"aggregate", "sum(d2)", "SUM(d2)"},
		{"window", "sum(d3) over (partition by d1)", "SUM(d3) OVER (PARTITION BY d1)"},
		{"mixed case keywords", "Count(Distinct user_id)", "COUNT(DISTINCT user_id)"},
		{"case expression", "case when a > 0 then 'yes' else 'no' end", "CASE WHEN a > 0 THEN 'yes' ELSE 'no' END"},
		{"string literal untouched", "coalesce(status, 'over by')", "COALESCE(status, 'over by')"},
		{"quoted identifier untouched", `max("sum")`, `MAX("sum")`},
		{"unknown function untouched", "my_udf(a)", "my_udf(a)"},
		{"function name without call", "sum + count", "sum + count"},
		{"qualified names untouched", "t.order + schema.sum(x)", "t.order + schema.sum(x)"},
		{"whitespace preserved", "sum( a )  /  count( b )", "SUM( a )  /  COUNT( b )"},
		{"comment preserved", "avg(x) -- mean", "AVG(x) -- mean"},
		{"dialect keyword", "name ilike 'a%'", "name ILIKE 'a%'"},
		{"window function", "row_number() over (order by ts desc)", "ROW_NUMBER() OVER (ORDER BY ts DESC)"},
		{"empty", "", ""},
		{"non-reserved keywords as columns", "concat(first, ' ', last)", "CONCAT(first, ' ', last)"},
		{"range column", "range", "range"},
		{"row and offset columns", "row + offset", "row + offset"},
		{"current column", "current", "current"},
		{"frame words outside a window", "rows - groups", "rows - groups"},
		{"between on a rows column", "rows between 1 and 5", "rows BETWEEN 1 AND 5"},
		{"dialect keyword as column", "sample", "sample"},
		{"dialect keyword as argument", "coalesce(sample, qualify)", "COALESCE(sample, qualify)"},
		{"window frame", "sum(x) over (order by ts rows between unbounded preceding and current row)",
			"SUM(x) OVER (ORDER BY ts ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW)"},
		{"numeric frame", "avg(x) over (order by d range between 3 preceding and 1 following)",
			"AVG(x) OVER (ORDER BY d RANGE BETWEEN 3 PRECEDING AND 1 FOLLOWING)"},
		{"frame word as column in window", "sum(x) over (partition by range order by first)",
			"SUM(x) OVER (PARTITION BY range ORDER BY first)"},
		{"nulls ordering", "array_agg(x order by y nulls last)", "ARRAY_AGG(x ORDER BY y NULLS LAST)"},
		{"ignore nulls", "lag(x) ignore nulls over (order by ts)", "LAG(x) IGNORE NULLS OVER (ORDER BY ts)"},
		{"filter clause", "count(x) filter (where y > 0)", "COUNT(x) FILTER (WHERE y > 0)"},
		{"filter column", "filter + 1", "filter + 1"},
		{"negated dialect operator", "name not ilike 'a%'", "name NOT ILIKE 'a%'"},
	}

	d := dialect.Snowflake
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.expr, d))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	exprs := []string{
		"sum(d3) over (partition by d1)",
		"case when x then 1 end",
		`"Quoted" || 'lit'`,
		"concat(first, ' ', last)",
		"sum(x) over (order by ts rows between unbounded preceding and current row)",
	}
	for _, expr := range exprs {
		once := Normalize(expr, dialect.Snowflake)
		assert.Equal(t, once, Normalize(once, dialect.Snowflake), expr)
	}
}

func TestNormalize_DuckDBKeywordsAsColumns(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"replace", "replace"},
		{"replace(name, 'a', 'b')", "REPLACE(name, 'a', 'b')"},
		{"exclude || anti", "exclude || anti"},
		{"first(x)", "FIRST(x)"},
		{"first", "first"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.expr, dialect.DuckDB))
		})
	}
}

func TestNormalize_ExtendedAllowList(t *testing.T) {
	d := dialect.NewDialect("custom").Aggregates("my_agg").Build()
	assert.Equal(t, "MY_AGG(x)", Normalize("my_agg(x)", d))
	assert.Equal(t, "my_agg(x)", Normalize("my_agg(x)", dialect.Snowflake))
}
