// Package cte generates the SQL used to sample a semantic table's columns.
//
// Columns that keep row-level granularity (dimensions, time dimensions and
// windowed or plain measures) are fetched together through one aliasing
// common table expression bounded by LIMIT. Simple aggregations collapse
// their input to a single value, so each gets its own statement where the
// LIMIT bounds the rows being aggregated.
package cte

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/semgen/pkg/dialect"
	"github.com/leapstack-labs/semgen/pkg/semantic"
	"github.com/leapstack-labs/semgen/pkg/sqlexpr"
)

var (
	// ErrNotColumnFormat is returned for tables still in the legacy format.
	// Run semantic.TableToColumnFormat first.
	ErrNotColumnFormat = errors.New("table is not in column format")
	// ErrMissingBaseTable is returned when a table has no complete
	// database.schema.table location.
	ErrMissingBaseTable = errors.New("table has no fully qualified base_table")
	// ErrInvalidLimit is returned for a non-positive row limit.
	ErrInvalidLimit = errors.New("limit must be a positive integer")
	// ErrEmptyExpr is returned when a generated column has no expression.
	ErrEmptyExpr = errors.New("column expr is empty")
)

// Generator builds sampling SQL for one dialect.
// It holds no mutable state and is safe for concurrent use.
type Generator struct {
	dialect *dialect.Dialect
}

// New returns a Generator for d. A nil d uses dialect.Default().
func New(d *dialect.Dialect) *Generator {
	if d == nil {
		d = dialect.Default()
	}
	return &Generator{dialect: d}
}

// Dialect returns the generator's dialect.
func (g *Generator) Dialect() *dialect.Dialect {
	return g.dialect
}

// IsAggregationExpr reports whether col is a measure whose expression is a
// simple aggregation. It never fails: anything it cannot classify is
// treated as a pass-through column.
func (g *Generator) IsAggregationExpr(col semantic.Column) bool {
	switch col.Kind {
	case semantic.KindMeasure:
		return sqlexpr.IsSimpleAggregation(col.Expr, g.dialect)
	case semantic.KindDimension, semantic.KindTimeDimension:
		return false
	default: // KindUnknown and out-of-range values
		return false
	}
}

// NormalizeExpr returns expr with keywords and known function names upper-cased.
func (g *Generator) NormalizeExpr(expr string) string {
	return sqlexpr.Normalize(expr, g.dialect)
}

// Partition splits the table's columns into pass-through and aggregate
// columns, keeping table order within each group.
func (g *Generator) Partition(cols []semantic.Column) (passThrough, aggregates []semantic.Column) {
	for _, c := range cols {
		if g.IsAggregationExpr(c) {
			aggregates = append(aggregates, c)
		} else {
			passThrough = append(passThrough, c)
		}
	}
	return passThrough, aggregates
}

// GenerateSelect returns the statement sampling every pass-through column:
//
//	WITH __<table> AS (SELECT <expr> AS <name>, ... FROM <db>.<schema>.<table>) SELECT * FROM __<table> LIMIT <limit>
//
// With no pass-through columns the select list is empty, giving
// "SELECT  FROM" inside the CTE.
func (g *Generator) GenerateSelect(t semantic.Table, limit int) (string, error) {
	cols, from, err := g.prepare(t, limit)
	if err != nil {
		return "", err
	}
	passThrough, _ := g.Partition(cols)

	projections := make([]string, 0, len(passThrough))
	for _, c := range passThrough {
		p, err := g.projection(t.Name, c)
		if err != nil {
			return "", err
		}
		projections = append(projections, p)
	}

	cteName := "__" + t.Name
	return "WITH " + cteName + " AS (SELECT " + strings.Join(projections, ", ") + " FROM " + from + ") " +
		"SELECT * FROM " + cteName + " LIMIT " + strconv.Itoa(limit), nil
}

// GenerateAggExprSelects returns one statement per simple-aggregation
// column, in table order:
//
//	SELECT <expr> AS <name> FROM <db>.<schema>.<table> LIMIT <limit>
//
// The result is nil when the table has no such columns.
func (g *Generator) GenerateAggExprSelects(t semantic.Table, limit int) ([]string, error) {
	cols, from, err := g.prepare(t, limit)
	if err != nil {
		return nil, err
	}
	_, aggregates := g.Partition(cols)

	var stmts []string
	for _, c := range aggregates {
		p, err := g.projection(t.Name, c)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, "SELECT "+p+" FROM "+from+" LIMIT "+strconv.Itoa(limit))
	}
	return stmts, nil
}

// Queries holds every sampling statement for one table.
type Queries struct {
	Table      string
	Base       string
	Aggregates []string
	// AggregateColumns names the column of each entry in Aggregates.
	AggregateColumns []string
	// PassThroughColumns names the columns returned by Base, in order.
	PassThroughColumns []string
}

// Generate returns both the base select and the aggregate selects for t.
func (g *Generator) Generate(t semantic.Table, limit int) (*Queries, error) {
	base, err := g.GenerateSelect(t, limit)
	if err != nil {
		return nil, err
	}
	aggs, err := g.GenerateAggExprSelects(t, limit)
	if err != nil {
		return nil, err
	}

	cols, _ := t.ColumnList()
	passThrough, aggregates := g.Partition(cols)
	q := &Queries{Table: t.Name, Base: base, Aggregates: aggs}
	for _, c := range passThrough {
		q.PassThroughColumns = append(q.PassThroughColumns, c.Name)
	}
	for _, c := range aggregates {
		q.AggregateColumns = append(q.AggregateColumns, c.Name)
	}
	return q, nil
}

func (g *Generator) prepare(t semantic.Table, limit int) ([]semantic.Column, string, error) {
	cols, ok := t.ColumnList()
	if !ok {
		return nil, "", fmt.Errorf("table %q: %w", t.Name, ErrNotColumnFormat)
	}
	if t.BaseTable == nil || !t.BaseTable.IsComplete() {
		return nil, "", fmt.Errorf("table %q: %w", t.Name, ErrMissingBaseTable)
	}
	if limit <= 0 {
		return nil, "", fmt.Errorf("table %q: %w: %d", t.Name, ErrInvalidLimit, limit)
	}
	if g.dialect.NoCatalog {
		return cols, t.BaseTable.Schema + "." + t.BaseTable.Table, nil
	}
	return cols, t.BaseTable.String(), nil
}

func (g *Generator) projection(table string, c semantic.Column) (string, error) {
	if strings.TrimSpace(c.Expr) == "" {
		return "", fmt.Errorf("table %q, column %q: %w", table, c.Name, ErrEmptyExpr)
	}
	return g.NormalizeExpr(c.Expr) + " AS " + c.Name, nil
}

// IsAggregationExpr classifies col with the default dialect.
func IsAggregationExpr(col semantic.Column) bool {
	return New(nil).IsAggregationExpr(col)
}

// GenerateSelect runs Generator.GenerateSelect with the default dialect.
func GenerateSelect(t semantic.Table, limit int) (string, error) {
	return New(nil).GenerateSelect(t, limit)
}

// GenerateAggExprSelects runs Generator.GenerateAggExprSelects with the
// default dialect.
func GenerateAggExprSelects(t semantic.Table, limit int) ([]string, error) {
	return New(nil).GenerateAggExprSelects(t, limit)
}
