package semantic

import (
	"fmt"
	"slices"
)

// ColumnKind is the role of a column in the unified column format.
type ColumnKind int

const (
	// KindUnknown is the zero value; it is never valid on a column.
	KindUnknown ColumnKind = iota
	// KindDimension is a categorical attribute.
	KindDimension
	// KindTimeDimension is a date or time attribute.
	KindTimeDimension
	// KindMeasure is a numeric value, possibly an aggregate expression.
	KindMeasure
)

// String returns the serialized form of the kind.
func (k ColumnKind) String() string {
	switch k {
	case KindDimension:
		return "dimension"
	case KindTimeDimension:
		return "time_dimension"
	case KindMeasure:
		return "measure"
	default:
		return "unknown"
	}
}

// ParseColumnKind parses the serialized form of a kind.
func ParseColumnKind(s string) (ColumnKind, error) {
	switch s {
	case "dimension":
		return KindDimension, nil
	case "time_dimension":
		return KindTimeDimension, nil
	case "measure":
		return KindMeasure, nil
	default:
		return KindUnknown, fmt.Errorf("unknown column kind %q", s)
	}
}

// AggregationType is the default aggregation of a measure.
type AggregationType int

// Aggregation types. The zero value means no default aggregation.
const (
	AggregationUnset AggregationType = iota
	AggregationSum
	AggregationAvg
	AggregationMedian
	AggregationMin
	AggregationMax
	AggregationCount
	AggregationCountDistinct
)

var aggregationNames = map[AggregationType]string{
	AggregationSum:           "sum",
	AggregationAvg:           "avg",
	AggregationMedian:        "median",
	AggregationMin:           "min",
	AggregationMax:           "max",
	AggregationCount:         "count",
	AggregationCountDistinct: "count_distinct",
}

// String returns the serialized form, or "" when unset.
func (a AggregationType) String() string {
	return aggregationNames[a]
}

// ParseAggregationType parses the serialized form. The empty string is unset.
func ParseAggregationType(s string) (AggregationType, error) {
	if s == "" {
		return AggregationUnset, nil
	}
	for a, name := range aggregationNames {
		if name == s {
			return a, nil
		}
	}
	return AggregationUnset, fmt.Errorf("unknown aggregation type %q", s)
}

// SemanticModel is a named, ordered collection of tables.
type SemanticModel struct {
	Name        string
	Description string
	Tables      []Table
}

// FullyQualifiedTable is the physical location of a table.
type FullyQualifiedTable struct {
	Database string
	Schema   string
	Table    string
}

// String returns database.schema.table.
func (f FullyQualifiedTable) String() string {
	return f.Database + "." + f.Schema + "." + f.Table
}

// IsComplete reports whether every part of the location is set.
func (f FullyQualifiedTable) IsComplete() bool {
	return f.Database != "" && f.Schema != "" && f.Table != ""
}

// Table is one logical table of a semantic model. Columns is nil when the
// table declares no columns at all.
type Table struct {
	Name        string
	Description string
	BaseTable   *FullyQualifiedTable
	Columns     ColumnSet
}

// ColumnSet holds a table's columns in one of two formats: LegacyColumns or
// UnifiedColumns.
type ColumnSet interface {
	isColumnSet()
}

// LegacyColumns is the split format with one list per role.
type LegacyColumns struct {
	Dimensions     []Dimension
	TimeDimensions []TimeDimension
	Measures       []Measure
}

// UnifiedColumns is the column format where every column carries its kind.
type UnifiedColumns struct {
	Columns []Column
}

func (LegacyColumns) isColumnSet()  {}
func (UnifiedColumns) isColumnSet() {}

// Column is a column in the unified format.
type Column struct {
	Name               string
	Kind               ColumnKind
	Description        string
	Synonyms           []string
	Expr               string
	DataType           string
	Unique             bool            // dimensions and time dimensions only
	DefaultAggregation AggregationType // measures only
	SampleValues       []string
}

// Dimension is a legacy dimension record.
type Dimension struct {
	Name         string
	Description  string
	Synonyms     []string
	Expr         string
	DataType     string
	Unique       bool
	SampleValues []string
}

// TimeDimension is a legacy time dimension record.
type TimeDimension struct {
	Name         string
	Description  string
	Synonyms     []string
	Expr         string
	DataType     string
	Unique       bool
	SampleValues []string
}

// Measure is a legacy measure record.
type Measure struct {
	Name               string
	Description        string
	Synonyms           []string
	Expr               string
	DataType           string
	DefaultAggregation AggregationType
	SampleValues       []string
}

// columnSet dereferences pointer variants so callers can switch on values.
func columnSet(cs ColumnSet) ColumnSet {
	switch v := cs.(type) {
	case *LegacyColumns:
		if v == nil {
			return nil
		}
		return *v
	case *UnifiedColumns:
		if v == nil {
			return nil
		}
		return *v
	default:
		return cs
	}
}

// ColumnList returns the unified columns of t. The second result is false
// if t is not in column format.
func (t Table) ColumnList() ([]Column, bool) {
	u, ok := columnSet(t.Columns).(UnifiedColumns)
	if !ok {
		return nil, false
	}
	return u.Columns, true
}

// IsColumnFormat reports whether t uses the unified column format.
func (t Table) IsColumnFormat() bool {
	_, ok := t.ColumnList()
	return ok
}

// WithColumns returns a copy of t holding cols in column format.
func (t Table) WithColumns(cols []Column) Table {
	t.BaseTable = cloneLocation(t.BaseTable)
	t.Columns = UnifiedColumns{Columns: cols}
	return t
}

// Clone returns a deep copy of c.
func (c Column) Clone() Column {
	c.Synonyms = slices.Clone(c.Synonyms)
	c.SampleValues = slices.Clone(c.SampleValues)
	return c
}

func cloneLocation(f *FullyQualifiedTable) *FullyQualifiedTable {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}
