package semantic

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMixedColumnFormat is returned when a serialized table populates both
// the legacy lists and the unified columns.
var ErrMixedColumnFormat = errors.New("table mixes legacy dimensions/time_dimensions/measures with columns")

// ValidationError describes the first problem found in a model.
type ValidationError struct {
	Table  string
	Column string
	Reason string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid semantic model")
	if e.Table != "" {
		fmt.Fprintf(&b, ": table %q", e.Table)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ", column %q", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

// Validate checks m and returns a *ValidationError for the first problem.
// Tables may be in either format; legacy tables are checked after
// conversion so the rules are identical for both.
func Validate(m SemanticModel) error {
	tables := make(map[string]struct{}, len(m.Tables))
	for _, t := range m.Tables {
		if t.Name == "" {
			return &ValidationError{Reason: "table name is required"}
		}
		if _, dup := tables[t.Name]; dup {
			return &ValidationError{Table: t.Name, Reason: "duplicate table name"}
		}
		tables[t.Name] = struct{}{}

		if err := ValidateTable(t); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTable checks a single table.
func ValidateTable(t Table) error {
	if t.BaseTable != nil && !t.BaseTable.IsComplete() {
		return &ValidationError{Table: t.Name, Reason: "base_table requires database, schema and table"}
	}

	cols, _ := TableToColumnFormat(t).ColumnList()
	names := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if c.Name == "" {
			return &ValidationError{Table: t.Name, Reason: "column name is required"}
		}
		if _, dup := names[c.Name]; dup {
			return &ValidationError{Table: t.Name, Column: c.Name, Reason: "duplicate column name"}
		}
		names[c.Name] = struct{}{}

		if err := validateColumn(c); err != nil {
			return &ValidationError{Table: t.Name, Column: c.Name, Reason: err.Error()}
		}
	}
	return nil
}

func validateColumn(c Column) error {
	if strings.TrimSpace(c.Expr) == "" {
		return errors.New("expr is required")
	}
	switch c.Kind {
	case KindDimension, KindTimeDimension:
		if c.DefaultAggregation != AggregationUnset {
			return fmt.Errorf("default_aggregation is only allowed on measures, not %s", c.Kind)
		}
	case KindMeasure:
		if c.Unique {
			return errors.New("unique is not allowed on measures")
		}
	case KindUnknown:
		return errors.New("kind is required")
	default:
		return fmt.Errorf("unknown kind %d", int(c.Kind))
	}
	return nil
}
