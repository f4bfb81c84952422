package semantic

import "slices"

// ToColumnFormat returns a copy of m with every table in the unified column
// format. The model name and table order are preserved, and a model already
// in column format comes back equal to the input.
func ToColumnFormat(m SemanticModel) SemanticModel {
	out := m
	if m.Tables != nil {
		out.Tables = make([]Table, len(m.Tables))
		for i, t := range m.Tables {
			out.Tables[i] = TableToColumnFormat(t)
		}
	}
	return out
}

// TableToColumnFormat converts a single table to the unified column format.
//
// Legacy columns become, in order, all dimensions, then all time dimensions,
// then all measures, each tagged with its kind. A table with no columns
// becomes an empty UnifiedColumns.
func TableToColumnFormat(t Table) Table {
	switch cs := columnSet(t.Columns).(type) {
	case UnifiedColumns:
		return t.WithColumns(cloneColumns(cs.Columns))
	case LegacyColumns:
		return t.WithColumns(legacyToColumns(cs))
	default:
		return t.WithColumns(nil)
	}
}

func cloneColumns(cols []Column) []Column {
	if cols == nil {
		return nil
	}
	out := make([]Column, len(cols))
	for i, c := range cols {
		out[i] = c.Clone()
	}
	return out
}

func legacyToColumns(lc LegacyColumns) []Column {
	n := len(lc.Dimensions) + len(lc.TimeDimensions) + len(lc.Measures)
	if n == 0 {
		return nil
	}

	cols := make([]Column, 0, n)
	for _, d := range lc.Dimensions {
		cols = append(cols, Column{
			Name:         d.Name,
			Kind:         KindDimension,
			Description:  d.Description,
			Synonyms:     slices.Clone(d.Synonyms),
			Expr:         d.Expr,
			DataType:     d.DataType,
			Unique:       d.Unique,
			SampleValues: slices.Clone(d.SampleValues),
		})
	}
	for _, td := range lc.TimeDimensions {
		cols = append(cols, Column{
			Name:         td.Name,
			Kind:         KindTimeDimension,
			Description:  td.Description,
			Synonyms:     slices.Clone(td.Synonyms),
			Expr:         td.Expr,
			DataType:     td.DataType,
			Unique:       td.Unique,
			SampleValues: slices.Clone(td.SampleValues),
		})
	}
	for _, m := range lc.Measures {
		cols = append(cols, Column{
			Name:               m.Name,
			Kind:               KindMeasure,
			Description:        m.Description,
			Synonyms:           slices.Clone(m.Synonyms),
			Expr:               m.Expr,
			DataType:           m.DataType,
			DefaultAggregation: m.DefaultAggregation,
			SampleValues:       slices.Clone(m.SampleValues),
		})
	}
	return cols
}
