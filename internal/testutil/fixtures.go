package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/semgen/pkg/semantic"
)

// LegacyModel returns a two-table model in the legacy split format.
func LegacyModel() semantic.SemanticModel {
	return semantic.SemanticModel{
		Name: "test_ctx",
		Tables: []semantic.Table{
			{
				Name: "t1",
				Columns: semantic.LegacyColumns{
					Dimensions: []semantic.Dimension{
						{
							Name:         "d1",
							Description:  "d1_description",
							Synonyms:     []string{"d1_synonym1", "d1_synonym2"},
							Expr:         "d1_expr",
							DataType:     "d1_data_type",
							Unique:       true,
							SampleValues: []string{"d1_sample_value1", "d1_sample_value2"},
						},
						{
							Name:        "d2",
							Description: "d2_description",
							Expr:        "d2_expr",
						},
					},
				},
			},
			{
				Name: "t2",
				Columns: semantic.LegacyColumns{
					TimeDimensions: []semantic.TimeDimension{
						{
							Name:         "td1",
							Description:  "td1_description",
							Synonyms:     []string{"td1_synonym1", "td1_synonym2"},
							Expr:         "td1_expr",
							DataType:     "td1_data_type",
							Unique:       true,
							SampleValues: []string{"td1_sample_value1", "td1_sample_value2"},
						},
					},
					Measures: []semantic.Measure{
						{
							Name:               "m1",
							Description:        "m1_description",
							Synonyms:           []string{"m1_synonym1", "m1_synonym2"},
							Expr:               "m1_expr",
							DataType:           "m1_data_type",
							DefaultAggregation: semantic.AggregationAvg,
							SampleValues:       []string{"m1_sample_value1", "m1_sample_value2"},
						},
						{
							Name:        "m2",
							Description: "m1_description",
							Expr:        "m1_expr",
						},
					},
				},
			},
		},
	}
}

// ColumnFormatModel returns LegacyModel in the unified column format.
func ColumnFormatModel() semantic.SemanticModel {
	return semantic.SemanticModel{
		Name: "test_ctx",
		Tables: []semantic.Table{
			{
				Name: "t1",
				Columns: semantic.UnifiedColumns{Columns: []semantic.Column{
					{
						Name:         "d1",
						Kind:         semantic.KindDimension,
						Description:  "d1_description",
						Synonyms:     []string{"d1_synonym1", "d1_synonym2"},
						Expr:         "d1_expr",
						DataType:     "d1_data_type",
						Unique:       true,
						SampleValues: []string{"d1_sample_value1", "d1_sample_value2"},
					},
					{
						Name:        "d2",
						Kind:        semantic.KindDimension,
						Description: "d2_description",
						Expr:        "d2_expr",
					},
				}},
			},
			{
				Name: "t2",
				Columns: semantic.UnifiedColumns{Columns: []semantic.Column{
					{
						Name:         "td1",
						Kind:         semantic.KindTimeDimension,
						Description:  "td1_description",
						Synonyms:     []string{"td1_synonym1", "td1_synonym2"},
						Expr:         "td1_expr",
						DataType:     "td1_data_type",
						Unique:       true,
						SampleValues: []string{"td1_sample_value1", "td1_sample_value2"},
					},
					{
						Name:               "m1",
						Kind:               semantic.KindMeasure,
						Description:        "m1_description",
						Synonyms:           []string{"m1_synonym1", "m1_synonym2"},
						Expr:               "m1_expr",
						DataType:           "m1_data_type",
						DefaultAggregation: semantic.AggregationAvg,
						SampleValues:       []string{"m1_sample_value1", "m1_sample_value2"},
					},
					{
						Name:        "m2",
						Kind:        semantic.KindMeasure,
						Description: "m1_description",
						Expr:        "m1_expr",
					},
				}},
			},
		},
	}
}

// DimensionsTable returns table t1 at db.sc.t1 with two plain dimensions.
func DimensionsTable() semantic.Table {
	return semantic.Table{
		Name:      "t1",
		BaseTable: &semantic.FullyQualifiedTable{Database: "db", Schema: "sc", Table: "t1"},
		Columns: semantic.UnifiedColumns{Columns: []semantic.Column{
			{
				Name:         "d1",
				Kind:         semantic.KindDimension,
				Description:  "d1_description",
				Synonyms:     []string{"d1_synonym1", "d1_synonym2"},
				Expr:         "d1_expr",
				DataType:     "d1_data_type",
				Unique:       true,
				SampleValues: []string{"d1_sample_value1", "d1_sample_value2"},
			},
			{
				Name:        "d2",
				Kind:        semantic.KindDimension,
				Description: "d2_description",
				Expr:        "d2_expr",
			},
		}},
	}
}

// MixedAggregateTable returns table t1 at db.sc.t1 with a dimension, a
// simple aggregate measure and a windowed measure.
func MixedAggregateTable() semantic.Table {
	return semantic.Table{
		Name:      "t1",
		BaseTable: &semantic.FullyQualifiedTable{Database: "db", Schema: "sc", Table: "t1"},
		Columns: semantic.UnifiedColumns{Columns: []semantic.Column{
			{
				Name:         "d1",
				Kind:         semantic.KindDimension,
				Description:  "d1_description",
				Synonyms:     []string{"d1_synonym1", "d1_synonym2"},
				Expr:         "d1_expr",
				DataType:     "d1_data_type",
				Unique:       true,
				SampleValues: []string{"d1_sample_value1", "d1_sample_value2"},
			},
			{
				Name:        "d2",
				Kind:        semantic.KindMeasure,
				Description: "d2_description",
				Expr:        "sum(d2)",
			},
			{
				Name:        "d3",
				Kind:        semantic.KindMeasure,
				Description: "d3_description",
				Expr:        "sum(d3) over (partition by d1)",
			},
		}},
	}
}

// WriteFile writes content to name inside a fresh temp directory and
// returns the full path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
