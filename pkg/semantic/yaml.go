package semantic

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlModel is the on-disk shape of a semantic model.
// Unknown fields cause parse errors.
type yamlModel struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Tables      []yamlTable `yaml:"tables,omitempty"`
}

type yamlTable struct {
	Name           string             `yaml:"name"`
	Description    string             `yaml:"description,omitempty"`
	BaseTable      *yamlBaseTable     `yaml:"base_table,omitempty"`
	Dimensions     []yamlColumnFields `yaml:"dimensions,omitempty"`
	TimeDimensions []yamlColumnFields `yaml:"time_dimensions,omitempty"`
	Measures       []yamlColumnFields `yaml:"measures,omitempty"`
	Columns        []yamlColumnFields `yaml:"columns,omitempty"`
}

type yamlBaseTable struct {
	Database string `yaml:"database"`
	Schema   string `yaml:"schema"`
	Table    string `yaml:"table"`
}

// yamlColumnFields is shared by every column list; kind is only meaningful
// under columns.
type yamlColumnFields struct {
	Name               string   `yaml:"name"`
	Kind               string   `yaml:"kind,omitempty"`
	Description        string   `yaml:"description,omitempty"`
	Synonyms           []string `yaml:"synonyms,omitempty"`
	Expr               string   `yaml:"expr"`
	DataType           string   `yaml:"data_type,omitempty"`
	Unique             bool     `yaml:"unique,omitempty"`
	DefaultAggregation string   `yaml:"default_aggregation,omitempty"`
	SampleValues       []string `yaml:"sample_values,omitempty"`
}

// LoadFile reads and parses a semantic model YAML file.
func LoadFile(path string) (SemanticModel, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from user configuration
	if err != nil {
		return SemanticModel{}, fmt.Errorf("failed to read semantic model %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return SemanticModel{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a semantic model from YAML.
func Parse(data []byte) (SemanticModel, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var raw yamlModel
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return SemanticModel{}, fmt.Errorf("failed to parse semantic model: %w", err)
	}
	return raw.toModel()
}

// Marshal encodes m as YAML.
func Marshal(m SemanticModel) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fromModel(m)); err != nil {
		return nil, fmt.Errorf("failed to encode semantic model: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes m as YAML into path.
func WriteFile(path string, m SemanticModel) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (y yamlModel) toModel() (SemanticModel, error) {
	m := SemanticModel{Name: y.Name, Description: y.Description}
	for _, yt := range y.Tables {
		t, err := yt.toTable()
		if err != nil {
			return SemanticModel{}, err
		}
		m.Tables = append(m.Tables, t)
	}
	return m, nil
}

func (y yamlTable) toTable() (Table, error) {
	t := Table{Name: y.Name, Description: y.Description}
	if y.BaseTable != nil {
		t.BaseTable = &FullyQualifiedTable{
			Database: y.BaseTable.Database,
			Schema:   y.BaseTable.Schema,
			Table:    y.BaseTable.Table,
		}
	}

	legacy := len(y.Dimensions) > 0 || len(y.TimeDimensions) > 0 || len(y.Measures) > 0
	switch {
	case legacy && len(y.Columns) > 0:
		return Table{}, fmt.Errorf("table %q: %w", y.Name, ErrMixedColumnFormat)
	case legacy:
		lc, err := y.legacyColumns()
		if err != nil {
			return Table{}, err
		}
		t.Columns = lc
	case len(y.Columns) > 0:
		uc := UnifiedColumns{Columns: make([]Column, 0, len(y.Columns))}
		for _, yc := range y.Columns {
			kind, err := ParseColumnKind(yc.Kind)
			if err != nil {
				return Table{}, fmt.Errorf("table %q, column %q: %w", y.Name, yc.Name, err)
			}
			agg, err := ParseAggregationType(yc.DefaultAggregation)
			if err != nil {
				return Table{}, fmt.Errorf("table %q, column %q: %w", y.Name, yc.Name, err)
			}
			uc.Columns = append(uc.Columns, Column{
				Name:               yc.Name,
				Kind:               kind,
				Description:        yc.Description,
				Synonyms:           yc.Synonyms,
				Expr:               yc.Expr,
				DataType:           yc.DataType,
				Unique:             yc.Unique,
				DefaultAggregation: agg,
				SampleValues:       yc.SampleValues,
			})
		}
		t.Columns = uc
	}
	return t, nil
}

func (y yamlTable) legacyColumns() (LegacyColumns, error) {
	var lc LegacyColumns
	for _, f := range y.Dimensions {
		if f.Kind != "" || f.DefaultAggregation != "" {
			return lc, fmt.Errorf("table %q, dimension %q: kind and default_aggregation are not allowed", y.Name, f.Name)
		}
		lc.Dimensions = append(lc.Dimensions, Dimension{
			Name: f.Name, Description: f.Description, Synonyms: f.Synonyms, Expr: f.Expr,
			DataType: f.DataType, Unique: f.Unique, SampleValues: f.SampleValues,
		})
	}
	for _, f := range y.TimeDimensions {
		if f.Kind != "" || f.DefaultAggregation != "" {
			return lc, fmt.Errorf("table %q, time dimension %q: kind and default_aggregation are not allowed", y.Name, f.Name)
		}
		lc.TimeDimensions = append(lc.TimeDimensions, TimeDimension{
			Name: f.Name, Description: f.Description, Synonyms: f.Synonyms, Expr: f.Expr,
			DataType: f.DataType, Unique: f.Unique, SampleValues: f.SampleValues,
		})
	}
	for _, f := range y.Measures {
		if f.Kind != "" || f.Unique {
			return lc, fmt.Errorf("table %q, measure %q: kind and unique are not allowed", y.Name, f.Name)
		}
		agg, err := ParseAggregationType(f.DefaultAggregation)
		if err != nil {
			return lc, fmt.Errorf("table %q, measure %q: %w", y.Name, f.Name, err)
		}
		lc.Measures = append(lc.Measures, Measure{
			Name: f.Name, Description: f.Description, Synonyms: f.Synonyms, Expr: f.Expr,
			DataType: f.DataType, DefaultAggregation: agg, SampleValues: f.SampleValues,
		})
	}
	return lc, nil
}

func fromModel(m SemanticModel) yamlModel {
	y := yamlModel{Name: m.Name, Description: m.Description}
	for _, t := range m.Tables {
		y.Tables = append(y.Tables, fromTable(t))
	}
	return y
}

func fromTable(t Table) yamlTable {
	y := yamlTable{Name: t.Name, Description: t.Description}
	if t.BaseTable != nil {
		y.BaseTable = &yamlBaseTable{Database: t.BaseTable.Database, Schema: t.BaseTable.Schema, Table: t.BaseTable.Table}
	}

	switch cs := columnSet(t.Columns).(type) {
	case UnifiedColumns:
		for _, c := range cs.Columns {
			y.Columns = append(y.Columns, yamlColumnFields{
				Name: c.Name, Kind: c.Kind.String(), Description: c.Description, Synonyms: c.Synonyms,
				Expr: c.Expr, DataType: c.DataType, Unique: c.Unique,
				DefaultAggregation: c.DefaultAggregation.String(), SampleValues: c.SampleValues,
			})
		}
	case LegacyColumns:
		for _, d := range cs.Dimensions {
			y.Dimensions = append(y.Dimensions, yamlColumnFields{
				Name: d.Name, Description: d.Description, Synonyms: d.Synonyms, Expr: d.Expr,
				DataType: d.DataType, Unique: d.Unique, SampleValues: d.SampleValues,
			})
		}
		for _, td := range cs.TimeDimensions {
			y.TimeDimensions = append(y.TimeDimensions, yamlColumnFields{
				Name: td.Name, Description: td.Description, Synonyms: td.Synonyms, Expr: td.Expr,
				DataType: td.DataType, Unique: td.Unique, SampleValues: td.SampleValues,
			})
		}
		for _, ms := range cs.Measures {
			y.Measures = append(y.Measures, yamlColumnFields{
				Name: ms.Name, Description: ms.Description, Synonyms: ms.Synonyms, Expr: ms.Expr,
				DataType: ms.DataType, DefaultAggregation: ms.DefaultAggregation.String(), SampleValues: ms.SampleValues,
			})
		}
	}
	return y
}
