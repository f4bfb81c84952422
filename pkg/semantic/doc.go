// Package semantic defines semantic models: declarative descriptions of a
// warehouse table's queryable columns.
//
// A table describes its columns either in the legacy split form (separate
// dimension, time dimension and measure lists) or in the unified column
// format where every column carries its kind. The two forms are variants of
// the sealed ColumnSet type, so a table can never hold both.
//
// Values in this package are treated as immutable snapshots. Functions that
// transform a model return new values and never share slices with their input.
package semantic
