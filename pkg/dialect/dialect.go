// Package dialect provides SQL dialect configuration and function classification.
//
// A Dialect knows which function names are aggregates, window-only functions,
// value generators or plain scalar functions, plus any keywords it adds on top
// of the builtin ANSI set in pkg/token. Expression classification and
// keyword normalization in pkg/sqlexpr are driven entirely by these sets, so
// new aggregate functions are supported by extending a dialect rather than
// changing the algorithms.
package dialect

import (
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/semgen/pkg/token"
)

// Type classifies a function name.
type Type int

const (
	// FuncUnknown means the dialect does not know the function.
	FuncUnknown Type = iota
	// FuncScalar is a row-wise function (COALESCE, UPPER, DATE_TRUNC, ...).
	FuncScalar
	// FuncAggregate collapses many rows to one value (SUM, COUNT, ...).
	FuncAggregate
	// FuncGenerator produces values with no input columns (NOW, UUID, ...).
	FuncGenerator
	// FuncWindow requires an OVER clause (ROW_NUMBER, LAG, ...).
	FuncWindow
)

// String returns the string representation of Type.
func (t Type) String() string {
	switch t {
	case FuncUnknown:
		return "unknown"
	case FuncScalar:
		return "scalar"
	case FuncAggregate:
		return "aggregate"
	case FuncGenerator:
		return "generator"
	case FuncWindow:
		return "window"
	default:
		return "invalid"
	}
}

// PlaceholderStyle defines how query parameters are written.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? placeholders (DuckDB, SQLite, Snowflake).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2 placeholders (Postgres).
	PlaceholderDollar
)

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	Name          string
	DefaultSchema string
	Placeholder   PlaceholderStyle
	// NoCatalog marks engines that resolve at most schema.table names.
	NoCatalog bool

	// Function classifications, keyed by lowercase name.
	aggregates map[string]struct{}
	generators map[string]struct{}
	windows    map[string]struct{}
	scalars    map[string]struct{}

	// Keywords beyond the builtin token set (QUALIFY, ILIKE, ...).
	keywords map[string]struct{}
}

// normalize lowercases a function or keyword name for lookup.
func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FunctionType returns the classification for a function name.
// Lookups are case-insensitive.
func (d *Dialect) FunctionType(name string) Type {
	n := normalize(name)

	// Aggregates win over every other class so that an allow-list extension
	// can promote a function to an aggregate.
	if _, ok := d.aggregates[n]; ok {
		return FuncAggregate
	}
	if _, ok := d.windows[n]; ok {
		return FuncWindow
	}
	if _, ok := d.generators[n]; ok {
		return FuncGenerator
	}
	if _, ok := d.scalars[n]; ok {
		return FuncScalar
	}
	return FuncUnknown
}

// IsAggregate returns true if the function is an aggregate function.
func (d *Dialect) IsAggregate(name string) bool {
	return d.FunctionType(name) == FuncAggregate
}

// IsWindow returns true if the function is a window-only function.
func (d *Dialect) IsWindow(name string) bool {
	return d.FunctionType(name) == FuncWindow
}

// IsFunction returns true if the dialect knows the function in any class.
func (d *Dialect) IsFunction(name string) bool {
	return d.FunctionType(name) != FuncUnknown
}

// IsKeyword returns true if word is a builtin keyword or a dialect keyword.
func (d *Dialect) IsKeyword(word string) bool {
	n := normalize(word)
	if token.LookupIdent(n) != token.IDENT {
		return true
	}
	_, ok := d.keywords[n]
	return ok
}

// Aggregates returns the aggregate function names, sorted.
func (d *Dialect) Aggregates() []string {
	return sortedKeys(d.aggregates)
}

// Keywords returns the dialect-specific keywords, sorted.
func (d *Dialect) Keywords() []string {
	return sortedKeys(d.keywords)
}

// AllFunctions returns all known function names, sorted.
func (d *Dialect) AllFunctions() []string {
	seen := make(map[string]struct{})
	for _, set := range []map[string]struct{}{d.aggregates, d.generators, d.windows, d.scalars} {
		for f := range set {
			seen[f] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// FormatPlaceholder returns a placeholder for the given parameter index (1-based).
func (d *Dialect) FormatPlaceholder(index int) string {
	switch d.Placeholder {
	case PlaceholderDollar:
		return "$" + strconv.Itoa(index)
	default:
		return "?"
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect creates a new dialect builder with the given name.
func NewDialect(name string) *Builder {
	return &Builder{
		dialect: &Dialect{
			Name:       name,
			aggregates: make(map[string]struct{}),
			generators: make(map[string]struct{}),
			windows:    make(map[string]struct{}),
			scalars:    make(map[string]struct{}),
			keywords:   make(map[string]struct{}),
		},
	}
}

// Derive starts a builder from a copy of d. The original dialect is not
// modified, which keeps registered dialects safe to share.
func (d *Dialect) Derive(name string) *Builder {
	b := NewDialect(name)
	b.dialect.DefaultSchema = d.DefaultSchema
	b.dialect.Placeholder = d.Placeholder
	b.dialect.NoCatalog = d.NoCatalog
	copySet(b.dialect.aggregates, d.aggregates)
	copySet(b.dialect.generators, d.generators)
	copySet(b.dialect.windows, d.windows)
	copySet(b.dialect.scalars, d.scalars)
	copySet(b.dialect.keywords, d.keywords)
	return b
}

func copySet(dst, src map[string]struct{}) {
	for k := range src {
		dst[k] = struct{}{}
	}
}

func addAll(set map[string]struct{}, names []string) {
	for _, n := range names {
		if n = normalize(n); n != "" {
			set[n] = struct{}{}
		}
	}
}

// Aggregates adds aggregate functions to the dialect.
func (b *Builder) Aggregates(funcs ...string) *Builder {
	addAll(b.dialect.aggregates, funcs)
	return b
}

// Generators adds generator functions (no input columns) to the dialect.
func (b *Builder) Generators(funcs ...string) *Builder {
	addAll(b.dialect.generators, funcs)
	return b
}

// Windows adds window-only functions to the dialect.
func (b *Builder) Windows(funcs ...string) *Builder {
	addAll(b.dialect.windows, funcs)
	return b
}

// Scalars adds row-wise functions to the dialect.
func (b *Builder) Scalars(funcs ...string) *Builder {
	addAll(b.dialect.scalars, funcs)
	return b
}

// WithKeywords registers dialect-specific keywords.
func (b *Builder) WithKeywords(kws ...string) *Builder {
	addAll(b.dialect.keywords, kws)
	return b
}

// DefaultSchema sets the default schema name.
func (b *Builder) DefaultSchema(schema string) *Builder {
	b.dialect.DefaultSchema = schema
	return b
}

// PlaceholderStyle sets how query parameters are formatted.
func (b *Builder) PlaceholderStyle(style PlaceholderStyle) *Builder {
	b.dialect.Placeholder = style
	return b
}

// WithoutCatalog makes the dialect qualify tables as schema.table.
func (b *Builder) WithoutCatalog() *Builder {
	b.dialect.NoCatalog = true
	return b
}

// Build returns the constructed dialect.
func (b *Builder) Build() *Dialect {
	return b.dialect
}
