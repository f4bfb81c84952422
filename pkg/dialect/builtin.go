package dialect

// Function lists shared by every builtin dialect.
var (
	ansiAggregates = []string{
		"SUM", "COUNT", "AVG", "MIN", "MAX",
		"STDDEV", "STDDEV_POP", "STDDEV_SAMP",
		"VARIANCE", "VAR_POP", "VAR_SAMP",
		"CORR", "COVAR_POP", "COVAR_SAMP",
		"REGR_AVGX", "REGR_AVGY", "REGR_COUNT", "REGR_INTERCEPT",
		"REGR_R2", "REGR_SLOPE", "REGR_SXX", "REGR_SXY", "REGR_SYY",
		"ARRAY_AGG", "STRING_AGG", "BOOL_AND", "BOOL_OR",
		"BIT_AND", "BIT_OR", "BIT_XOR",
		"MEDIAN", "MODE", "ANY_VALUE",
	}

	ansiWindows = []string{
		"ROW_NUMBER", "RANK", "DENSE_RANK", "NTILE", "PERCENT_RANK", "CUME_DIST",
		"LAG", "LEAD", "FIRST_VALUE", "LAST_VALUE", "NTH_VALUE",
	}

	ansiGenerators = []string{
		"CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME",
		"LOCALTIME", "LOCALTIMESTAMP", "NOW", "RANDOM",
	}

	ansiScalars = []string{
		"COALESCE", "NULLIF", "GREATEST", "LEAST",
		"ABS", "CEIL", "CEILING", "FLOOR", "ROUND", "TRUNC", "SQRT", "POWER", "LN", "LOG", "EXP", "MOD", "SIGN",
		"UPPER", "LOWER", "TRIM", "LTRIM", "RTRIM", "LENGTH", "SUBSTRING", "SUBSTR", "REPLACE", "CONCAT",
		"SPLIT_PART", "LEFT", "RIGHT", "LPAD", "RPAD", "POSITION",
		"DATE_TRUNC", "DATE_PART", "EXTRACT", "TO_DATE", "TO_CHAR", "TO_TIMESTAMP",
	}
)

// Snowflake is the default dialect: semantic models describe warehouse tables
// addressed as database.schema.table.
var Snowflake = NewDialect("snowflake").
	DefaultSchema("PUBLIC").
	PlaceholderStyle(PlaceholderQuestion).
	Aggregates(ansiAggregates...).
	Aggregates(
		"COUNT_IF", "LISTAGG", "ARRAY_UNIQUE_AGG", "OBJECT_AGG",
		"APPROX_COUNT_DISTINCT", "HLL", "APPROX_PERCENTILE", "APPROX_TOP_K",
		"PERCENTILE_CONT", "PERCENTILE_DISC", "KURTOSIS", "SKEW",
		"MAX_BY", "MIN_BY", "BITAND_AGG", "BITOR_AGG", "BITXOR_AGG",
		"BOOLAND_AGG", "BOOLOR_AGG", "BOOLXOR_AGG", "HASH_AGG",
	).
	Windows(ansiWindows...).
	Windows("CONDITIONAL_CHANGE_EVENT", "CONDITIONAL_TRUE_EVENT", "RATIO_TO_REPORT").
	Generators(ansiGenerators...).
	Generators("UUID_STRING", "SEQ4", "SEQ8", "CURRENT_WAREHOUSE", "CURRENT_ROLE").
	Scalars(ansiScalars...).
	Scalars("IFF", "IFNULL", "NVL", "NVL2", "ZEROIFNULL", "DATEADD", "DATEDIFF", "TRY_CAST", "TRY_TO_NUMBER", "DIV0").
	WithKeywords("QUALIFY", "ILIKE", "RLIKE", "REGEXP", "SAMPLE", "TABLESAMPLE", "IGNORE", "RESPECT").
	Build()

// DuckDB is the DuckDB dialect.
var DuckDB = NewDialect("duckdb").
	DefaultSchema("main").
	PlaceholderStyle(PlaceholderQuestion).
	Aggregates(ansiAggregates...).
	Aggregates(
		"LIST", "GROUP_CONCAT", "FIRST", "LAST", "ARBITRARY",
		"QUANTILE", "QUANTILE_CONT", "QUANTILE_DISC",
		"APPROX_COUNT_DISTINCT", "APPROX_QUANTILE",
		"HISTOGRAM", "ENTROPY", "KURTOSIS", "SKEWNESS",
		"PRODUCT", "FSUM", "FAVG", "MAD", "RESERVOIR_QUANTILE",
		"ARG_MAX", "ARG_MIN", "MAX_BY", "MIN_BY", "COUNT_IF",
	).
	Windows(ansiWindows...).
	Generators(ansiGenerators...).
	Generators("TODAY", "UUID", "GEN_RANDOM_UUID", "SETSEED").
	Scalars(ansiScalars...).
	Scalars("IFNULL", "NVL", "IF", "LEN", "STRFTIME", "STRPTIME", "DATEDIFF", "DATE_DIFF", "EPOCH", "REGEXP_MATCHES").
	WithKeywords("QUALIFY", "ILIKE", "GLOB", "SEMI", "ANTI", "EXCLUDE", "REPLACE", "IGNORE", "RESPECT").
	Build()

// Postgres is the PostgreSQL dialect.
var Postgres = NewDialect("postgres").
	DefaultSchema("public").
	PlaceholderStyle(PlaceholderDollar).
	Aggregates(ansiAggregates...).
	Aggregates("JSON_AGG", "JSONB_AGG", "JSON_OBJECT_AGG", "JSONB_OBJECT_AGG", "EVERY", "PERCENTILE_CONT", "PERCENTILE_DISC", "XMLAGG").
	Windows(ansiWindows...).
	Generators(ansiGenerators...).
	Generators("GEN_RANDOM_UUID", "CLOCK_TIMESTAMP", "TRANSACTION_TIMESTAMP", "STATEMENT_TIMESTAMP").
	Scalars(ansiScalars...).
	Scalars("AGE", "TO_NUMBER", "REGEXP_REPLACE", "INITCAP").
	WithKeywords("ILIKE", "SIMILAR").
	Build()

// SQLite is the SQLite dialect.
var SQLite = NewDialect("sqlite").
	DefaultSchema("main").
	PlaceholderStyle(PlaceholderQuestion).
	WithoutCatalog().
	Aggregates("SUM", "COUNT", "AVG", "MIN", "MAX", "TOTAL", "GROUP_CONCAT", "STRING_AGG").
	Windows(ansiWindows...).
	Generators("CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME", "RANDOM", "RANDOMBLOB").
	Scalars("COALESCE", "NULLIF", "IFNULL", "IIF", "ABS", "ROUND", "UPPER", "LOWER", "TRIM", "LENGTH",
		"SUBSTR", "SUBSTRING", "REPLACE", "INSTR", "DATE", "TIME", "DATETIME", "JULIANDAY", "STRFTIME", "TYPEOF").
	WithKeywords("GLOB", "REGEXP", "MATCH").
	Build()

func init() {
	Register(Snowflake)
	Register(DuckDB)
	Register(Postgres)
	Register(SQLite)
	SetDefault(Snowflake)
}
