package visitor

import (
	"github.com/syssam/sqlweave/ast"
	"github.com/syssam/sqlweave/dialect"
)

// Feature names a statement construct that not every dialect supports.
type Feature string

// Statement features.
const (
	FeatureReturning         Feature = "RETURNING"
	FeatureOutputInserted    Feature = "OUTPUT INSERTED"
	FeatureOnConflictNothing Feature = "ON CONFLICT DO NOTHING"
	FeatureRightJoin         Feature = "RIGHT JOIN"
	FeatureFullJoin          Feature = "FULL JOIN"
	FeatureNativeArrays      Feature = "native arrays"
	FeatureNativeJSON        Feature = "native json"
	FeatureCast              Feature = "CAST"
	FeatureNestedUnion       Feature = "parenthesized UNION members"
)

// PlaceholderStyle is how a dialect spells the n-th bind parameter.
type PlaceholderStyle uint8

// Placeholder styles.
const (
	PlaceholderQuestion PlaceholderStyle = iota // ?
	PlaceholderDollar                           // $1, $2, ...
	PlaceholderAtP                              // @P1, @P2, ...
)

// Pagination is how a dialect limits and skips rows.
type Pagination uint8

// Pagination styles.
const (
	PaginateLimitOffset Pagination = iota // LIMIT n OFFSET m
	PaginateOffsetFetch                   // OFFSET m ROWS FETCH NEXT n ROWS ONLY
	PaginateTop                           // SELECT TOP (n), or OFFSET/FETCH with an offset
)

// JSONPathStyle is the path form accepted by JSON extraction.
type JSONPathStyle uint8

// JSON path styles.
const (
	JSONPathNone JSONPathStyle = iota
	JSONPathString
	JSONPathArray
)

// Capabilities describes what a dialect can render. The visitor consults
// it before emitting any construct, so an unsupported construct fails
// compilation with UnsupportedFeature instead of producing invalid SQL.
type Capabilities struct {
	Dialect     string
	QuoteOpen   string
	QuoteClose  string
	Placeholder PlaceholderStyle
	Pagination  Pagination
	JSONPath    JSONPathStyle

	// OffsetOnlyLimit is the LIMIT rendered when only an offset is set.
	// Empty means OFFSET may stand alone.
	OffsetOnlyLimit string

	// EmptyInsert follows the table name of an insert without columns.
	EmptyInsert string

	// CastOn is the database a restricted cast is matched against.
	CastOn ast.CastDatabase

	// conflictPrefix and conflictSuffix spell ON CONFLICT DO NOTHING.
	conflictPrefix string
	conflictSuffix string

	functions map[ast.FunctionKind]bool
	features  map[Feature]bool
}

// SupportsFunction reports whether the dialect renders functions of kind k.
func (c *Capabilities) SupportsFunction(k ast.FunctionKind) bool { return c.functions[k] }

// Supports reports whether the dialect renders f.
func (c *Capabilities) Supports(f Feature) bool { return c.features[f] }

// Functions returns the supported function kinds in declaration order.
func (c *Capabilities) Functions() []ast.FunctionKind {
	var out []ast.FunctionKind
	for k := ast.FnRowNumber; k <= ast.FnRowToJSON; k++ {
		if c.functions[k] {
			out = append(out, k)
		}
	}
	return out
}

// commonFunctions are rendered the same way by every dialect.
var commonFunctions = []ast.FunctionKind{
	ast.FnRowNumber,
	ast.FnCount,
	ast.FnAverage,
	ast.FnSum,
	ast.FnLower,
	ast.FnUpper,
	ast.FnMinimum,
	ast.FnMaximum,
	ast.FnCoalesce,
	ast.FnConcat,
}

func functionSet(extra ...ast.FunctionKind) map[ast.FunctionKind]bool {
	m := make(map[ast.FunctionKind]bool, len(commonFunctions)+len(extra))
	for _, k := range commonFunctions {
		m[k] = true
	}
	for _, k := range extra {
		m[k] = true
	}
	return m
}

func featureSet(fs ...Feature) map[Feature]bool {
	m := make(map[Feature]bool, len(fs))
	for _, f := range fs {
		m[f] = true
	}
	return m
}

var (
	postgresCapabilities = &Capabilities{
		Dialect:     dialect.Postgres,
		QuoteOpen:   `"`,
		QuoteClose:  `"`,
		Placeholder: PlaceholderDollar,
		Pagination:  PaginateLimitOffset,
		EmptyInsert: " DEFAULT VALUES",
		JSONPath:    JSONPathArray,
		CastOn:      ast.CastOnPostgres,

		conflictSuffix: " ON CONFLICT DO NOTHING",
		functions: functionSet(
			ast.FnAggregateToString,
			ast.FnJSONExtract,
			ast.FnJSONExtractFirstArrayElem,
			ast.FnJSONExtractLastArrayElem,
			ast.FnJSONUnquote,
			ast.FnTextSearch,
			ast.FnTextSearchRelevance,
			ast.FnAnyOperator,
			ast.FnAllOperator,
			ast.FnRowToJSON,
		),
		features: featureSet(
			FeatureReturning,
			FeatureOnConflictNothing,
			FeatureRightJoin,
			FeatureFullJoin,
			FeatureNativeArrays,
			FeatureNativeJSON,
			FeatureCast,
			FeatureNestedUnion,
		),
	}

	mysqlCapabilities = &Capabilities{
		Dialect:         dialect.MySQL,
		QuoteOpen:       "`",
		QuoteClose:      "`",
		Placeholder:     PlaceholderQuestion,
		Pagination:      PaginateLimitOffset,
		OffsetOnlyLimit: "18446744073709551615",
		EmptyInsert:     " () VALUES ()",
		JSONPath:        JSONPathString,
		CastOn:          ast.CastOnMySQL,
		conflictPrefix:  "IGNORE ",
		functions: functionSet(
			ast.FnAggregateToString,
			ast.FnJSONExtract,
			ast.FnJSONExtractFirstArrayElem,
			ast.FnJSONExtractLastArrayElem,
			ast.FnJSONUnquote,
			ast.FnTextSearch,
			ast.FnTextSearchRelevance,
			ast.FnUUIDToBin,
			ast.FnUUIDToBinSwapped,
			ast.FnNativeUUID,
		),
		features: featureSet(
			FeatureOnConflictNothing,
			FeatureRightJoin,
			FeatureCast,
			FeatureNestedUnion,
		),
	}

	sqliteCapabilities = &Capabilities{
		Dialect:         dialect.SQLite,
		QuoteOpen:       "`",
		QuoteClose:      "`",
		Placeholder:     PlaceholderQuestion,
		Pagination:      PaginateLimitOffset,
		OffsetOnlyLimit: "-1",
		EmptyInsert:     " DEFAULT VALUES",
		conflictPrefix:  "OR IGNORE ",
		functions:       functionSet(ast.FnAggregateToString),
		features: featureSet(
			FeatureReturning,
			FeatureOnConflictNothing,
		),
	}

	mssqlCapabilities = &Capabilities{
		Dialect:     dialect.MSSQL,
		QuoteOpen:   "[",
		QuoteClose:  "]",
		Placeholder: PlaceholderAtP,
		Pagination:  PaginateTop,
		EmptyInsert: " DEFAULT VALUES",
		CastOn:      ast.CastOnSQLServer,
		functions:   functionSet(ast.FnAggregateToString),
		features: featureSet(
			FeatureOutputInserted,
			FeatureRightJoin,
			FeatureFullJoin,
			FeatureCast,
			FeatureNestedUnion,
		),
	}

	ansiCapabilities = &Capabilities{
		Dialect:     dialect.ANSI,
		QuoteOpen:   `"`,
		QuoteClose:  `"`,
		Placeholder: PlaceholderQuestion,
		Pagination:  PaginateOffsetFetch,
		EmptyInsert: " DEFAULT VALUES",
		functions:   functionSet(),
		features: featureSet(
			FeatureRightJoin,
			FeatureFullJoin,
			FeatureCast,
			FeatureNestedUnion,
		),
	}
)
