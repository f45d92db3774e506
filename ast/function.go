package ast

// FunctionKind identifies a database function. The set is closed; each
// dialect declares which kinds it can render.
type FunctionKind uint8

// Function kinds.
const (
	FnRowNumber FunctionKind = iota + 1
	FnCount
	FnAggregateToString
	FnAverage
	FnSum
	FnLower
	FnUpper
	FnMinimum
	FnMaximum
	FnCoalesce
	FnConcat
	FnJSONExtract
	FnJSONExtractFirstArrayElem
	FnJSONExtractLastArrayElem
	FnJSONUnquote
	FnTextSearch
	FnTextSearchRelevance
	FnUUIDToBin
	FnUUIDToBinSwapped
	FnNativeUUID
	FnAnyOperator
	FnAllOperator
	FnRowToJSON
)

var functionNames = [...]string{
	FnRowNumber:                 "row_number",
	FnCount:                     "count",
	FnAggregateToString:         "aggregate_to_string",
	FnAverage:                   "average",
	FnSum:                       "sum",
	FnLower:                     "lower",
	FnUpper:                     "upper",
	FnMinimum:                   "minimum",
	FnMaximum:                   "maximum",
	FnCoalesce:                  "coalesce",
	FnConcat:                    "concat",
	FnJSONExtract:               "json_extract",
	FnJSONExtractFirstArrayElem: "json_extract_first_array_elem",
	FnJSONExtractLastArrayElem:  "json_extract_last_array_elem",
	FnJSONUnquote:               "json_unquote",
	FnTextSearch:                "text_search",
	FnTextSearchRelevance:       "text_search_relevance",
	FnUUIDToBin:                 "uuid_to_bin",
	FnUUIDToBinSwapped:          "uuid_to_bin_swapped",
	FnNativeUUID:                "uuid",
	FnAnyOperator:               "any",
	FnAllOperator:               "all",
	FnRowToJSON:                 "row_to_json",
}

// String returns the logical function name.
func (k FunctionKind) String() string {
	if int(k) < len(functionNames) && functionNames[k] != "" {
		return functionNames[k]
	}
	return "function"
}

// JSONPath addresses a value inside a JSON document. MySQL takes string
// paths like "$.a.b"; Postgres takes arrays of keys.
type JSONPath struct {
	String  string
	Array   []string
	IsArray bool
}

// JSONPathString returns a string path.
func JSONPathString(p string) JSONPath { return JSONPath{String: p} }

// JSONPathArray returns an array path.
func JSONPathArray(keys ...string) JSONPath { return JSONPath{Array: keys, IsArray: true} }

// Function is a call to one of the supported database functions.
type Function struct {
	Kind  FunctionKind
	Args  []Expression
	Alias string

	// Window of ROW_NUMBER.
	Partition []Expression
	Ordering  Ordering

	// Path of JSON_EXTRACT.
	Path JSONPath

	// Query of TEXT_SEARCH_RELEVANCE.
	Query string

	// Source of ROW_TO_JSON.
	Table  *Table
	Pretty bool
}

func fn(kind FunctionKind, args ...any) Function {
	f := Function{Kind: kind, Args: make([]Expression, len(args))}
	for i, a := range args {
		f.Args[i] = colExpr(a)
	}
	return f
}

// As returns a copy of f aliased as alias.
func (f Function) As(alias string) Function {
	f.Alias = alias
	return f
}

// Over returns a copy of a ROW_NUMBER call with its window set. Strings
// in partition name columns.
func (f Function) Over(ordering Ordering, partition ...any) Function {
	f.Ordering = appendClip(ordering)
	f.Partition = make([]Expression, len(partition))
	for i, p := range partition {
		f.Partition[i] = colExpr(p)
	}
	return f
}

// RowNumber returns ROW_NUMBER() OVER (...). Use Over to set the window.
func RowNumber() Function { return Function{Kind: FnRowNumber} }

// Count counts rows. With no arguments it counts all rows. Strings name columns.
func Count(exprs ...any) Function { return fn(FnCount, exprs...) }

// AggregateToString concatenates the values of e with commas.
func AggregateToString(e any) Function { return fn(FnAggregateToString, e) }

// Avg returns the average of e.
func Avg(e any) Function { return fn(FnAverage, e) }

// Sum returns the sum of e.
func Sum(e any) Function { return fn(FnSum, e) }

// Lower lowercases e.
func Lower(e any) Function { return fn(FnLower, e) }

// Upper uppercases e.
func Upper(e any) Function { return fn(FnUpper, e) }

// Min returns the minimum of e.
func Min(e any) Function { return fn(FnMinimum, e) }

// Max returns the maximum of e.
func Max(e any) Function { return fn(FnMaximum, e) }

// Coalesce returns the first non-null argument. Unlike most functions,
// string arguments are values here, not column names.
func Coalesce(exprs ...any) Function {
	f := Function{Kind: FnCoalesce, Args: make([]Expression, len(exprs))}
	for i, e := range exprs {
		f.Args[i] = Expr(e)
	}
	return f
}

// Concat concatenates its arguments. String arguments are values.
func Concat(exprs ...any) Function {
	f := Function{Kind: FnConcat, Args: make([]Expression, len(exprs))}
	for i, e := range exprs {
		f.Args[i] = Expr(e)
	}
	return f
}

// JSONExtract extracts the value at path from the JSON column e.
func JSONExtract(e any, path JSONPath) Function {
	f := fn(FnJSONExtract, e)
	f.Path = path
	return f
}

// JSONExtractFirstArrayElem extracts the first element of a JSON array.
func JSONExtractFirstArrayElem(e any) Function { return fn(FnJSONExtractFirstArrayElem, e) }

// JSONExtractLastArrayElem extracts the last element of a JSON array.
func JSONExtractLastArrayElem(e any) Function { return fn(FnJSONExtractLastArrayElem, e) }

// JSONUnquote unquotes a JSON string value.
func JSONUnquote(e any) Function { return fn(FnJSONUnquote, e) }

// TextSearch combines columns into a full-text document. Use it as the
// left side of Matches.
func TextSearch(cols ...any) Function { return fn(FnTextSearch, cols...) }

// TextSearchRelevance ranks the full-text document of cols against query.
func TextSearchRelevance(query string, cols ...any) Function {
	f := fn(FnTextSearchRelevance, cols...)
	f.Query = query
	return f
}

// UUIDToBin generates a UUID and converts it to binary.
func UUIDToBin() Function { return Function{Kind: FnUUIDToBin} }

// UUIDToBinSwapped is UUIDToBin with the time-low and time-high parts swapped.
func UUIDToBinSwapped() Function { return Function{Kind: FnUUIDToBinSwapped} }

// NativeUUID generates a UUID in text form.
func NativeUUID() Function { return Function{Kind: FnNativeUUID} }

// AnyOperator returns ANY(e), to compare against every array element.
func AnyOperator(e any) Function { return fn(FnAnyOperator, e) }

// AllOperator returns ALL(e).
func AllOperator(e any) Function { return fn(FnAllOperator, e) }

// RowToJSON renders each row of t as a JSON object.
func RowToJSON(t Table, pretty bool) Function {
	return Function{Kind: FnRowToJSON, Table: &t, Pretty: pretty}
}

// Equals returns f = v.
func (f Function) Equals(v any) Compare { return binary(OpEquals, f, v) }

// NotEquals returns f <> v.
func (f Function) NotEquals(v any) Compare { return binary(OpNotEquals, f, v) }

// LessThan returns f < v.
func (f Function) LessThan(v any) Compare { return binary(OpLessThan, f, v) }

// LessThanOrEquals returns f <= v.
func (f Function) LessThanOrEquals(v any) Compare { return binary(OpLessThanOrEquals, f, v) }

// GreaterThan returns f > v.
func (f Function) GreaterThan(v any) Compare { return binary(OpGreaterThan, f, v) }

// GreaterThanOrEquals returns f >= v.
func (f Function) GreaterThanOrEquals(v any) Compare { return binary(OpGreaterThanOrEquals, f, v) }

// In returns f IN (vs...).
func (f Function) In(vs ...any) Compare { return Compare{Op: OpIn, Left: f, Right: setExpr(vs)} }

// Like returns f LIKE pattern.
func (f Function) Like(pattern string) Compare { return binary(OpLike, f, pattern) }

// IsNull returns f IS NULL.
func (f Function) IsNull() Compare { return Compare{Op: OpIsNull, Left: f} }

// IsNotNull returns f IS NOT NULL.
func (f Function) IsNotNull() Compare { return Compare{Op: OpIsNotNull, Left: f} }

// Matches matches a TextSearch document against query.
func (f Function) Matches(query string) Compare { return Matches(f, query) }

// NotMatches negates Matches.
func (f Function) NotMatches(query string) Compare { return NotMatches(f, query) }

// Asc orders by f ascending.
func (f Function) Asc() OrderDef { return OrderDef{Expr: f, Order: Asc} }

// Desc orders by f descending.
func (f Function) Desc() OrderDef { return OrderDef{Expr: f, Order: Desc} }

// And returns (f AND e).
func (f Function) And(e Expression) ConditionTree { return And(f, e) }

// Or returns (f OR e).
func (f Function) Or(e Expression) ConditionTree { return Or(f, e) }

// Not returns NOT f.
func (f Function) Not() ConditionTree { return Not(f) }
