package ast

// ColumnType is an optional hint about the database type of a column. The
// visitor uses it to encode values whose representation is ambiguous, such
// as an integer bound to a 16-bit column or text bound to a UUID column.
type ColumnType uint8

// Column type hints.
const (
	TypeUnknown ColumnType = iota
	TypeInt2
	TypeInt4
	TypeInt8
	TypeFloat4
	TypeFloat8
	TypeNumeric
	TypeText
	TypeChar
	TypeEnum
	TypeUUID
	TypeJSON
	TypeBoolean
	TypeBytes
	TypeDate
	TypeTime
	TypeDateTime
	TypeArray
)

var columnTypeNames = [...]string{
	TypeUnknown:  "unknown",
	TypeInt2:     "int2",
	TypeInt4:     "int4",
	TypeInt8:     "int8",
	TypeFloat4:   "float4",
	TypeFloat8:   "float8",
	TypeNumeric:  "numeric",
	TypeText:     "text",
	TypeChar:     "char",
	TypeEnum:     "enum",
	TypeUUID:     "uuid",
	TypeJSON:     "json",
	TypeBoolean:  "boolean",
	TypeBytes:    "bytes",
	TypeDate:     "date",
	TypeTime:     "time",
	TypeDateTime: "datetime",
	TypeArray:    "array",
}

func (t ColumnType) String() string {
	if int(t) < len(columnTypeNames) {
		return columnTypeNames[t]
	}
	return "unknown"
}

// Column references a column, optionally qualified by its table.
type Column struct {
	Name  string
	Table *Table
	Alias string
	Type  ColumnType
}

// Col returns a column reference.
func Col(name string) Column { return Column{Name: name} }

// Of returns a copy of c qualified by table t.
func (c Column) Of(t Table) Column {
	c.Table = &t
	return c
}

// As returns a copy of c aliased as alias.
func (c Column) As(alias string) Column {
	c.Alias = alias
	return c
}

// Typed returns a copy of c carrying a type hint.
func (c Column) Typed(t ColumnType) Column {
	c.Type = t
	return c
}

// Equals returns c = v.
func (c Column) Equals(v any) Compare { return binary(OpEquals, c, v) }

// NotEquals returns c <> v.
func (c Column) NotEquals(v any) Compare { return binary(OpNotEquals, c, v) }

// LessThan returns c < v.
func (c Column) LessThan(v any) Compare { return binary(OpLessThan, c, v) }

// LessThanOrEquals returns c <= v.
func (c Column) LessThanOrEquals(v any) Compare { return binary(OpLessThanOrEquals, c, v) }

// GreaterThan returns c > v.
func (c Column) GreaterThan(v any) Compare { return binary(OpGreaterThan, c, v) }

// GreaterThanOrEquals returns c >= v.
func (c Column) GreaterThanOrEquals(v any) Compare { return binary(OpGreaterThanOrEquals, c, v) }

// In returns c IN (vs...).
func (c Column) In(vs ...any) Compare { return Compare{Op: OpIn, Left: c, Right: setExpr(vs)} }

// NotIn returns c NOT IN (vs...).
func (c Column) NotIn(vs ...any) Compare { return Compare{Op: OpNotIn, Left: c, Right: setExpr(vs)} }

// Like returns c LIKE pattern.
func (c Column) Like(pattern string) Compare { return binary(OpLike, c, pattern) }

// NotLike returns c NOT LIKE pattern.
func (c Column) NotLike(pattern string) Compare { return binary(OpNotLike, c, pattern) }

// Contains returns c LIKE '%s%'.
func (c Column) Contains(s string) Compare { return c.Like("%" + s + "%") }

// NotContains returns c NOT LIKE '%s%'.
func (c Column) NotContains(s string) Compare { return c.NotLike("%" + s + "%") }

// HasPrefix returns c LIKE 's%'.
func (c Column) HasPrefix(s string) Compare { return c.Like(s + "%") }

// NotHasPrefix returns c NOT LIKE 's%'.
func (c Column) NotHasPrefix(s string) Compare { return c.NotLike(s + "%") }

// HasSuffix returns c LIKE '%s'.
func (c Column) HasSuffix(s string) Compare { return c.Like("%" + s) }

// NotHasSuffix returns c NOT LIKE '%s'.
func (c Column) NotHasSuffix(s string) Compare { return c.NotLike("%" + s) }

// IsNull returns c IS NULL.
func (c Column) IsNull() Compare { return Compare{Op: OpIsNull, Left: c} }

// IsNotNull returns c IS NOT NULL.
func (c Column) IsNotNull() Compare { return Compare{Op: OpIsNotNull, Left: c} }

// Between returns c BETWEEN lo AND hi.
func (c Column) Between(lo, hi any) Compare { return between(OpBetween, c, lo, hi) }

// NotBetween returns c NOT BETWEEN lo AND hi.
func (c Column) NotBetween(lo, hi any) Compare { return between(OpNotBetween, c, lo, hi) }

// CompareRaw returns c <op> v with a custom operator.
func (c Column) CompareRaw(op string, v any) Compare {
	cmp := binary(OpRaw, c, v)
	cmp.RawOp = op
	return cmp
}

// Asc orders by c ascending.
func (c Column) Asc() OrderDef { return OrderDef{Expr: c, Order: Asc} }

// Desc orders by c descending.
func (c Column) Desc() OrderDef { return OrderDef{Expr: c, Order: Desc} }

// And returns (c AND e), for boolean columns.
func (c Column) And(e Expression) ConditionTree { return And(c, e) }

// Or returns (c OR e), for boolean columns.
func (c Column) Or(e Expression) ConditionTree { return Or(c, e) }

// Not returns NOT c, for boolean columns.
func (c Column) Not() ConditionTree { return Not(c) }
