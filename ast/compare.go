package ast

// CompareOp is the operator of a Compare node.
type CompareOp uint8

// Comparison operators.
const (
	OpEquals CompareOp = iota + 1
	OpNotEquals
	OpLessThan
	OpLessThanOrEquals
	OpGreaterThan
	OpGreaterThanOrEquals
	OpIn
	OpNotIn
	OpLike
	OpNotLike
	OpIsNull
	OpIsNotNull
	OpBetween
	OpNotBetween
	OpMatches
	OpNotMatches
	OpRaw
)

var opSQL = [...]string{
	OpEquals:              "=",
	OpNotEquals:           "<>",
	OpLessThan:            "<",
	OpLessThanOrEquals:    "<=",
	OpGreaterThan:         ">",
	OpGreaterThanOrEquals: ">=",
	OpIn:                  "IN",
	OpNotIn:               "NOT IN",
	OpLike:                "LIKE",
	OpNotLike:             "NOT LIKE",
	OpIsNull:              "IS NULL",
	OpIsNotNull:           "IS NOT NULL",
	OpBetween:             "BETWEEN",
	OpNotBetween:          "NOT BETWEEN",
	OpMatches:             "MATCHES",
	OpNotMatches:          "NOT MATCHES",
}

// String returns the SQL spelling of the operator.
func (op CompareOp) String() string {
	if int(op) < len(opSQL) && opSQL[op] != "" {
		return opSQL[op]
	}
	if op == OpRaw {
		return "RAW"
	}
	return "CompareOp(?)"
}

// Compare is a predicate over one, two or three operands.
type Compare struct {
	Op    CompareOp
	Left  Expression
	Right Expression // nil for IS NULL and IS NOT NULL
	High  Expression // upper bound of BETWEEN
	RawOp string     // operator text for OpRaw
}

// And returns (c AND e).
func (c Compare) And(e Expression) ConditionTree { return And(c, e) }

// Or returns (c OR e).
func (c Compare) Or(e Expression) ConditionTree { return Or(c, e) }

// Not returns NOT c.
func (c Compare) Not() ConditionTree { return Not(c) }

func binary(op CompareOp, left Expression, right any) Compare {
	return Compare{Op: op, Left: left, Right: Expr(right)}
}

// setExpr turns the arguments of IN into a row, or passes a single
// sub-select, row or array through.
func setExpr(vs []any) Expression {
	if len(vs) == 1 {
		switch e := Expr(vs[0]).(type) {
		case *Select, Row, BadExpr:
			return e
		case Value:
			if arr, ok := e.AsArray(); ok {
				r := Row{Values: make([]Expression, len(arr))}
				for i, v := range arr {
					r.Values[i] = v
				}
				return r
			}
			return Row{Values: []Expression{e}}
		}
	}
	return NewRow(vs...)
}

func between(op CompareOp, left Expression, lo, hi any) Compare {
	return Compare{Op: op, Left: left, Right: Expr(lo), High: Expr(hi)}
}

// The functions below build predicates in the style of the query builder:
// the first argument names a column when it is a string, and is used as an
// expression otherwise.

// EQ returns left = right. A NULL right side renders IS NULL.
func EQ(left, right any) Compare { return binary(OpEquals, colExpr(left), right) }

// NEQ returns left <> right. A NULL right side renders IS NOT NULL.
func NEQ(left, right any) Compare { return binary(OpNotEquals, colExpr(left), right) }

// LT returns left < right.
func LT(left, right any) Compare { return binary(OpLessThan, colExpr(left), right) }

// LTE returns left <= right.
func LTE(left, right any) Compare { return binary(OpLessThanOrEquals, colExpr(left), right) }

// GT returns left > right.
func GT(left, right any) Compare { return binary(OpGreaterThan, colExpr(left), right) }

// GTE returns left >= right.
func GTE(left, right any) Compare { return binary(OpGreaterThanOrEquals, colExpr(left), right) }

// In returns left IN (vs...). A single sub-select, row or slice is used as the set.
func In(left any, vs ...any) Compare {
	return Compare{Op: OpIn, Left: colExpr(left), Right: setExpr(vs)}
}

// NotIn returns left NOT IN (vs...).
func NotIn(left any, vs ...any) Compare {
	return Compare{Op: OpNotIn, Left: colExpr(left), Right: setExpr(vs)}
}

// Like returns left LIKE pattern. The pattern is passed verbatim.
func Like(left any, pattern string) Compare { return binary(OpLike, colExpr(left), pattern) }

// NotLike returns left NOT LIKE pattern.
func NotLike(left any, pattern string) Compare { return binary(OpNotLike, colExpr(left), pattern) }

// Contains returns left LIKE '%s%'.
func Contains(left any, s string) Compare { return Like(left, "%"+s+"%") }

// HasPrefix returns left LIKE 's%'.
func HasPrefix(left any, s string) Compare { return Like(left, s+"%") }

// HasSuffix returns left LIKE '%s'.
func HasSuffix(left any, s string) Compare { return Like(left, "%"+s) }

// IsNull returns left IS NULL.
func IsNull(left any) Compare { return Compare{Op: OpIsNull, Left: colExpr(left)} }

// NotNull returns left IS NOT NULL.
func NotNull(left any) Compare { return Compare{Op: OpIsNotNull, Left: colExpr(left)} }

// Between returns left BETWEEN lo AND hi.
func Between(left, lo, hi any) Compare { return between(OpBetween, colExpr(left), lo, hi) }

// NotBetween returns left NOT BETWEEN lo AND hi.
func NotBetween(left, lo, hi any) Compare { return between(OpNotBetween, colExpr(left), lo, hi) }

// Matches returns a full-text match of a TextSearch function against query.
func Matches(search Function, query string) Compare {
	return binary(OpMatches, search, query)
}

// NotMatches negates Matches.
func NotMatches(search Function, query string) Compare {
	return binary(OpNotMatches, search, query)
}

// CompareRaw returns left <op> right with a custom operator, such as "~*".
func CompareRaw(left any, op string, right any) Compare {
	c := binary(OpRaw, colExpr(left), right)
	c.RawOp = op
	return c
}

// Equals returns v = o.
func (v Value) Equals(o any) Compare { return binary(OpEquals, v, o) }

// NotEquals returns v <> o.
func (v Value) NotEquals(o any) Compare { return binary(OpNotEquals, v, o) }

// LessThan returns v < o.
func (v Value) LessThan(o any) Compare { return binary(OpLessThan, v, o) }

// GreaterThan returns v > o.
func (v Value) GreaterThan(o any) Compare { return binary(OpGreaterThan, v, o) }

// In returns v IN (vs...).
func (v Value) In(vs ...any) Compare { return Compare{Op: OpIn, Left: v, Right: setExpr(vs)} }

// NotIn returns v NOT IN (vs...).
func (v Value) NotIn(vs ...any) Compare { return Compare{Op: OpNotIn, Left: v, Right: setExpr(vs)} }

// And returns (v AND e).
func (v Value) And(e Expression) ConditionTree { return And(v, e) }

// Or returns (v OR e).
func (v Value) Or(e Expression) ConditionTree { return Or(v, e) }

// Not returns NOT v.
func (v Value) Not() ConditionTree { return Not(v) }
