package ast

// Expression is a node of the query tree. The set of implementations is
// closed: Value, Column, Row, *Select, Function, Asterisk, Compare,
// ConditionTree, CastExpr, Raw, Aliased and BadExpr.
type Expression interface {
	expression()
}

// Raw is an SQL fragment rendered verbatim. It is never quoted and never
// parameterized, so it must not carry user input.
type Raw string

// Asterisk selects every column, optionally of a single table.
type Asterisk struct {
	Table *Table
}

// Star returns an unqualified asterisk.
func Star() Asterisk { return Asterisk{} }

// Row is a tuple of expressions, such as the right side of IN or one row
// of a multi-row insert.
type Row struct {
	Values []Expression
}

// NewRow returns a row of the given values. Arguments that are not
// expressions are converted with ValueOf.
func NewRow(vs ...any) Row {
	r := Row{Values: make([]Expression, len(vs))}
	for i, v := range vs {
		r.Values[i] = Expr(v)
	}
	return r
}

// Len returns the number of values in the row.
func (r Row) Len() int { return len(r.Values) }

// Push returns a copy of r with v appended.
func (r Row) Push(v any) Row {
	return Row{Values: appendClip(r.Values, Expr(v))}
}

// Aliased attaches an alias to an expression, rendered as "expr AS alias".
type Aliased struct {
	Expr  Expression
	Alias string
}

// As returns e aliased as alias.
func As(e any, alias string) Aliased {
	return Aliased{Expr: Expr(e), Alias: alias}
}

// BadExpr stands in for an argument that could not be converted into an
// expression. Compiling a query that contains one fails with Err.
type BadExpr struct {
	Err error
}

func (Value) expression()         {}
func (Column) expression()        {}
func (Row) expression()           {}
func (*Select) expression()       {}
func (Function) expression()      {}
func (Asterisk) expression()      {}
func (Compare) expression()       {}
func (ConditionTree) expression() {}
func (CastExpr) expression()      {}
func (Raw) expression()           {}
func (Aliased) expression()       {}
func (BadExpr) expression()       {}

// Expr converts v into an expression. Expressions are returned as is,
// Select values are referenced as sub-selects, and anything else is
// converted with ValueOf.
func Expr(v any) Expression {
	switch v := v.(type) {
	case Expression:
		return v
	case Select:
		return &v
	}
	val, err := ValueOf(v)
	if err != nil {
		return BadExpr{Err: err}
	}
	return val
}

// colExpr is like Expr, except that strings name columns.
func colExpr(v any) Expression {
	if s, ok := v.(string); ok {
		return Col(s)
	}
	return Expr(v)
}

// appendClip appends to a copy of s, leaving the backing array of s untouched.
func appendClip[T any](s []T, vs ...T) []T {
	out := make([]T, 0, len(s)+len(vs))
	out = append(out, s...)
	return append(out, vs...)
}
