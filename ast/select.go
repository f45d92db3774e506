package ast

// Query is a statement that can be compiled and executed: *Select,
// *Insert, *Update, *Delete, *Union or RawQuery.
type Query interface {
	query()
}

func (*Select) query()  {}
func (*Insert) query()  {}
func (*Update) query()  {}
func (*Delete) query()  {}
func (*Union) query()   {}
func (RawQuery) query() {}

// RawQuery is SQL text with positional parameters, passed to the database
// unchanged. Placeholders must already be in the dialect's style.
type RawQuery struct {
	SQL    string
	Params []Value
}

// RawSQL returns a raw query.
func RawSQL(sql string, params ...Value) RawQuery {
	return RawQuery{SQL: sql, Params: params}
}

// Select is a SELECT statement. Builder methods return modified copies and
// never change the receiver.
type Select struct {
	IsDistinct       bool
	Tables           []Table
	Projection       []Expression
	Joins            []Join
	Conditions       *ConditionTree
	Ordering         Ordering
	Grouping         []Expression
	HavingConditions *ConditionTree
	RowLimit         *uint64
	RowOffset        *uint64
}

// SelectFrom starts a SELECT over a table name, Table or derived *Select.
func SelectFrom(table any) *Select {
	return &Select{Tables: []Table{toTable(table)}}
}

// SelectValues starts a SELECT without a FROM clause, such as SELECT 1.
func SelectValues(vs ...any) *Select {
	s := &Select{}
	for _, v := range vs {
		s.Projection = append(s.Projection, Expr(v))
	}
	return s
}

func (s *Select) clone() *Select {
	c := *s
	return &c
}

// AndFrom adds another table to the FROM clause.
func (s *Select) AndFrom(table any) *Select {
	c := s.clone()
	c.Tables = appendClip(s.Tables, toTable(table))
	return c
}

// Columns adds columns to the projection. Strings name columns.
func (s *Select) Columns(cols ...any) *Select {
	c := s.clone()
	out := appendClip(s.Projection)
	for _, col := range cols {
		out = append(out, colExpr(col))
	}
	c.Projection = out
	return c
}

// Value adds a value or expression to the projection.
func (s *Select) Value(v any) *Select {
	c := s.clone()
	c.Projection = appendClip(s.Projection, Expr(v))
	return c
}

// Distinct makes the select DISTINCT.
func (s *Select) Distinct() *Select {
	c := s.clone()
	c.IsDistinct = true
	return c
}

// Where sets the filter. A Compare is wrapped as a single condition.
func (s *Select) Where(cond Expression) *Select {
	c := s.clone()
	t := toCondition(cond)
	c.Conditions = &t
	return c
}

// AndWhere adds a filter with AND, or sets it when none is present.
func (s *Select) AndWhere(cond Expression) *Select {
	if s.Conditions == nil {
		return s.Where(cond)
	}
	c := s.clone()
	t := s.Conditions.And(cond)
	c.Conditions = &t
	return c
}

// OrWhere adds a filter with OR, or sets it when none is present.
func (s *Select) OrWhere(cond Expression) *Select {
	if s.Conditions == nil {
		return s.Where(cond)
	}
	c := s.clone()
	t := s.Conditions.Or(cond)
	c.Conditions = &t
	return c
}

func (s *Select) join(kind JoinKind, table any, on Expression) *Select {
	c := s.clone()
	c.Joins = appendClip(s.Joins, Join{Kind: kind, Table: toTable(table), On: toCondition(on)})
	return c
}

// InnerJoin adds an INNER JOIN.
func (s *Select) InnerJoin(table any, on Expression) *Select { return s.join(InnerJoin, table, on) }

// LeftJoin adds a LEFT JOIN.
func (s *Select) LeftJoin(table any, on Expression) *Select { return s.join(LeftJoin, table, on) }

// RightJoin adds a RIGHT JOIN.
func (s *Select) RightJoin(table any, on Expression) *Select { return s.join(RightJoin, table, on) }

// FullJoin adds a FULL JOIN.
func (s *Select) FullJoin(table any, on Expression) *Select { return s.join(FullJoin, table, on) }

// OrderBy appends ordering entries: OrderDef values, column names or expressions.
func (s *Select) OrderBy(defs ...any) *Select {
	c := s.clone()
	c.Ordering = s.Ordering.Append(defs...)
	return c
}

// GroupBy appends grouping expressions. Strings name columns.
func (s *Select) GroupBy(exprs ...any) *Select {
	c := s.clone()
	out := appendClip(s.Grouping)
	for _, e := range exprs {
		out = append(out, colExpr(e))
	}
	c.Grouping = out
	return c
}

// Having sets the HAVING filter.
func (s *Select) Having(cond Expression) *Select {
	c := s.clone()
	t := toCondition(cond)
	c.HavingConditions = &t
	return c
}

// Limit limits the number of rows.
func (s *Select) Limit(n uint64) *Select {
	c := s.clone()
	c.RowLimit = &n
	return c
}

// Offset skips the first n rows.
func (s *Select) Offset(n uint64) *Select {
	c := s.clone()
	c.RowOffset = &n
	return c
}

// Equals compares the single-column result of s, as a scalar sub-select.
func (s *Select) Equals(v any) Compare { return binary(OpEquals, s, v) }
