package ast

// Update is an UPDATE statement.
type Update struct {
	Table      Table
	Columns    []Column
	Values     []Expression
	Conditions *ConditionTree
	Returning  []Column
}

// UpdateTable starts an update of table.
func UpdateTable(table any) *Update {
	return &Update{Table: toTable(table)}
}

func (u *Update) clone() *Update {
	c := *u
	return &c
}

// Set assigns v to col. Strings name columns.
func (u *Update) Set(col any, v any) *Update {
	c := u.clone()
	c.Columns = appendClip(u.Columns, toColumn(col))
	c.Values = appendClip(u.Values, Expr(v))
	return c
}

// Where sets the filter.
func (u *Update) Where(cond Expression) *Update {
	c := u.clone()
	t := toCondition(cond)
	c.Conditions = &t
	return c
}

// WithReturning returns the given columns of the updated rows.
func (u *Update) WithReturning(cols ...any) *Update {
	c := u.clone()
	out := appendClip(u.Returning)
	for _, col := range cols {
		out = append(out, toColumn(col))
	}
	c.Returning = out
	return c
}

// Delete is a DELETE statement.
type Delete struct {
	Table      Table
	Conditions *ConditionTree
}

// DeleteFrom starts a delete from table.
func DeleteFrom(table any) *Delete {
	return &Delete{Table: toTable(table)}
}

// Where sets the filter.
func (d *Delete) Where(cond Expression) *Delete {
	c := *d
	t := toCondition(cond)
	c.Conditions = &t
	return &c
}

// UnionType joins two selects of a Union.
type UnionType uint8

// Union types.
const (
	UnionDistinct UnionType = iota
	UnionAll
)

// Union combines selects. Types[i] joins Selects[i] and Selects[i+1].
// Ordering and the row window apply to the combined result.
type Union struct {
	Selects   []*Select
	Types     []UnionType
	Ordering  Ordering
	RowLimit  *uint64
	RowOffset *uint64
}

// NewUnion starts a union with a single select.
func NewUnion(first *Select) *Union {
	return &Union{Selects: []*Select{first}}
}

func (u *Union) add(s *Select, t UnionType) *Union {
	c := *u
	c.Selects = appendClip(u.Selects, s)
	c.Types = appendClip(u.Types, t)
	return &c
}

// All appends s with UNION ALL.
func (u *Union) All(s *Select) *Union { return u.add(s, UnionAll) }

// Distinct appends s with UNION.
func (u *Union) Distinct(s *Select) *Union { return u.add(s, UnionDistinct) }

// OrderBy orders the combined result.
func (u *Union) OrderBy(defs ...any) *Union {
	c := *u
	c.Ordering = u.Ordering.Append(defs...)
	return &c
}

// Limit caps the combined result at n rows.
func (u *Union) Limit(n uint64) *Union {
	c := *u
	c.RowLimit = &n
	return &c
}

// Offset skips the first n rows of the combined result.
func (u *Union) Offset(n uint64) *Union {
	c := *u
	c.RowOffset = &n
	return &c
}
