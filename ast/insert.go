package ast

// OnConflict is the conflict policy of an insert.
type OnConflict uint8

// Conflict policies.
const (
	OnConflictError OnConflict = iota
	OnConflictDoNothing
)

// Insert is an INSERT statement with one or more rows.
type Insert struct {
	Table     Table
	Columns   []Column
	Rows      []Row
	Conflict  OnConflict
	Returning []Column
	multiRow  bool
}

// InsertInto starts a single-row insert. Add values with Value; an insert
// with no values inserts a row of defaults.
func InsertInto(table any) *Insert {
	return &Insert{Table: toTable(table)}
}

// MultiInsertInto starts a multi-row insert over the given columns. Add
// rows with Values. Strings name columns.
func MultiInsertInto(table any, cols ...any) *Insert {
	ins := &Insert{Table: toTable(table), multiRow: true}
	for _, c := range cols {
		ins.Columns = append(ins.Columns, toColumn(c))
	}
	return ins
}

func toColumn(v any) Column {
	switch v := v.(type) {
	case Column:
		return v
	case string:
		return Col(v)
	}
	return Column{}
}

func (i *Insert) clone() *Insert {
	c := *i
	return &c
}

// Value sets the value of one column of a single-row insert.
func (i *Insert) Value(col any, v any) *Insert {
	c := i.clone()
	c.Columns = appendClip(i.Columns, toColumn(col))
	var row Row
	if len(i.Rows) > 0 {
		row = i.Rows[0]
	}
	c.Rows = []Row{row.Push(v)}
	return c
}

// Values adds one row to a multi-row insert.
func (i *Insert) Values(vs ...any) *Insert {
	c := i.clone()
	c.Rows = appendClip(i.Rows, NewRow(vs...))
	return c
}

// OnConflictDoNothing skips rows that would violate a unique constraint.
func (i *Insert) OnConflictDoNothing() *Insert {
	c := i.clone()
	c.Conflict = OnConflictDoNothing
	return c
}

// WithReturning returns the given columns of the inserted rows. Strings
// name columns.
func (i *Insert) WithReturning(cols ...any) *Insert {
	c := i.clone()
	out := appendClip(i.Returning)
	for _, col := range cols {
		out = append(out, toColumn(col))
	}
	c.Returning = out
	return c
}

// IsMultiRow reports whether the insert was started with MultiInsertInto.
func (i *Insert) IsMultiRow() bool { return i.multiRow }
