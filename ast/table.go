package ast

// Table references a table or a derived table.
type Table struct {
	Name string
	// Database qualifies the name with a database or schema.
	Database string
	Alias    string
	// Query makes the table a derived table. Name is ignored.
	Query *Select
}

// NewTable returns a table reference.
func NewTable(name string) Table { return Table{Name: name} }

// TableFromSelect returns a derived table.
func TableFromSelect(sel *Select, alias string) Table {
	return Table{Query: sel, Alias: alias}
}

// InDatabase returns a copy of t qualified by database or schema db.
func (t Table) InDatabase(db string) Table {
	t.Database = db
	return t
}

// As returns a copy of t aliased as alias.
func (t Table) As(alias string) Table {
	t.Alias = alias
	return t
}

// Col returns a column of t.
func (t Table) Col(name string) Column { return Col(name).Of(t) }

// Star returns t.*.
func (t Table) Star() Asterisk { return Asterisk{Table: &t} }

// toTable accepts a table name or a Table.
func toTable(v any) Table {
	switch v := v.(type) {
	case Table:
		return v
	case *Table:
		return *v
	case string:
		return NewTable(v)
	case *Select:
		return TableFromSelect(v, "")
	}
	return Table{}
}

// JoinKind is the type of a join.
type JoinKind uint8

// Join kinds.
const (
	InnerJoin JoinKind = iota + 1
	LeftJoin
	RightJoin
	FullJoin
)

// String returns the SQL keyword of the join.
func (k JoinKind) String() string {
	switch k {
	case InnerJoin:
		return "INNER JOIN"
	case LeftJoin:
		return "LEFT JOIN"
	case RightJoin:
		return "RIGHT JOIN"
	case FullJoin:
		return "FULL JOIN"
	}
	return "JOIN"
}

// Join joins a table on a condition.
type Join struct {
	Kind  JoinKind
	Table Table
	On    ConditionTree
}
