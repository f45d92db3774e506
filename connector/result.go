package connector

import (
	"github.com/syssam/sqlweave"
	"github.com/syssam/sqlweave/ast"
)

// ResultSet is the fully read result of a query: the column names and the
// rows in the order the database returned them.
type ResultSet struct {
	columns      []string
	rows         [][]ast.Value
	index        map[string]int
	lastInsertID uint64
	hasInsertID  bool
}

// NewResultSet returns a result set over the given columns and rows.
// Every row must have one value per column.
func NewResultSet(columns []string, rows [][]ast.Value) *ResultSet {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		// The first of duplicate names wins, as in a SELECT a.id, b.id.
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}
	return &ResultSet{columns: columns, rows: rows, index: index}
}

// SetLastInsertID records the id generated by an insert.
func (rs *ResultSet) SetLastInsertID(id uint64) {
	rs.lastInsertID = id
	rs.hasInsertID = true
}

// LastInsertID returns the id generated by the insert that produced the
// set. The bool is false when the database reported none.
func (rs *ResultSet) LastInsertID() (uint64, bool) {
	return rs.lastInsertID, rs.hasInsertID
}

// Columns returns the column names.
func (rs *ResultSet) Columns() []string { return rs.columns }

// Len returns the number of rows.
func (rs *ResultSet) Len() int { return len(rs.rows) }

// IsEmpty reports whether the set has no rows.
func (rs *ResultSet) IsEmpty() bool { return len(rs.rows) == 0 }

// Rows returns every row.
func (rs *ResultSet) Rows() []ResultRow {
	out := make([]ResultRow, len(rs.rows))
	for i := range rs.rows {
		out[i] = ResultRow{set: rs, values: rs.rows[i]}
	}
	return out
}

// Row returns the i-th row.
func (rs *ResultSet) Row(i int) (ResultRow, error) {
	if i < 0 || i >= len(rs.rows) {
		return ResultRow{}, sqlweave.NewError(sqlweave.ResultIndexOutOfBounds{Index: i, Len: len(rs.rows)})
	}
	return ResultRow{set: rs, values: rs.rows[i]}, nil
}

// First returns the first row, if any.
func (rs *ResultSet) First() (ResultRow, bool) {
	if len(rs.rows) == 0 {
		return ResultRow{}, false
	}
	return ResultRow{set: rs, values: rs.rows[0]}, true
}

// Single returns the only row of the set. It fails with NotFound on an
// empty set and NotSingular when there is more than one row.
func (rs *ResultSet) Single() (ResultRow, error) {
	switch len(rs.rows) {
	case 0:
		return ResultRow{}, sqlweave.NewError(sqlweave.NotFound{})
	case 1:
		return ResultRow{set: rs, values: rs.rows[0]}, nil
	default:
		return ResultRow{}, sqlweave.NewError(sqlweave.NotSingular{Count: len(rs.rows)})
	}
}

// ResultRow is one row of a ResultSet.
type ResultRow struct {
	set    *ResultSet
	values []ast.Value
}

// Columns returns the column names of the row.
func (r ResultRow) Columns() []string {
	if r.set == nil {
		return nil
	}
	return r.set.columns
}

// Len returns the number of values.
func (r ResultRow) Len() int { return len(r.values) }

// At returns the value of the i-th column.
func (r ResultRow) At(i int) (ast.Value, error) {
	if i < 0 || i >= len(r.values) {
		return ast.Value{}, sqlweave.NewError(sqlweave.ResultIndexOutOfBounds{Index: i, Len: len(r.values)})
	}
	return r.values[i], nil
}

// Get returns the value of the named column.
func (r ResultRow) Get(name string) (ast.Value, error) {
	if r.set != nil {
		if i, ok := r.set.index[name]; ok && i < len(r.values) {
			return r.values[i], nil
		}
	}
	return ast.Value{}, sqlweave.NewError(sqlweave.ColumnNotFound{Column: name})
}

// Values returns the values in column order.
func (r ResultRow) Values() []ast.Value { return r.values }

// Map returns the values keyed by column name.
func (r ResultRow) Map() map[string]ast.Value {
	m := make(map[string]ast.Value, len(r.values))
	for i, name := range r.Columns() {
		if _, ok := m[name]; !ok && i < len(r.values) {
			m[name] = r.values[i]
		}
	}
	return m
}
