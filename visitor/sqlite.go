package visitor

import (
	"github.com/syssam/sqlweave/ast"
	"github.com/syssam/sqlweave/dialect"
)

// SQLite renders queries for SQLite. Casts are dropped, as SQLite columns
// are dynamically typed.
type SQLite struct{}

var _ Visitor = SQLite{}

// Dialect implements Visitor.
func (SQLite) Dialect() string { return dialect.SQLite }

// Capabilities implements Visitor.
func (SQLite) Capabilities() *Capabilities { return sqliteCapabilities }

// Compile implements Visitor.
func (s SQLite) Compile(q ast.Query) (*CompiledQuery, error) { return compile(s, q) }

func (SQLite) castName(ast.CastType) string { return "" }

func (SQLite) encode(v ast.Value, hint ast.ColumnType) (ast.Value, error) {
	v, err := coerce(v, hint)
	if err != nil {
		return v, err
	}
	return flatten(v)
}

func (SQLite) function(b *builder, f ast.Function) error {
	switch f.Kind {
	case ast.FnAggregateToString:
		return b.wrap("GROUP_CONCAT(", f, ")")
	case ast.FnConcat:
		return b.concatOperator(f.Args)
	}
	return b.standardFunction(f)
}

func (SQLite) matches(b *builder, _ ast.Compare) error {
	return unsupported(b.caps.Dialect, "full-text search")
}
