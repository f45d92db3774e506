package visitor

import (
	"fmt"

	"github.com/syssam/sqlweave"
	"github.com/syssam/sqlweave/ast"
	"github.com/syssam/sqlweave/dialect"
)

// CompiledQuery is SQL text together with its bind parameters, in
// placeholder order.
type CompiledQuery struct {
	SQL    string
	Params []ast.Value
}

// Visitor renders an ast.Query as SQL for one dialect. Implementations are
// stateless and safe for concurrent use; compiling the same query twice
// yields identical output.
type Visitor interface {
	// Dialect returns the dialect name, one of the dialect package constants.
	Dialect() string
	// Compile renders q. Unsupported constructs fail with UnsupportedFeature,
	// structurally invalid queries with MalformedQuery.
	Compile(q ast.Query) (*CompiledQuery, error)
	// Capabilities returns the dialect capability table.
	Capabilities() *Capabilities
}

// New returns the visitor for the named dialect. Aliases accepted by
// dialect.Normalize are allowed.
func New(name string) (Visitor, error) {
	switch dialect.Normalize(name) {
	case dialect.Postgres:
		return Postgres{}, nil
	case dialect.MySQL:
		return MySQL{}, nil
	case dialect.SQLite:
		return SQLite{}, nil
	case dialect.MSSQL:
		return MSSQL{}, nil
	case dialect.ANSI:
		return ANSI{}, nil
	}
	return nil, sqlweave.NewError(sqlweave.InvalidConnectionArguments{
		Message: fmt.Sprintf("unknown dialect %q", name),
	})
}

// renderer is implemented by every dialect. The shared walker calls it for
// the parts of a query whose spelling differs between databases.
type renderer interface {
	Visitor
	// function renders f. Kinds a dialect spells the standard way are
	// delegated to builder.standardFunction.
	function(b *builder, f ast.Function) error
	// castName returns the target type name of a cast.
	castName(t ast.CastType) string
	// encode converts a parameter to its wire representation, using the
	// destination column type when one is known.
	encode(v ast.Value, hint ast.ColumnType) (ast.Value, error)
	// matches renders a full-text MATCHES or NOT MATCHES comparison.
	matches(b *builder, c ast.Compare) error
}

func compile(r renderer, q ast.Query) (*CompiledQuery, error) {
	b := newBuilder(r)
	var err error
	switch q := q.(type) {
	case *ast.Select:
		err = b.selectStmt(q)
	case *ast.Insert:
		err = b.insertStmt(q)
	case *ast.Update:
		err = b.updateStmt(q)
	case *ast.Delete:
		err = b.deleteStmt(q)
	case *ast.Union:
		err = b.unionStmt(q)
	case ast.RawQuery:
		err = b.rawQuery(q)
	default:
		err = malformed("cannot compile %T", q)
	}
	if err != nil {
		return nil, err
	}
	return &CompiledQuery{SQL: b.String(), Params: b.params}, nil
}

func unsupported(d string, feature any) error {
	return sqlweave.NewError(sqlweave.UnsupportedFeature{Dialect: d, Feature: fmt.Sprint(feature)})
}

func malformed(format string, args ...any) error {
	return sqlweave.NewError(sqlweave.MalformedQuery{Message: fmt.Sprintf(format, args...)})
}
