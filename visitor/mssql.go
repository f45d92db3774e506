package visitor

import (
	"github.com/syssam/sqlweave/ast"
	"github.com/syssam/sqlweave/dialect"
)

// MSSQL renders queries for Microsoft SQL Server. Parameters are named
// @P1, @P2 and rows are limited with TOP or OFFSET ... FETCH.
type MSSQL struct{}

var _ Visitor = MSSQL{}

// Dialect implements Visitor.
func (MSSQL) Dialect() string { return dialect.MSSQL }

// Capabilities implements Visitor.
func (MSSQL) Capabilities() *Capabilities { return mssqlCapabilities }

// Compile implements Visitor.
func (m MSSQL) Compile(q ast.Query) (*CompiledQuery, error) { return compile(m, q) }

var mssqlCastNames = [...]string{
	ast.CastInt2:     "smallint",
	ast.CastInt4:     "int",
	ast.CastInt8:     "bigint",
	ast.CastFloat4:   "real",
	ast.CastFloat8:   "float",
	ast.CastDecimal:  "numeric",
	ast.CastBoolean:  "bit",
	ast.CastUUID:     "uniqueidentifier",
	ast.CastJSON:     "nvarchar(max)",
	ast.CastJSONB:    "nvarchar(max)",
	ast.CastDate:     "date",
	ast.CastTime:     "time",
	ast.CastDateTime: "datetime2",
	ast.CastBytes:    "varbinary(max)",
	ast.CastText:     "nvarchar(max)",
}

func (MSSQL) castName(t ast.CastType) string { return castName(mssqlCastNames[:], t) }

func (MSSQL) encode(v ast.Value, hint ast.ColumnType) (ast.Value, error) {
	v, err := coerce(v, hint)
	if err != nil {
		return v, err
	}
	return flatten(v)
}

func (MSSQL) function(b *builder, f ast.Function) error {
	if f.Kind == ast.FnAggregateToString {
		return b.wrap("STRING_AGG(", f, ", ',')")
	}
	return b.standardFunction(f)
}

func (MSSQL) matches(b *builder, _ ast.Compare) error {
	return unsupported(b.caps.Dialect, "full-text search")
}
