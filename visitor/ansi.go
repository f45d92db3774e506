package visitor

import (
	"github.com/syssam/sqlweave/ast"
	"github.com/syssam/sqlweave/dialect"
)

// ANSI renders standard SQL. It has no driver and is used to inspect
// queries independently of a database.
type ANSI struct{}

var _ Visitor = ANSI{}

// Dialect implements Visitor.
func (ANSI) Dialect() string { return dialect.ANSI }

// Capabilities implements Visitor.
func (ANSI) Capabilities() *Capabilities { return ansiCapabilities }

// Compile implements Visitor.
func (a ANSI) Compile(q ast.Query) (*CompiledQuery, error) { return compile(a, q) }

var ansiCastNames = [...]string{
	ast.CastInt2:     "SMALLINT",
	ast.CastInt4:     "INTEGER",
	ast.CastInt8:     "BIGINT",
	ast.CastFloat4:   "REAL",
	ast.CastFloat8:   "DOUBLE PRECISION",
	ast.CastDecimal:  "DECIMAL",
	ast.CastBoolean:  "BOOLEAN",
	ast.CastUUID:     "CHAR(36)",
	ast.CastJSON:     "JSON",
	ast.CastJSONB:    "JSON",
	ast.CastDate:     "DATE",
	ast.CastTime:     "TIME",
	ast.CastDateTime: "TIMESTAMP",
	ast.CastBytes:    "VARBINARY",
	ast.CastText:     "VARCHAR",
}

func (ANSI) castName(t ast.CastType) string { return castName(ansiCastNames[:], t) }

func (ANSI) encode(v ast.Value, hint ast.ColumnType) (ast.Value, error) {
	v, err := coerce(v, hint)
	if err != nil {
		return v, err
	}
	return flatten(v)
}

func (ANSI) function(b *builder, f ast.Function) error {
	if f.Kind == ast.FnConcat {
		return b.concatOperator(f.Args)
	}
	return b.standardFunction(f)
}

func (ANSI) matches(b *builder, _ ast.Compare) error {
	return unsupported(b.caps.Dialect, "full-text search")
}
