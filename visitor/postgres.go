package visitor

import (
	"github.com/syssam/sqlweave/ast"
	"github.com/syssam/sqlweave/dialect"
)

// Postgres renders queries for PostgreSQL. Parameters are numbered $1, $2
// and arrays, JSON and UUIDs are bound natively.
type Postgres struct{}

var _ Visitor = Postgres{}

// Dialect implements Visitor.
func (Postgres) Dialect() string { return dialect.Postgres }

// Capabilities implements Visitor.
func (Postgres) Capabilities() *Capabilities { return postgresCapabilities }

// Compile implements Visitor.
func (p Postgres) Compile(q ast.Query) (*CompiledQuery, error) { return compile(p, q) }

var postgresCastNames = [...]string{
	ast.CastInt2:     "int2",
	ast.CastInt4:     "int4",
	ast.CastInt8:     "int8",
	ast.CastFloat4:   "float4",
	ast.CastFloat8:   "float8",
	ast.CastDecimal:  "numeric",
	ast.CastBoolean:  "boolean",
	ast.CastUUID:     "uuid",
	ast.CastJSON:     "json",
	ast.CastJSONB:    "jsonb",
	ast.CastDate:     "date",
	ast.CastTime:     "time",
	ast.CastDateTime: "timestamptz",
	ast.CastBytes:    "bytea",
	ast.CastText:     "text",
}

func (Postgres) castName(t ast.CastType) string { return castName(postgresCastNames[:], t) }

func (Postgres) encode(v ast.Value, hint ast.ColumnType) (ast.Value, error) {
	return coerce(v, hint)
}

func (Postgres) function(b *builder, f ast.Function) error {
	switch f.Kind {
	case ast.FnAggregateToString:
		return b.wrap("ARRAY_TO_STRING(ARRAY_AGG(", f, "), ',')")
	case ast.FnJSONExtract:
		arg, err := oneArg(f)
		if err != nil {
			return err
		}
		b.write("(")
		if err := b.scalar(arg, ast.TypeUnknown); err != nil {
			return err
		}
		// Path segments are bound one by one in an ARRAY[] literal. The
		// '{a,b}' string form breaks on escaped characters.
		b.write("#>ARRAY[")
		if err := b.list(len(f.Path.Array), ", ", func(i int) error {
			return b.param(ast.Text(f.Path.Array[i]), ast.TypeText)
		}); err != nil {
			return err
		}
		b.write("]::text[])")
		return nil
	case ast.FnJSONExtractFirstArrayElem:
		return b.wrap("(", f, "->0)")
	case ast.FnJSONExtractLastArrayElem:
		return b.wrap("(", f, "->-1)")
	case ast.FnJSONUnquote:
		return b.wrap("(", f, "#>>ARRAY[]::text[])")
	case ast.FnTextSearch:
		return tsvector(b, f.Args)
	case ast.FnTextSearchRelevance:
		b.write("ts_rank(")
		if err := tsvector(b, f.Args); err != nil {
			return err
		}
		b.write(", to_tsquery(")
		if err := b.param(ast.Text(f.Query), ast.TypeText); err != nil {
			return err
		}
		b.write("))")
		return nil
	case ast.FnAnyOperator:
		return b.wrap("ANY(", f, ")")
	case ast.FnAllOperator:
		return b.wrap("ALL(", f, ")")
	case ast.FnRowToJSON:
		if f.Table == nil {
			return malformed("row_to_json needs a table")
		}
		b.write("ROW_TO_JSON(")
		b.tableRef(*f.Table)
		if f.Pretty {
			b.write(", true")
		}
		b.write(")")
		return nil
	}
	return b.standardFunction(f)
}

func tsvector(b *builder, cols []ast.Expression) error {
	if len(cols) == 0 {
		return malformed("text search needs at least one column")
	}
	b.write("to_tsvector(concat_ws(' ', ")
	if err := b.args(cols); err != nil {
		return err
	}
	b.write("))")
	return nil
}

func (Postgres) matches(b *builder, c ast.Compare) error {
	not := c.Op == ast.OpNotMatches
	if not {
		b.write("(NOT ")
	}
	if err := b.scalar(c.Left, ast.TypeUnknown); err != nil {
		return err
	}
	b.write(" @@ to_tsquery(")
	if err := b.scalar(c.Right, ast.TypeText); err != nil {
		return err
	}
	b.write(")")
	if not {
		b.write(")")
	}
	return nil
}
