package visitor

import (
	"github.com/syssam/sqlweave/ast"
	"github.com/syssam/sqlweave/dialect"
)

// MySQL renders queries for MySQL and MariaDB.
type MySQL struct{}

var _ Visitor = MySQL{}

// Dialect implements Visitor.
func (MySQL) Dialect() string { return dialect.MySQL }

// Capabilities implements Visitor.
func (MySQL) Capabilities() *Capabilities { return mysqlCapabilities }

// Compile implements Visitor.
func (m MySQL) Compile(q ast.Query) (*CompiledQuery, error) { return compile(m, q) }

var mysqlCastNames = [...]string{
	ast.CastInt2:     "SIGNED",
	ast.CastInt4:     "SIGNED",
	ast.CastInt8:     "SIGNED",
	ast.CastFloat4:   "DECIMAL(65,30)",
	ast.CastFloat8:   "DECIMAL(65,30)",
	ast.CastDecimal:  "DECIMAL(65,30)",
	ast.CastBoolean:  "UNSIGNED",
	ast.CastUUID:     "CHAR(36)",
	ast.CastJSON:     "JSON",
	ast.CastJSONB:    "JSON",
	ast.CastDate:     "DATE",
	ast.CastTime:     "TIME",
	ast.CastDateTime: "DATETIME",
	ast.CastBytes:    "BINARY",
	ast.CastText:     "CHAR",
}

func (MySQL) castName(t ast.CastType) string { return castName(mysqlCastNames[:], t) }

func (MySQL) encode(v ast.Value, hint ast.ColumnType) (ast.Value, error) {
	v, err := coerce(v, hint)
	if err != nil {
		return v, err
	}
	return flatten(v)
}

func (MySQL) function(b *builder, f ast.Function) error {
	switch f.Kind {
	case ast.FnAggregateToString:
		return b.wrap("GROUP_CONCAT(", f, ")")
	case ast.FnJSONExtract:
		arg, err := oneArg(f)
		if err != nil {
			return err
		}
		b.write("JSON_EXTRACT(")
		if err := b.scalar(arg, ast.TypeUnknown); err != nil {
			return err
		}
		b.write(", ")
		if err := b.param(ast.Text(f.Path.String), ast.TypeText); err != nil {
			return err
		}
		b.write(")")
		return nil
	case ast.FnJSONExtractFirstArrayElem:
		return b.wrap("JSON_EXTRACT(", f, ", '$[0]')")
	case ast.FnJSONExtractLastArrayElem:
		arg, err := oneArg(f)
		if err != nil {
			return err
		}
		b.write("JSON_EXTRACT(")
		if err := b.scalar(arg, ast.TypeUnknown); err != nil {
			return err
		}
		b.write(", CONCAT('$[', JSON_LENGTH(")
		if err := b.scalar(arg, ast.TypeUnknown); err != nil {
			return err
		}
		b.write(") - 1, ']'))")
		return nil
	case ast.FnJSONUnquote:
		return b.wrap("JSON_UNQUOTE(", f, ")")
	case ast.FnTextSearch:
		return match(b, f.Args)
	case ast.FnTextSearchRelevance:
		if err := match(b, f.Args); err != nil {
			return err
		}
		b.write(" AGAINST (")
		if err := b.param(ast.Text(f.Query), ast.TypeText); err != nil {
			return err
		}
		b.write(" IN NATURAL LANGUAGE MODE)")
		return nil
	case ast.FnUUIDToBin:
		b.write("uuid_to_bin(uuid())")
		return nil
	case ast.FnUUIDToBinSwapped:
		b.write("uuid_to_bin(uuid(), 1)")
		return nil
	case ast.FnNativeUUID:
		b.write("uuid()")
		return nil
	}
	return b.standardFunction(f)
}

func match(b *builder, cols []ast.Expression) error {
	if len(cols) == 0 {
		return malformed("text search needs at least one column")
	}
	b.write("MATCH (")
	if err := b.args(cols); err != nil {
		return err
	}
	b.write(")")
	return nil
}

func (MySQL) matches(b *builder, c ast.Compare) error {
	not := c.Op == ast.OpNotMatches
	if not {
		b.write("(NOT ")
	}
	if err := b.scalar(c.Left, ast.TypeUnknown); err != nil {
		return err
	}
	b.write(" AGAINST (")
	if err := b.scalar(c.Right, ast.TypeText); err != nil {
		return err
	}
	b.write(" IN BOOLEAN MODE)")
	if not {
		b.write(")")
	}
	return nil
}
