package sql

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/syssam/sqlweave"
	"github.com/syssam/sqlweave/ast"
	"github.com/syssam/sqlweave/dialect"
	"github.com/syssam/sqlweave/dialect/sql/sqlerr"
)

// Args converts compiled parameters into database/sql arguments for the
// given dialect.
func Args(name string, params []ast.Value) ([]any, error) {
	args := make([]any, len(params))
	for i, p := range params {
		a, err := Arg(name, p)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i+1, err)
		}
		args[i] = a
	}
	return args, nil
}

// Arg converts one Value into a database/sql argument. Decimals keep their
// digits except on SQLite, which has no exact numeric storage.
func Arg(name string, v ast.Value) (any, error) {
	switch v.Kind() {
	case ast.KindNull:
		return nil, nil
	case ast.KindInteger:
		i, _ := v.AsInt64()
		return i, nil
	case ast.KindReal:
		d, _ := v.AsDecimal()
		if name == dialect.SQLite {
			return d.InexactFloat64(), nil
		}
		return d, nil
	case ast.KindText, ast.KindEnum, ast.KindChar:
		s, _ := v.AsString()
		return s, nil
	case ast.KindBoolean:
		b, _ := v.AsBool()
		return b, nil
	case ast.KindBytes:
		b, _ := v.AsBytes()
		return b, nil
	case ast.KindJSON:
		raw, _ := v.AsJSON()
		return string(raw), nil
	case ast.KindUUID:
		u, _ := v.AsUUID()
		return u.String(), nil
	case ast.KindDate:
		t, _ := v.AsTime()
		return t.Format(time.DateOnly), nil
	case ast.KindTime:
		t, _ := v.AsTime()
		return t.Format("15:04:05.999999"), nil
	case ast.KindDateTime:
		t, _ := v.AsTime()
		return t, nil
	case ast.KindArray:
		if name != dialect.Postgres {
			return nil, conversion("arrays are not supported as parameters on %s", name)
		}
		return pgArray(v)
	}
	return nil, conversion("unsupported value kind %s", v.Kind())
}

// pgArray picks the pq array type matching the element kinds. Mixed or
// non-scalar elements are sent in text form and cast by the server.
func pgArray(v ast.Value) (any, error) {
	elems, _ := v.AsArray()
	kind := ast.KindNull
	for _, e := range elems {
		switch {
		case e.IsNull():
		case kind == ast.KindNull:
			kind = e.Kind()
		case kind != e.Kind():
			kind = ast.KindText
		}
	}
	switch kind {
	case ast.KindInteger:
		out := make(pq.Int64Array, len(elems))
		for i, e := range elems {
			if e.IsNull() {
				return textArray(elems)
			}
			out[i], _ = e.AsInt64()
		}
		return out, nil
	case ast.KindBoolean:
		out := make(pq.BoolArray, len(elems))
		for i, e := range elems {
			if e.IsNull() {
				return textArray(elems)
			}
			out[i], _ = e.AsBool()
		}
		return out, nil
	case ast.KindBytes:
		out := make(pq.ByteaArray, len(elems))
		for i, e := range elems {
			out[i], _ = e.AsBytes()
		}
		return out, nil
	}
	return textArray(elems)
}

func textArray(elems []ast.Value) (any, error) {
	out := make([]any, len(elems))
	for i, e := range elems {
		switch e.Kind() {
		case ast.KindNull:
			out[i] = nil
		case ast.KindArray, ast.KindBytes:
			return nil, conversion("nested %s values are not supported in arrays", e.Kind())
		case ast.KindDateTime:
			t, _ := e.AsTime()
			out[i] = t.Format(time.RFC3339Nano)
		case ast.KindReal:
			d, _ := e.AsDecimal()
			out[i] = d.String()
		default:
			a, err := Arg(dialect.Postgres, e)
			if err != nil {
				return nil, err
			}
			out[i] = fmt.Sprint(a)
		}
	}
	return pq.GenericArray{A: out}, nil
}

// ReadAll reads the remaining rows, decodes every column and closes rows.
func ReadAll(rows dialect.Rows) (columns []string, values [][]ast.Value, err error) {
	defer func() {
		if cerr := rows.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("dialect/sql: closing rows: %w", sqlerr.Map(cerr))
		}
	}()
	if columns, err = rows.Columns(); err != nil {
		return nil, nil, fmt.Errorf("dialect/sql: columns: %w", sqlerr.Map(err))
	}
	types, err := rows.DatabaseTypes()
	if err != nil {
		return nil, nil, fmt.Errorf("dialect/sql: column types: %w", sqlerr.Map(err))
	}
	dest := make([]any, len(columns))
	for rows.Next() {
		raw := make([]any, len(columns))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("dialect/sql: scan: %w", sqlerr.Map(err))
		}
		row := make([]ast.Value, len(columns))
		for i, src := range raw {
			if row[i], err = Decode(types[i], src); err != nil {
				return nil, nil, fmt.Errorf("column %q: %w", columns[i], err)
			}
		}
		values = append(values, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("dialect/sql: rows: %w", sqlerr.Map(err))
	}
	return columns, values, nil
}

// Decode converts a value scanned into an *any back into a Value. The
// database type name, as reported by sql.ColumnType.DatabaseTypeName,
// selects the variant; an empty name falls back to the Go type of src.
func Decode(dbType string, src any) (ast.Value, error) {
	if src == nil {
		return ast.Null(), nil
	}
	t := strings.ToUpper(dbType)
	if i := strings.IndexByte(t, '('); i > 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.TrimPrefix(t, "UNSIGNED ")
	switch t {
	case "INT2", "INT4", "INT8", "SMALLINT", "INT", "INTEGER", "BIGINT", "TINYINT", "MEDIUMINT", "SERIAL", "BIGSERIAL", "YEAR":
		return decodeInt(dbType, src)
	case "NUMERIC", "DECIMAL", "FLOAT4", "FLOAT8", "REAL", "DOUBLE", "DOUBLE PRECISION", "FLOAT", "MONEY", "SMALLMONEY":
		return decodeReal(dbType, src)
	case "BOOL", "BOOLEAN", "BIT":
		return decodeBool(dbType, src)
	case "UUID", "UNIQUEIDENTIFIER":
		return decodeUUID(dbType, src)
	case "JSON", "JSONB":
		return decodeJSON(dbType, src)
	case "DATE":
		tm, err := decodeTime(dbType, src, time.DateOnly)
		return ast.Date(tm), err
	case "TIME", "TIMETZ":
		tm, err := decodeTime(dbType, src, "15:04:05.999999999", "15:04:05.999999999Z07:00", "15:04:05.999999999Z07")
		return ast.Time(tm), err
	case "TIMESTAMP", "TIMESTAMPTZ", "DATETIME", "DATETIME2", "DATETIMEOFFSET", "SMALLDATETIME":
		tm, err := decodeTime(dbType, src, time.RFC3339Nano, "2006-01-02 15:04:05.999999999Z07:00", "2006-01-02 15:04:05.999999999Z07", "2006-01-02 15:04:05.999999999")
		return ast.DateTime(tm), err
	case "BYTEA", "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BINARY", "VARBINARY", "IMAGE":
		if b, ok := src.([]byte); ok {
			return ast.Bytes(append([]byte(nil), b...)), nil
		}
	case "ENUM":
		return ast.Enum(asText(src)), nil
	case "_INT2", "_INT4", "_INT8":
		var a pq.Int64Array
		if err := a.Scan(src); err != nil {
			return ast.Null(), mismatch(dbType, src)
		}
		vs := make([]ast.Value, len(a))
		for i, x := range a {
			vs[i] = ast.Int(x)
		}
		return ast.Array(vs...), nil
	case "_BOOL":
		var a pq.BoolArray
		if err := a.Scan(src); err != nil {
			return ast.Null(), mismatch(dbType, src)
		}
		vs := make([]ast.Value, len(a))
		for i, x := range a {
			vs[i] = ast.Bool(x)
		}
		return ast.Array(vs...), nil
	case "_TEXT", "_VARCHAR", "_BPCHAR", "_NUMERIC", "_FLOAT4", "_FLOAT8", "_UUID":
		var a pq.StringArray
		if err := a.Scan(src); err != nil {
			return ast.Null(), mismatch(dbType, src)
		}
		elem := strings.TrimPrefix(t, "_")
		vs := make([]ast.Value, len(a))
		for i, x := range a {
			v, err := Decode(elem, x)
			if err != nil {
				return ast.Null(), err
			}
			vs[i] = v
		}
		return ast.Array(vs...), nil
	}
	return decodeAny(src), nil
}

// decodeAny maps a driver value by its Go type.
func decodeAny(src any) ast.Value {
	switch v := src.(type) {
	case int64:
		return ast.Int(v)
	case float64:
		return ast.Float(v)
	case bool:
		return ast.Bool(v)
	case time.Time:
		return ast.DateTime(v)
	case []byte:
		return ast.Text(string(v))
	case string:
		return ast.Text(v)
	}
	return ast.Text(fmt.Sprint(src))
}

func decodeInt(dbType string, src any) (ast.Value, error) {
	switch v := src.(type) {
	case int64:
		return ast.Int(v), nil
	case bool:
		if v {
			return ast.Int(1), nil
		}
		return ast.Int(0), nil
	case uint64:
		if v > 1<<63-1 {
			return ast.Null(), sqlweave.NewError(sqlweave.ValueOutOfRange{Message: fmt.Sprintf("unsigned %d does not fit in a 64-bit integer", v)})
		}
		return ast.Int(int64(v)), nil
	case []byte, string:
		i, err := strconv.ParseInt(asText(v), 10, 64)
		if err != nil {
			return ast.Null(), mismatch(dbType, src)
		}
		return ast.Int(i), nil
	}
	return ast.Null(), mismatch(dbType, src)
}

func decodeReal(dbType string, src any) (ast.Value, error) {
	switch v := src.(type) {
	case float64:
		return ast.Float(v), nil
	case float32:
		return ast.Float(float64(v)), nil
	case int64:
		return ast.Real(decimal.NewFromInt(v)), nil
	case []byte, string:
		d, err := decimal.NewFromString(strings.TrimPrefix(asText(v), "$"))
		if err != nil {
			return ast.Null(), mismatch(dbType, src)
		}
		return ast.Real(d), nil
	}
	return ast.Null(), mismatch(dbType, src)
}

func decodeBool(dbType string, src any) (ast.Value, error) {
	switch v := src.(type) {
	case bool:
		return ast.Bool(v), nil
	case int64:
		return ast.Bool(v != 0), nil
	case []byte:
		if len(v) == 1 && v[0] <= 1 {
			return ast.Bool(v[0] == 1), nil
		}
	}
	if b, err := strconv.ParseBool(asText(src)); err == nil {
		return ast.Bool(b), nil
	}
	return ast.Null(), mismatch(dbType, src)
}

func decodeUUID(dbType string, src any) (ast.Value, error) {
	if b, ok := src.([]byte); ok && len(b) == 16 {
		u, err := uuid.FromBytes(b)
		if err != nil {
			return ast.Null(), mismatch(dbType, src)
		}
		return ast.UUID(u), nil
	}
	u, err := uuid.Parse(asText(src))
	if err != nil {
		return ast.Null(), mismatch(dbType, src)
	}
	return ast.UUID(u), nil
}

func decodeJSON(dbType string, src any) (ast.Value, error) {
	raw := []byte(asText(src))
	if !json.Valid(raw) {
		return ast.Null(), mismatch(dbType, src)
	}
	return ast.JSON(raw), nil
}

func decodeTime(dbType string, src any, layouts ...string) (time.Time, error) {
	if t, ok := src.(time.Time); ok {
		return t, nil
	}
	s := asText(src)
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, mismatch(dbType, src)
}

func asText(src any) string {
	switch v := src.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	}
	return fmt.Sprint(src)
}

func mismatch(dbType string, src any) error {
	return conversion("cannot decode %T as %s", src, dbType)
}

func conversion(format string, args ...any) error {
	return sqlweave.NewError(sqlweave.ConversionError{Message: fmt.Sprintf(format, args...)})
}
