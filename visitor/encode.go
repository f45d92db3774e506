package visitor

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/sqlweave"
	"github.com/syssam/sqlweave/ast"
)

// coerce applies the conversions that follow from the destination column
// type alone. They are the same on every dialect.
func coerce(v ast.Value, hint ast.ColumnType) (ast.Value, error) {
	switch hint {
	case ast.TypeInt2, ast.TypeInt4, ast.TypeInt8:
		if i, ok := v.AsInt64(); ok {
			return v, checkRange(i, hint)
		}
		if v.Kind() == ast.KindBoolean {
			if b, _ := v.AsBool(); b {
				return ast.Int(1), nil
			}
			return ast.Int(0), nil
		}
	case ast.TypeText:
		if i, ok := v.AsInt64(); ok {
			return ast.Text(strconv.FormatInt(i, 10)), nil
		}
	case ast.TypeUUID:
		if v.Kind() == ast.KindText {
			s, _ := v.AsString()
			u, err := uuid.Parse(s)
			if err != nil {
				return v, conversion("%q is not a UUID", s)
			}
			return ast.UUID(u), nil
		}
	case ast.TypeEnum:
		if v.Kind() == ast.KindText {
			s, _ := v.AsString()
			return ast.Enum(s), nil
		}
	case ast.TypeJSON:
		if v.Kind() == ast.KindText {
			raw, ok := v.AsJSON()
			if !ok {
				return v, conversion("text is not a valid JSON document")
			}
			return ast.JSON(raw), nil
		}
	case ast.TypeBoolean:
		if v.Kind() == ast.KindInteger {
			if b, ok := v.AsBool(); ok {
				return ast.Bool(b), nil
			}
		}
	}
	return v, nil
}

func checkRange(i int64, hint ast.ColumnType) error {
	var lo, hi int64
	switch hint {
	case ast.TypeInt2:
		lo, hi = math.MinInt16, math.MaxInt16
	case ast.TypeInt4:
		lo, hi = math.MinInt32, math.MaxInt32
	default:
		return nil
	}
	if i < lo || i > hi {
		return sqlweave.NewError(sqlweave.ValueOutOfRange{
			Message: fmt.Sprintf("%d does not fit in a %s column", i, hint),
		})
	}
	return nil
}

// flatten turns the types a database has no native column for into text:
// arrays and JSON become JSON documents and UUIDs their canonical form.
func flatten(v ast.Value) (ast.Value, error) {
	switch v.Kind() {
	case ast.KindArray:
		doc, err := jsonOf(v)
		if err != nil {
			return v, err
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return v, conversion("encoding array: %v", err)
		}
		return ast.Text(string(raw)), nil
	case ast.KindJSON:
		raw, _ := v.AsJSON()
		return ast.Text(string(raw)), nil
	case ast.KindUUID:
		u, _ := v.AsUUID()
		return ast.Text(u.String()), nil
	}
	return v, nil
}

// jsonOf returns a JSON-encodable form of v. Decimals keep their exact
// digits.
func jsonOf(v ast.Value) (any, error) {
	switch v.Kind() {
	case ast.KindNull:
		return nil, nil
	case ast.KindInteger:
		i, _ := v.AsInt64()
		return i, nil
	case ast.KindReal:
		d, _ := v.AsDecimal()
		return json.Number(d.String()), nil
	case ast.KindText, ast.KindEnum, ast.KindChar:
		s, _ := v.AsString()
		return s, nil
	case ast.KindBoolean:
		b, _ := v.AsBool()
		return b, nil
	case ast.KindBytes:
		b, _ := v.AsBytes()
		return b, nil
	case ast.KindUUID:
		u, _ := v.AsUUID()
		return u.String(), nil
	case ast.KindJSON:
		raw, _ := v.AsJSON()
		return raw, nil
	case ast.KindDate:
		t, _ := v.AsTime()
		return t.Format(time.DateOnly), nil
	case ast.KindTime:
		t, _ := v.AsTime()
		return t.Format("15:04:05.999999"), nil
	case ast.KindDateTime:
		t, _ := v.AsTime()
		return t.Format(time.RFC3339Nano), nil
	case ast.KindArray:
		elems, _ := v.AsArray()
		out := make([]any, len(elems))
		for i, e := range elems {
			j, err := jsonOf(e)
			if err != nil {
				return nil, err
			}
			out[i] = j
		}
		return out, nil
	}
	return nil, conversion("cannot encode %s as JSON", v.Kind())
}

func conversion(format string, args ...any) error {
	return sqlweave.NewError(sqlweave.ConversionError{Message: fmt.Sprintf(format, args...)})
}
