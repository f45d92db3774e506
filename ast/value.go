package ast

import (
	"bytes"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/syssam/sqlweave"
)

// Kind identifies the active variant of a Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindInteger
	KindReal
	KindText
	KindBoolean
	KindBytes
	KindChar
	KindEnum
	KindArray
	KindJSON
	KindUUID
	KindDate
	KindTime
	KindDateTime
)

var kindNames = [...]string{
	KindNull:     "null",
	KindInteger:  "integer",
	KindReal:     "real",
	KindText:     "text",
	KindBoolean:  "boolean",
	KindBytes:    "bytes",
	KindChar:     "char",
	KindEnum:     "enum",
	KindArray:    "array",
	KindJSON:     "json",
	KindUUID:     "uuid",
	KindDate:     "date",
	KindTime:     "time",
	KindDateTime: "datetime",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a database value. Exactly one variant is active, reported by Kind.
// The zero Value is NULL.
type Value struct {
	kind Kind
	i    int64 // Integer, Char, Boolean
	s    string
	d    decimal.Decimal
	b    []byte // Bytes, JSON
	t    time.Time
	u    uuid.UUID
	arr  []Value
}

// Null returns the NULL value.
func Null() Value { return Value{} }

// Int returns an integer value.
func Int[T ~int | ~int8 | ~int16 | ~int32 | ~int64](v T) Value {
	return Value{kind: KindInteger, i: int64(v)}
}

// Real returns a decimal value.
func Real(d decimal.Decimal) Value { return Value{kind: KindReal, d: d} }

// Float returns a decimal value holding f. NaN and infinities cannot be
// represented and yield NULL; use ValueOf to get an error instead.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Real(decimal.NewFromFloat(f))
}

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	v := Value{kind: KindBoolean}
	if b {
		v.i = 1
	}
	return v
}

// Bytes returns a binary value.
func Bytes(b []byte) Value { return Value{kind: KindBytes, b: b} }

// Char returns a single character value.
func Char(r rune) Value { return Value{kind: KindChar, i: int64(r)} }

// Enum returns an enum variant value.
func Enum(s string) Value { return Value{kind: KindEnum, s: s} }

// Array returns an array value.
func Array(vs ...Value) Value {
	if vs == nil {
		vs = []Value{}
	}
	return Value{kind: KindArray, arr: vs}
}

// JSON returns a JSON value holding the given document.
func JSON(raw json.RawMessage) Value { return Value{kind: KindJSON, b: raw} }

// JSONOf marshals v and returns it as a JSON value.
func JSONOf(v any) (Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Null(), conversionErr("marshal json: %v", err)
	}
	return JSON(raw), nil
}

// UUID returns a UUID value.
func UUID(u uuid.UUID) Value { return Value{kind: KindUUID, u: u} }

// Date returns a date value. Only the calendar date of t is meaningful.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Time returns a time-of-day value. Only the clock of t is meaningful.
func Time(t time.Time) Value {
	return Value{kind: KindTime, t: time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)}
}

// DateTime returns a timestamp value, normalized to UTC.
func DateTime(t time.Time) Value { return Value{kind: KindDateTime, t: t.UTC()} }

// ValueOf converts a Go value into a Value.
//
// Supported inputs are nil, Value, all integer and float widths, string,
// bool, []byte, time.Time, uuid.UUID, decimal.Decimal, json.RawMessage,
// driver.Valuer, pointers to any of these, and slices of any of these.
func ValueOf(v any) (Value, error) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return Null(), nil
	}
	switch v := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case int:
		return Int(v), nil
	case int8:
		return Int(v), nil
	case int16:
		return Int(v), nil
	case int32:
		return Int(v), nil
	case int64:
		return Int(v), nil
	case uint:
		return fromUint(uint64(v))
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		return fromUint(v)
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	case string:
		return Text(v), nil
	case bool:
		return Bool(v), nil
	case []byte:
		return Bytes(v), nil
	case json.RawMessage:
		return JSON(v), nil
	case time.Time:
		return DateTime(v), nil
	case uuid.UUID:
		return UUID(v), nil
	case decimal.Decimal:
		return Real(v), nil
	case []Value:
		return Array(v...), nil
	case driver.Valuer:
		dv, err := v.Value()
		if err != nil {
			return Null(), conversionErr("%T: %v", v, err)
		}
		return ValueOf(dv)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		return ValueOf(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		vs := make([]Value, rv.Len())
		for i := range vs {
			ev, err := ValueOf(rv.Index(i).Interface())
			if err != nil {
				return Null(), err
			}
			vs[i] = ev
		}
		return Array(vs...), nil
	case reflect.String:
		return Text(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	}
	return Null(), conversionErr("unsupported type %T", v)
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Null(), sqlweave.NewError(sqlweave.ValueOutOfRange{Message: fmt.Sprintf("unsigned integer %d does not fit in 64-bit signed integer", u)})
	}
	return Int(int64(u)), nil
}

func fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null(), conversionErr("float %v cannot be represented as a decimal", f)
	}
	return Float(f), nil
}

func conversionErr(format string, args ...any) error {
	return sqlweave.NewError(sqlweave.ConversionError{Message: fmt.Sprintf(format, args...)})
}

// Kind returns the active variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsInt64 returns the integer held by v.
func (v Value) AsInt64() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return v.i, true
}

// AsDecimal returns v as a decimal. Integers are widened.
func (v Value) AsDecimal() (decimal.Decimal, bool) {
	switch v.kind {
	case KindReal:
		return v.d, true
	case KindInteger:
		return decimal.NewFromInt(v.i), true
	}
	return decimal.Decimal{}, false
}

// AsFloat64 returns v as a float64. Integers are widened.
func (v Value) AsFloat64() (float64, bool) {
	d, ok := v.AsDecimal()
	if !ok {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// AsString returns the string held by a text, enum or char value.
func (v Value) AsString() (string, bool) {
	switch v.kind {
	case KindText, KindEnum:
		return v.s, true
	case KindChar:
		return string(rune(v.i)), true
	}
	return "", false
}

// AsChar returns the character held by v. Single-character text is accepted.
func (v Value) AsChar() (rune, bool) {
	switch v.kind {
	case KindChar:
		return rune(v.i), true
	case KindText:
		if rs := []rune(v.s); len(rs) == 1 {
			return rs[0], true
		}
	}
	return 0, false
}

// AsBool returns the boolean held by v. Integers 0 and 1 are accepted, as
// databases without a boolean type store them that way.
func (v Value) AsBool() (bool, bool) {
	switch {
	case v.kind == KindBoolean:
		return v.i == 1, true
	case v.kind == KindInteger && (v.i == 0 || v.i == 1):
		return v.i == 1, true
	}
	return false, false
}

// AsBytes returns the bytes held by a binary value, or the UTF-8 bytes of text.
func (v Value) AsBytes() ([]byte, bool) {
	switch v.kind {
	case KindBytes, KindJSON:
		return v.b, true
	case KindText, KindEnum:
		return []byte(v.s), true
	}
	return nil, false
}

// AsUUID returns the UUID held by v. Text in canonical form is parsed.
func (v Value) AsUUID() (uuid.UUID, bool) {
	switch v.kind {
	case KindUUID:
		return v.u, true
	case KindText:
		u, err := uuid.Parse(v.s)
		return u, err == nil
	}
	return uuid.Nil, false
}

// AsTime returns the time held by a date, time or datetime value.
func (v Value) AsTime() (time.Time, bool) {
	switch v.kind {
	case KindDate, KindTime, KindDateTime:
		return v.t, true
	}
	return time.Time{}, false
}

// AsArray returns the elements of an array value.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsJSON returns the raw JSON document held by v.
func (v Value) AsJSON() (json.RawMessage, bool) {
	switch v.kind {
	case KindJSON:
		return json.RawMessage(v.b), true
	case KindText:
		if json.Valid([]byte(v.s)) {
			return json.RawMessage(v.s), true
		}
	}
	return nil, false
}

// Equal reports whether v and o hold the same variant and contents.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInteger, KindBoolean, KindChar:
		return v.i == o.i
	case KindReal:
		return v.d.Equal(o.d)
	case KindText, KindEnum:
		return v.s == o.s
	case KindBytes:
		return bytes.Equal(v.b, o.b)
	case KindJSON:
		return jsonEqual(v.b, o.b)
	case KindUUID:
		return v.u == o.u
	case KindDate, KindTime, KindDateTime:
		return v.t.Equal(o.t)
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func jsonEqual(a, b []byte) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

// String returns a human readable rendering of v for logs and errors.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return v.d.String()
	case KindText, KindEnum:
		return strconv.Quote(v.s)
	case KindBoolean:
		return strconv.FormatBool(v.i == 1)
	case KindBytes:
		return `\x` + hex.EncodeToString(v.b)
	case KindChar:
		return strconv.QuoteRune(rune(v.i))
	case KindJSON:
		return string(v.b)
	case KindUUID:
		return v.u.String()
	case KindDate:
		return v.t.Format(time.DateOnly)
	case KindTime:
		return v.t.Format("15:04:05.999999999")
	case KindDateTime:
		return v.t.Format(time.RFC3339Nano)
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return v.kind.String()
}

// Values converts each argument with ValueOf.
func Values(vs ...any) ([]Value, error) {
	out := make([]Value, len(vs))
	for i, v := range vs {
		cv, err := ValueOf(v)
		if err != nil {
			return nil, err
		}
		out[i] = cv
	}
	return out, nil
}
