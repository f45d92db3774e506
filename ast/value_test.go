package ast

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlweave"
)

func TestValueOf(t *testing.T) {
	id := uuid.MustParse("67e55044-10b1-426f-9247-bb680e5fe0c8")
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	name := "alice"
	var nilPtr *string
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null()},
		{"int", 42, Int(42)},
		{"int8", int8(-3), Int(-3)},
		{"uint32", uint32(7), Int(7)},
		{"uint64", uint64(math.MaxInt64), Int(int64(math.MaxInt64))},
		{"float", 1.5, Real(decimal.RequireFromString("1.5"))},
		{"string", "meow", Text("meow")},
		{"bool", true, Bool(true)},
		{"bytes", []byte{1, 2}, Bytes([]byte{1, 2})},
		{"time", now, DateTime(now)},
		{"uuid", id, UUID(id)},
		{"decimal", decimal.NewFromInt(3), Real(decimal.NewFromInt(3))},
		{"json", json.RawMessage(`{"a":1}`), JSON(json.RawMessage(`{"a":1}`))},
		{"pointer", &name, Text("alice")},
		{"nil pointer", nilPtr, Null()},
		{"slice", []int{1, 2}, Array(Int(1), Int(2))},
		{"value", Text("x"), Text("x")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueOf(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestValueOfErrors(t *testing.T) {
	_, err := ValueOf(uint64(math.MaxUint64))
	require.Error(t, err)
	_, ok := sqlweave.AsKind[sqlweave.ValueOutOfRange](err)
	assert.True(t, ok)

	_, err = ValueOf(math.NaN())
	require.Error(t, err)
	_, ok = sqlweave.AsKind[sqlweave.ConversionError](err)
	assert.True(t, ok)

	_, err = ValueOf(struct{}{})
	require.Error(t, err)
	_, ok = sqlweave.AsKind[sqlweave.ConversionError](err)
	assert.True(t, ok)
}

func TestValueAccessors(t *testing.T) {
	i, ok := Int(42).AsInt64()
	assert.True(t, ok)
	assert.Equal(t, int64(42), i)
	_, ok = Text("42").AsInt64()
	assert.False(t, ok)

	f, ok := Int(2).AsFloat64()
	assert.True(t, ok)
	assert.Equal(t, 2.0, f)

	s, ok := Char('x').AsString()
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	r, ok := Text("y").AsChar()
	assert.True(t, ok)
	assert.Equal(t, 'y', r)

	b, ok := Int(1).AsBool()
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = Int(2).AsBool()
	assert.False(t, ok)

	u, ok := Text("67e55044-10b1-426f-9247-bb680e5fe0c8").AsUUID()
	assert.True(t, ok)
	assert.Equal(t, "67e55044-10b1-426f-9247-bb680e5fe0c8", u.String())

	raw, ok := Text(`[1,2]`).AsJSON()
	assert.True(t, ok)
	assert.JSONEq(t, `[1,2]`, string(raw))
	_, ok = Text(`not json`).AsJSON()
	assert.False(t, ok)

	d := Date(time.Date(2024, 5, 6, 23, 59, 0, 0, time.FixedZone("x", 3600)))
	tm, ok := d.AsTime()
	assert.True(t, ok)
	assert.Equal(t, "2024-05-06", tm.Format(time.DateOnly))
	assert.Equal(t, "2024-05-06", d.String())

	assert.True(t, Null().IsNull())
	assert.Equal(t, KindNull, Value{}.Kind())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, JSON(json.RawMessage(`{"a": 1}`)).Equal(JSON(json.RawMessage(`{"a":1}`))))
	assert.False(t, Int(1).Equal(Text("1")))
	assert.False(t, Array(Int(1)).Equal(Array(Int(1), Int(2))))
	assert.True(t, Real(decimal.RequireFromString("1.50")).Equal(Real(decimal.RequireFromString("1.5"))))
	assert.True(t, Null().Equal(Null()))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "NULL", Null().String())
	assert.Equal(t, `"meow"`, Text("meow").String())
	assert.Equal(t, "10", Int(10).String())
	assert.Equal(t, `[1, "a"]`, Array(Int(1), Text("a")).String())
	assert.Equal(t, `\x0102`, Bytes([]byte{1, 2}).String())
	assert.Equal(t, "integer", KindInteger.String())
}
