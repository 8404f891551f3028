package postgres

import (
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbscope/dbscope/pkg/dbvalue"
)

func TestDecodeScalars(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		raw      any
		want     dbvalue.Value
	}{
		{"null", "int4", nil, dbvalue.Null()},
		{"bool", "bool", true, dbvalue.Bool(true)},
		{"int2", "int2", int16(7), dbvalue.Int16(7)},
		{"int4", "int4", int32(42), dbvalue.Int32(42)},
		{"int8", "int8", int64(-9), dbvalue.Int64(-9)},
		{"float4", "float4", float32(1.5), dbvalue.Float32(1.5)},
		{"float8", "float8", 3.14, dbvalue.Float64(3.14)},
		{"text", "text", "hello", dbvalue.Text("hello")},
		{"varchar", "varchar", "v", dbvalue.Text("v")},
		{"bpchar", "bpchar", "c", dbvalue.Text("c")},
		{"bytea", "bytea", []byte{1, 2}, dbvalue.Bytes([]byte{1, 2})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeValue(tt.typeName, tt.raw))
		})
	}
}

func TestDecodeTemporal(t *testing.T) {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, dbvalue.Date(d), decodeValue("date", d))

	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, dbvalue.DateTime(ts), decodeValue("timestamp", ts))
	assert.Equal(t, dbvalue.DateTimeTz(ts), decodeValue("timestamptz", ts))

	v := decodeValue("time", pgtype.Time{Microseconds: 10*3600*1e6 + 30*60*1e6, Valid: true})
	got, ok := v.AsTime()
	require.True(t, ok)
	assert.Equal(t, "10:30:00", got.Format("15:04:05"))
}

func TestDecodeNumericExact(t *testing.T) {
	// 123456789012345678901234567890.12 as coefficient and exponent.
	coeff, ok := new(big.Int).SetString("12345678901234567890123456789012", 10)
	require.True(t, ok)

	v := decodeValue("numeric", pgtype.Numeric{Int: coeff, Exp: -2, Valid: true})
	d, isDec := v.AsDecimal()
	require.True(t, isDec)
	assert.Equal(t, "123456789012345678901234567890.12", d.String())
}

func TestDecodeNumericSpecials(t *testing.T) {
	v := decodeValue("numeric", pgtype.Numeric{NaN: true, Valid: true})
	assert.Equal(t, dbvalue.KindOther, v.Kind())
	assert.Equal(t, "NaN", v.String())

	v = decodeValue("numeric", pgtype.Numeric{Valid: false})
	assert.True(t, v.IsNull())

	v = decodeValue("numeric", "12.50")
	d, ok := v.AsDecimal()
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "12.50", d.String())
}

func TestDecodeUUID(t *testing.T) {
	raw := [16]byte{0x55, 0x0e, 0x84, 0x00, 0xe2, 0x9b, 0x41, 0xd4,
		0xa7, 0x16, 0x44, 0x66, 0x55, 0x44, 0x00, 0x00}
	v := decodeValue("uuid", raw)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", v.String())

	v = decodeValue("uuid", "550e8400-e29b-41d4-a716-446655440000")
	assert.Equal(t, dbvalue.KindUUID, v.Kind())
}

func TestDecodeJSON(t *testing.T) {
	v := decodeValue("jsonb", `{"a": 1}`)
	doc, ok := v.AsJSON()
	require.True(t, ok)
	assert.Equal(t, `{"a": 1}`, doc)

	v = decodeValue("json", map[string]any{"b": 2.0})
	doc, ok = v.AsJSON()
	require.True(t, ok)
	assert.JSONEq(t, `{"b": 2}`, doc)
}

func TestDecodeArray(t *testing.T) {
	v := decodeValue("_int4", []any{int32(1), nil, int32(3)})
	elems, ok := v.AsArray()
	require.True(t, ok)
	require.Len(t, elems, 3)
	assert.Equal(t, dbvalue.Int32(1), elems[0])
	assert.True(t, elems[1].IsNull())
	assert.Equal(t, "[1, NULL, 3]", v.String())

	v = decodeValue("_text", []any{"a", "b"})
	assert.Equal(t, "[a, b]", v.String())
}

func TestDecodeUnknownFallsBack(t *testing.T) {
	v := decodeValue("tsvector", "'cat':3 'fat':2")
	assert.Equal(t, dbvalue.KindOther, v.Kind())
	assert.Equal(t, "tsvector", v.OtherTypeName())
	assert.Equal(t, "'cat':3 'fat':2", v.String())

	// Mismatched payload for a known type also falls back, never panics.
	v = decodeValue("int4", "not an int")
	assert.Equal(t, dbvalue.KindOther, v.Kind())
}

func TestTypeNameForOID(t *testing.T) {
	assert.Equal(t, "int4", typeNameForOID(pgtype.Int4OID))
	assert.Equal(t, "text", typeNameForOID(pgtype.TextOID))
	assert.Equal(t, "oid:999999", typeNameForOID(999999))
}
