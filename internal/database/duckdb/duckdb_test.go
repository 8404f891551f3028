package duckdb

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marcboeker/go-duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/pkg/dbcapabilities"
	"github.com/dbscope/dbscope/pkg/dbvalue"
)

func TestDecodeScalars(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		raw      any
		want     dbvalue.Value
	}{
		{"null", "INTEGER", nil, dbvalue.Null()},
		{"bool", "BOOLEAN", true, dbvalue.Bool(true)},
		{"tinyint", "TINYINT", int8(-5), dbvalue.Int8(-5)},
		{"smallint", "SMALLINT", int16(300), dbvalue.Int16(300)},
		{"integer", "INTEGER", int32(42), dbvalue.Int32(42)},
		{"bigint", "BIGINT", int64(1 << 40), dbvalue.Int64(1 << 40)},
		{"utinyint", "UTINYINT", uint8(200), dbvalue.Uint8(200)},
		{"ubigint", "UBIGINT", uint64(1 << 63), dbvalue.Uint64(1 << 63)},
		{"float", "FLOAT", float32(1.5), dbvalue.Float32(1.5)},
		{"double", "DOUBLE", 3.14, dbvalue.Float64(3.14)},
		{"varchar", "VARCHAR", "hello", dbvalue.Text("hello")},
		{"blob", "BLOB", []byte{1, 2}, dbvalue.Bytes([]byte{1, 2})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeValue(tt.typeName, tt.raw))
		})
	}
}

func TestDecodeDecimalExact(t *testing.T) {
	coeff := big.NewInt(1234567)
	v := decodeValue("DECIMAL(10,3)", duckdb.Decimal{Width: 10, Scale: 3, Value: coeff})
	d, ok := v.AsDecimal()
	require.True(t, ok)
	assert.Equal(t, "1234.567", d.String())
}

func TestDecodeHugeint(t *testing.T) {
	huge, ok := new(big.Int).SetString("170141183460469231731687303715884105727", 10)
	require.True(t, ok)
	v := decodeValue("HUGEINT", huge)
	d, isDec := v.AsDecimal()
	require.True(t, isDec)
	assert.Equal(t, "170141183460469231731687303715884105727", d.String())
}

func TestDecodeTemporal(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, dbvalue.Date(ts), decodeValue("DATE", ts))
	assert.Equal(t, dbvalue.TimeOfDay(ts), decodeValue("TIME", ts))
	assert.Equal(t, dbvalue.DateTime(ts), decodeValue("TIMESTAMP", ts))
	assert.Equal(t, dbvalue.DateTimeTz(ts), decodeValue("TIMESTAMP WITH TIME ZONE", ts))
}

func TestDecodeList(t *testing.T) {
	v := decodeValue("INTEGER[]", []any{int32(1), nil, int32(3)})
	assert.Equal(t, "[1, NULL, 3]", v.String())

	v = decodeValue("VARCHAR[]", []any{"a", "b"})
	assert.Equal(t, "[a, b]", v.String())
}

func TestDecodeUUIDAndJSON(t *testing.T) {
	// The connector delivers UUID cells as 16 raw bytes.
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	v := decodeValue("UUID", id[:])
	assert.Equal(t, dbvalue.KindUUID, v.Kind())
	got, ok := v.AsUUID()
	require.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", v.String())

	v = decodeValue("UUID", "550e8400-e29b-41d4-a716-446655440000")
	assert.Equal(t, dbvalue.KindUUID, v.Kind())

	// BLOB cells of the same length stay bytes.
	v = decodeValue("BLOB", id[:])
	assert.Equal(t, dbvalue.KindBytes, v.Kind())

	v = decodeValue("JSON", `{"a": 1}`)
	doc, ok := v.AsJSON()
	require.True(t, ok)
	assert.Equal(t, `{"a": 1}`, doc)
}

func TestDecodeUnknownFallsBack(t *testing.T) {
	v := decodeValue("INTERVAL", struct{}{})
	assert.Equal(t, dbvalue.KindOther, v.Kind())
	assert.Equal(t, "INTERVAL", v.OtherTypeName())
}

func TestSplitExpressions(t *testing.T) {
	assert.Equal(t, []string{"title"}, splitExpressions("[title]"))
	assert.Equal(t, []string{"a", "b"}, splitExpressions("['a', 'b']"))
	assert.Nil(t, splitExpressions(""))
	assert.Nil(t, splitExpressions("[]"))
}

func TestInMemoryRoundTrip(t *testing.T) {
	cfg := common.NewConnectionConfig("mem", dbcapabilities.DuckDB, common.NewInMemoryParams())
	drv := New(cfg)
	ctx := context.Background()
	require.NoError(t, drv.Connect(ctx))
	defer drv.Disconnect(ctx)

	res, err := drv.ExecuteQuery(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY, v VARCHAR)")
	require.NoError(t, err)
	require.False(t, res.IsError())

	res, err = drv.ExecuteQuery(ctx, "INSERT INTO t VALUES (1, 'a'), (2, 'b')")
	require.NoError(t, err)
	require.NotNil(t, res.Modified)
	assert.Equal(t, int64(2), res.Modified.RowsAffected)

	res, err = drv.ExecuteQuery(ctx, "SELECT id, v FROM t ORDER BY id")
	require.NoError(t, err)
	require.NotNil(t, res.Select)
	assert.Equal(t, 2, res.Select.RowCount)
	first, _ := res.Select.Rows[0].Value(0)
	assert.Equal(t, "1", first.String())

	pks, err := drv.GetPrimaryKeys(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, pks)

	cols, err := drv.GetColumns(ctx, "t")
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "id", cols[0].Name)

	res, err = drv.ExecuteQuery(ctx, "SELECT uuid '550e8400-e29b-41d4-a716-446655440000'")
	require.NoError(t, err)
	require.NotNil(t, res.Select)
	id, _ := res.Select.Rows[0].Value(0)
	assert.Equal(t, dbvalue.KindUUID, id.Kind())
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())
}

func TestDisconnectedBehavior(t *testing.T) {
	drv := New(common.NewConnectionConfig("x", dbcapabilities.DuckDB, common.NewInMemoryParams()))

	_, err := drv.ExecuteQuery(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, common.ErrNotConnected)

	_, err = drv.GetTables(context.Background())
	assert.ErrorIs(t, err, common.ErrNotConnected)

	assert.NoError(t, drv.Disconnect(context.Background()))
}
