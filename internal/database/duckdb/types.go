package duckdb

import (
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcboeker/go-duckdb"
	"github.com/shopspring/decimal"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/pkg/dbvalue"
)

// decodeValue maps one cell into the unified model. The connector hands
// back width-typed Go values, so most of the dispatch rides the dynamic
// type; the engine type name settles the temporal flavor and steers the
// string-shaped types.
func decodeValue(typeName string, raw any) dbvalue.Value {
	if raw == nil {
		return dbvalue.Null()
	}

	name := strings.ToUpper(typeName)

	switch v := raw.(type) {
	case bool:
		return dbvalue.Bool(v)
	case int8:
		return dbvalue.Int8(v)
	case int16:
		return dbvalue.Int16(v)
	case int32:
		return dbvalue.Int32(v)
	case int64:
		return dbvalue.Int64(v)
	case uint8:
		return dbvalue.Uint8(v)
	case uint16:
		return dbvalue.Uint16(v)
	case uint32:
		return dbvalue.Uint32(v)
	case uint64:
		return dbvalue.Uint64(v)
	case float32:
		return dbvalue.Float32(v)
	case float64:
		return dbvalue.Float64(v)
	case duckdb.Decimal:
		return dbvalue.Decimal(decimal.NewFromBigInt(v.Value, -int32(v.Scale)))
	case *big.Int:
		// HUGEINT exceeds int64; keep it exact.
		return dbvalue.Decimal(decimal.NewFromBigInt(v, 0))
	case string:
		return decodeString(name, typeName, v)
	case []byte:
		// The connector hands UUID columns back as their 16 raw bytes.
		if name == "UUID" && len(v) == len(uuid.UUID{}) {
			var id uuid.UUID
			copy(id[:], v)
			return dbvalue.UUID(id)
		}
		return dbvalue.Bytes(v)
	case time.Time:
		return decodeTime(name, v)
	case []any:
		return decodeList(typeName, v)
	}

	return common.FallbackValue(typeName, raw)
}

func decodeString(name, typeName, v string) dbvalue.Value {
	switch {
	case name == "JSON":
		return dbvalue.JSON(v)
	case name == "UUID":
		if id, err := uuid.Parse(v); err == nil {
			return dbvalue.UUID(id)
		}
	case name == "VARCHAR" || strings.HasPrefix(name, "VARCHAR(") ||
		strings.HasPrefix(name, "ENUM"):
		return dbvalue.Text(v)
	}
	if name == "" || strings.Contains(name, "CHAR") || name == "STRING" || name == "TEXT" {
		return dbvalue.Text(v)
	}
	return common.FallbackValue(typeName, v)
}

func decodeTime(name string, v time.Time) dbvalue.Value {
	switch {
	case name == "DATE":
		return dbvalue.Date(v)
	case name == "TIME" || strings.HasPrefix(name, "TIME("):
		return dbvalue.TimeOfDay(v)
	case strings.Contains(name, "WITH TIME ZONE") || name == "TIMESTAMPTZ":
		return dbvalue.DateTimeTz(v)
	default:
		return dbvalue.DateTime(v)
	}
}

// decodeList recurses with the element type name, e.g. INTEGER[] holds
// INTEGER elements.
func decodeList(typeName string, elems []any) dbvalue.Value {
	elemType := strings.TrimSuffix(typeName, "[]")
	vals := make([]dbvalue.Value, len(elems))
	for i, e := range elems {
		vals[i] = decodeValue(elemType, e)
	}
	return dbvalue.Array(vals)
}
