package clickhouse

import (
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/pkg/dbvalue"
)

// unwrapType strips the transparent wrappers ClickHouse layers onto a
// type name. Nullable(LowCardinality(String)) decodes exactly like
// String; nullness shows up in the value itself.
func unwrapType(name string) string {
	for {
		switch {
		case strings.HasPrefix(name, "Nullable(") && strings.HasSuffix(name, ")"):
			name = name[len("Nullable(") : len(name)-1]
		case strings.HasPrefix(name, "LowCardinality(") && strings.HasSuffix(name, ")"):
			name = name[len("LowCardinality(") : len(name)-1]
		default:
			return name
		}
	}
}

// decodeValue maps one cell into the unified model. The connector hands
// back width-typed Go values; Nullable columns arrive as pointers, and
// arrays as typed slices.
func decodeValue(typeName string, raw any) dbvalue.Value {
	if raw == nil {
		return dbvalue.Null()
	}

	name := unwrapType(typeName)

	// Nullable scans surface as *T.
	if rv := reflect.ValueOf(raw); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return dbvalue.Null()
		}
		return decodeValue(name, rv.Elem().Interface())
	}

	if elem, ok := arrayElement(name); ok {
		return decodeArray(elem, raw)
	}

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
		// Bool columns travel as UInt8 over the HTTP interface.
		if name == "Bool" {
			return dbvalue.Bool(v != 0)
		}
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
	case decimal.Decimal:
		return dbvalue.Decimal(v)
	case uuid.UUID:
		return dbvalue.UUID(v)
	case time.Time:
		return decodeTime(name, v)
	case string:
		return decodeString(name, typeName, v)
	case []byte:
		return dbvalue.Bytes(v)
	}

	return common.FallbackValue(typeName, raw)
}

// arrayElement extracts T from Array(T).
func arrayElement(name string) (string, bool) {
	if strings.HasPrefix(name, "Array(") && strings.HasSuffix(name, ")") {
		return name[len("Array(") : len(name)-1], true
	}
	return "", false
}

// decodeArray iterates any slice shape via reflection and recurses with
// the element type, so Array(Nullable(Int32)) and nested arrays come
// through intact.
func decodeArray(elemType string, raw any) dbvalue.Value {
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return common.FallbackValue("Array("+elemType+")", raw)
	}
	vals := make([]dbvalue.Value, rv.Len())
	for i := range vals {
		vals[i] = decodeValue(elemType, rv.Index(i).Interface())
	}
	return dbvalue.Array(vals)
}

func decodeTime(name string, v time.Time) dbvalue.Value {
	switch {
	case name == "Date" || name == "Date32":
		return dbvalue.Date(v)
	case strings.Contains(name, "'"):
		// A quoted parameter is an explicit timezone.
		return dbvalue.DateTimeTz(v)
	default:
		return dbvalue.DateTime(v)
	}
}

func decodeString(name, typeName, v string) dbvalue.Value {
	switch {
	case name == "String" || strings.HasPrefix(name, "FixedString("):
		return dbvalue.Text(v)
	case strings.HasPrefix(name, "Enum8(") || strings.HasPrefix(name, "Enum16("):
		return dbvalue.Text(v)
	case name == "UUID":
		if id, err := uuid.Parse(v); err == nil {
			return dbvalue.UUID(id)
		}
	case name == "JSON" || name == "Object('json')":
		return dbvalue.JSON(v)
	case strings.HasPrefix(name, "Decimal("):
		if d, err := decimal.NewFromString(v); err == nil {
			return dbvalue.Decimal(d)
		}
	}
	return common.FallbackValue(typeName, v)
}
