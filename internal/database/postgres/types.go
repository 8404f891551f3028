package postgres

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/pkg/dbvalue"
)

// typeMap resolves OIDs to PostgreSQL type names. The stock map covers
// every built-in type; values of types it does not know arrive as text
// and flow through the fallback path.
var typeMap = pgtype.NewMap()

func typeNameForOID(oid uint32) string {
	if t, ok := typeMap.TypeForOID(oid); ok {
		return t.Name
	}
	return fmt.Sprintf("oid:%d", oid)
}

// decodeValue maps one pgx-decoded cell into the unified model. The
// type name is the pg_type name, e.g. "int4" or "_text" for text[].
// Decoding is total: anything unrecognized lands in the foreign-type
// variant, never an error.
func decodeValue(typeName string, raw any) dbvalue.Value {
	if raw == nil {
		return dbvalue.Null()
	}

	// Array type names carry the element name behind an underscore.
	if elem, ok := strings.CutPrefix(typeName, "_"); ok {
		return decodeArray(elem, raw)
	}

	switch typeName {
	case "bool":
		if v, ok := raw.(bool); ok {
			return dbvalue.Bool(v)
		}
	case "int2":
		if v, ok := raw.(int16); ok {
			return dbvalue.Int16(v)
		}
	case "int4":
		if v, ok := raw.(int32); ok {
			return dbvalue.Int32(v)
		}
	case "int8":
		if v, ok := raw.(int64); ok {
			return dbvalue.Int64(v)
		}
	case "float4":
		if v, ok := raw.(float32); ok {
			return dbvalue.Float32(v)
		}
	case "float8":
		if v, ok := raw.(float64); ok {
			return dbvalue.Float64(v)
		}
	case "numeric":
		return decodeNumeric(raw)
	case "text", "varchar", "bpchar", "name":
		if v, ok := raw.(string); ok {
			return dbvalue.Text(v)
		}
	case "bytea":
		if v, ok := raw.([]byte); ok {
			return dbvalue.Bytes(v)
		}
	case "date":
		if v, ok := raw.(time.Time); ok {
			return dbvalue.Date(v)
		}
	case "time":
		return decodeTimeOfDay(raw)
	case "timestamp":
		if v, ok := raw.(time.Time); ok {
			return dbvalue.DateTime(v)
		}
	case "timestamptz":
		if v, ok := raw.(time.Time); ok {
			return dbvalue.DateTimeTz(v)
		}
	case "uuid":
		switch v := raw.(type) {
		case [16]byte:
			return dbvalue.UUID(uuid.UUID(v))
		case string:
			if id, err := uuid.Parse(v); err == nil {
				return dbvalue.UUID(id)
			}
		}
	case "json", "jsonb":
		return decodeJSON(typeName, raw)
	}

	return common.FallbackValue(typeName, raw)
}

func decodeArray(elemType string, raw any) dbvalue.Value {
	elems, ok := raw.([]any)
	if !ok {
		return common.FallbackValue("_"+elemType, raw)
	}
	vals := make([]dbvalue.Value, len(elems))
	for i, e := range elems {
		vals[i] = decodeValue(elemType, e)
	}
	return dbvalue.Array(vals)
}

// decodeNumeric keeps exact precision by going through the numeric's
// integer coefficient and exponent, never through a float.
func decodeNumeric(raw any) dbvalue.Value {
	switch v := raw.(type) {
	case pgtype.Numeric:
		if !v.Valid {
			return dbvalue.Null()
		}
		if v.NaN {
			return dbvalue.Other("numeric", "NaN")
		}
		if v.InfinityModifier != pgtype.Finite {
			return dbvalue.Other("numeric", v.InfinityModifier.String())
		}
		return dbvalue.Decimal(decimal.NewFromBigInt(v.Int, v.Exp))
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return dbvalue.Decimal(d)
		}
	case float64:
		return dbvalue.Decimal(decimal.NewFromFloat(v))
	}
	return common.FallbackValue("numeric", raw)
}

func decodeTimeOfDay(raw any) dbvalue.Value {
	switch v := raw.(type) {
	case pgtype.Time:
		if !v.Valid {
			return dbvalue.Null()
		}
		base := time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC)
		return dbvalue.TimeOfDay(base.Add(time.Duration(v.Microseconds) * time.Microsecond))
	case time.Time:
		return dbvalue.TimeOfDay(v)
	case string:
		if t, ok := common.ParseTimeOfDay(v); ok {
			return dbvalue.TimeOfDay(t)
		}
	}
	return common.FallbackValue("time", raw)
}

// decodeJSON keeps the document verbatim when it arrives as text, and
// re-serializes when pgx already unmarshaled it.
func decodeJSON(typeName string, raw any) dbvalue.Value {
	switch v := raw.(type) {
	case string:
		return dbvalue.JSON(v)
	case []byte:
		return dbvalue.JSON(string(v))
	default:
		doc, err := json.Marshal(v)
		if err != nil {
			return common.FallbackValue(typeName, raw)
		}
		return dbvalue.JSON(string(doc))
	}
}
