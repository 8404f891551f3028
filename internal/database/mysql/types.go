package mysql

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/pkg/dbvalue"
)

// decodeValue maps one cell into the unified model. Type names come
// from the wire protocol in upper case, with an "UNSIGNED " prefix on
// unsigned integer columns. Text-protocol cells arrive as []byte.
func decodeValue(typeName string, raw any) dbvalue.Value {
	if raw == nil {
		return dbvalue.Null()
	}

	name, unsigned := strings.CutPrefix(strings.ToUpper(typeName), "UNSIGNED ")

	switch name {
	case "TINYINT":
		return decodeInt(raw, unsigned, 8, typeName)
	case "SMALLINT", "YEAR":
		return decodeInt(raw, unsigned, 16, typeName)
	case "MEDIUMINT", "INT":
		return decodeInt(raw, unsigned, 32, typeName)
	case "BIGINT":
		return decodeInt(raw, unsigned, 64, typeName)
	case "FLOAT":
		switch v := raw.(type) {
		case float32:
			return dbvalue.Float32(v)
		case float64:
			return dbvalue.Float32(float32(v))
		}
	case "DOUBLE":
		if v, ok := raw.(float64); ok {
			return dbvalue.Float64(v)
		}
	case "DECIMAL":
		if s, ok := cellString(raw); ok {
			if d, err := decimal.NewFromString(s); err == nil {
				return dbvalue.Decimal(d)
			}
		}
	case "CHAR", "VARCHAR", "TEXT", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT", "ENUM", "SET":
		if s, ok := cellString(raw); ok {
			return dbvalue.Text(s)
		}
	case "BINARY", "VARBINARY", "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BIT", "GEOMETRY":
		if v, ok := raw.([]byte); ok {
			return dbvalue.Bytes(v)
		}
	case "DATE":
		switch v := raw.(type) {
		case time.Time:
			return dbvalue.Date(v)
		case []byte:
			if t, ok := common.ParseDate(string(v)); ok {
				return dbvalue.Date(t)
			}
		}
	case "TIME":
		if s, ok := cellString(raw); ok {
			if t, ok := common.ParseTimeOfDay(s); ok {
				return dbvalue.TimeOfDay(t)
			}
		}
	case "DATETIME":
		switch v := raw.(type) {
		case time.Time:
			return dbvalue.DateTime(v)
		case []byte:
			if t, ok := common.ParseDateTime(string(v)); ok {
				return dbvalue.DateTime(t)
			}
		}
	case "TIMESTAMP":
		switch v := raw.(type) {
		case time.Time:
			return dbvalue.DateTimeTz(v)
		case []byte:
			if t, ok := common.ParseDateTime(string(v)); ok {
				return dbvalue.DateTimeTz(t)
			}
		}
	case "JSON":
		if s, ok := cellString(raw); ok {
			return dbvalue.JSON(s)
		}
	}

	return common.FallbackValue(typeName, raw)
}

// decodeInt picks the width-matched variant. The driver hands integers
// back as int64 regardless of declared width; unsigned BIGINT values
// above the signed range arrive as a decimal string.
func decodeInt(raw any, unsigned bool, bits int, typeName string) dbvalue.Value {
	switch v := raw.(type) {
	case int64:
		if unsigned {
			return uintValue(uint64(v), bits)
		}
		return intValue(v, bits)
	case []byte:
		s := string(v)
		if unsigned {
			if u, err := parseUint(s); err == nil {
				return uintValue(u, bits)
			}
		} else if i, err := parseInt(s); err == nil {
			return intValue(i, bits)
		}
	}
	return common.FallbackValue(typeName, raw)
}

func intValue(v int64, bits int) dbvalue.Value {
	switch bits {
	case 8:
		return dbvalue.Int8(int8(v))
	case 16:
		return dbvalue.Int16(int16(v))
	case 32:
		return dbvalue.Int32(int32(v))
	default:
		return dbvalue.Int64(v)
	}
}

func uintValue(v uint64, bits int) dbvalue.Value {
	switch bits {
	case 8:
		return dbvalue.Uint8(uint8(v))
	case 16:
		return dbvalue.Uint16(uint16(v))
	case 32:
		return dbvalue.Uint32(uint32(v))
	default:
		return dbvalue.Uint64(v)
	}
}

func parseInt(s string) (int64, error)   { return strconv.ParseInt(s, 10, 64) }
func parseUint(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) }

func cellString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}
