package sqlite

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/pkg/dbvalue"
)

// decodeValue maps one cell into the unified model. SQLite stores only
// five storage classes; the declared column type steers how they are
// interpreted, following the usual affinity rules. Expression columns
// have no declared type and decode by storage class alone.
func decodeValue(declaredType string, raw any) dbvalue.Value {
	if raw == nil {
		return dbvalue.Null()
	}

	decl := strings.ToUpper(strings.TrimSpace(declaredType))

	switch {
	case decl == "":
		return decodeByStorageClass(raw)
	case decl == "BOOLEAN" || decl == "BOOL":
		return decodeBool(decl, raw)
	case strings.Contains(decl, "DATETIME") || strings.Contains(decl, "TIMESTAMP"):
		return decodeDateTime(decl, raw)
	case decl == "DATE":
		if s, ok := raw.(string); ok {
			if t, ok := common.ParseDate(s); ok {
				return dbvalue.Date(t)
			}
		}
	case decl == "TIME":
		if s, ok := raw.(string); ok {
			if t, ok := common.ParseTimeOfDay(s); ok {
				return dbvalue.TimeOfDay(t)
			}
		}
	case strings.Contains(decl, "DECIMAL") || strings.Contains(decl, "NUMERIC"):
		return decodeDecimal(decl, raw)
	case decl == "JSON":
		if s, ok := raw.(string); ok {
			return dbvalue.JSON(s)
		}
	case strings.Contains(decl, "INT"):
		if v, ok := raw.(int64); ok {
			return dbvalue.Int64(v)
		}
	case strings.Contains(decl, "CHAR") || strings.Contains(decl, "CLOB") || strings.Contains(decl, "TEXT"):
		if s, ok := raw.(string); ok {
			return dbvalue.Text(s)
		}
	case strings.Contains(decl, "BLOB"):
		if b, ok := raw.([]byte); ok {
			return dbvalue.Bytes(b)
		}
	case strings.Contains(decl, "REAL") || strings.Contains(decl, "FLOA") || strings.Contains(decl, "DOUB"):
		switch v := raw.(type) {
		case float64:
			return dbvalue.Float64(v)
		case int64:
			return dbvalue.Float64(float64(v))
		}
	}

	return common.FallbackValue(declaredType, raw)
}

// decodeByStorageClass handles expression results, which carry no
// declared type.
func decodeByStorageClass(raw any) dbvalue.Value {
	switch v := raw.(type) {
	case int64:
		return dbvalue.Int64(v)
	case float64:
		return dbvalue.Float64(v)
	case string:
		return dbvalue.Text(v)
	case []byte:
		return dbvalue.Bytes(v)
	}
	return common.FallbackValue("", raw)
}

// decodeBool accepts the 0/1 integers SQLite actually stores for
// BOOLEAN columns, plus textual forms some tools write.
func decodeBool(decl string, raw any) dbvalue.Value {
	switch v := raw.(type) {
	case int64:
		if v == 0 || v == 1 {
			return dbvalue.Bool(v == 1)
		}
	case string:
		switch strings.ToLower(v) {
		case "true":
			return dbvalue.Bool(true)
		case "false":
			return dbvalue.Bool(false)
		}
	}
	return common.FallbackValue(decl, raw)
}

// decodeDateTime accepts the three representations SQLite conventionally
// uses for timestamps: ISO text, Unix epoch seconds, and Julian day
// numbers.
func decodeDateTime(decl string, raw any) dbvalue.Value {
	switch v := raw.(type) {
	case string:
		if t, ok := common.ParseDateTime(v); ok {
			return dbvalue.DateTime(t)
		}
		if t, ok := common.ParseDate(v); ok {
			return dbvalue.Date(t)
		}
	case int64:
		return dbvalue.DateTime(time.Unix(v, 0).UTC())
	case float64:
		return dbvalue.DateTime(common.FromJulianDay(v))
	}
	return common.FallbackValue(decl, raw)
}

func decodeDecimal(decl string, raw any) dbvalue.Value {
	switch v := raw.(type) {
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return dbvalue.Decimal(d)
		}
	case int64:
		return dbvalue.Decimal(decimal.NewFromInt(v))
	case float64:
		return dbvalue.Decimal(decimal.NewFromFloat(v))
	}
	return common.FallbackValue(decl, raw)
}
