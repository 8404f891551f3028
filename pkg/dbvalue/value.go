// Package dbvalue defines the unified value model shared by every database
// driver. A Value is a closed tagged union covering every scalar and
// composite a supported engine can produce; drivers decode their native
// cells into it and no other package constructs result values outside it.
package dbvalue

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind identifies which variant of the union a Value holds. Exactly one
// kind is active per Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindDecimal
	KindText
	KindBytes
	KindDate
	KindTime
	KindDateTime
	KindDateTimeTz
	KindUUID
	KindJSON
	KindArray
	KindOther
)

var kindNames = map[Kind]string{
	KindNull:       "null",
	KindBool:       "bool",
	KindInt8:       "int8",
	KindInt16:      "int16",
	KindInt32:      "int32",
	KindInt64:      "int64",
	KindUint8:      "uint8",
	KindUint16:     "uint16",
	KindUint32:     "uint32",
	KindUint64:     "uint64",
	KindFloat32:    "float32",
	KindFloat64:    "float64",
	KindDecimal:    "decimal",
	KindText:       "text",
	KindBytes:      "bytes",
	KindDate:       "date",
	KindTime:       "time",
	KindDateTime:   "datetime",
	KindDateTimeTz: "datetimetz",
	KindUUID:       "uuid",
	KindJSON:       "json",
	KindArray:      "array",
	KindOther:      "other",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Value is the unified representation of a database cell. The zero Value
// is Null.
type Value struct {
	kind Kind

	boolVal  bool
	intVal   int64
	uintVal  uint64
	floatVal float64
	strVal   string // Text payload, JSON document, or Other display string
	bytesVal []byte
	timeVal  time.Time
	decVal   decimal.Decimal
	uuidVal  uuid.UUID
	arrVal   []Value
	typeName string // original native type name for Other
}

// Null returns the NULL value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(v bool) Value { return Value{kind: KindBool, boolVal: v} }

// Int8 wraps an 8-bit signed integer.
func Int8(v int8) Value { return Value{kind: KindInt8, intVal: int64(v)} }

// Int16 wraps a 16-bit signed integer.
func Int16(v int16) Value { return Value{kind: KindInt16, intVal: int64(v)} }

// Int32 wraps a 32-bit signed integer.
func Int32(v int32) Value { return Value{kind: KindInt32, intVal: int64(v)} }

// Int64 wraps a 64-bit signed integer.
func Int64(v int64) Value { return Value{kind: KindInt64, intVal: v} }

// Uint8 wraps an 8-bit unsigned integer.
func Uint8(v uint8) Value { return Value{kind: KindUint8, uintVal: uint64(v)} }

// Uint16 wraps a 16-bit unsigned integer.
func Uint16(v uint16) Value { return Value{kind: KindUint16, uintVal: uint64(v)} }

// Uint32 wraps a 32-bit unsigned integer.
func Uint32(v uint32) Value { return Value{kind: KindUint32, uintVal: uint64(v)} }

// Uint64 wraps a 64-bit unsigned integer.
func Uint64(v uint64) Value { return Value{kind: KindUint64, uintVal: v} }

// Float32 wraps a 32-bit float.
func Float32(v float32) Value { return Value{kind: KindFloat32, floatVal: float64(v)} }

// Float64 wraps a 64-bit float.
func Float64(v float64) Value { return Value{kind: KindFloat64, floatVal: v} }

// Decimal wraps an arbitrary-precision decimal.
func Decimal(v decimal.Decimal) Value { return Value{kind: KindDecimal, decVal: v} }

// Text wraps a string.
func Text(v string) Value { return Value{kind: KindText, strVal: v} }

// Bytes wraps binary data.
func Bytes(v []byte) Value { return Value{kind: KindBytes, bytesVal: v} }

// Date wraps a calendar date; the time-of-day portion is ignored.
func Date(v time.Time) Value { return Value{kind: KindDate, timeVal: v} }

// TimeOfDay wraps a wall-clock time; the date portion is ignored.
func TimeOfDay(v time.Time) Value { return Value{kind: KindTime, timeVal: v} }

// DateTime wraps a timezone-naive timestamp.
func DateTime(v time.Time) Value { return Value{kind: KindDateTime, timeVal: v} }

// DateTimeTz wraps a timezone-aware timestamp, normalized to UTC.
func DateTimeTz(v time.Time) Value { return Value{kind: KindDateTimeTz, timeVal: v.UTC()} }

// UUID wraps a UUID.
func UUID(v uuid.UUID) Value { return Value{kind: KindUUID, uuidVal: v} }

// JSON wraps a raw JSON document. The document is stored verbatim.
func JSON(doc string) Value { return Value{kind: KindJSON, strVal: doc} }

// Array wraps an ordered list of values.
func Array(vs []Value) Value { return Value{kind: KindArray, arrVal: vs} }

// Other wraps a value of an unmapped native type. The original type name
// is kept alongside a best-effort display string so nothing is lost
// silently.
func Other(typeName, display string) Value {
	return Value{kind: KindOther, typeName: typeName, strVal: display}
}

// Kind returns the active variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) {
	return v.boolVal, v.kind == KindBool
}

// AsInt64 returns the signed integer payload, widening smaller widths.
func (v Value) AsInt64() (int64, bool) {
	switch v.kind {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return v.intVal, true
	}
	return 0, false
}

// AsUint64 returns the unsigned integer payload, widening smaller widths.
func (v Value) AsUint64() (uint64, bool) {
	switch v.kind {
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return v.uintVal, true
	}
	return 0, false
}

// AsFloat64 returns the float payload, widening float32.
func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindFloat32, KindFloat64:
		return v.floatVal, true
	}
	return 0, false
}

// AsDecimal returns the decimal payload.
func (v Value) AsDecimal() (decimal.Decimal, bool) {
	return v.decVal, v.kind == KindDecimal
}

// AsText returns the text payload.
func (v Value) AsText() (string, bool) {
	return v.strVal, v.kind == KindText
}

// AsBytes returns the binary payload.
func (v Value) AsBytes() ([]byte, bool) {
	return v.bytesVal, v.kind == KindBytes
}

// AsTime returns the temporal payload for the date/time kinds.
func (v Value) AsTime() (time.Time, bool) {
	switch v.kind {
	case KindDate, KindTime, KindDateTime, KindDateTimeTz:
		return v.timeVal, true
	}
	return time.Time{}, false
}

// AsUUID returns the UUID payload.
func (v Value) AsUUID() (uuid.UUID, bool) {
	return v.uuidVal, v.kind == KindUUID
}

// AsJSON returns the raw JSON document.
func (v Value) AsJSON() (string, bool) {
	return v.strVal, v.kind == KindJSON
}

// AsArray returns the element list.
func (v Value) AsArray() ([]Value, bool) {
	return v.arrVal, v.kind == KindArray
}

// OtherTypeName returns the original native type name of a foreign-type
// value, or "" for any other kind.
func (v Value) OtherTypeName() string {
	if v.kind == KindOther {
		return v.typeName
	}
	return ""
}

// TypeName returns the short name of the active kind.
func (v Value) TypeName() string { return v.kind.String() }

// bytesDisplayCap bounds how many raw bytes the display string renders.
const bytesDisplayCap = 16

// String renders the value for display. The rendering is lossless for
// every kind except Bytes (capped) and Other (best effort by definition).
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return strconv.FormatBool(v.boolVal)
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return strconv.FormatInt(v.intVal, 10)
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return strconv.FormatUint(v.uintVal, 10)
	case KindFloat32:
		return strconv.FormatFloat(v.floatVal, 'g', -1, 32)
	case KindFloat64:
		return strconv.FormatFloat(v.floatVal, 'g', -1, 64)
	case KindDecimal:
		return v.decVal.String()
	case KindText:
		return v.strVal
	case KindBytes:
		if len(v.bytesVal) > bytesDisplayCap {
			return "\\x" + hex.EncodeToString(v.bytesVal[:bytesDisplayCap]) + "…"
		}
		return "\\x" + hex.EncodeToString(v.bytesVal)
	case KindDate:
		return v.timeVal.Format("2006-01-02")
	case KindTime:
		return v.timeVal.Format("15:04:05.999999999")
	case KindDateTime:
		return v.timeVal.Format("2006-01-02 15:04:05.999999999")
	case KindDateTimeTz:
		return v.timeVal.UTC().Format("2006-01-02 15:04:05.999999999") + " UTC"
	case KindUUID:
		return v.uuidVal.String()
	case KindJSON:
		return v.strVal
	case KindArray:
		parts := make([]string, len(v.arrVal))
		for i, elem := range v.arrVal {
			parts[i] = elem.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindOther:
		return v.strVal
	}
	return fmt.Sprintf("<%s>", v.kind)
}

// MarshalJSON serializes the value as {"type": ..., "value": ...}. Other
// values additionally carry the original type name.
func (v Value) MarshalJSON() ([]byte, error) {
	type tagged struct {
		Type     string          `json:"type"`
		Value    json.RawMessage `json:"value,omitempty"`
		TypeName string          `json:"typeName,omitempty"`
	}
	out := tagged{Type: v.kind.String()}
	switch v.kind {
	case KindNull:
	case KindJSON:
		out.Value = json.RawMessage(v.strVal)
	case KindOther:
		out.TypeName = v.typeName
		raw, err := json.Marshal(v.strVal)
		if err != nil {
			return nil, err
		}
		out.Value = raw
	default:
		raw, err := json.Marshal(v.String())
		if err != nil {
			return nil, err
		}
		out.Value = raw
	}
	return json.Marshal(out)
}
