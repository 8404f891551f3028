package common

import (
	"fmt"
	"time"

	"github.com/dbscope/dbscope/pkg/dbvalue"
)

// FallbackValue decodes a native value whose type the driver does not
// map, trying string, then 64-bit integer, then 64-bit float renditions
// before giving up. The result is always the foreign-type variant so the
// engine's own type name survives for display. Decoding never fails: a
// value no rendition fits becomes the unknown marker.
func FallbackValue(typeName string, raw any) dbvalue.Value {
	if raw == nil {
		return dbvalue.Null()
	}
	switch v := raw.(type) {
	case string:
		return dbvalue.Other(typeName, v)
	case []byte:
		return dbvalue.Other(typeName, string(v))
	case int64:
		return dbvalue.Other(typeName, fmt.Sprintf("%d", v))
	case int:
		return dbvalue.Other(typeName, fmt.Sprintf("%d", v))
	case float64:
		return dbvalue.Other(typeName, fmt.Sprintf("%v", v))
	case bool:
		return dbvalue.Other(typeName, fmt.Sprintf("%t", v))
	case time.Time:
		return dbvalue.Other(typeName, v.Format("2006-01-02 15:04:05.999999999"))
	case fmt.Stringer:
		return dbvalue.Other(typeName, v.String())
	}
	return dbvalue.Other(typeName, "<unknown>")
}

// Temporal layouts accepted when an engine hands back date and time
// values as text. SQLite and DuckDB report timestamps with either a
// space or a T separator, with or without fractional seconds.
var (
	dateTimeLayouts = []string{
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05.999999999Z07:00",
	}
	timeOfDayLayouts = []string{
		"15:04:05.999999999",
		"15:04",
	}
)

// ParseDate parses a date-only string.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	return t, err == nil
}

// ParseDateTime parses a timestamp string in any accepted layout.
func ParseDateTime(s string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTimeOfDay parses a time-of-day string.
func ParseTimeOfDay(s string) (time.Time, bool) {
	for _, layout := range timeOfDayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Julian day number of the Unix epoch, used by SQLite's julianday()
// representation.
const unixEpochJulianDay = 2440587.5

// FromJulianDay converts a Julian day number to a UTC time.
func FromJulianDay(jd float64) time.Time {
	secs := (jd - unixEpochJulianDay) * 86400.0
	return time.Unix(0, int64(secs*float64(time.Second))).UTC()
}
