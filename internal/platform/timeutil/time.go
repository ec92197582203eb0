// Package timeutil provides fixed-precision RFC 3339 time values for JSON payloads.
package timeutil

import (
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// RFC3339Millis is RFC 3339 UTC with fixed millisecond precision, used for API output.
const RFC3339Millis = "2006-01-02T15:04:05.000Z"

// RFC3339Micros is RFC 3339 UTC with fixed microsecond precision, used for log timestamps.
const RFC3339Micros = "2006-01-02T15:04:05.000000Z"

// DateOnly is the calendar date layout accepted for manually entered dates.
const DateOnly = time.DateOnly

// Time wraps time.Time so JSON output is always "2024-01-15T10:30:00.000Z".
// Input accepts RFC 3339 timestamps and plain calendar dates ("2024-01-15").
// JSON null leaves the value untouched.
type Time struct {
	time.Time
}

// MarshalJSON implements json.Marshaler with fixed millisecond precision.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(RFC3339Millis) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Parse accepts RFC 3339 (with or without fractional seconds) or a calendar date.
func Parse(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, DateOnly} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: expected RFC 3339 or YYYY-MM-DD", s)
}

// NewTime creates a Time from a standard time.Time.
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// Ptr converts an optional time into an optional Time.
func Ptr(t *time.Time) *Time {
	if t == nil || t.IsZero() {
		return nil
	}
	return &Time{Time: *t}
}

// Schema describes Time as a string so request validation accepts both layouts.
func (Time) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:        huma.TypeString,
		Description: "RFC 3339 timestamp or YYYY-MM-DD date",
		Examples:    []any{"2024-01-15T10:30:00.000Z"},
	}
}
