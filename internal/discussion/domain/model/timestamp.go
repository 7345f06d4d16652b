package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Formats accepted for created_at, most common first. Zone-less values are UTC.
var supportedTimestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is an instant decoded leniently from the API's ISO-8601 strings.
type Timestamp struct {
	time.Time
}

// ParseTimestamp tries every supported format.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, format := range supportedTimestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, &TimestampParseError{Input: s}
}

// TimestampParseError reports an unrecognised timestamp string.
type TimestampParseError struct {
	Input string
}

func (e *TimestampParseError) Error() string {
	return "cannot parse '" + e.Input + "' as timestamp"
}

// UnmarshalJSON accepts null, empty and unparseable strings as the zero instant so a
// single odd row never fails a whole thread.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		*t = Timestamp{}
		return nil
	}
	*t = parsed
	return nil
}

// MarshalJSON writes RFC 3339 in UTC, or null for the zero instant.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
