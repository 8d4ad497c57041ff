package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for all stored timestamps
// (millisecond precision, always UTC).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp is a point in time that serializes as an ISO-8601 UTC string.
// Decoding tolerates null, the empty string and any RFC 3339 value.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	t.Time = parsed.UTC()
	return nil
}

// SameDay reports whether t falls on the same calendar day as ref in ref's location.
func (t Timestamp) SameDay(ref time.Time) bool {
	if t.IsZero() {
		return false
	}
	a := t.In(ref.Location())
	return a.Year() == ref.Year() && a.YearDay() == ref.YearDay()
}
