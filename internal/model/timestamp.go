package model

import (
    "database/sql/driver"
    "fmt"
    "strings"
    "time"
)

// TimeLayout is the wire and storage format for every date in the API.
const TimeLayout = "2006-01-02 15:04:05"

// Accepted input layouts for ParseTimestamp, tried in order.
var inputLayouts = []string{
    TimeLayout,
    time.RFC3339Nano,
    "2006-01-02T15:04:05",
    "2006-01-02 15:04:05.999999999-07:00",
    "2006-01-02",
}

// Timestamp is a second-precision UTC time that serializes as
// "YYYY-MM-DD HH:MM:SS" in JSON and in SQL parameters.  It scans from both
// time.Time (MySQL with parseTime) and text (SQLite) column values.
type Timestamp struct {
    time.Time
}

// NewTimestamp truncates t to seconds and converts it to UTC.
func NewTimestamp(t time.Time) Timestamp {
    return Timestamp{Time: t.UTC().Truncate(time.Second)}
}

// ParseTimestamp parses one of the accepted input layouts.
func ParseTimestamp(s string) (Timestamp, error) {
    s = strings.TrimSpace(s)
    for _, layout := range inputLayouts {
        if t, err := time.Parse(layout, s); err == nil {
            return NewTimestamp(t), nil
        }
    }
    return Timestamp{}, fmt.Errorf("unrecognized time %q", s)
}

func (t Timestamp) String() string { return t.Time.UTC().Format(TimeLayout) }

// MarshalJSON renders the timestamp in TimeLayout.
func (t Timestamp) MarshalJSON() ([]byte, error) {
    return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON accepts any of the input layouts.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
    s := strings.Trim(string(b), `"`)
    parsed, err := ParseTimestamp(s)
    if err != nil {
        return err
    }
    *t = parsed
    return nil
}

// Value stores the timestamp as TimeLayout text, which both MySQL DATETIME
// and SQLite accept.
func (t Timestamp) Value() (driver.Value, error) {
    return t.String(), nil
}

// Scan implements sql.Scanner.
func (t *Timestamp) Scan(src any) error {
    switch v := src.(type) {
    case time.Time:
        *t = NewTimestamp(v)
        return nil
    case string:
        return t.scanText(v)
    case []byte:
        return t.scanText(string(v))
    case nil:
        *t = Timestamp{}
        return nil
    }
    return fmt.Errorf("cannot scan %T into Timestamp", src)
}

func (t *Timestamp) scanText(s string) error {
    parsed, err := ParseTimestamp(s)
    if err != nil {
        return err
    }
    *t = parsed
    return nil
}
