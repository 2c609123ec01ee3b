package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Fallback labels for records with missing fields.
const (
	UntitledLabel = "Untitled"
	OtherLabel    = "Other"
)

// ID is the canonical deadline identifier. Feeds may carry ids as plain
// strings, numbers or a wrapped {"$oid": "..."} object; all of them
// normalize to this type at ingestion.
type ID string

// UnknownID is what the page historically rendered for records without an id.
const UnknownID ID = "unknown"

// Valid reports whether the id can be used for a completion request.
func (id ID) Valid() bool {
	return id != "" && id != UnknownID
}

// UnmarshalJSON accepts "abc", 42, {"$oid": "abc"} and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	*id = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
	case '{':
		var wrapped struct {
			OID json.RawMessage `json:"$oid"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		if len(wrapped.OID) == 0 {
			return nil
		}
		return id.UnmarshalJSON(wrapped.OID)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*id = ID(n.String())
	}
	return nil
}

// Deadline is a single deadline record as consumed by the calendar.
// Records are immutable once loaded.
type Deadline struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type,omitempty"`
	Due       time.Time `json:"due"`
	Completed bool      `json:"completed"`

	// NotifyBefore is the reminder lead time in hours, if set.
	NotifyBefore *float64 `json:"notify_before,omitempty"`

	// Source names the feed the record came from (json, sqlite, ics:<id>).
	Source string `json:"source,omitempty"`
}

// HasDue reports whether the record has a usable due timestamp.
func (d Deadline) HasDue() bool {
	return !d.Due.IsZero()
}

// DisplayTitle returns the title or the "Untitled" fallback.
func (d Deadline) DisplayTitle() string {
	if strings.TrimSpace(d.Title) == "" {
		return UntitledLabel
	}
	return d.Title
}

// DisplayType returns the type or the "Other" fallback.
func (d Deadline) DisplayType() string {
	if strings.TrimSpace(d.Type) == "" {
		return OtherLabel
	}
	return d.Type
}

// NotifyHours returns the reminder lead time, 0 when unset.
func (d Deadline) NotifyHours() float64 {
	if d.NotifyBefore == nil {
		return 0
	}
	return *d.NotifyBefore
}

// Record is the wire shape of a deadline in the page-embedded JSON feed.
// It mirrors the records produced by the host application, which uses
// "_id" and may wrap dates as {"$date": ...}.
type Record struct {
	ID           ID              `json:"_id"`
	AltID        ID              `json:"id"`
	Title        string          `json:"title"`
	Type         *string         `json:"type"`
	Due          json.RawMessage `json:"due"`
	Completed    bool            `json:"completed"`
	NotifyBefore *float64        `json:"notify_before"`
}

// Normalize converts a wire record into a Deadline. Naive due strings are
// interpreted in loc. An unparseable due yields a zero Due, never an error.
func (r Record) Normalize(loc *time.Location) Deadline {
	d := Deadline{
		ID:        r.ID,
		Title:     r.Title,
		Completed: r.Completed,
	}
	if d.ID == "" {
		d.ID = r.AltID
	}
	if r.Type != nil {
		d.Type = strings.TrimSpace(*r.Type)
	}
	if r.NotifyBefore != nil && *r.NotifyBefore >= 0 {
		v := *r.NotifyBefore
		d.NotifyBefore = &v
	}
	if due, ok := parseRawDue(r.Due, loc); ok {
		d.Due = due
	}
	return d
}

func parseRawDue(raw json.RawMessage, loc *time.Location) (time.Time, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, false
		}
		return ParseDue(s, loc)
	case '{':
		var wrapped struct {
			Date json.RawMessage `json:"$date"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return time.Time{}, false
		}
		return parseRawDue(wrapped.Date, loc)
	default:
		ms, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(ms).In(locOrUTC(loc)), true
	}
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// ParseDue parses a due string. Zoned inputs (RFC 3339) keep their
// instant and are converted to loc; naive inputs are read in loc.
func ParseDue(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	loc = locOrUTC(loc)

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(dateOnlyLayout, s); err == nil {
		return StartOfDay(t.Year(), t.Month(), t.Day(), loc), true
	}
	return time.Time{}, false
}

const dateOnlyLayout = "2006-01-02"

// StartOfDay returns the first instant of the civil date y-m-d in loc.
// Out-of-range days normalize as in time.Date. Where a DST change skips
// midnight, the result is the first hour that exists on that date.
func StartOfDay(y int, m time.Month, d int, loc *time.Location) time.Time {
	loc = locOrUTC(loc)
	y, m, d = time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	for h := 1; h < 24 && t.Day() != d; h++ {
		t = time.Date(y, m, d, h, 0, 0, 0, loc)
	}
	return t
}

func locOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
