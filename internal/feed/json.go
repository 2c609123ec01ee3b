// Package feed loads the deadline list the calendar renders. Every source
// normalizes records at ingestion: ids become model.ID, dues are parsed
// in the display zone, and bad records degrade rather than fail the load.
package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	appLog "ddlcal/internal/log"
	"ddlcal/internal/model"
)

// DecodeJSON reads a serialized deadline array. Elements that are not
// objects are skipped; only a payload that is not an array is an error.
func DecodeJSON(r io.Reader, loc *time.Location) ([]model.Deadline, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode deadline array: %w", err)
	}

	out := make([]model.Deadline, 0, len(raw))
	for i, msg := range raw {
		var rec model.Record
		if err := json.Unmarshal(msg, &rec); err != nil {
			appLog.Warn("feed: skipping malformed record", "index", i, "err", err)
			continue
		}
		d := rec.Normalize(loc)
		d.Source = "json"
		if !d.HasDue() {
			appLog.Debug("feed: record without usable due", "index", i, "id", d.ID)
		}
		out = append(out, d)
	}
	return out, nil
}

// LoadJSONFile decodes the deadline array stored at path.
func LoadJSONFile(path string, loc *time.Location) ([]model.Deadline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	events, err := DecodeJSON(f, loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

// EncodeJSON writes deadlines in the page-embedded wire shape, so a page
// can hand them back to DecodeJSON unchanged.
func EncodeJSON(w io.Writer, events []model.Deadline) error {
	type wire struct {
		ID           model.ID `json:"_id"`
		Title        string   `json:"title"`
		Type         *string  `json:"type"`
		Due          *string  `json:"due"`
		Completed    bool     `json:"completed"`
		NotifyBefore *float64 `json:"notify_before,omitempty"`
	}
	out := make([]wire, 0, len(events))
	for _, ev := range events {
		rec := wire{
			ID:           ev.ID,
			Title:        ev.Title,
			Completed:    ev.Completed,
			NotifyBefore: ev.NotifyBefore,
		}
		if ev.Type != "" {
			t := ev.Type
			rec.Type = &t
		}
		if ev.HasDue() {
			s := ev.Due.Format(time.RFC3339)
			rec.Due = &s
		}
		out = append(out, rec)
	}
	return json.NewEncoder(w).Encode(out)
}
