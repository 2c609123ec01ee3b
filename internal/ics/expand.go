package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "ddlcal/internal/log"
	"ddlcal/internal/model"
)

const (
	defaultMaxOccurrences = 500

	// occurrenceKeyLayout suffixes recurring UIDs so every occurrence has
	// its own deadline id.
	occurrenceKeyLayout = "20060102T150405"
)

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// DisplayLocation is the zone deadlines are converted to. Defaults to
	// time.Local.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd bound recurring occurrences (inclusive).
	// Non-recurring items are always kept.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrences caps each recurring item.
	MaxOccurrences int
}

// ExpandResult carries deadlines plus the UIDs that hit the cap.
type ExpandResult struct {
	Deadlines       []model.Deadline
	TruncatedEvents []string
}

// Expand turns parsed items into deadlines, expanding RRULEs (minus
// EXDATEs) inside the configured window. Output follows input order; the
// occurrences of one item are chronological.
func Expand(items []ParsedDeadline, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrences <= 0 {
		cfg.MaxOccurrences = defaultMaxOccurrences
	}

	result.Deadlines = make([]model.Deadline, 0, len(items))
	for _, it := range items {
		if it.RawRRule == "" {
			result.Deadlines = append(result.Deadlines, makeDeadline(it, it.UID, it.Due, cfg.DisplayLocation))
			continue
		}

		occ, hitCap := expandRecurring(it, cfg)
		result.Deadlines = append(result.Deadlines, occ...)
		if hitCap {
			result.TruncatedEvents = append(result.TruncatedEvents, it.UID)
			appLog.Warn("expand: truncated occurrences",
				"uid", it.UID,
				"cap", cfg.MaxOccurrences,
			)
		}
	}
	return result, nil
}

func expandRecurring(it ParsedDeadline, cfg ExpandConfig) ([]model.Deadline, bool) {
	r, err := rrule.StrToRRule(it.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", it.UID, "rrule", it.RawRRule)
		// Keep the first instance rather than dropping the deadline.
		return []model.Deadline{makeDeadline(it, it.UID, it.Due, cfg.DisplayLocation)}, false
	}
	r.DTStart(it.Due)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range it.ExDates {
		set.ExDate(ex.In(it.Due.Location()))
	}

	times := set.Between(
		cfg.RangeStart.In(it.Due.Location()),
		cfg.RangeEnd.In(it.Due.Location()),
		true,
	)
	hitCap := false
	if len(times) > cfg.MaxOccurrences {
		times = times[:cfg.MaxOccurrences]
		hitCap = true
	}

	out := make([]model.Deadline, 0, len(times))
	for _, t := range times {
		id := it.UID + "@" + t.Format(occurrenceKeyLayout)
		out = append(out, makeDeadline(it, id, t, cfg.DisplayLocation))
	}
	return out, hitCap
}

// makeDeadline converts one occurrence. All-day items are due at the
// start of their date in the display zone.
func makeDeadline(it ParsedDeadline, id string, due time.Time, loc *time.Location) model.Deadline {
	if it.AllDay {
		y, m, d := due.Date()
		due = model.StartOfDay(y, m, d, loc)
	} else {
		due = due.In(loc)
	}

	d := model.Deadline{
		ID:        model.ID(id),
		Title:     it.Summary,
		Type:      it.Category,
		Due:       due,
		Completed: it.Completed,
		Source:    "ics:" + it.Source.ID,
	}
	if it.NotifyBefore != nil {
		v := *it.NotifyBefore
		d.NotifyBefore = &v
	}
	return d
}
