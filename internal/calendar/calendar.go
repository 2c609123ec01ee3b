// Package calendar builds month, week and day views of a fixed list of
// deadlines. Every operation is a pure function of the event list, a
// Cursor and the current time; adapters (HTTP, terminal) translate user
// actions into Apply calls and render the resulting View.
package calendar

import (
	"time"

	"ddlcal/internal/model"
)

// Options configures a Calendar.
type Options struct {
	// Location is the display zone used for all date bucketing.
	// Defaults to time.Local.
	Location *time.Location

	// WeekStart is the first column of month and week grids.
	// The zero value is time.Sunday.
	WeekStart time.Weekday

	// Now returns the real current time. Defaults to time.Now.
	Now func() time.Time
}

// Calendar is an immutable view renderer over a deadline list. It is safe
// for concurrent use.
type Calendar struct {
	events    []model.Deadline
	loc       *time.Location
	weekStart time.Weekday
	now       func() time.Time
}

// New returns a Calendar over a private copy of events.
func New(events []model.Deadline, opts Options) *Calendar {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.WeekStart < time.Sunday || opts.WeekStart > time.Saturday {
		opts.WeekStart = time.Sunday
	}

	cp := make([]model.Deadline, len(events))
	copy(cp, events)

	return &Calendar{
		events:    cp,
		loc:       opts.Location,
		weekStart: opts.WeekStart,
		now:       opts.Now,
	}
}

// Events returns a copy of the loaded events in input order.
func (c *Calendar) Events() []model.Deadline {
	out := make([]model.Deadline, len(c.events))
	copy(out, c.events)
	return out
}

func (c *Calendar) Location() *time.Location { return c.loc }

func (c *Calendar) WeekStart() time.Weekday { return c.weekStart }

// Today returns midnight of the real current date in the display zone.
func (c *Calendar) Today() time.Time {
	return dayStart(c.now(), c.loc)
}

// NewCursor returns the initial cursor: today, month view.
func (c *Calendar) NewCursor() Cursor {
	return NewCursor(c.now().In(c.loc))
}

// CursorAt builds a cursor anchored on date (any time of day) in the
// display zone. An invalid view falls back to month.
func (c *Calendar) CursorAt(date time.Time, view ViewMode) Cursor {
	if !view.Valid() {
		view = ViewMonth
	}
	return Cursor{Date: dayStart(date, c.loc), View: view}
}

// Apply runs a navigation action against cur using the real clock.
func (c *Calendar) Apply(cur Cursor, a Action) Cursor {
	return Apply(cur, a, c.now().In(c.loc))
}

// EventsForDate returns the events due on date in input order.
func (c *Calendar) EventsForDate(date time.Time) []model.Deadline {
	return EventsForDate(c.events, date.In(c.loc))
}

func (c *Calendar) isToday(date time.Time) bool {
	return sameDay(date, c.now().In(c.loc))
}

func dayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return model.StartOfDay(y, m, d, loc)
}

// addDays steps whole civil days. Adding a fixed duration would drift
// across DST changes.
func addDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return model.StartOfDay(y, m, d+n, t.Location())
}

// ParseDate reads a YYYY-MM-DD value as the start of that date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return model.StartOfDay(t.Year(), t.Month(), t.Day(), loc), nil
}

// sameDay compares calendar dates, reading b in a's zone.
func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
