package calendar

import (
	"strings"
	"time"

	"ddlcal/internal/model"
)

// ViewMode is the grid granularity.
type ViewMode string

const (
	ViewMonth ViewMode = "month"
	ViewWeek  ViewMode = "week"
	ViewDay   ViewMode = "day"
)

// ViewModes lists the modes in selector order.
var ViewModes = []ViewMode{ViewMonth, ViewWeek, ViewDay}

func (v ViewMode) Valid() bool {
	switch v {
	case ViewMonth, ViewWeek, ViewDay:
		return true
	}
	return false
}

// ParseViewMode is case-insensitive and reports whether s named a mode.
func ParseViewMode(s string) (ViewMode, bool) {
	v := ViewMode(strings.ToLower(strings.TrimSpace(s)))
	return v, v.Valid()
}

// Cursor is the anchor date plus the active view. It is a value: every
// transition returns a new Cursor.
type Cursor struct {
	Date time.Time
	View ViewMode
}

// NewCursor anchors on the calendar date of now, in now's zone, month view.
func NewCursor(now time.Time) Cursor {
	return Cursor{Date: dayStart(now, now.Location()), View: ViewMonth}
}

// Direction is the navigation direction.
type Direction int

const (
	Back    Direction = -1
	Forward Direction = 1
)

// Navigate shifts the cursor by one unit of its own view: a month, seven
// days or one day. Month steps keep the day of month, clamped to the last
// day of the target month (Mar 31 back one month is Feb 28/29).
func Navigate(cur Cursor, dir Direction) Cursor {
	if dir != Back && dir != Forward {
		return cur
	}
	view := cur.View
	if !view.Valid() {
		view = ViewMonth
	}

	next := cur
	next.View = view
	switch view {
	case ViewMonth:
		next.Date = addMonthsClamped(cur.Date, int(dir))
	case ViewWeek:
		next.Date = addDays(cur.Date, 7*int(dir))
	case ViewDay:
		next.Date = addDays(cur.Date, int(dir))
	}
	return next
}

// ResetToToday moves the anchor to the calendar date of now and keeps the
// view.
func ResetToToday(cur Cursor, now time.Time) Cursor {
	loc := now.Location()
	if !cur.Date.IsZero() {
		loc = cur.Date.Location()
	}
	return Cursor{Date: dayStart(now, loc), View: cur.View}
}

// WithView switches the view and keeps the anchor date.
func (cur Cursor) WithView(v ViewMode) Cursor {
	if !v.Valid() {
		return cur
	}
	cur.View = v
	return cur
}

// DateParam is the cursor date in query-string form.
func (cur Cursor) DateParam() string {
	return cur.Date.Format(DateLayout)
}

// DateLayout is the wire form of a cursor or detail date.
const DateLayout = "2006-01-02"

// Action is a user interaction that transitions a cursor.
type Action string

const (
	ActionNone  Action = ""
	ActionPrev  Action = "prev"
	ActionNext  Action = "next"
	ActionToday Action = "today"
)

const viewActionPrefix = "view:"

// SwitchView returns the action that selects view v.
func SwitchView(v ViewMode) Action {
	return Action(viewActionPrefix + string(v))
}

// Apply is the single state transition used by every adapter. Unknown
// actions leave the cursor unchanged.
func Apply(cur Cursor, a Action, now time.Time) Cursor {
	switch a {
	case ActionPrev:
		return Navigate(cur, Back)
	case ActionNext:
		return Navigate(cur, Forward)
	case ActionToday:
		return ResetToToday(cur, now)
	}
	if v, ok := strings.CutPrefix(string(a), viewActionPrefix); ok {
		if mode, valid := ParseViewMode(v); valid {
			return cur.WithView(mode)
		}
	}
	return cur
}

func daysInMonth(y int, m time.Month) int {
	// Day 0 of next month is last day of this month.
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	ty, tm, _ := time.Date(y, m+time.Month(n), 1, 12, 0, 0, 0, time.UTC).Date()
	if last := daysInMonth(ty, tm); d > last {
		d = last
	}
	return model.StartOfDay(ty, tm, d, t.Location())
}
