package calendar

import (
	"strconv"
	"time"
)

const (
	monthLabelLayout = "January 2006"
	dayLabelLayout   = "Monday, January 2, 2006"
	shortDateLayout  = "Jan 2"
	shortYearLayout  = "Jan 2, 2006"

	// EventTimeLayout formats due times in grids ("2:30 PM").
	EventTimeLayout = "3:04 PM"
	// DetailTimeLayout formats due times in the overlay ("02:30 PM").
	DetailTimeLayout = "03:04 PM"

	// labelDash separates the ends of a week range.
	labelDash = " – "
)

// HeaderLabel describes what the cursor is showing: "October 2026",
// "Oct 11 – Oct 17, 2026" or "Saturday, October 17, 2026". A week that
// straddles New Year carries both years: "Dec 27, 2026 – Jan 2, 2027".
func (c *Calendar) HeaderLabel(cur Cursor) string {
	date := dayStart(cur.Date, c.loc)
	switch cur.View {
	case ViewWeek:
		start := WeekStartOf(date, c.weekStart)
		end := addDays(start, WeekDays-1)
		return WeekRangeLabel(start, end)
	case ViewDay:
		return DayLabel(date)
	default:
		return date.Format(monthLabelLayout)
	}
}

// WeekRangeLabel formats an inclusive date range.
func WeekRangeLabel(start, end time.Time) string {
	if start.Year() != end.Year() {
		return start.Format(shortYearLayout) + labelDash + end.Format(shortYearLayout)
	}
	return start.Format(shortDateLayout) + labelDash + end.Format(shortDateLayout) + ", " + strconv.Itoa(start.Year())
}

// DayLabel is the long weekday + date form.
func DayLabel(date time.Time) string {
	return date.Format(dayLabelLayout)
}

// HourLabel renders a timeline hour: 6 → "6:00 AM", 12 → "12:00 PM".
func HourLabel(hour int) string {
	return time.Date(2000, 1, 1, hour, 0, 0, 0, time.UTC).Format(EventTimeLayout)
}

// WeekdayNames returns short weekday names starting at ws.
func WeekdayNames(ws time.Weekday) []string {
	names := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		names = append(names, time.Weekday((int(ws)+i)%7).String()[:3])
	}
	return names
}
