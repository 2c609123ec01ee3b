package calendar

import (
	"time"

	"ddlcal/internal/model"
)

const (
	// MonthCells is the fixed 6x7 month grid size.
	MonthCells = 42
	// WeekDays is the number of cells in a week grid.
	WeekDays = 7

	// FirstSlotHour and LastSlotHour bound the day timeline (inclusive).
	FirstSlotHour = 6
	LastSlotHour  = 23
	// DaySlots is the number of one-hour slots in the day timeline.
	DaySlots = LastSlotHour - FirstSlotHour + 1
)

// Day is one cell of a month or week grid.
type Day struct {
	Date           time.Time        `json:"date"`
	InCurrentMonth bool             `json:"in_current_month"`
	IsToday        bool             `json:"is_today"`
	Events         []model.Deadline `json:"events"`

	// Placeholder is set when the cell should show "No deadlines".
	// Overflow cells of a month grid never do.
	Placeholder bool `json:"placeholder"`
}

// Number is the day of month shown in the cell.
func (d Day) Number() int { return d.Date.Day() }

// Slot is one hour of the day timeline.
type Slot struct {
	Hour   int              `json:"hour"`
	Label  string           `json:"label"`
	Events []model.Deadline `json:"events"`
}

// DayView is the day timeline for a single date.
type DayView struct {
	Date    time.Time `json:"date"`
	IsToday bool      `json:"is_today"`
	Slots   []Slot    `json:"slots"`

	// NoEvents is set when nothing is due on the date at all, including
	// hours outside the timeline.
	NoEvents bool `json:"no_events"`
}

// WeekStartOf returns the start of the first day of the week containing
// date, for weeks beginning on ws.
func WeekStartOf(date time.Time, ws time.Weekday) time.Time {
	day := dayStart(date, date.Location())
	offset := (int(day.Weekday()) - int(ws) + 7) % 7
	return addDays(day, -offset)
}

// MonthGrid returns 42 cells covering the cursor's month: trailing days of
// the previous month up to the week start, the month itself, then leading
// days of the next month.
func (c *Calendar) MonthGrid(cur Cursor) []Day {
	anchor := dayStart(cur.Date, c.loc)
	y, m, _ := anchor.Date()
	first := model.StartOfDay(y, m, 1, c.loc)
	start := WeekStartOf(first, c.weekStart)

	cells := make([]Day, 0, MonthCells)
	for i := 0; i < MonthCells; i++ {
		date := addDays(start, i)
		inMonth := date.Month() == m && date.Year() == y
		events := EventsForDate(c.events, date)
		cells = append(cells, Day{
			Date:           date,
			InCurrentMonth: inMonth,
			IsToday:        c.isToday(date),
			Events:         events,
			Placeholder:    inMonth && len(events) == 0,
		})
	}
	return cells
}

// WeekGrid returns the seven days of the week containing the cursor date,
// each with its events sorted by due.
func (c *Calendar) WeekGrid(cur Cursor) []Day {
	start := WeekStartOf(dayStart(cur.Date, c.loc), c.weekStart)
	year, month, _ := cur.Date.In(c.loc).Date()

	cells := make([]Day, 0, WeekDays)
	for i := 0; i < WeekDays; i++ {
		date := addDays(start, i)
		events := sortedCopy(EventsForDate(c.events, date))
		cells = append(cells, Day{
			Date:           date,
			InCurrentMonth: date.Year() == year && date.Month() == month,
			IsToday:        c.isToday(date),
			Events:         events,
			Placeholder:    len(events) == 0,
		})
	}
	return cells
}

// DayTimeline returns the 6 AM to 11 PM hourly slots for the cursor date.
// Events due outside those hours are counted for NoEvents but never
// placed in a slot.
func (c *Calendar) DayTimeline(cur Cursor) DayView {
	date := dayStart(cur.Date, c.loc)
	dayEvents := sortedCopy(EventsForDate(c.events, date))

	slots := make([]Slot, 0, DaySlots)
	for hour := FirstSlotHour; hour <= LastSlotHour; hour++ {
		slot := Slot{Hour: hour, Label: HourLabel(hour)}
		for _, ev := range dayEvents {
			if ev.Due.In(c.loc).Hour() == hour {
				slot.Events = append(slot.Events, ev)
			}
		}
		slots = append(slots, slot)
	}

	return DayView{
		Date:     date,
		IsToday:  c.isToday(date),
		Slots:    slots,
		NoEvents: len(dayEvents) == 0,
	}
}
