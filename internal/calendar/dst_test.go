package calendar

import (
	"testing"
	"time"
	_ "time/tzdata"

	"ddlcal/internal/model"
)

// In America/Sao_Paulo, 2018-11-04 00:00 did not exist: clocks jumped to
// 01:00.
func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return loc
}

func civil(t time.Time) string {
	return t.Format(DateLayout)
}

func TestMonthGridSkippedMidnight(t *testing.T) {
	loc := saoPaulo(t)
	for _, ws := range []time.Weekday{time.Sunday, time.Monday} {
		cal := New(nil, Options{Location: loc, WeekStart: ws, Now: func() time.Time { return fixedNow }})
		for _, month := range []time.Month{time.October, time.November} {
			cells := cal.MonthGrid(cal.CursorAt(time.Date(2018, month, 15, 12, 0, 0, 0, loc), ViewMonth))
			if len(cells) != MonthCells {
				t.Fatalf("%s: got %d cells", month, len(cells))
			}
			if cells[0].Date.Weekday() != ws {
				t.Fatalf("%s: first cell is %s, want %s", month, cells[0].Date.Weekday(), ws)
			}
			start := cells[0].Date
			seen := map[string]bool{}
			for i, cell := range cells {
				got := civil(cell.Date)
				if seen[got] {
					t.Fatalf("%s week start %s: duplicate %s", month, ws, got)
				}
				seen[got] = true
				want := time.Date(start.Year(), start.Month(), start.Day()+i, 12, 0, 0, 0, time.UTC).Format(DateLayout)
				if got != want {
					t.Fatalf("%s: cell %d = %s, want %s", month, i, got, want)
				}
			}
		}
	}
}

func TestWeekGridSkippedMidnight(t *testing.T) {
	loc := saoPaulo(t)
	cal := New(nil, Options{Location: loc, Now: func() time.Time { return fixedNow }})
	cur := cal.CursorAt(time.Date(2018, 11, 5, 12, 0, 0, 0, loc), ViewWeek)

	cells := cal.WeekGrid(cur)
	want := []string{"2018-11-04", "2018-11-05", "2018-11-06", "2018-11-07", "2018-11-08", "2018-11-09", "2018-11-10"}
	for i, cell := range cells {
		if civil(cell.Date) != want[i] {
			t.Fatalf("cell %d = %s, want %s", i, cell.Date, want[i])
		}
	}
	if cells[0].Date.Weekday() != time.Sunday {
		t.Fatalf("week starts on %s", cells[0].Date.Weekday())
	}
	if got := cal.HeaderLabel(cur); got != "Nov 4 – Nov 10, 2018" {
		t.Fatalf("label = %q", got)
	}
}

func TestNavigateAcrossSkippedMidnight(t *testing.T) {
	loc := saoPaulo(t)
	cal := New(nil, Options{Location: loc, Now: func() time.Time { return fixedNow }})

	cur := cal.CursorAt(time.Date(2018, 11, 3, 12, 0, 0, 0, loc), ViewDay)
	for _, want := range []string{"2018-11-04", "2018-11-05"} {
		cur = Navigate(cur, Forward)
		if civil(cur.Date) != want {
			t.Fatalf("next day = %s, want %s", cur.Date, want)
		}
	}
	for _, want := range []string{"2018-11-04", "2018-11-03"} {
		cur = Navigate(cur, Back)
		if civil(cur.Date) != want {
			t.Fatalf("previous day = %s, want %s", cur.Date, want)
		}
	}

	week := Navigate(cal.CursorAt(time.Date(2018, 10, 28, 12, 0, 0, 0, loc), ViewWeek), Forward)
	if civil(week.Date) != "2018-11-04" {
		t.Fatalf("next week = %s", week.Date)
	}
	month := Navigate(cal.CursorAt(time.Date(2018, 10, 4, 12, 0, 0, 0, loc), ViewMonth), Forward)
	if civil(month.Date) != "2018-11-04" {
		t.Fatalf("next month = %s", month.Date)
	}
}

func TestParseDateSkippedMidnight(t *testing.T) {
	loc := saoPaulo(t)
	d, err := ParseDate("2018-11-04", loc)
	if err != nil {
		t.Fatal(err)
	}
	if civil(d) != "2018-11-04" || d.Hour() != 1 {
		t.Fatalf("ParseDate = %s", d)
	}
	if _, err := ParseDate("2018-13-01", loc); err == nil {
		t.Fatalf("invalid date should fail")
	}
}

func TestDayBucketsSkippedMidnight(t *testing.T) {
	loc := saoPaulo(t)
	events := []model.Deadline{
		{ID: "sat", Due: time.Date(2018, 11, 3, 22, 0, 0, 0, loc)},
		{ID: "sun", Due: time.Date(2018, 11, 4, 9, 0, 0, 0, loc)},
	}
	cal := New(events, Options{Location: loc, Now: func() time.Time { return fixedNow }})
	day := cal.DayTimeline(cal.CursorAt(time.Date(2018, 11, 4, 12, 0, 0, 0, loc), ViewDay))
	if civil(day.Date) != "2018-11-04" || day.NoEvents {
		t.Fatalf("day view = %+v", day)
	}
	for _, slot := range day.Slots {
		for _, ev := range slot.Events {
			if ev.ID != "sun" || slot.Hour != 9 {
				t.Fatalf("slot %d holds %s", slot.Hour, ev.ID)
			}
		}
	}
}
