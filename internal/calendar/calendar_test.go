package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"ddlcal/internal/model"
)

var fixedNow = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func newTestCalendar(events []model.Deadline, ws time.Weekday) *Calendar {
	return New(events, Options{
		Location:  time.UTC,
		WeekStart: ws,
		Now:       func() time.Time { return fixedNow },
	})
}

func TestMonthGridAlwaysSixWeeks(t *testing.T) {
	for _, ws := range []time.Weekday{time.Sunday, time.Monday} {
		cal := newTestCalendar(nil, ws)
		for year := 2020; year <= 2030; year++ {
			for month := time.January; month <= time.December; month++ {
				cur := cal.CursorAt(time.Date(year, month, 15, 0, 0, 0, 0, time.UTC), ViewMonth)
				cells := cal.MonthGrid(cur)
				if len(cells) != MonthCells {
					t.Fatalf("%d-%02d: got %d cells", year, month, len(cells))
				}
				inMonth := 0
				for i, cell := range cells {
					if cell.InCurrentMonth {
						inMonth++
					}
					if i > 0 && !cell.Date.Equal(cells[i-1].Date.AddDate(0, 0, 1)) {
						t.Fatalf("%d-%02d: cell %d not consecutive", year, month, i)
					}
				}
				if want := daysInMonth(year, month); inMonth != want {
					t.Fatalf("%d-%02d: in-month cells = %d, want %d", year, month, inMonth, want)
				}
				if cells[0].Date.Weekday() != ws {
					t.Fatalf("%d-%02d: first cell is %s, want %s", year, month, cells[0].Date.Weekday(), ws)
				}
			}
		}
	}
}

func TestMonthGridOctober2026(t *testing.T) {
	events := []model.Deadline{
		{ID: "a", Title: "Report", Due: at(2026, 10, 17, 9, 0)},
		{ID: "b", Title: "Overflow", Due: at(2026, 9, 28, 9, 0)},
	}
	cal := newTestCalendar(events, time.Sunday)
	cells := cal.MonthGrid(cal.NewCursor())

	if got := cells[0].Date; !got.Equal(at(2026, 9, 27, 0, 0)) {
		t.Fatalf("first cell = %v, want Sep 27", got)
	}
	if cells[0].InCurrentMonth || cells[0].Placeholder {
		t.Fatalf("overflow cell must not be in month nor show placeholder: %+v", cells[0])
	}
	if len(cells[1].Events) != 1 || cells[1].Events[0].ID != "b" {
		t.Fatalf("overflow cell should still carry its events: %+v", cells[1])
	}

	var today *Day
	for i := range cells {
		if cells[i].IsToday {
			if today != nil {
				t.Fatalf("more than one today cell")
			}
			today = &cells[i]
		}
	}
	if today == nil || today.Number() != 17 {
		t.Fatalf("today cell not found on the 17th")
	}
	if len(today.Events) != 1 || today.Placeholder {
		t.Fatalf("today cell events = %+v", today)
	}

	// Oct 1 is in month and empty.
	oct1 := cells[4]
	if !oct1.InCurrentMonth || oct1.Number() != 1 || !oct1.Placeholder {
		t.Fatalf("Oct 1 cell = %+v", oct1)
	}
}

func TestIsTodayUsesClockNotCursor(t *testing.T) {
	cal := newTestCalendar(nil, time.Sunday)
	cur := cal.CursorAt(at(2026, 11, 17, 0, 0), ViewMonth)
	for _, cell := range cal.MonthGrid(cur) {
		if cell.IsToday {
			t.Fatalf("November grid should have no today cell, got %v", cell.Date)
		}
	}
}

func TestWeekGridConsecutiveDays(t *testing.T) {
	for _, ws := range []time.Weekday{time.Sunday, time.Monday, time.Wednesday} {
		cal := newTestCalendar(nil, ws)
		for d := 0; d < 60; d++ {
			date := at(2026, 12, 1, 0, 0).AddDate(0, 0, d)
			cells := cal.WeekGrid(cal.CursorAt(date, ViewWeek))
			if len(cells) != WeekDays {
				t.Fatalf("got %d cells", len(cells))
			}
			if cells[0].Date.Weekday() != ws {
				t.Fatalf("week of %v starts on %s, want %s", date, cells[0].Date.Weekday(), ws)
			}
			contains := false
			for i, cell := range cells {
				if i > 0 && !cell.Date.Equal(cells[i-1].Date.AddDate(0, 0, 1)) {
					t.Fatalf("week of %v: cell %d not consecutive", date, i)
				}
				if cell.Date.Equal(date) {
					contains = true
				}
			}
			if !contains {
				t.Fatalf("week grid does not contain cursor date %v", date)
			}
		}
	}
}

func TestWeekGridSortsByDue(t *testing.T) {
	events := []model.Deadline{
		{ID: "late", Due: at(2026, 10, 14, 14, 0)},
		{ID: "early", Due: at(2026, 10, 14, 9, 30)},
		{ID: "mid", Due: at(2026, 10, 14, 11, 0)},
	}
	cal := newTestCalendar(events, time.Sunday)
	cells := cal.WeekGrid(cal.CursorAt(at(2026, 10, 14, 0, 0), ViewWeek))

	wed := cells[3]
	if wed.Date.Weekday() != time.Wednesday {
		t.Fatalf("cell 3 is %s", wed.Date.Weekday())
	}
	got := []model.ID{wed.Events[0].ID, wed.Events[1].ID, wed.Events[2].ID}
	want := []model.ID{"early", "mid", "late"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if !cells[0].Placeholder || wed.Placeholder {
		t.Fatalf("placeholder flags wrong: sun=%v wed=%v", cells[0].Placeholder, wed.Placeholder)
	}
	// Input slice must be untouched.
	if events[0].ID != "late" {
		t.Fatalf("input events were reordered")
	}
}

func TestDayTimelineSlots(t *testing.T) {
	events := []model.Deadline{
		{ID: "night", Due: at(2026, 10, 17, 2, 0)},
		{ID: "b", Due: at(2026, 10, 17, 14, 45)},
		{ID: "a", Due: at(2026, 10, 17, 14, 5)},
		{ID: "late", Due: at(2026, 10, 17, 23, 59)},
	}
	cal := newTestCalendar(events, time.Sunday)
	day := cal.DayTimeline(cal.NewCursor().WithView(ViewDay))

	if len(day.Slots) != DaySlots || DaySlots != 18 {
		t.Fatalf("got %d slots", len(day.Slots))
	}
	wantLabels := []string{"6:00 AM", "7:00 AM", "8:00 AM", "9:00 AM", "10:00 AM", "11:00 AM",
		"12:00 PM", "1:00 PM", "2:00 PM", "3:00 PM", "4:00 PM", "5:00 PM",
		"6:00 PM", "7:00 PM", "8:00 PM", "9:00 PM", "10:00 PM", "11:00 PM"}
	for i, slot := range day.Slots {
		if slot.Label != wantLabels[i] || slot.Hour != FirstSlotHour+i {
			t.Fatalf("slot %d = %d %q, want %q", i, slot.Hour, slot.Label, wantLabels[i])
		}
		for _, ev := range slot.Events {
			if ev.ID == "night" {
				t.Fatalf("2 AM event placed in slot %q", slot.Label)
			}
		}
	}

	two := day.Slots[14-FirstSlotHour]
	if len(two.Events) != 2 || two.Events[0].ID != "a" || two.Events[1].ID != "b" {
		t.Fatalf("2 PM slot = %+v", two.Events)
	}
	if last := day.Slots[len(day.Slots)-1]; len(last.Events) != 1 || last.Events[0].ID != "late" {
		t.Fatalf("11 PM slot = %+v", last.Events)
	}
	if day.NoEvents || !day.IsToday {
		t.Fatalf("flags: no_events=%v today=%v", day.NoEvents, day.IsToday)
	}
}

func TestDayTimelineEmptyDay(t *testing.T) {
	cal := newTestCalendar(nil, time.Sunday)
	day := cal.DayTimeline(cal.CursorAt(at(2026, 1, 1, 0, 0), ViewDay))
	if len(day.Slots) != DaySlots {
		t.Fatalf("empty day still needs all slots, got %d", len(day.Slots))
	}
	if !day.NoEvents {
		t.Fatalf("expected NoEvents banner")
	}
}

func TestEventsForDateSkipsMissingDue(t *testing.T) {
	events := []model.Deadline{
		{ID: "nodue", Title: "No due"},
		{ID: "x", Due: at(2026, 10, 17, 23, 0)},
		{ID: "y", Due: at(2026, 10, 18, 0, 0)},
		{ID: "z", Due: at(2026, 10, 17, 0, 0)},
	}
	got := EventsForDate(events, at(2026, 10, 17, 12, 0))
	if len(got) != 2 || got[0].ID != "x" || got[1].ID != "z" {
		t.Fatalf("got %+v", got)
	}
}

func TestEventsForDateUsesDisplayZone(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)
	// 20:00 UTC on the 16th is 05:00 on the 17th in Seoul.
	events := []model.Deadline{{ID: "x", Due: at(2026, 10, 16, 20, 0)}}
	cal := New(events, Options{Location: kst, Now: func() time.Time { return fixedNow }})

	if n := len(cal.EventsForDate(time.Date(2026, 10, 17, 0, 0, 0, 0, kst))); n != 1 {
		t.Fatalf("expected event on the 17th in KST, got %d", n)
	}
	if n := len(cal.EventsForDate(time.Date(2026, 10, 16, 0, 0, 0, 0, kst))); n != 0 {
		t.Fatalf("expected nothing on the 16th in KST, got %d", n)
	}
}

func TestSortByDueStable(t *testing.T) {
	events := []model.Deadline{
		{ID: "14", Due: at(2026, 5, 1, 14, 0)},
		{ID: "0930", Due: at(2026, 5, 1, 9, 30)},
		{ID: "11", Due: at(2026, 5, 1, 11, 0)},
		{ID: "0930-second", Due: at(2026, 5, 1, 9, 30)},
	}
	bucket := EventsForDate(events, at(2026, 5, 1, 0, 0))
	SortByDue(bucket)
	want := []model.ID{"0930", "0930-second", "11", "14"}
	for i, ev := range bucket {
		if ev.ID != want[i] {
			t.Fatalf("position %d = %s, want %s", i, ev.ID, want[i])
		}
	}
}

func TestTypeClass(t *testing.T) {
	cases := map[string]string{
		"Code Review":        "code-review",
		"  Code \t  Review ": "code-review",
		"Exam":               "exam",
		"":                   OtherTypeClass,
		"   ":                OtherTypeClass,
	}
	for in, want := range cases {
		for i := 0; i < 2; i++ {
			if got := TypeClass(in); got != want {
				t.Fatalf("TypeClass(%q) = %q, want %q", in, got, want)
			}
		}
	}
}

func TestNavigate(t *testing.T) {
	cases := []struct {
		name string
		from Cursor
		dir  Direction
		want time.Time
	}{
		{"month back from Mar 31", Cursor{at(2026, 3, 31, 0, 0), ViewMonth}, Back, at(2026, 2, 28, 0, 0)},
		{"month back leap year", Cursor{at(2024, 3, 31, 0, 0), ViewMonth}, Back, at(2024, 2, 29, 0, 0)},
		{"month back across year", Cursor{at(2026, 1, 31, 0, 0), ViewMonth}, Back, at(2025, 12, 31, 0, 0)},
		{"month forward from Jan 31", Cursor{at(2026, 1, 31, 0, 0), ViewMonth}, Forward, at(2026, 2, 28, 0, 0)},
		{"month back from May 31", Cursor{at(2026, 5, 31, 0, 0), ViewMonth}, Back, at(2026, 4, 30, 0, 0)},
		{"week forward", Cursor{at(2026, 12, 29, 0, 0), ViewWeek}, Forward, at(2027, 1, 5, 0, 0)},
		{"week back", Cursor{at(2026, 10, 17, 0, 0), ViewWeek}, Back, at(2026, 10, 10, 0, 0)},
		{"day forward", Cursor{at(2026, 12, 31, 0, 0), ViewDay}, Forward, at(2027, 1, 1, 0, 0)},
		{"day back", Cursor{at(2026, 3, 1, 0, 0), ViewDay}, Back, at(2026, 2, 28, 0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Navigate(tc.from, tc.dir)
			if !got.Date.Equal(tc.want) {
				t.Fatalf("got %v, want %v", got.Date, tc.want)
			}
			if got.View != tc.from.View {
				t.Fatalf("view changed to %s", got.View)
			}
		})
	}
}

func TestResetToTodayIdempotent(t *testing.T) {
	cur := Cursor{Date: at(2020, 2, 29, 0, 0), View: ViewWeek}
	once := ResetToToday(cur, fixedNow)
	twice := ResetToToday(once, fixedNow)
	if !once.Date.Equal(twice.Date) || once.View != twice.View {
		t.Fatalf("not idempotent: %+v vs %+v", once, twice)
	}
	if !once.Date.Equal(at(2026, 10, 17, 0, 0)) || once.View != ViewWeek {
		t.Fatalf("got %+v", once)
	}
}

func TestApply(t *testing.T) {
	start := Cursor{Date: at(2026, 10, 17, 0, 0), View: ViewMonth}

	if got := Apply(start, ActionNext, fixedNow); !got.Date.Equal(at(2026, 11, 17, 0, 0)) {
		t.Fatalf("next = %v", got.Date)
	}
	if got := Apply(start, SwitchView(ViewDay), fixedNow); got.View != ViewDay || !got.Date.Equal(start.Date) {
		t.Fatalf("view switch = %+v", got)
	}
	if got := Apply(start, Action("view:year"), fixedNow); got != start {
		t.Fatalf("unknown view should be ignored, got %+v", got)
	}
	if got := Apply(start, Action("jump"), fixedNow); got != start {
		t.Fatalf("unknown action should be ignored, got %+v", got)
	}
	moved := Apply(start, ActionPrev, fixedNow)
	if got := Apply(moved, ActionToday, fixedNow); !got.Date.Equal(start.Date) {
		t.Fatalf("today = %v", got.Date)
	}
}

func TestHeaderLabel(t *testing.T) {
	sun := newTestCalendar(nil, time.Sunday)
	mon := newTestCalendar(nil, time.Monday)

	cases := []struct {
		name string
		cal  *Calendar
		cur  Cursor
		want string
	}{
		{"month", sun, Cursor{at(2026, 10, 17, 0, 0), ViewMonth}, "October 2026"},
		{"week", sun, Cursor{at(2026, 10, 17, 0, 0), ViewWeek}, "Oct 11 – Oct 17, 2026"},
		{"week monday start", mon, Cursor{at(2026, 10, 17, 0, 0), ViewWeek}, "Oct 12 – Oct 18, 2026"},
		{"week across months", sun, Cursor{at(2026, 10, 1, 0, 0), ViewWeek}, "Sep 27 – Oct 3, 2026"},
		{"week across years", sun, Cursor{at(2026, 12, 31, 0, 0), ViewWeek}, "Dec 27, 2026 – Jan 2, 2027"},
		{"day", sun, Cursor{at(2026, 10, 17, 0, 0), ViewDay}, "Saturday, October 17, 2026"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cal.HeaderLabel(tc.cur); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDetail(t *testing.T) {
	notify := 2.0
	events := []model.Deadline{
		{ID: "a", Title: "Essay", Type: "Homework", Due: at(2026, 10, 17, 14, 30), NotifyBefore: &notify},
		{ID: "b", Due: at(2026, 10, 17, 9, 0), Completed: true},
		{Title: "No id", Due: at(2026, 10, 17, 8, 0)},
	}
	cal := newTestCalendar(events, time.Sunday)

	day := cal.Detail(at(2026, 10, 17, 0, 0), "")
	if day.Title != "Saturday, October 17, 2026" || len(day.Items) != 3 || day.Placeholder != "" {
		t.Fatalf("day overlay = %+v", day)
	}
	a := day.Items[0]
	if a.Time != "02:30 PM" || a.NotifyText != "Notify 2 hours before" || a.CompletionPath != "/projects/complete/a" {
		t.Fatalf("item a = %+v", a)
	}
	if a.TypeClass != "homework" {
		t.Fatalf("type class = %q", a.TypeClass)
	}
	b := day.Items[1]
	if b.Title != model.UntitledLabel || b.Type != model.OtherLabel || b.CompletionPath != "" {
		t.Fatalf("item b = %+v", b)
	}
	if b.NotifyText != "Notify 0 hours before" {
		t.Fatalf("unset notify text = %q", b.NotifyText)
	}
	if day.Items[2].CompletionPath != "" {
		t.Fatalf("item without id must not offer completion")
	}

	single := cal.Detail(at(2026, 10, 17, 0, 0), "b")
	if len(single.Items) != 1 || single.Items[0].ID != "b" {
		t.Fatalf("single overlay = %+v", single)
	}

	empty := cal.Detail(at(2026, 10, 18, 0, 0), "")
	if len(empty.Items) != 0 || empty.Placeholder != NoDeadlinesText {
		t.Fatalf("empty overlay = %+v", empty)
	}
}

func TestDetailPrefersEventOnDate(t *testing.T) {
	events := []model.Deadline{
		{ID: "unknown", Title: "Earlier", Due: at(2026, 10, 10, 9, 0)},
		{ID: "unknown", Title: "Later", Due: at(2026, 10, 17, 9, 0)},
		{ID: "solo", Title: "Elsewhere", Due: at(2026, 10, 3, 9, 0)},
	}
	cal := newTestCalendar(events, time.Sunday)

	ov := cal.Detail(at(2026, 10, 17, 0, 0), "unknown")
	if len(ov.Items) != 1 || ov.Items[0].Title != "Later" {
		t.Fatalf("overlay = %+v", ov.Items)
	}
	ov = cal.Detail(at(2026, 10, 17, 0, 0), "solo")
	if len(ov.Items) != 1 || ov.Items[0].Title != "Elsewhere" {
		t.Fatalf("id outside date = %+v", ov.Items)
	}
	ov = cal.Detail(at(2026, 10, 17, 0, 0), "missing")
	if len(ov.Items) != 1 || ov.Items[0].Title != "Later" {
		t.Fatalf("unknown id should list the date: %+v", ov.Items)
	}
}

func TestWeekGridAcrossNewYear(t *testing.T) {
	cal := newTestCalendar(nil, time.Sunday)
	cells := cal.WeekGrid(cal.CursorAt(at(2026, 12, 30, 0, 0), ViewWeek))
	for _, cell := range cells {
		want := cell.Date.Year() == 2026
		if cell.InCurrentMonth != want {
			t.Fatalf("%s: InCurrentMonth = %v", cell.Date.Format(DateLayout), cell.InCurrentMonth)
		}
	}
	if cells[len(cells)-1].Date.Format(DateLayout) != "2027-01-02" {
		t.Fatalf("last cell = %v", cells[len(cells)-1].Date)
	}
}

type recordingCompleter struct {
	ids []model.ID
	err error
}

func (r *recordingCompleter) Complete(_ context.Context, id model.ID) error {
	r.ids = append(r.ids, id)
	return r.err
}

func TestRequestCompletion(t *testing.T) {
	rc := &recordingCompleter{}
	ctx := context.Background()

	for _, id := range []model.ID{"", model.UnknownID} {
		if err := RequestCompletion(ctx, rc, id); err != nil {
			t.Fatalf("invalid id: %v", err)
		}
	}
	if len(rc.ids) != 0 {
		t.Fatalf("invalid ids reached the completer: %v", rc.ids)
	}

	if err := RequestCompletion(ctx, rc, "a1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(rc.ids) != 1 || rc.ids[0] != "a1" {
		t.Fatalf("completer got %v", rc.ids)
	}

	rc.err = errors.New("down")
	if err := RequestCompletion(ctx, rc, "a2"); !errors.Is(err, rc.err) {
		t.Fatalf("expected completer error, got %v", err)
	}
}

func TestCompletionPathEscapes(t *testing.T) {
	if got := CompletionPath("a/b c"); got != "/projects/complete/a%2Fb%20c" {
		t.Fatalf("got %q", got)
	}
}

func TestRender(t *testing.T) {
	cal := newTestCalendar(nil, time.Monday)

	month := cal.Render(cal.NewCursor())
	if month.Mode != ViewMonth || len(month.Month) != MonthCells || month.Week != nil || month.Day != nil {
		t.Fatalf("month view = %+v", month)
	}
	if month.Weekdays[0] != "Mon" || month.Weekdays[6] != "Sun" {
		t.Fatalf("weekdays = %v", month.Weekdays)
	}
	if month.Date != "2026-10-17" {
		t.Fatalf("date = %q", month.Date)
	}

	week := cal.Render(cal.NewCursor().WithView(ViewWeek))
	if len(week.Week) != WeekDays || week.Weekdays != nil {
		t.Fatalf("week view = %+v", week)
	}

	day := cal.Render(Cursor{Date: fixedNow, View: "bogus"})
	if day.Mode != ViewMonth {
		t.Fatalf("invalid view should render month, got %s", day.Mode)
	}
}
