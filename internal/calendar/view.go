package calendar

// View is everything an adapter needs to draw one cursor position.
// Exactly one of Month, Week or Day is populated, matching Mode.
type View struct {
	Mode     ViewMode `json:"view"`
	Date     string   `json:"date"`
	Label    string   `json:"label"`
	Weekdays []string `json:"weekdays,omitempty"`

	Month []Day    `json:"month,omitempty"`
	Week  []Day    `json:"week,omitempty"`
	Day   *DayView `json:"day,omitempty"`
}

// Render computes the View for cur.
func (c *Calendar) Render(cur Cursor) View {
	if !cur.View.Valid() {
		cur.View = ViewMonth
	}
	cur.Date = dayStart(cur.Date, c.loc)

	v := View{
		Mode:  cur.View,
		Date:  cur.DateParam(),
		Label: c.HeaderLabel(cur),
	}
	switch cur.View {
	case ViewMonth:
		v.Weekdays = WeekdayNames(c.weekStart)
		v.Month = c.MonthGrid(cur)
	case ViewWeek:
		v.Week = c.WeekGrid(cur)
	case ViewDay:
		day := c.DayTimeline(cur)
		v.Day = &day
	}
	return v
}
