package calendar

import (
	"strconv"
	"time"

	"ddlcal/internal/model"
)

// NoDeadlinesText is shown by an overlay with nothing to list.
const NoDeadlinesText = "No deadlines for this day."

// Overlay is the detail panel for a day or a single event.
type Overlay struct {
	Date  time.Time     `json:"date"`
	Title string        `json:"title"`
	Items []OverlayItem `json:"items"`

	// Placeholder is non-empty when Items is empty.
	Placeholder string `json:"placeholder,omitempty"`
}

// OverlayItem is one deadline as shown in the overlay.
type OverlayItem struct {
	ID         model.ID `json:"id"`
	Title      string   `json:"title"`
	Type       string   `json:"type"`
	TypeClass  string   `json:"type_class"`
	Time       string   `json:"time"`
	NotifyText string   `json:"notify_text"`
	Completed  bool     `json:"completed"`

	// CompletionPath is the form action for "Mark Complete". Empty when
	// the event is already completed or has no usable id.
	CompletionPath string `json:"completion_path,omitempty"`
}

// Detail builds the overlay for date. With a non-empty eventID that
// matches a loaded event, only that event is listed; otherwise every event
// due on date is. Ids are matched among the date's events before the rest
// of the list, so repeated ids resolve to the one on date.
func (c *Calendar) Detail(date time.Time, eventID model.ID) Overlay {
	date = dayStart(date, c.loc)
	dayEvents := EventsForDate(c.events, date)

	events := dayEvents
	if eventID != "" {
		if ev, ok := findByID(dayEvents, eventID); ok {
			events = []model.Deadline{ev}
		} else if ev, ok := findByID(c.events, eventID); ok {
			events = []model.Deadline{ev}
		}
	}

	ov := Overlay{
		Date:  date,
		Title: DayLabel(date),
		Items: make([]OverlayItem, 0, len(events)),
	}
	for _, ev := range events {
		ov.Items = append(ov.Items, c.overlayItem(ev))
	}
	if len(ov.Items) == 0 {
		ov.Placeholder = NoDeadlinesText
	}
	return ov
}

func (c *Calendar) overlayItem(ev model.Deadline) OverlayItem {
	item := OverlayItem{
		ID:         ev.ID,
		Title:      ev.DisplayTitle(),
		Type:       ev.DisplayType(),
		TypeClass:  TypeClass(ev.Type),
		NotifyText: "Notify " + FormatHours(ev.NotifyHours()) + " hours before",
		Completed:  ev.Completed,
	}
	if ev.HasDue() {
		item.Time = ev.Due.In(c.loc).Format(DetailTimeLayout)
	}
	if !ev.Completed && ev.ID.Valid() {
		item.CompletionPath = CompletionPath(ev.ID)
	}
	return item
}

// FormatHours prints an hour count without trailing zeros (2, 1.5).
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func findByID(events []model.Deadline, id model.ID) (model.Deadline, bool) {
	for _, ev := range events {
		if ev.ID == id {
			return ev, true
		}
	}
	return model.Deadline{}, false
}
