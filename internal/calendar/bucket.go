package calendar

import (
	"slices"
	"strings"
	"time"

	"ddlcal/internal/model"
)

// OtherTypeClass is the class token for events without a type.
const OtherTypeClass = "other"

// EventsForDate filters events due on the calendar date of date, compared
// in date's zone. Events without a due are skipped. Input order is kept.
func EventsForDate(events []model.Deadline, date time.Time) []model.Deadline {
	var out []model.Deadline
	for _, ev := range events {
		if !ev.HasDue() {
			continue
		}
		if sameDay(date, ev.Due) {
			out = append(out, ev)
		}
	}
	return out
}

// EventsForHour narrows EventsForDate to a single clock hour.
func EventsForHour(events []model.Deadline, date time.Time, hour int) []model.Deadline {
	var out []model.Deadline
	for _, ev := range EventsForDate(events, date) {
		if ev.Due.In(date.Location()).Hour() == hour {
			out = append(out, ev)
		}
	}
	return out
}

// SortByDue sorts ascending by due timestamp in place. Ties keep their
// input order.
func SortByDue(events []model.Deadline) {
	slices.SortStableFunc(events, func(a, b model.Deadline) int {
		return a.Due.Compare(b.Due)
	})
}

// TypeClass turns an event type into a CSS class token: lower-cased, with
// whitespace runs collapsed to "-". Blank types map to OtherTypeClass.
func TypeClass(eventType string) string {
	fields := strings.Fields(strings.ToLower(eventType))
	if len(fields) == 0 {
		return OtherTypeClass
	}
	return strings.Join(fields, "-")
}

func sortedCopy(events []model.Deadline) []model.Deadline {
	out := slices.Clone(events)
	SortByDue(out)
	return out
}
