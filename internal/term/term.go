// Package term draws calendar views as plain terminal text.
package term

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	xterm "golang.org/x/term"

	"ddlcal/internal/calendar"
	"ddlcal/internal/model"
)

// DefaultWidth is used when stdout is not a terminal.
const DefaultWidth = 100

const (
	minCellWidth   = 8
	monthCellLines = 4
	ellipsis       = "…"
)

var (
	labelStyle    = lipgloss.NewStyle().Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	todayStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	completeStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("244"))
)

// Width reports the width of stdout, or DefaultWidth when unknown.
func Width() int {
	w, _, err := xterm.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}

// RenderView draws v in at most width columns.
func RenderView(v calendar.View, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, labelStyle.Render(v.Label)))
	b.WriteString("\n\n")

	switch {
	case v.Day != nil:
		b.WriteString(renderDay(*v.Day, width))
	case len(v.Week) > 0:
		b.WriteString(renderWeek(v.Week, width))
	default:
		b.WriteString(renderMonth(v, width))
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// cellWidth splits width into seven columns with a one-column separator.
func cellWidth(width int) int {
	w := (width - (calendar.WeekDays - 1)) / calendar.WeekDays
	if w < minCellWidth {
		w = minCellWidth
	}
	return w
}

func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return truncate.StringWithTail(s, uint(width), ellipsis)
}

func joinRow(cells []string, height int) string {
	sep := strings.TrimSuffix(strings.Repeat("|\n", height), "\n")
	parts := make([]string, 0, len(cells)*2)
	for i, c := range cells {
		if i > 0 {
			parts = append(parts, sep)
		}
		parts = append(parts, c)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func rule(cw int) string {
	return strings.Repeat("-", cw*calendar.WeekDays+calendar.WeekDays-1)
}

func eventLine(ev model.Deadline, width int) string {
	text := fit(ev.DisplayTitle(), width)
	if ev.Completed {
		return completeStyle.Render(text)
	}
	return text
}

// eventTime formats the due time in the zone of the cell it is drawn in.
func eventTime(ev model.Deadline, date time.Time) string {
	return ev.Due.In(date.Location()).Format(calendar.EventTimeLayout)
}

func renderMonth(v calendar.View, width int) string {
	cw := cellWidth(width)
	cell := lipgloss.NewStyle().Width(cw).Height(monthCellLines)

	var b strings.Builder
	names := make([]string, len(v.Weekdays))
	for i, n := range v.Weekdays {
		names[i] = headerStyle.Width(cw).Render(fit(n, cw))
	}
	b.WriteString(joinRow(names, 1))
	b.WriteString("\n")

	for row := 0; row*calendar.WeekDays < len(v.Month); row++ {
		b.WriteString(rule(cw))
		b.WriteString("\n")
		week := v.Month[row*calendar.WeekDays : (row+1)*calendar.WeekDays]
		cells := make([]string, len(week))
		for i, d := range week {
			cells[i] = cell.Render(monthCell(d, cw))
		}
		b.WriteString(joinRow(cells, monthCellLines))
		b.WriteString("\n")
	}
	return b.String()
}

func monthCell(d calendar.Day, cw int) string {
	num := fmt.Sprintf("%2d", d.Number())
	switch {
	case d.IsToday:
		num = todayStyle.Render(num)
	case !d.InCurrentMonth:
		num = mutedStyle.Render(num)
	}
	lines := []string{num}

	room := monthCellLines - 1
	for i, ev := range d.Events {
		if i == room-1 && len(d.Events) > room {
			lines = append(lines, mutedStyle.Render(fit(fmt.Sprintf("+%d more", len(d.Events)-i), cw)))
			break
		}
		lines = append(lines, eventLine(ev, cw))
	}
	if d.Placeholder {
		lines = append(lines, mutedStyle.Render(fit("No deadlines", cw)))
	}
	return strings.Join(lines, "\n")
}

func renderWeek(days []calendar.Day, width int) string {
	cw := cellWidth(width)

	// Each event takes a title line and a time line.
	height := 1
	for _, d := range days {
		if n := 2 * len(d.Events); n > height {
			height = n
		}
	}
	cell := lipgloss.NewStyle().Width(cw).Height(height)

	headers := make([]string, len(days))
	cells := make([]string, len(days))
	for i, d := range days {
		h := fit(d.Date.Format("Mon 2"), cw)
		if d.IsToday {
			h = todayStyle.Render(h)
		} else {
			h = headerStyle.Render(h)
		}
		headers[i] = lipgloss.NewStyle().Width(cw).Render(h)

		var lines []string
		for _, ev := range d.Events {
			lines = append(lines, eventLine(ev, cw), mutedStyle.Render(fit(eventTime(ev, d.Date), cw)))
		}
		if d.Placeholder {
			lines = append(lines, mutedStyle.Render(fit("No deadlines", cw)))
		}
		cells[i] = cell.Render(strings.Join(lines, "\n"))
	}

	var b strings.Builder
	b.WriteString(joinRow(headers, 1))
	b.WriteString("\n")
	b.WriteString(rule(cw))
	b.WriteString("\n")
	b.WriteString(joinRow(cells, height))
	b.WriteString("\n")
	return b.String()
}

func renderDay(d calendar.DayView, width int) string {
	var b strings.Builder
	if d.NoEvents {
		b.WriteString(mutedStyle.Render("No deadlines scheduled for this day"))
		b.WriteString("\n\n")
	}

	const labelWidth = 9
	eventWidth := width - labelWidth - 3
	for _, slot := range d.Slots {
		label := lipgloss.NewStyle().Width(labelWidth).Align(lipgloss.Right).Render(slot.Label)
		if len(slot.Events) == 0 {
			b.WriteString(label + " |\n")
			continue
		}
		for i, ev := range slot.Events {
			prefix := label
			if i > 0 {
				prefix = strings.Repeat(" ", labelWidth)
			}
			text := fmt.Sprintf("%s (%s) %s", ev.DisplayTitle(), ev.DisplayType(), eventTime(ev, d.Date))
			line := fit(text, eventWidth)
			if ev.Completed {
				line = completeStyle.Render(line)
			}
			b.WriteString(prefix + " | " + line + "\n")
		}
	}
	return b.String()
}
