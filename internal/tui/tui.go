// Package tui is an interactive terminal calendar: the same cursor
// transitions as the web page, driven by keys.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ddlcal/internal/calendar"
	"ddlcal/internal/model"
	"ddlcal/internal/term"
)

// LoadFunc returns the current deadline list.
type LoadFunc func(ctx context.Context) ([]model.Deadline, error)

// Options configures the interactive calendar.
type Options struct {
	Location  *time.Location
	WeekStart time.Weekday
	Load      LoadFunc

	// View is the starting view mode; month when unset.
	View calendar.ViewMode

	// Completer enables "x" in the detail overlay. Optional.
	Completer calendar.Completer

	// Now overrides the clock for tests.
	Now func() time.Time
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(opts Options) error {
	_, err := tea.NewProgram(newAppModel(opts), tea.WithAltScreen()).Run()
	return err
}

type loadedMsg struct {
	events []model.Deadline
	err    error
}

type completedMsg struct {
	id  model.ID
	err error
}

var (
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24"))
)

type appModel struct {
	opts Options

	cal *calendar.Calendar
	cur calendar.Cursor

	overlay  *calendar.Overlay
	selected int

	width  int
	keys   keyMap
	help   help.Model
	status string
	err    error
}

func newAppModel(opts Options) appModel {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := appModel{
		opts:  opts,
		keys:  defaultKeyMap(),
		help:  help.New(),
		width: term.DefaultWidth,
	}
	m.setEvents(nil)
	m.cur = m.cal.NewCursor()
	if opts.View.Valid() {
		m.cur = m.cur.WithView(opts.View)
	}
	return m
}

func (m *appModel) setEvents(events []model.Deadline) {
	m.cal = calendar.New(events, calendar.Options{
		Location:  m.opts.Location,
		WeekStart: m.opts.WeekStart,
		Now:       m.opts.Now,
	})
	if m.overlay != nil {
		m.openOverlay(m.overlay.Date)
	}
}

func (m *appModel) openOverlay(date time.Time) {
	ov := m.cal.Detail(date, "")
	m.overlay = &ov
	if m.selected >= len(ov.Items) {
		m.selected = max(len(ov.Items)-1, 0)
	}
}

func (m appModel) loadCmd() tea.Cmd {
	load := m.opts.Load
	if load == nil {
		return nil
	}
	return func() tea.Msg {
		events, err := load(context.Background())
		return loadedMsg{events: events, err: err}
	}
}

func (m appModel) completeCmd(id model.ID) tea.Cmd {
	cp := m.opts.Completer
	return func() tea.Msg {
		return completedMsg{id: id, err: calendar.RequestCompletion(context.Background(), cp, id)}
	}
}

func (m appModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		m.err = msg.err
		m.setEvents(msg.events)
		m.status = fmt.Sprintf("%d deadlines loaded", len(msg.events))
		return m, nil

	case completedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = "marked " + string(msg.id) + " complete"
		return m, m.loadCmd()

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		m.status = "reloading"
		return m, m.loadCmd()
	}

	if m.overlay != nil {
		switch {
		case key.Matches(msg, m.keys.Close):
			m.overlay = nil
			m.selected = 0
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.overlay.Items)-1 {
				m.selected++
			}
		case key.Matches(msg, m.keys.Complete):
			return m.completeSelected()
		}
		return m, nil
	}

	var action calendar.Action
	switch {
	case key.Matches(msg, m.keys.Prev):
		action = calendar.ActionPrev
	case key.Matches(msg, m.keys.Next):
		action = calendar.ActionNext
	case key.Matches(msg, m.keys.Today):
		action = calendar.ActionToday
	case key.Matches(msg, m.keys.Month):
		action = calendar.SwitchView(calendar.ViewMonth)
	case key.Matches(msg, m.keys.Week):
		action = calendar.SwitchView(calendar.ViewWeek)
	case key.Matches(msg, m.keys.Day):
		action = calendar.SwitchView(calendar.ViewDay)
	case key.Matches(msg, m.keys.Open):
		m.selected = 0
		m.openOverlay(m.cur.Date)
		return m, nil
	default:
		return m, nil
	}
	m.cur = m.cal.Apply(m.cur, action)
	return m, nil
}

func (m appModel) completeSelected() (tea.Model, tea.Cmd) {
	if m.overlay == nil || len(m.overlay.Items) == 0 {
		return m, nil
	}
	item := m.overlay.Items[m.selected]
	switch {
	case m.opts.Completer == nil:
		m.status = "completion is not configured"
		return m, nil
	case item.Completed:
		m.status = item.Title + " is already completed"
		return m, nil
	case item.CompletionPath == "":
		m.status = item.Title + " has no id"
		return m, nil
	}
	m.status = "completing " + item.Title
	return m, m.completeCmd(item.ID)
}

func (m appModel) View() string {
	var b strings.Builder
	b.WriteString(term.RenderView(m.cal.Render(m.cur), m.width))

	if m.overlay != nil {
		b.WriteString("\n")
		b.WriteString(term.RenderOverlay(*m.overlay, m.width))
		if len(m.overlay.Items) > 0 {
			it := m.overlay.Items[m.selected]
			b.WriteString(selectedStyle.Render("> " + it.Title))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
