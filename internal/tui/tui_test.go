package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ddlcal/internal/calendar"
	"ddlcal/internal/model"
)

var fixedNow = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

type recordingCompleter struct {
	ids []model.ID
	err error
}

func (r *recordingCompleter) Complete(_ context.Context, id model.ID) error {
	r.ids = append(r.ids, id)
	return r.err
}

func sampleDeadlines() []model.Deadline {
	return []model.Deadline{
		{ID: "a1", Title: "Essay", Type: "Assignment", Due: time.Date(2026, 10, 17, 14, 30, 0, 0, time.UTC)},
		{ID: "b2", Title: "Midterm", Type: "Exam", Due: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC), Completed: true},
	}
}

func newTestModel(cp calendar.Completer) appModel {
	m := newAppModel(Options{
		Location:  time.UTC,
		WeekStart: time.Sunday,
		Completer: cp,
		Now:       func() time.Time { return fixedNow },
		Load: func(context.Context) ([]model.Deadline, error) {
			return sampleDeadlines(), nil
		},
	})
	mAny, _ := m.Update(loadedMsg{events: sampleDeadlines()})
	return mAny.(appModel)
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func press(t *testing.T, m appModel, msgs ...tea.KeyMsg) appModel {
	t.Helper()
	for _, msg := range msgs {
		mAny, _ := m.Update(msg)
		m = mAny.(appModel)
	}
	return m
}

func TestNavigationKeys(t *testing.T) {
	m := newTestModel(nil)
	if m.cur.View != calendar.ViewMonth || m.cur.DateParam() != "2026-10-17" {
		t.Fatalf("initial cursor = %+v", m.cur)
	}

	m = press(t, m, runeKey('l'))
	if m.cur.DateParam() != "2026-11-17" {
		t.Fatalf("next month = %s", m.cur.DateParam())
	}

	m = press(t, m, runeKey('w'), tea.KeyMsg{Type: tea.KeyLeft})
	if m.cur.View != calendar.ViewWeek || m.cur.DateParam() != "2026-11-10" {
		t.Fatalf("week prev = %s %s", m.cur.View, m.cur.DateParam())
	}

	m = press(t, m, runeKey('d'), runeKey('t'))
	if m.cur.View != calendar.ViewDay || m.cur.DateParam() != "2026-10-17" {
		t.Fatalf("today = %s %s", m.cur.View, m.cur.DateParam())
	}
	if !strings.Contains(m.View(), "Saturday, October 17, 2026") {
		t.Fatalf("view does not show the day label")
	}
}

func TestOverlayOpenSelectClose(t *testing.T) {
	m := newTestModel(nil)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.overlay == nil || len(m.overlay.Items) != 2 {
		t.Fatalf("overlay = %+v", m.overlay)
	}

	// Navigation keys are ignored while the overlay is open.
	m = press(t, m, runeKey('l'))
	if m.cur.DateParam() != "2026-10-17" {
		t.Fatalf("cursor moved under overlay: %s", m.cur.DateParam())
	}

	m = press(t, m, runeKey('j'), runeKey('j'))
	if m.selected != 1 {
		t.Fatalf("selected = %d", m.selected)
	}
	if !strings.Contains(m.View(), "> Midterm") {
		t.Fatalf("selection marker missing")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.overlay != nil || m.selected != 0 {
		t.Fatalf("overlay not closed")
	}
}

func TestCompleteSelected(t *testing.T) {
	cp := &recordingCompleter{}
	m := newTestModel(cp)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	mAny, cmd := m.Update(runeKey('x'))
	m = mAny.(appModel)
	if cmd == nil {
		t.Fatalf("expected completion command")
	}
	msg := cmd()
	done, ok := msg.(completedMsg)
	if !ok || done.id != "a1" || done.err != nil {
		t.Fatalf("completion msg = %#v", msg)
	}
	if len(cp.ids) != 1 || cp.ids[0] != "a1" {
		t.Fatalf("completer saw %v", cp.ids)
	}

	mAny, cmd = m.Update(done)
	m = mAny.(appModel)
	if cmd == nil {
		t.Fatalf("completion should trigger a reload")
	}
	if !strings.Contains(m.status, "a1") {
		t.Fatalf("status = %q", m.status)
	}

	// The second item is already completed.
	m = press(t, m, runeKey('j'))
	_, cmd = m.Update(runeKey('x'))
	if cmd != nil {
		t.Fatalf("completed item should not be sent")
	}
}

func TestCompletionErrorsAndMissingCompleter(t *testing.T) {
	m := newTestModel(nil)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}, runeKey('x'))
	if !strings.Contains(m.status, "not configured") {
		t.Fatalf("status = %q", m.status)
	}

	failing := newTestModel(&recordingCompleter{err: errors.New("forbidden")})
	mAny, _ := failing.Update(completedMsg{id: "a1", err: errors.New("forbidden")})
	failing = mAny.(appModel)
	if !strings.Contains(failing.View(), "forbidden") {
		t.Fatalf("error not shown")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(nil)
	_, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
