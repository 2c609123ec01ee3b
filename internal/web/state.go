package web

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"ddlcal/internal/calendar"
	"ddlcal/internal/complete"
	"ddlcal/internal/feed"
	"ddlcal/internal/model"
)

// pageState is the cursor and overlay selection decoded from a query.
type pageState struct {
	Cursor     calendar.Cursor
	HasDetail  bool
	DetailDate time.Time
	EventID    model.ID
}

// resolveState turns query parameters into a state transition:
//
//	view=month|week|day  date=YYYY-MM-DD  nav=prev|next|today
//	detail=YYYY-MM-DD    event=ID
//
// Unparseable values fall back to today / month view.
func resolveState(cal *calendar.Calendar, q url.Values) pageState {
	cur := cal.NewCursor()
	if d, err := calendar.ParseDate(q.Get("date"), cal.Location()); err == nil {
		cur = cal.CursorAt(d, calendar.ViewMonth)
	}
	if v, ok := calendar.ParseViewMode(q.Get("view")); ok {
		cur = cur.WithView(v)
	}
	cur = cal.Apply(cur, calendar.Action(q.Get("nav")))

	st := pageState{Cursor: cur}
	if d, err := calendar.ParseDate(q.Get("detail"), cal.Location()); err == nil {
		st.HasDetail = true
		st.DetailDate = d
		st.EventID = model.ID(q.Get("event"))
	}
	return st
}

// calendarURL renders a cursor (and optional extra parameters) as a link.
func calendarURL(cur calendar.Cursor, extra url.Values) string {
	q := url.Values{}
	q.Set("view", string(cur.View))
	q.Set("date", cur.DateParam())
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return "/calendar?" + q.Encode()
}

type viewLink struct {
	Label  string
	URL    string
	Active bool
}

// pageData feeds the page template. URL helpers are methods so the
// template can build links for any cell.
type pageData struct {
	View      calendar.View
	Cursor    calendar.Cursor
	PrevURL   string
	NextURL   string
	TodayURL  string
	ViewLinks []viewLink

	Overlay  *calendar.Overlay
	CloseURL string

	// CompletionBase prefixes completion form actions.
	CompletionBase string
	CSRFToken      string
	ReturnURL      string

	EventsJSON template.JS
}

func (p pageData) DetailURL(date time.Time) string {
	return calendarURL(p.Cursor, url.Values{"detail": {date.Format(calendar.DateLayout)}})
}

func (p pageData) EventURL(date time.Time, id model.ID) string {
	return calendarURL(p.Cursor, url.Values{
		"detail": {date.Format(calendar.DateLayout)},
		"event":  {string(id)},
	})
}

func (p pageData) CompletionAction(path string) string {
	return p.CompletionBase + path
}

func (s *Server) newPageData(r *http.Request, cal *calendar.Calendar, st pageState) (pageData, error) {
	cur := st.Cursor
	data := pageData{
		View:     cal.Render(cur),
		Cursor:   cur,
		PrevURL:  calendarURL(cur, url.Values{"nav": {string(calendar.ActionPrev)}}),
		NextURL:  calendarURL(cur, url.Values{"nav": {string(calendar.ActionNext)}}),
		TodayURL: calendarURL(cur, url.Values{"nav": {string(calendar.ActionToday)}}),
		CloseURL: calendarURL(cur, nil),
	}
	data.ReturnURL = data.CloseURL

	for _, mode := range calendar.ViewModes {
		data.ViewLinks = append(data.ViewLinks, viewLink{
			Label:  viewLabel(mode),
			URL:    calendarURL(cur.WithView(mode), nil),
			Active: mode == cur.View,
		})
	}

	if st.HasDetail {
		ov := cal.Detail(st.DetailDate, st.EventID)
		data.Overlay = &ov
	}

	// Forms post to our proxy when one is configured, otherwise straight to
	// the host application.
	if s.completer == nil {
		data.CompletionBase = s.cfg.Completion.BaseURL
	}
	data.CSRFToken = csrfToken(r, s.cfg.Completion.CSRFToken)

	var buf bytes.Buffer
	if err := feed.EncodeJSON(&buf, cal.Events()); err != nil {
		return data, err
	}
	data.EventsJSON = template.JS(bytes.TrimSpace(buf.Bytes()))
	return data, nil
}

// csrfToken prefers the host application's cookie over the configured token.
func csrfToken(r *http.Request, fallback string) string {
	if c, err := r.Cookie(complete.CSRFField); err == nil && c.Value != "" {
		return c.Value
	}
	return fallback
}

func viewLabel(v calendar.ViewMode) string {
	switch v {
	case calendar.ViewWeek:
		return "Week"
	case calendar.ViewDay:
		return "Day"
	default:
		return "Month"
	}
}
