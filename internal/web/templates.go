package web

import (
	"html/template"
	"time"

	"ddlcal/internal/calendar"
	"ddlcal/internal/model"
)

func newTemplates(loc *time.Location) *template.Template {
	if loc == nil {
		loc = time.UTC
	}
	funcs := template.FuncMap{
		"eventTime": func(value time.Time) string {
			if value.IsZero() {
				return ""
			}
			return value.In(loc).Format(calendar.EventTimeLayout)
		},
		"weekdayShort": func(value time.Time) string { return value.Format("Mon") },
		"typeClass":    func(d model.Deadline) string { return calendar.TypeClass(d.Type) },
	}
	return template.Must(template.New("page").Funcs(funcs).Parse(pageTemplate))
}

const pageTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Deadlines · {{.View.Label}}</title>
  <style>
    :root { color-scheme: light; }
    body {
      margin: 0;
      font-family: "Inter", "Helvetica Neue", sans-serif;
      color: #1f2328;
      background: #f6f7f9;
    }
    header {
      display: flex;
      align-items: center;
      justify-content: space-between;
      padding: 12px 20px;
      border-bottom: 1px solid #d0d7de;
      background: #fff;
    }
    header h1 { margin: 0; font-size: 20px; }
    nav a, .view-switch a {
      display: inline-block;
      padding: 4px 10px;
      border: 1px solid #d0d7de;
      border-radius: 6px;
      color: inherit;
      text-decoration: none;
    }
    .view-switch a.active { background: #1f2328; color: #fff; }
    main { padding: 16px 20px; }
    .calendar-days { display: grid; gap: 4px; }
    .month-view, .week-view { grid-template-columns: repeat(7, 1fr); }
    .weekday-names { display: grid; grid-template-columns: repeat(7, 1fr); font-weight: 600; margin-bottom: 4px; }
    .calendar-day, .week-day {
      min-height: 96px;
      padding: 4px;
      background: #fff;
      border: 1px solid #e1e4e8;
      border-radius: 4px;
    }
    .calendar-day.other-month { background: #f0f1f3; color: #8c959f; }
    .calendar-day.today, .week-day.today { border-color: #0969da; }
    .day-number { display: block; font-weight: 600; color: inherit; text-decoration: none; }
    .calendar-event, .week-event, .day-event {
      display: block;
      margin-top: 2px;
      padding: 2px 4px;
      border-radius: 3px;
      background: #ddf4ff;
      color: inherit;
      font-size: 12px;
      text-decoration: none;
    }
    .completed { text-decoration: line-through; opacity: 0.6; }
    .exam { background: #ffebe9; }
    .assignment { background: #fff8c5; }
    .project { background: #dafbe1; }
    .empty-day, .week-empty-day { color: #8c959f; font-size: 12px; }
    .time-slot { display: flex; border-bottom: 1px solid #e1e4e8; min-height: 40px; }
    .time-label { width: 72px; color: #57606a; font-size: 12px; }
    .time-slot-events { flex: 1; }
    .day-no-events { margin-bottom: 12px; padding: 12px; background: #fff; border-radius: 6px; }
    .modal { position: fixed; inset: 0; }
    .modal-backdrop { position: absolute; inset: 0; background: rgba(0, 0, 0, 0.35); }
    .modal-content {
      position: relative;
      max-width: 480px;
      margin: 64px auto;
      padding: 16px;
      background: #fff;
      border-radius: 8px;
    }
    .modal-event-item { padding: 8px 0; border-bottom: 1px solid #e1e4e8; }
    .modal-complete-btn.completed { opacity: 0.6; }
  </style>
</head>
<body>
<div id="calendar" class="calendar-root" data-ready="true" data-view="{{.View.Mode}}" data-date="{{.View.Date}}">
  <header>
    <nav>
      <a id="prev" href="{{.PrevURL}}">&lsaquo;</a>
      <a id="today" href="{{.TodayURL}}">Today</a>
      <a id="next" href="{{.NextURL}}">&rsaquo;</a>
    </nav>
    <h1 id="calendar-label">{{.View.Label}}</h1>
    <div class="view-switch">
      {{- range .ViewLinks}}
      <a href="{{.URL}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a>
      {{- end}}
    </div>
  </header>
  <main>
  {{- if .View.Month}}
    <div class="weekday-names">
      {{- range .View.Weekdays}}<div>{{.}}</div>{{end}}
    </div>
    <div class="calendar-days month-view">
    {{- range .View.Month}}
      <div class="calendar-day{{if not .InCurrentMonth}} other-month{{end}}{{if .IsToday}} today{{end}}">
        <a class="day-number" href="{{$.DetailURL .Date}}">{{.Number}}</a>
        {{- $day := .Date}}
        {{- range .Events}}
        <a class="calendar-event {{typeClass .}}{{if .Completed}} completed{{end}}" href="{{$.EventURL $day .ID}}">{{.DisplayTitle}}</a>
        {{- end}}
        {{- if .Placeholder}}
        <div class="empty-day">No deadlines</div>
        {{- end}}
      </div>
    {{- end}}
    </div>
  {{- else if .View.Week}}
    <div class="calendar-days week-view">
    {{- range .View.Week}}
      <div class="week-day{{if .IsToday}} today{{end}}">
        <a class="week-day-header day-number" href="{{$.DetailURL .Date}}">
          <span class="week-day-name">{{weekdayShort .Date}}</span>
          <span class="week-day-number">{{.Number}}</span>
        </a>
        {{- $day := .Date}}
        <div class="week-day-events">
        {{- range .Events}}
          <a class="week-event {{typeClass .}}{{if .Completed}} completed{{end}}" href="{{$.EventURL $day .ID}}">
            <span class="week-event-time">{{eventTime .Due}}</span>
            <span class="week-event-title">{{.DisplayTitle}}</span>
            <span class="week-event-type">{{.DisplayType}}</span>
          </a>
        {{- end}}
        {{- if .Placeholder}}
          <div class="week-empty-day">No deadlines</div>
        {{- end}}
        </div>
      </div>
    {{- end}}
    </div>
  {{- else if .View.Day}}
    <div class="calendar-days day-view">
      {{- if .View.Day.NoEvents}}
      <div class="day-no-events">No deadlines scheduled for this day</div>
      {{- end}}
      {{- $day := .View.Day.Date}}
      <div class="day-container">
      {{- range .View.Day.Slots}}
        <div class="time-slot" data-hour="{{.Hour}}">
          <div class="time-label">{{.Label}}</div>
          <div class="time-slot-events">
          {{- range .Events}}
            <a class="day-event {{typeClass .}}{{if .Completed}} completed{{end}}" href="{{$.EventURL $day .ID}}">
              <span class="day-event-title">{{.DisplayTitle}}</span>
              <span class="day-event-time">{{eventTime .Due}}</span>
              <span class="day-event-type">{{.DisplayType}}</span>
            </a>
          {{- end}}
          </div>
        </div>
      {{- end}}
      </div>
    </div>
  {{- end}}
  </main>
  {{- with .Overlay}}
  <div id="event-modal" class="modal">
    <a class="modal-backdrop" href="{{$.CloseURL}}" aria-label="Close"></a>
    <div class="modal-content">
      <a class="modal-close" href="{{$.CloseURL}}">&times;</a>
      <h2 id="modal-date">{{.Title}}</h2>
      {{- if .Placeholder}}
      <p class="no-events">{{.Placeholder}}</p>
      {{- end}}
      {{- range .Items}}
      <div class="modal-event-item {{.TypeClass}}">
        <div class="modal-event-title">{{.Title}}</div>
        <div class="modal-event-details">
          <span class="modal-event-type">{{.Type}}</span>
          {{- if .Time}} <span class="modal-event-time">{{.Time}}</span>{{end}}
          {{- if .NotifyText}} <span class="modal-event-notify">{{.NotifyText}}</span>{{end}}
        </div>
        <div class="modal-event-actions">
        {{- if .Completed}}
          <button class="modal-complete-btn completed" disabled>Completed</button>
        {{- else if .CompletionPath}}
          <form method="post" action="{{$.CompletionAction .CompletionPath}}">
            {{- if $.CSRFToken}}
            <input type="hidden" name="csrf_token" value="{{$.CSRFToken}}">
            {{- end}}
            <input type="hidden" name="return" value="{{$.ReturnURL}}">
            <button type="submit" class="modal-complete-btn">Mark Complete</button>
          </form>
        {{- end}}
        </div>
      </div>
      {{- end}}
    </div>
  </div>
  {{- end}}
</div>
<script id="calendar-events-data" type="application/json">{{.EventsJSON}}</script>
</body>
</html>
`
