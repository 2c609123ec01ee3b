package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "ddlcal/internal/log"
)

// ParsedDeadline is a VEVENT or VTODO normalized for expansion. Recurrence
// is kept as the raw RRULE and expanded in expand.go.
type ParsedDeadline struct {
	Source Source

	UID     string
	Summary string
	// Category is the first CATEGORIES value; it becomes the deadline type.
	Category string

	Due       time.Time
	AllDay    bool
	Completed bool

	// NotifyBefore is taken from the first VALARM with a negative
	// relative TRIGGER, in hours.
	NotifyBefore *float64

	RawRRule string
	ExDates  []time.Time
}

// ParseICS parses one ICS payload. VTODOs use DUE (falling back to
// DTSTART); VEVENTs use DTSTART. Components that fail to parse are logged
// and skipped.
func ParseICS(src Source, body []byte, loc *time.Location) ([]ParsedDeadline, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	out := make([]ParsedDeadline, 0)
	for _, comp := range cal.Components {
		var (
			pd   ParsedDeadline
			perr error
		)
		switch c := comp.(type) {
		case *ical.VEvent:
			pd, perr = parseComponent(src, &c.ComponentBase, ical.ComponentPropertyDtStart, loc)
		case *ical.VTodo:
			pd, perr = parseComponent(src, &c.ComponentBase, ical.ComponentProperty("DUE"), loc)
		default:
			continue
		}
		if perr != nil {
			appLog.Warn("ics component skipped", "id", src.ID, "err", perr)
			continue
		}
		out = append(out, pd)
	}

	appLog.Info("ics parse completed", "id", src.ID, "url", redactURL(src.URL), "deadline_count", len(out))
	return out, nil
}

func parseComponent(src Source, cb *ical.ComponentBase, dueProp ical.ComponentProperty, loc *time.Location) (ParsedDeadline, error) {
	out := ParsedDeadline{Source: src}

	uid := cb.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uid.Value

	if p := cb.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = unescapeText(p.Value)
	}
	if p := cb.GetProperty(ical.ComponentPropertyCategories); p != nil {
		first, _, _ := strings.Cut(p.Value, ",")
		out.Category = unescapeText(strings.TrimSpace(first))
	}

	p := cb.GetProperty(dueProp)
	if p == nil {
		p = cb.GetProperty(ical.ComponentPropertyDtStart)
	}
	if p == nil {
		return out, errors.New("missing DUE/DTSTART")
	}
	due, allDay, err := propertyTime(p, loc)
	if err != nil {
		return out, err
	}
	out.Due = due
	out.AllDay = allDay

	if p := cb.GetProperty(ical.ComponentPropertyStatus); p != nil && strings.EqualFold(p.Value, "COMPLETED") {
		out.Completed = true
	}
	if cb.GetProperty(ical.ComponentProperty("COMPLETED")) != nil {
		out.Completed = true
	}

	if p := cb.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}
	for _, p := range cb.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, _, err := parseICSTime(part, tzidLocation(p, loc)); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	for _, sub := range cb.Components {
		alarm, ok := sub.(*ical.VAlarm)
		if !ok {
			continue
		}
		trig := alarm.GetProperty(ical.ComponentProperty("TRIGGER"))
		if trig == nil {
			continue
		}
		if d, err := parseICSDuration(trig.Value); err == nil && d < 0 {
			hours := -d.Hours()
			out.NotifyBefore = &hours
			break
		}
	}

	return out, nil
}

// propertyTime reads a DATE or DATE-TIME property, honoring TZID.
func propertyTime(p *ical.IANAProperty, loc *time.Location) (time.Time, bool, error) {
	isDate := false
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		isDate = true
	}
	t, allDay, err := parseICSTime(p.Value, tzidLocation(p, loc))
	return t, allDay || isDate, err
}

func tzidLocation(p *ical.IANAProperty, fallback *time.Location) *time.Location {
	tzs, ok := p.ICalParameters["TZID"]
	if !ok || len(tzs) == 0 {
		return fallback
	}
	l, err := time.LoadLocation(strings.Trim(tzs[0], `"`))
	if err != nil {
		appLog.Warn("ics unknown TZID, using display zone", "tzid", tzs[0])
		return fallback
	}
	return l
}

// parseICSTime parses DATE (20260101), floating DATE-TIME (20260101T090000)
// and UTC DATE-TIME (20260101T090000Z). The bool reports a DATE value.
func parseICSTime(v string, loc *time.Location) (time.Time, bool, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false, errors.New("empty time value")
	}
	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse("20060102T150405Z", v)
		return t, false, err
	}
	if strings.Contains(v, "T") {
		t, err := time.ParseInLocation("20060102T150405", v, loc)
		return t, false, err
	}
	t, err := time.ParseInLocation("20060102", v, loc)
	return t, true, err
}

// parseICSDuration parses RFC 5545 durations such as -PT15M, -P1D, PT1H30M
// and -P1W.
func parseICSDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	sign := time.Duration(1)
	switch {
	case strings.HasPrefix(v, "-"):
		sign = -1
		v = v[1:]
	case strings.HasPrefix(v, "+"):
		v = v[1:]
	}
	if !strings.HasPrefix(v, "P") {
		return 0, errors.New("duration must start with P")
	}
	v = v[1:]

	var total time.Duration
	inTime := false
	num := 0
	digits := 0
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
			digits++
			continue
		case r == 'T':
			inTime = true
			continue
		}
		if digits == 0 {
			return 0, errors.New("malformed duration")
		}
		n := time.Duration(num)
		switch {
		case r == 'W' && !inTime:
			total += n * 7 * 24 * time.Hour
		case r == 'D' && !inTime:
			total += n * 24 * time.Hour
		case r == 'H' && inTime:
			total += n * time.Hour
		case r == 'M' && inTime:
			total += n * time.Minute
		case r == 'S' && inTime:
			total += n * time.Second
		default:
			return 0, errors.New("malformed duration")
		}
		num, digits = 0, 0
	}
	if digits != 0 {
		return 0, errors.New("trailing digits in duration")
	}
	return sign * total, nil
}

var textUnescaper = strings.NewReplacer(`\,`, ",", `\;`, ";", `\n`, "\n", `\N`, "\n", `\\`, `\`)

func unescapeText(s string) string {
	return textUnescaper.Replace(s)
}
