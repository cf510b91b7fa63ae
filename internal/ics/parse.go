package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"calview/internal/dateutil"
	appLog "calview/internal/log"
	"calview/internal/model"
)

// Source is a single ICS subscription.
type Source struct {
	// ID namespaces imported event IDs and tags them in the store.
	ID string
	// URL is the ICS endpoint (http, https or file path).
	URL string
	// Name becomes the category of events that carry none.
	Name string
	// Color is the display color of events that carry none.
	Color string
}

const untitled = "(no title)"

// Parse converts the VEVENTs of an ICS payload into calendar events shown
// as wall-clock time in loc (time.Local when nil).
//
// VEVENTs without a UID, without a usable start, or ending at or before
// their start are logged and skipped. Recurrence rules are not expanded:
// only the first instance (DTSTART) is imported.
func Parse(src Source, body []byte, loc *time.Location) ([]model.CalendarEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse ICS %s: %w", src.ID, err)
	}

	events := make([]model.CalendarEvent, 0)
	for _, ve := range cal.Events() {
		ev, perr := convertVEvent(src, ve, loc)
		if perr != nil {
			appLog.Warn("skipping VEVENT", "source", src.ID, "reason", perr.Error())
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("ics parsed", "source", src.ID, "url", redactURL(src.URL), "event_count", len(events))
	return events, nil
}

func convertVEvent(src Source, ve *ical.VEvent, loc *time.Location) (model.CalendarEvent, error) {
	var ev model.CalendarEvent

	uid := propValue(ve, ical.ComponentPropertyUniqueId)
	if uid == "" {
		return ev, errors.New("missing UID")
	}
	ev.ID = src.ID + "/" + uid
	ev.Title = propValue(ve, ical.ComponentPropertySummary)
	if ev.Title == "" {
		ev.Title = untitled
	}
	ev.Description = propValue(ve, ical.ComponentPropertyDescription)

	ev.Category = firstCategory(propValue(ve, ical.ComponentPropertyCategories))
	if ev.Category == "" {
		ev.Category = src.Name
	}
	ev.Color = propValue(ve, ical.ComponentProperty("COLOR"))
	if ev.Color == "" {
		ev.Color = src.Color
	}

	if propValue(ve, ical.ComponentPropertyRrule) != "" {
		appLog.Debug("recurrence ignored, importing first instance", "source", src.ID, "uid", uid)
	}

	var err error
	if isAllDay(ve) {
		ev.Start, ev.End, err = allDayBounds(ve, loc)
	} else {
		ev.Start, ev.End, err = timedBounds(ve, loc)
	}
	if err != nil {
		return ev, fmt.Errorf("uid %s: %w", uid, err)
	}
	if !ev.End.After(ev.Start) {
		return ev, fmt.Errorf("uid %s: end %s is not after start %s", uid, ev.End, ev.Start)
	}
	return ev, nil
}

// isAllDay follows the DTSTART value format: VALUE=DATE or no time part.
func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// allDayBounds maps DATE values onto the 00:00-23:59 convention. DTEND of
// an all-day VEVENT is exclusive, so the last day is the one before it.
func allDayBounds(ve *ical.VEvent, loc *time.Location) (time.Time, time.Time, error) {
	startDay, err := parseDate(propValue(ve, ical.ComponentPropertyDtStart), loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("DTSTART: %w", err)
	}
	lastDay := startDay
	if raw := propValue(ve, ical.ComponentPropertyDtEnd); raw != "" {
		endDay, err := parseDate(raw, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("DTEND: %w", err)
		}
		if endDay.After(startDay) {
			lastDay = dateutil.AddDays(endDay, -1)
		}
	}
	y, m, d := lastDay.Date()
	return startDay, time.Date(y, m, d, 23, 59, 0, 0, loc), nil
}

func timedBounds(ve *ical.VEvent, loc *time.Location) (time.Time, time.Time, error) {
	start, err := ve.GetStartAt()
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("DTSTART: %w", err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("DTEND: %w", err)
	}
	return start.In(loc), end.In(loc), nil
}

func parseDate(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if len(v) < 8 {
		return time.Time{}, fmt.Errorf("bad date %q", v)
	}
	return time.ParseInLocation("20060102", v[:8], loc)
}

func propValue(ve *ical.VEvent, name ical.ComponentProperty) string {
	if p := ve.GetProperty(name); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

func firstCategory(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}
