// Package eventutil derives views over a flat, externally owned event
// collection. Functions never mutate their input slices.
package eventutil

import (
	"fmt"
	"math"
	"slices"
	"time"

	"calview/internal/dateutil"
	"calview/internal/model"
)

// ForDay returns the events touching day, bounds inclusive on both sides
// (00:00:00 to 23:59:59). Multi-day events show up on every day they touch.
func ForDay(events []model.CalendarEvent, day time.Time) []model.CalendarEvent {
	dayStart := dateutil.StartOfDay(day)
	dayEnd := dateutil.EndOfDay(day)

	out := make([]model.CalendarEvent, 0)
	for _, ev := range events {
		if !ev.Start.After(dayEnd) && !ev.End.Before(dayStart) {
			out = append(out, ev)
		}
	}
	return out
}

// InRange returns events intersecting [from, to], bounds inclusive.
func InRange(events []model.CalendarEvent, from, to time.Time) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0)
	for _, ev := range events {
		if !ev.Start.After(to) && !ev.End.Before(from) {
			out = append(out, ev)
		}
	}
	return out
}

// SortByStart returns a copy ordered by start time. Events starting at the
// same instant keep their relative order.
func SortByStart(events []model.CalendarEvent) []model.CalendarEvent {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b model.CalendarEvent) int {
		return a.Start.Compare(b.Start)
	})
	return out
}

// FilterByCategory keeps events whose category equals category exactly.
func FilterByCategory(events []model.CalendarEvent, category string) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0)
	for _, ev := range events {
		if ev.Category == category {
			out = append(out, ev)
		}
	}
	return out
}

// UniqueCategories lists distinct non-empty categories in the order they
// first appear in events.
func UniqueCategories(events []model.CalendarEvent) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, ev := range events {
		if ev.Category == "" {
			continue
		}
		if _, ok := seen[ev.Category]; ok {
			continue
		}
		seen[ev.Category] = struct{}{}
		out = append(out, ev.Category)
	}
	return out
}

// Find returns the event with the given ID.
func Find(events []model.CalendarEvent, id string) (model.CalendarEvent, bool) {
	for _, ev := range events {
		if ev.ID == id {
			return ev, true
		}
	}
	return model.CalendarEvent{}, false
}

// Overlap reports whether two half-open intervals intersect. Events that
// only touch at an endpoint do not overlap.
func Overlap(a, b model.CalendarEvent) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// Overlapping returns every event in all, other than ev itself (by ID),
// that overlaps ev.
func Overlapping(ev model.CalendarEvent, all []model.CalendarEvent) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0)
	for _, other := range all {
		if other.ID != ev.ID && Overlap(ev, other) {
			out = append(out, other)
		}
	}
	return out
}

// FormatDuration describes an event's length in days, hours or minutes.
//
// Days are counted with dateutil.DaysBetween (whole 24h periods). Hours and
// minutes are rounded half away from zero and pluralized on the rounded
// value, so a 90-minute event reads "2 hours".
func FormatDuration(ev model.CalendarEvent) string {
	elapsed := ev.End.Sub(ev.Start)

	if days := dateutil.DaysBetween(ev.Start, ev.End); days >= 1 {
		return plural(days, "day")
	}
	if hours := elapsed.Hours(); hours >= 1 {
		return plural(int(math.Round(hours)), "hour")
	}
	return plural(int(math.Round(elapsed.Minutes())), "minute")
}

func plural(n int, unit string) string {
	if n >= 2 {
		return fmt.Sprintf("%d %ss", n, unit)
	}
	return fmt.Sprintf("%d %s", n, unit)
}

// IsAllDay reports whether ev runs from 00:00 to 23:59 wall-clock time.
// Seconds are ignored. This is a display convention, not a stored flag.
func IsAllDay(ev model.CalendarEvent) bool {
	return ev.Start.Hour() == 0 && ev.Start.Minute() == 0 &&
		ev.End.Hour() == 23 && ev.End.Minute() == 59
}

// TimeDisplay is the short time label shown next to an event.
func TimeDisplay(ev model.CalendarEvent) string {
	if IsAllDay(ev) {
		return "All day"
	}
	return dateutil.Format(ev.Start, "HH:mm a") + " - " + dateutil.Format(ev.End, "HH:mm a")
}
