// Package dateutil holds the calendar-date arithmetic behind the month and
// week views. All functions are pure and operate on wall-clock values in the
// location carried by their arguments; nothing here converts between zones.
package dateutil

import (
	"math"
	"time"
)

const (
	// GridCells is the fixed size of a month view: 6 weeks of 7 days.
	GridCells = 42

	// DefaultSlotInterval is the time-slot step used by the week view.
	DefaultSlotInterval = 30

	day = 24 * time.Hour
)

// IsSameDay reports whether a and b fall on the same calendar day.
// Time of day is ignored.
func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay returns local midnight of t's day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of t's day. Sub-second precision is dropped so
// that it matches the inclusive day bound used by event filtering.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// StartOfMonth returns the first day of t's month at midnight.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last day of t's month at midnight.
func EndOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(y, m+1, 0, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Sunday on or before t, keeping t's time of day.
func StartOfWeek(t time.Time) time.Time {
	return AddDays(t, -int(t.Weekday()))
}

// AddDays moves t by n calendar days. The wall-clock time is kept even
// across DST changes.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// AddMonths moves t by n months. A day that does not exist in the target
// month rolls into the next one: Jan 31 + 1 month is Mar 3 (Mar 2 in a leap
// year).
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// DaysBetween returns the whole number of 24h periods from start to end,
// rounded toward negative infinity.
func DaysBetween(start, end time.Time) int {
	return int(math.Floor(float64(end.Sub(start)) / float64(day)))
}

// CalendarGrid returns the 42 dates of a month view: it starts on the
// Sunday on or before the 1st of t's month and always spans 6 weeks.
func CalendarGrid(t time.Time) []time.Time {
	first := StartOfMonth(t)
	y, m, _ := first.Date()
	lead := int(first.Weekday())

	grid := make([]time.Time, GridCells)
	for i := range grid {
		grid[i] = time.Date(y, m, 1-lead+i, 0, 0, 0, 0, t.Location())
	}
	return grid
}

// DaysInMonth returns every day of t's month at midnight.
func DaysInMonth(t time.Time) []time.Time {
	y, m, _ := t.Date()
	n := EndOfMonth(t).Day()

	days := make([]time.Time, n)
	for i := range days {
		days[i] = time.Date(y, m, i+1, 0, 0, 0, 0, t.Location())
	}
	return days
}

// WeekDays returns the seven days of the week containing t, Sunday first,
// at midnight.
func WeekDays(t time.Time) []time.Time {
	start := StartOfDay(StartOfWeek(t))
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = AddDays(start, i)
	}
	return days
}

// TimeSlots splits t's day into slots of intervalMinutes starting at
// midnight. A non-positive interval yields no slots.
func TimeSlots(t time.Time, intervalMinutes int) []time.Time {
	if intervalMinutes <= 0 {
		return nil
	}
	y, m, d := t.Date()

	const minutesPerDay = 24 * 60
	slots := make([]time.Time, 0, (minutesPerDay+intervalMinutes-1)/intervalMinutes)
	for minute := 0; minute < minutesPerDay; minute += intervalMinutes {
		slots = append(slots, time.Date(y, m, d, 0, minute, 0, 0, t.Location()))
	}
	return slots
}
