package dateutil

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestFormat(t *testing.T) {
	ts := date(2025, time.October, 5, 14, 7)
	for _, tc := range []struct {
		pattern string
		want    string
	}{
		{"MMMM yyyy", "October 2025"},
		{"MMM d, yyyy", "Oct 5, 2025"},
		{"yyyy-MM-dd", "2025-10-05"},
		{"M/d/yy", "10/5/25"},
		{"EEEE", "Sunday"},
		{"EEE d", "Sun 5"},
		{"HH:mm a", "14:07 PM"},
		{"HH:mm", "14:07"},
		{"yyyy-MM-ddTHH:mm", "2025-10-05T14:07"},
		{"[x]", "[x]"},
	} {
		if got := Format(ts, tc.pattern); got != tc.want {
			t.Errorf("Format(%q) = %q, want %q", tc.pattern, got, tc.want)
		}
	}

	if got := Format(date(2025, time.January, 1, 9, 0), "HH:mm a"); got != "09:00 AM" {
		t.Errorf("morning meridiem = %q", got)
	}
	if got := Format(date(2025, time.January, 1, 12, 0), "a"); got != "PM" {
		t.Errorf("noon meridiem = %q", got)
	}
}

func TestFormatScenario(t *testing.T) {
	if got := Format(time.Date(2025, time.October, 25, 0, 0, 0, 0, time.Local), "MMMM yyyy"); got != "October 2025" {
		t.Fatalf("got %q", got)
	}
}

func TestDateTimeLocal(t *testing.T) {
	ts := date(2025, time.October, 25, 10, 30)
	s := FormatDateTimeLocal(ts)
	if s != "2025-10-25T10:30" {
		t.Fatalf("FormatDateTimeLocal = %q", s)
	}
	back, err := ParseDateTimeLocal(s, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(ts) {
		t.Fatalf("parsed %v, want %v", back, ts)
	}
	if _, err := ParseDateTimeLocal("25/10/2025", time.UTC); err == nil {
		t.Fatal("expected error for bad layout")
	}
}

func TestIsSameDay(t *testing.T) {
	a := date(2025, time.October, 25, 0, 0)
	b := date(2025, time.October, 25, 23, 59)
	c := date(2025, time.October, 26, 0, 0)

	if !IsSameDay(a, a) {
		t.Error("not reflexive")
	}
	if !IsSameDay(a, b) || !IsSameDay(b, a) {
		t.Error("same day with different times should match both ways")
	}
	if IsSameDay(b, c) || IsSameDay(c, b) {
		t.Error("adjacent days matched")
	}
	if IsSameDay(a, date(2024, time.October, 25, 0, 0)) {
		t.Error("different years matched")
	}
}

func TestMonthBounds(t *testing.T) {
	for _, tc := range []struct {
		in         time.Time
		start, end time.Time
	}{
		{date(2025, time.October, 25, 10, 0), date(2025, time.October, 1, 0, 0), date(2025, time.October, 31, 0, 0)},
		{date(2024, time.February, 10, 0, 0), date(2024, time.February, 1, 0, 0), date(2024, time.February, 29, 0, 0)},
		{date(2025, time.February, 28, 0, 0), date(2025, time.February, 1, 0, 0), date(2025, time.February, 28, 0, 0)},
		{date(2025, time.December, 31, 23, 0), date(2025, time.December, 1, 0, 0), date(2025, time.December, 31, 0, 0)},
	} {
		if got := StartOfMonth(tc.in); !got.Equal(tc.start) {
			t.Errorf("StartOfMonth(%v) = %v, want %v", tc.in, got, tc.start)
		}
		if got := EndOfMonth(tc.in); !got.Equal(tc.end) {
			t.Errorf("EndOfMonth(%v) = %v, want %v", tc.in, got, tc.end)
		}
	}
}

func TestStartOfWeek(t *testing.T) {
	// Oct 25 2025 is a Saturday.
	got := StartOfWeek(date(2025, time.October, 25, 10, 15))
	if want := date(2025, time.October, 19, 10, 15); !got.Equal(want) {
		t.Fatalf("StartOfWeek = %v, want %v", got, want)
	}
	// Sunday maps to itself.
	sun := date(2025, time.October, 19, 8, 0)
	if got := StartOfWeek(sun); !got.Equal(sun) {
		t.Fatalf("StartOfWeek(Sunday) = %v", got)
	}
	// Crossing a month boundary.
	if got := StartOfWeek(date(2025, time.November, 1, 0, 0)); !got.Equal(date(2025, time.October, 26, 0, 0)) {
		t.Fatalf("StartOfWeek(Nov 1) = %v", got)
	}
}

func TestStartOfWeekBounds(t *testing.T) {
	d := date(2024, time.January, 1, 13, 45)
	for i := 0; i < 400; i++ {
		ts := AddDays(d, i)
		sow := StartOfWeek(ts)
		if sow.Weekday() != time.Sunday {
			t.Fatalf("StartOfWeek(%v) = %v is a %v", ts, sow, sow.Weekday())
		}
		if sow.After(ts) || !ts.Before(AddDays(sow, 7)) {
			t.Fatalf("%v not within week starting %v", ts, sow)
		}
	}
}

func TestAddDays(t *testing.T) {
	base := date(2025, time.October, 25, 10, 0)
	if got := AddDays(base, 7); !got.Equal(date(2025, time.November, 1, 10, 0)) {
		t.Errorf("+7 = %v", got)
	}
	if got := AddDays(base, -25); !got.Equal(date(2025, time.September, 30, 10, 0)) {
		t.Errorf("-25 = %v", got)
	}
	if got := AddDays(date(2025, time.December, 31, 0, 0), 1); !got.Equal(date(2026, time.January, 1, 0, 0)) {
		t.Errorf("year rollover = %v", got)
	}
}

func TestAddDaysKeepsWallClockAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable:", err)
	}
	// DST ends on Nov 2 2025 in New York.
	before := time.Date(2025, time.November, 1, 9, 0, 0, 0, loc)
	after := AddDays(before, 1)
	if after.Hour() != 9 || after.Day() != 2 {
		t.Fatalf("AddDays across DST = %v", after)
	}
}

func TestAddMonths(t *testing.T) {
	for _, tc := range []struct {
		in   time.Time
		n    int
		want time.Time
	}{
		{date(2025, time.October, 25, 9, 0), 1, date(2025, time.November, 25, 9, 0)},
		{date(2025, time.October, 25, 9, 0), -1, date(2025, time.September, 25, 9, 0)},
		{date(2025, time.December, 15, 0, 0), 1, date(2026, time.January, 15, 0, 0)},
		{date(2025, time.January, 15, 0, 0), -1, date(2024, time.December, 15, 0, 0)},
		{date(2025, time.January, 15, 0, 0), 14, date(2026, time.March, 15, 0, 0)},
		// Day overflow rolls into the following month.
		{date(2025, time.January, 31, 0, 0), 1, date(2025, time.March, 3, 0, 0)},
		{date(2024, time.January, 31, 0, 0), 1, date(2024, time.March, 2, 0, 0)},
		{date(2025, time.March, 31, 0, 0), -1, date(2025, time.March, 3, 0, 0)},
	} {
		if got := AddMonths(tc.in, tc.n); !got.Equal(tc.want) {
			t.Errorf("AddMonths(%v, %d) = %v, want %v", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := date(2025, time.October, 25, 10, 0)
	for _, tc := range []struct {
		end  time.Time
		want int
	}{
		{a, 0},
		{date(2025, time.October, 26, 9, 59), 0},
		{date(2025, time.October, 26, 10, 0), 1},
		{date(2025, time.October, 28, 12, 0), 3},
		{date(2025, time.October, 25, 9, 0), -1},
		{date(2025, time.October, 23, 10, 0), -2},
	} {
		if got := DaysBetween(a, tc.end); got != tc.want {
			t.Errorf("DaysBetween(%v, %v) = %d, want %d", a, tc.end, got, tc.want)
		}
	}
}

func TestCalendarGrid(t *testing.T) {
	grid := CalendarGrid(date(2025, time.October, 25, 15, 30))
	if len(grid) != GridCells {
		t.Fatalf("len = %d", len(grid))
	}
	// Oct 1 2025 is a Wednesday, so the grid starts on Sep 28.
	if want := date(2025, time.September, 28, 0, 0); !grid[0].Equal(want) {
		t.Fatalf("grid[0] = %v, want %v", grid[0], want)
	}
	if want := date(2025, time.November, 8, 0, 0); !grid[41].Equal(want) {
		t.Fatalf("grid[41] = %v, want %v", grid[41], want)
	}
}

func TestCalendarGridProperties(t *testing.T) {
	start := date(2023, time.January, 1, 12, 0)
	for i := 0; i < 48; i++ {
		d := AddMonths(start, i)
		grid := CalendarGrid(d)
		if len(grid) != GridCells {
			t.Fatalf("%v: len = %d", d, len(grid))
		}
		if grid[0].Weekday() != time.Sunday {
			t.Fatalf("%v: grid starts on %v", d, grid[0].Weekday())
		}
		if grid[0].After(StartOfMonth(d)) || grid[41].Before(EndOfMonth(d)) {
			t.Fatalf("%v: grid %v..%v does not cover the month", d, grid[0], grid[41])
		}
		for j, cell := range grid {
			if want := AddDays(grid[0], j); !cell.Equal(want) {
				t.Fatalf("%v: grid[%d] = %v, want %v", d, j, cell, want)
			}
		}
	}
}

func TestCalendarGridFebruaryStartingSunday(t *testing.T) {
	// Feb 2015 spans exactly four weeks; the grid still has six rows.
	grid := CalendarGrid(date(2015, time.February, 10, 0, 0))
	if !grid[0].Equal(date(2015, time.February, 1, 0, 0)) {
		t.Fatalf("grid[0] = %v", grid[0])
	}
	if !grid[41].Equal(date(2015, time.March, 14, 0, 0)) {
		t.Fatalf("grid[41] = %v", grid[41])
	}
}

func TestDaysInMonth(t *testing.T) {
	for _, tc := range []struct {
		in   time.Time
		want int
	}{
		{date(2025, time.October, 25, 0, 0), 31},
		{date(2025, time.November, 1, 0, 0), 30},
		{date(2025, time.February, 14, 0, 0), 28},
		{date(2024, time.February, 14, 0, 0), 29},
		{date(1900, time.February, 14, 0, 0), 28},
		{date(2000, time.February, 14, 0, 0), 29},
	} {
		days := DaysInMonth(tc.in)
		if len(days) != tc.want {
			t.Errorf("DaysInMonth(%v) has %d entries, want %d", tc.in, len(days), tc.want)
			continue
		}
		for i, d := range days {
			if d.Day() != i+1 || d.Month() != tc.in.Month() || d.Hour() != 0 {
				t.Errorf("DaysInMonth(%v)[%d] = %v", tc.in, i, d)
			}
		}
	}
}

func TestWeekDays(t *testing.T) {
	days := WeekDays(date(2025, time.October, 22, 18, 0))
	if len(days) != 7 {
		t.Fatalf("len = %d", len(days))
	}
	if !days[0].Equal(date(2025, time.October, 19, 0, 0)) || !days[6].Equal(date(2025, time.October, 25, 0, 0)) {
		t.Fatalf("week = %v..%v", days[0], days[6])
	}
}

func TestTimeSlots(t *testing.T) {
	d := date(2025, time.October, 25, 17, 42)

	slots := TimeSlots(d, DefaultSlotInterval)
	if len(slots) != 48 {
		t.Fatalf("len = %d", len(slots))
	}
	if !slots[0].Equal(date(2025, time.October, 25, 0, 0)) {
		t.Fatalf("first slot = %v", slots[0])
	}
	if !slots[47].Equal(date(2025, time.October, 25, 23, 30)) {
		t.Fatalf("last slot = %v", slots[47])
	}
	for i := 1; i < len(slots); i++ {
		if slots[i].Sub(slots[i-1]) != 30*time.Minute {
			t.Fatalf("gap at %d", i)
		}
	}

	if got := len(TimeSlots(d, 60)); got != 24 {
		t.Errorf("hourly slots = %d", got)
	}
	if got := len(TimeSlots(d, 7)); got != 206 {
		t.Errorf("7-minute slots = %d", got)
	}
	if got := TimeSlots(d, 0); len(got) != 0 {
		t.Errorf("zero interval produced %d slots", len(got))
	}
	if got := TimeSlots(d, -15); len(got) != 0 {
		t.Errorf("negative interval produced %d slots", len(got))
	}
}

func TestDayBounds(t *testing.T) {
	d := date(2025, time.October, 25, 17, 42)
	if got := StartOfDay(d); !got.Equal(date(2025, time.October, 25, 0, 0)) {
		t.Errorf("StartOfDay = %v", got)
	}
	if got := EndOfDay(d); !got.Equal(time.Date(2025, time.October, 25, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("EndOfDay = %v", got)
	}
}
