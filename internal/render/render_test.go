package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"calview/internal/calendar"
	"calview/internal/model"
)

func at(d, hh, mm int) time.Time {
	return time.Date(2025, time.October, d, hh, mm, 0, 0, time.UTC)
}

func sample() []model.CalendarEvent {
	evs := []model.CalendarEvent{
		{ID: "1", Title: "Team Meeting", Start: at(25, 10, 0), End: at(25, 11, 0), Color: "#3b82f6"},
		{ID: "2", Title: "<script>", Start: at(25, 12, 0), End: at(25, 13, 0), Color: "red;}body{"},
	}
	for i := range 3 {
		evs = append(evs, model.CalendarEvent{ID: "x" + string(rune('a'+i)), Title: "Extra", Start: at(25, 14+i, 0), End: at(25, 15+i, 0)})
	}
	return evs
}

func TestHTMLMonth(t *testing.T) {
	now := at(25, 9, 0)
	nav := calendar.NewNavigator(now, model.ViewMonth, func() time.Time { return now })

	var buf bytes.Buffer
	if err := HTML(&buf, NewPage(nav, now, sample(), "/calendar")); err != nil {
		t.Fatalf("HTML: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`data-ready="true"`,
		"October 2025",
		"Team Meeting",
		"+2 more",
		"background: #3b82f6",
		"background: #0ea5e9",
		"/calendar?date=2025-11-25&amp;mode=month",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "<script>") || strings.Contains(out, "body{") {
		t.Error("untrusted event fields must be escaped or replaced")
	}
}

func TestHTMLWeek(t *testing.T) {
	now := at(25, 9, 0)
	nav := calendar.NewNavigator(now, model.ViewWeek, func() time.Time { return now })

	var buf bytes.Buffer
	if err := HTML(&buf, NewPage(nav, now, sample(), "/calendar")); err != nil {
		t.Fatalf("HTML: %v", err)
	}
	out := buf.String()

	// 10:00 starts 480px + header below the column top.
	for _, want := range []string{`data-view="week"`, "Sat 25", "top: 504px", "height: 48px", "10:00 AM - 11:00 AM"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestTerminal(t *testing.T) {
	m := calendar.BuildMonth(at(25, 0, 0), nil, at(25, 9, 0), sample())
	out := Terminal(m)
	for _, want := range []string{"October 2025", "Sun", "Sat", "Team Meeting", "+2 more"} {
		if !strings.Contains(out, want) {
			t.Errorf("terminal output missing %q", want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Project Review", 8); got != "Project…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("Short", 8); got != "Short" {
		t.Errorf("truncate = %q", got)
	}
}
