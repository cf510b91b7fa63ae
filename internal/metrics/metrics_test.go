package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestCounters(t *testing.T) {
	m := New(func() int { return 7 })
	m.EventMutation("create")
	m.EventMutation("create")
	m.ValidationFailure(map[string]string{"title": "Title is required"})
	m.ICSRefresh("holidays", 12, nil)
	m.ICSRefresh("holidays", 0, errors.New("timeout"))

	out := scrape(t, m)
	for _, want := range []string{
		`calview_event_mutations_total{op="create"} 2`,
		`calview_validation_failures_total{field="title"} 1`,
		`calview_ics_refresh_total{result="ok",source="holidays"} 1`,
		`calview_ics_refresh_total{result="error",source="holidays"} 1`,
		`calview_ics_events{source="holidays"} 12`,
		`calview_events 7`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in scrape", want)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.EventMutation("create")
	m.ValidationFailure(map[string]string{"title": "x"})
	m.ICSRefresh("x", 1, nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(nil), New(nil)
	a.EventMutation("delete")
	if strings.Contains(scrape(t, b), `op="delete"`) {
		t.Fatal("registries share state")
	}
}
