// Package metrics exposes Prometheus collectors for event mutations,
// validation failures and ICS refreshes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics methods are nil-safe so callers can skip instrumentation.
type Metrics struct {
	reg *prometheus.Registry

	eventMutations    *prometheus.CounterVec
	validationFailure *prometheus.CounterVec
	icsRefresh        *prometheus.CounterVec
	icsEvents         *prometheus.GaugeVec
	storedEvents      prometheus.GaugeFunc
}

// New registers collectors on a private registry. eventCount, if non-nil,
// backs the calview_events gauge.
func New(eventCount func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	m := &Metrics{
		reg: reg,
		eventMutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calview_event_mutations_total",
			Help: "Events created, updated or deleted through the API",
		}, []string{"op"}),
		validationFailure: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calview_validation_failures_total",
			Help: "Rejected event submissions by field",
		}, []string{"field"}),
		icsRefresh: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calview_ics_refresh_total",
			Help: "ICS subscription refreshes by source and result",
		}, []string{"source", "result"}),
		icsEvents: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "calview_ics_events",
			Help: "Events imported from each ICS subscription on the last refresh",
		}, []string{"source"}),
	}
	if eventCount != nil {
		m.storedEvents = f.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "calview_events",
			Help: "Events currently held in memory",
		}, func() float64 { return float64(eventCount()) })
	}
	return m
}

func (m *Metrics) EventMutation(op string) {
	if m == nil {
		return
	}
	m.eventMutations.WithLabelValues(op).Inc()
}

func (m *Metrics) ValidationFailure(fields map[string]string) {
	if m == nil {
		return
	}
	for field := range fields {
		m.validationFailure.WithLabelValues(field).Inc()
	}
}

func (m *Metrics) ICSRefresh(source string, imported int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.icsRefresh.WithLabelValues(source, "error").Inc()
		return
	}
	m.icsRefresh.WithLabelValues(source, "ok").Inc()
	m.icsEvents.WithLabelValues(source).Set(float64(imported))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
