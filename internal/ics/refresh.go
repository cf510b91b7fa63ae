package ics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "calview/internal/log"
	"calview/internal/metrics"
	"calview/internal/model"
)

// Sink receives the events of one subscription, replacing what it held
// for that source before.
type Sink interface {
	ReplaceSource(source string, events []model.CalendarEvent) int
}

// Refresher keeps imported subscriptions current.
type Refresher struct {
	fetcher *Fetcher
	sink    Sink
	sources []Source
	loc     *time.Location
	metrics *metrics.Metrics
}

func NewRefresher(f *Fetcher, sink Sink, sources []Source, loc *time.Location, m *metrics.Metrics) *Refresher {
	return &Refresher{fetcher: f, sink: sink, sources: sources, loc: loc, metrics: m}
}

// RefreshAll fetches and imports every source. A failing source keeps its
// previously imported events; the joined errors are returned.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, src := range r.sources {
		n, err := r.refreshOne(ctx, src)
		r.metrics.ICSRefresh(src.ID, n, err)
		if err != nil {
			appLog.Error("ics refresh failed", err, "source", src.ID)
			errs = append(errs, err)
			continue
		}
		appLog.Info("ics refreshed", "source", src.ID, "events", n)
	}
	return errors.Join(errs...)
}

func (r *Refresher) refreshOne(ctx context.Context, src Source) (int, error) {
	body, fromCache, err := r.fetcher.Fetch(ctx, src)
	if err != nil {
		return 0, err
	}
	events, err := Parse(src, body, r.loc)
	if err != nil {
		return 0, err
	}
	removed := r.sink.ReplaceSource(src.ID, events)
	appLog.Debug("ics import applied", "source", src.ID, "from_cache", fromCache, "replaced", removed)
	return len(events), nil
}

// Start runs RefreshAll once and then on the cron schedule until ctx is
// canceled.
func (r *Refresher) Start(ctx context.Context, schedule string) error {
	if len(r.sources) == 0 {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		_ = r.RefreshAll(ctx)
	}); err != nil {
		return fmt.Errorf("refresh schedule %q: %w", schedule, err)
	}

	_ = r.RefreshAll(ctx)
	c.Start()
	appLog.Info("ics refresh scheduled", "schedule", schedule, "sources", len(r.sources))

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}
