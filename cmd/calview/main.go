package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"calview/internal/calendar"
	"calview/internal/capture"
	"calview/internal/config"
	"calview/internal/ics"
	appLog "calview/internal/log"
	"calview/internal/metrics"
	"calview/internal/model"
	"calview/internal/render"
	"calview/internal/store"
	"calview/internal/web"
)

const version = "0.1.0"

type flagConfig struct {
	configPath string
	listen     string
	debug      bool
	print      bool
	date       string
	snapshot   string
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		appLog.Warn("failed to load .env", "error", err.Error())
	}

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if err := conf.ApplyEnv(os.LookupEnv); err != nil {
		appLog.Error("invalid environment override", err)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	level := appLog.ParseLevel(conf.LogLevel)
	if flags.debug {
		level = appLog.LevelDebug
	}
	appLog.SetLevel(level)

	appLog.Info("calview starting", "version", version)
	appLog.Info("effective config",
		"listen", conf.Listen,
		"default_view", conf.DefaultView,
		"slot_interval_minutes", conf.SlotIntervalMinutes,
		"refresh", conf.RefreshCron,
		"ics_count", len(conf.ICS),
		"seed", conf.Seed,
		"basic_auth", conf.BasicAuth != nil,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.New()
	if conf.Seed {
		st.Seed(sampleEvents(time.Local))
	}
	m := metrics.New(st.Len)

	refresher := ics.NewRefresher(ics.NewFetcher(conf.CacheDir, nil), st, icsSources(conf), time.Local, m)

	if flags.print {
		if err := printMonth(ctx, refresher, st, flags.date); err != nil {
			appLog.Error("print failed", err)
			os.Exit(1)
		}
		return
	}

	if err := refresher.Start(ctx, conf.RefreshCron); err != nil {
		appLog.Error("failed to schedule ICS refresh", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              conf.Listen,
		Handler:           web.NewServer(conf, st, m).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		errCh <- srv.ListenAndServe()
	}()

	if flags.snapshot != "" {
		go func() {
			err := capture.CapturePNG(ctx, capture.Options{
				URL:        snapshotURL(conf),
				OutputPath: flags.snapshot,
			})
			if err != nil {
				appLog.Error("snapshot failed", err)
			}
			stop()
		}()
	}

	select {
	case <-ctx.Done():
		appLog.Info("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("HTTP server failed", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP shutdown failed", err)
	}
	appLog.Info("calview exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", defaultConfigPath(), "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&cfg.print, "print", false, "Print the month to the terminal and exit")
	flag.StringVar(&cfg.date, "date", "", "Month to print, yyyy-MM-dd (default today)")
	flag.StringVar(&cfg.snapshot, "snapshot", "", "Write a PNG of /calendar to this path and exit")

	flag.Parse()

	return cfg
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "calview.yaml"
	}
	return filepath.Join(dir, "calview", "config.yaml")
}

func icsSources(conf *config.Config) []ics.Source {
	sources := make([]ics.Source, 0, len(conf.ICS))
	for _, c := range conf.ICS {
		if c.URL == "" {
			continue
		}
		sources = append(sources, ics.Source{ID: c.ID, URL: c.URL, Name: c.Name, Color: c.Color})
	}
	return sources
}

// snapshotURL points the headless browser at the local server. Basic auth
// credentials ride in the URL.
func snapshotURL(conf *config.Config) string {
	host := conf.Listen
	if len(host) > 0 && host[0] == ':' {
		host = "127.0.0.1" + host
	}
	auth := ""
	if conf.BasicAuth != nil && conf.BasicAuth.Username != "" {
		auth = conf.BasicAuth.Username + ":" + conf.BasicAuth.Password + "@"
	}
	return fmt.Sprintf("http://%s%s/calendar?mode=%s", auth, host, conf.View())
}

func printMonth(ctx context.Context, r *ics.Refresher, st *store.Store, date string) error {
	if err := r.RefreshAll(ctx); err != nil {
		appLog.Warn("some ICS sources failed", "error", err.Error())
	}

	now := time.Now()
	current := now
	if date != "" {
		t, err := time.ParseInLocation(time.DateOnly, date, time.Local)
		if err != nil {
			return fmt.Errorf("invalid -date: %w", err)
		}
		current = t
	}

	fmt.Println(render.Terminal(calendar.BuildMonth(current, nil, now, st.List())))
	return nil
}

// sampleEvents is the demo collection loaded when seed is enabled.
func sampleEvents(loc *time.Location) []model.CalendarEvent {
	return []model.CalendarEvent{
		{
			ID:          "1",
			Title:       "Team Meeting",
			Description: "Weekly sync with the team",
			Start:       time.Date(2025, time.October, 25, 10, 0, 0, 0, loc),
			End:         time.Date(2025, time.October, 25, 11, 0, 0, 0, loc),
			Color:       "#3b82f6",
			Category:    "Work",
		},
		{
			ID:          "2",
			Title:       "Project Review",
			Description: "Q4 project review",
			Start:       time.Date(2025, time.October, 26, 14, 0, 0, 0, loc),
			End:         time.Date(2025, time.October, 26, 16, 0, 0, 0, loc),
			Color:       "#10b981",
			Category:    "Meeting",
		},
	}
}
