package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"calview/internal/calendar"
	"calview/internal/config"
	"calview/internal/dateutil"
	"calview/internal/eventutil"
	"calview/internal/form"
	"calview/internal/ics"
	appLog "calview/internal/log"
	"calview/internal/metrics"
	"calview/internal/model"
	"calview/internal/render"
	"calview/internal/store"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Server exposes the event collection over a JSON API, an HTML calendar
// page and an ICS feed.
type Server struct {
	cfg     *config.Config
	store   *store.Store
	metrics *metrics.Metrics
	loc     *time.Location
	now     func() time.Time
	mux     *http.ServeMux
}

// NewServer constructs a new Server. m may be nil.
func NewServer(cfg *config.Config, st *store.Store, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		metrics: m,
		loc:     time.Local,
		now:     time.Now,
		mux:     http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured. Empty
// credentials count as disabled.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="calview", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/events", s.handleListEvents)
	s.mux.HandleFunc("POST /api/events", s.handleCreateEvent)
	s.mux.HandleFunc("POST /api/events/quick", s.handleQuickAdd)
	s.mux.HandleFunc("GET /api/events/{id}", s.handleGetEvent)
	s.mux.HandleFunc("PATCH /api/events/{id}", s.handleUpdateEvent)
	s.mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)
	s.mux.HandleFunc("GET /api/events/{id}/conflicts", s.handleConflicts)

	s.mux.HandleFunc("GET /api/categories", s.handleCategories)
	s.mux.HandleFunc("GET /api/form", s.handleForm)
	s.mux.HandleFunc("GET /api/view", s.handleView)
	s.mux.HandleFunc("GET /api/slots", s.handleSlots)

	s.mux.HandleFunc("GET /calendar.ics", s.handleICS)
	s.mux.HandleFunc("GET /calendar", s.handleCalendar)
	s.mux.Handle("GET /metrics", s.metrics.Handler())
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calendar", http.StatusFound)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// eventView is an event plus the display strings clients would otherwise
// recompute.
type eventView struct {
	model.CalendarEvent
	AllDay      bool   `json:"all_day"`
	Duration    string `json:"duration"`
	TimeDisplay string `json:"time_display"`
}

func toView(ev model.CalendarEvent) eventView {
	return eventView{
		CalendarEvent: ev,
		AllDay:        eventutil.IsAllDay(ev),
		Duration:      eventutil.FormatDuration(ev),
		TimeDisplay:   eventutil.TimeDisplay(ev),
	}
}

func toViews(events []model.CalendarEvent) []eventView {
	out := make([]eventView, 0, len(events))
	for _, ev := range events {
		out = append(out, toView(ev))
	}
	return out
}

// handleListEvents returns events sorted by start.
//
// GET /api/events?category=Work&from=2025-10-01&to=2025-10-31
//   - category: exact match
//   - from, to: inclusive day bounds (yyyy-MM-dd or RFC 3339)
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events := s.store.List()

	if c := q.Get("category"); c != "" {
		events = eventutil.FilterByCategory(events, c)
	}
	if q.Get("from") != "" || q.Get("to") != "" {
		from, err := s.parseTime(q.Get("from"), time.Time{})
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from: "+err.Error())
			return
		}
		to, err := s.parseTime(q.Get("to"), time.Time{})
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to: "+err.Error())
			return
		}
		if !to.IsZero() {
			to = dateutil.EndOfDay(to)
		} else {
			to = time.Date(9999, time.December, 31, 0, 0, 0, 0, s.loc)
		}
		events = eventutil.InRange(events, dateutil.StartOfDay(from), to)
	}

	writeJSON(w, http.StatusOK, toViews(eventutil.SortByStart(events)))
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var d form.Data
	if !decodeJSON(w, r, &d) {
		return
	}
	s.submit(w, d.WithDefaults(s.now().In(s.loc)), "")
}

type quickAddRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleQuickAdd(w http.ResponseWriter, r *http.Request) {
	var req quickAddRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := form.QuickAdd(req.Text, s.now().In(s.loc))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.submit(w, d, "")
}

// submit runs the form pipeline and answers 201 with the stored event or
// 422 with the per-field messages.
func (s *Server) submit(w http.ResponseWriter, d form.Data, editingID string) {
	ev, err := form.Submit(s.store, d, editingID)
	var verrs form.Errors
	switch {
	case errors.As(err, &verrs):
		s.rejectInvalid(w, verrs)
		return
	case err != nil:
		writeStoreError(w, err)
		return
	}

	op := "create"
	status := http.StatusCreated
	if editingID != "" {
		op, status = "update", http.StatusOK
	}
	s.metrics.EventMutation(op)
	appLog.Info("event saved", "op", op, "id", ev.ID, "title", ev.Title)
	writeJSON(w, status, toView(ev))
}

type validationResponse struct {
	Error  string      `json:"error"`
	Errors form.Errors `json:"errors"`
}

func (s *Server) rejectInvalid(w http.ResponseWriter, errs form.Errors) {
	s.metrics.ValidationFailure(errs)
	appLog.Debug("event rejected", "errors", errs.Error())
	writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Error: "validation failed", Errors: errs})
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(ev))
}

// handleUpdateEvent validates the merged event and writes it in one store
// step, so concurrent patches are each checked against the latest version.
func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch model.EventPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	ev, err := s.store.UpdateFunc(id, func(current model.CalendarEvent) (model.CalendarEvent, error) {
		if errs := form.ValidatePatch(current, patch); errs != nil {
			return current, errs
		}
		return patch.Apply(current), nil
	})
	var verrs form.Errors
	switch {
	case errors.As(err, &verrs):
		s.rejectInvalid(w, verrs)
		return
	case err != nil:
		writeStoreError(w, err)
		return
	}
	s.metrics.EventMutation("update")
	appLog.Info("event updated", "id", id)
	writeJSON(w, http.StatusOK, toView(ev))
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Delete(id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.metrics.EventMutation("delete")
	appLog.Info("event deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConflicts(w http.ResponseWriter, r *http.Request) {
	ev, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	conflicts := eventutil.SortByStart(eventutil.Overlapping(ev, s.store.List()))
	writeJSON(w, http.StatusOK, toViews(conflicts))
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	cats := eventutil.UniqueCategories(s.store.List())
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, cats)
}

type formResponse struct {
	EditingID string    `json:"editing_id,omitempty"`
	Data      form.Data `json:"data"`
	// StartLocal and EndLocal are the datetime-local input values.
	StartLocal string `json:"start_local"`
	EndLocal   string `json:"end_local"`
}

// handleForm returns what the editor opens with for a clicked day.
//
// GET /api/form?date=2025-10-25
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	day, err := s.parseTime(r.URL.Query().Get("date"), s.now().In(s.loc))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: "+err.Error())
		return
	}
	d, id := form.ForDate(s.store.List(), day)
	writeJSON(w, http.StatusOK, formResponse{
		EditingID:  id,
		Data:       d,
		StartLocal: dateutil.FormatDateTimeLocal(d.Start),
		EndLocal:   dateutil.FormatDateTimeLocal(d.End),
	})
}

type viewResponse struct {
	Mode  model.ViewMode  `json:"mode"`
	Title string          `json:"title"`
	Month *calendar.Month `json:"month,omitempty"`
	Week  *calendar.Week  `json:"week,omitempty"`
}

// handleView returns the laid-out month or week grid.
//
// GET /api/view?mode=week&date=2025-10-25&selected=2025-10-27
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	nav, err := s.navigator(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := s.now().In(s.loc)
	events := s.store.List()
	resp := viewResponse{Mode: nav.View, Title: nav.Title()}
	if nav.View == model.ViewWeek {
		wk := calendar.BuildWeek(nav.Current, now, events)
		resp.Week = &wk
	} else {
		m := calendar.BuildMonth(nav.Current, nav.Selected, now, events)
		resp.Month = &m
	}
	writeJSON(w, http.StatusOK, resp)
}

type slotsResponse struct {
	Date     string   `json:"date"`
	Interval int      `json:"interval"`
	Slots    []string `json:"slots"`
}

// handleSlots lists the time slots of a day.
//
// GET /api/slots?date=2025-10-25&interval=30
func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	day, err := s.parseTime(q.Get("date"), s.now().In(s.loc))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: "+err.Error())
		return
	}
	interval := parseIntDefault(q.Get("interval"), s.cfg.SlotIntervalMinutes)
	if interval <= 0 {
		writeError(w, http.StatusBadRequest, "interval must be positive")
		return
	}

	slots := dateutil.TimeSlots(day, interval)
	labels := make([]string, 0, len(slots))
	for _, t := range slots {
		labels = append(labels, dateutil.Format(t, "HH:mm"))
	}
	writeJSON(w, http.StatusOK, slotsResponse{
		Date:     dateutil.Format(day, "yyyy-MM-dd"),
		Interval: interval,
		Slots:    labels,
	})
}

func (s *Server) handleICS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calview.ics"`)
	_, _ = w.Write([]byte(ics.Export(s.store.List(), s.now())))
}

// handleCalendar serves the HTML calendar used by browsers and by the
// headless snapshot.
//
// GET /calendar?mode=month&date=2025-10-25&selected=2025-10-27
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	nav, err := s.navigator(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	page := render.NewPage(nav, s.now().In(s.loc), s.store.List(), "/calendar")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.HTML(w, page); err != nil {
		appLog.Error("calendar render failed", err)
	}
}

// navigator restores the navigation state carried in the query string.
func (s *Server) navigator(r *http.Request) (*calendar.Navigator, error) {
	q := r.URL.Query()
	now := s.now().In(s.loc)

	view := s.cfg.View()
	if m := q.Get("mode"); m != "" {
		v, err := model.ParseViewMode(m)
		if err != nil {
			return nil, err
		}
		view = v
	}
	current, err := s.parseTime(q.Get("date"), now)
	if err != nil {
		return nil, errors.New("invalid date: " + err.Error())
	}

	nav := calendar.NewNavigator(current, view, func() time.Time { return s.now().In(s.loc) })
	if sel := q.Get("selected"); sel != "" {
		t, err := s.parseTime(sel, now)
		if err != nil {
			return nil, errors.New("invalid selected: " + err.Error())
		}
		nav.Select(t)
	}
	return nav, nil
}

// parseTime accepts yyyy-MM-dd, the datetime-local layout or RFC 3339. An
// empty string yields def.
func (s *Server) parseTime(v string, def time.Time) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, v, s.loc); err == nil {
		return t, nil
	}
	if t, err := dateutil.ParseDateTimeLocal(v, s.loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(s.loc), nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	appLog.Error("store operation failed", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
