package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"ddlcal/internal/calendar"
	"ddlcal/internal/complete"
	"ddlcal/internal/config"
	appLog "ddlcal/internal/log"
	"ddlcal/internal/model"
)

// LoadFunc returns the current deadline list.
type LoadFunc func(ctx context.Context) ([]model.Deadline, error)

// Options wires a Server to its collaborators.
type Options struct {
	// Debug serves the preview from ./cache instead of the configured path.
	Debug bool

	// Load supplies deadlines. Required.
	Load LoadFunc

	// Completer, when set, enables POST /projects/complete/{id}, which
	// forwards to the host application and redirects back.
	Completer *complete.FormClient

	// Now overrides the clock for tests.
	Now func() time.Time
}

// Server renders the calendar over HTTP. Each request carries its own
// cursor in the query string; the only shared state is the deadline cache.
type Server struct {
	cfg       *config.Config
	debug     bool
	mux       *http.ServeMux
	load      LoadFunc
	completer *complete.FormClient
	now       func() time.Time
	loc       *time.Location
	tmpl      *template.Template

	eventsMu    sync.RWMutex
	eventsCache *eventsCache
}

const eventsCacheTTL = 30 * time.Second

// eventsCache holds the last loaded deadline list and its timestamp.
type eventsCache struct {
	events    []model.Deadline
	updatedAt time.Time
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Load == nil {
		opts.Load = func(context.Context) ([]model.Deadline, error) { return nil, nil }
	}
	s := &Server{
		cfg:       cfg,
		debug:     opts.Debug,
		mux:       http.NewServeMux(),
		load:      opts.Load,
		completer: opts.Completer,
		now:       opts.Now,
		loc:       cfg.Location(),
		tmpl:      newTemplates(cfg.Location()),
	}
	s.registerRoutes()
	return s
}

// Handler returns the root handler, wrapped in basic auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Run serves on cfg.Listen until ctx is canceled, then shuts down within
// five seconds.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen, "debug", s.debug)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calendar", http.StatusFound)
	})
	s.mux.HandleFunc("GET /calendar", s.handleCalendarPage)
	s.mux.HandleFunc("GET /api/calendar", s.handleCalendarAPI)
	s.mux.HandleFunc("GET /api/deadlines", s.handleDeadlines)
	s.mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "unknown endpoint "+r.URL.Path)
	})
	s.mux.HandleFunc("GET /preview.png", s.handlePreview)
	if s.completer != nil {
		s.mux.HandleFunc("POST "+calendar.CompletionPathPrefix+"{id}", s.handleComplete)
	}
}

func (s *Server) basicAuthEnabled() bool {
	return s.cfg != nil && s.cfg.BasicAuth != nil &&
		s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware protects every route except /health.
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
			w.Header().Set("WWW-Authenticate", `Basic realm="ddlcal", charset="UTF-8"`)
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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handlePreview serves the last captured PNG.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	previewPath := s.cfg.Capture.Output
	if s.debug {
		previewPath = "./cache/preview.png"
	}
	http.ServeFile(w, r, previewPath)
}

// deadlines returns the cached list, reloading after eventsCacheTTL. A
// failed reload keeps serving whatever the healthy sources returned.
func (s *Server) deadlines(ctx context.Context) []model.Deadline {
	now := time.Now()

	s.eventsMu.RLock()
	ec := s.eventsCache
	s.eventsMu.RUnlock()
	if ec != nil && now.Sub(ec.updatedAt) < eventsCacheTTL {
		return ec.events
	}

	events, err := s.load(ctx)
	if err != nil {
		appLog.Error("web: deadline load reported errors", err, "deadlines", len(events))
	}

	s.eventsMu.Lock()
	s.eventsCache = &eventsCache{events: events, updatedAt: time.Now()}
	s.eventsMu.Unlock()
	return events
}

// invalidate drops the cache so the next render reloads the feed.
func (s *Server) invalidate() {
	s.eventsMu.Lock()
	s.eventsCache = nil
	s.eventsMu.Unlock()
}

func (s *Server) calendarFor(ctx context.Context) *calendar.Calendar {
	return calendar.New(s.deadlines(ctx), calendar.Options{
		Location:  s.loc,
		WeekStart: s.cfg.Weekday(),
		Now:       s.now,
	})
}

func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	cal := s.calendarFor(r.Context())
	st := resolveState(cal, r.URL.Query())

	data, err := s.newPageData(r, cal, st)
	if err != nil {
		appLog.Error("web: page data failed", err)
		http.Error(w, "failed to render calendar", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "page", data); err != nil {
		appLog.Error("web: template failed", err)
		http.Error(w, "failed to render calendar", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// calendarResponse is the JSON shape of /api/calendar.
type calendarResponse struct {
	calendar.View
	Overlay         *calendar.Overlay `json:"overlay,omitempty"`
	DisplayTimeZone string            `json:"display_timezone"`
	WeekStart       string            `json:"week_start"`
}

func (s *Server) handleCalendarAPI(w http.ResponseWriter, r *http.Request) {
	cal := s.calendarFor(r.Context())
	st := resolveState(cal, r.URL.Query())

	resp := calendarResponse{
		View:            cal.Render(st.Cursor),
		DisplayTimeZone: s.loc.String(),
		WeekStart:       s.cfg.WeekStart,
	}
	if st.HasDetail {
		ov := cal.Detail(st.DetailDate, st.EventID)
		resp.Overlay = &ov
	}
	writeJSON(w, http.StatusOK, resp)
}

type deadlinesResponse struct {
	Deadlines       []model.Deadline `json:"deadlines"`
	DisplayTimeZone string           `json:"display_timezone"`
}

func (s *Server) handleDeadlines(w http.ResponseWriter, r *http.Request) {
	events := s.deadlines(r.Context())
	if events == nil {
		events = []model.Deadline{}
	}
	writeJSON(w, http.StatusOK, deadlinesResponse{
		Deadlines:       events,
		DisplayTimeZone: s.loc.String(),
	})
}

// handleComplete forwards a completion form to the host application and
// sends the browser back to the calendar for a full reload.
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	id := model.ID(r.PathValue("id"))
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	cp := s.completer.WithToken(r.PostForm.Get(complete.CSRFField))
	if err := calendar.RequestCompletion(r.Context(), cp, id); err != nil {
		appLog.Error("web: completion failed", err, "id", id)
		http.Error(w, "failed to mark deadline complete", http.StatusBadGateway)
		return
	}
	s.invalidate()

	http.Redirect(w, r, safeReturnURL(r.PostForm.Get("return")), http.StatusSeeOther)
}

// safeReturnURL only allows local calendar URLs.
func safeReturnURL(u string) string {
	if strings.HasPrefix(u, "/calendar") && !strings.HasPrefix(u, "//") {
		return u
	}
	return "/calendar"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
