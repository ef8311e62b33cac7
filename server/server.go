// Package server exposes the dashboard over HTTP: the page that acts as
// render surface, a JSON API for sessions and control events, and
// Prometheus metrics.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/spektr-org/gapminder/dashboard"
	"github.com/spektr-org/gapminder/reactive"
)

//go:embed assets/index.html
var assets embed.FS

var pageTemplate = template.Must(template.ParseFS(assets, "assets/index.html"))

// maxSignalBody caps a control event request body.
const maxSignalBody = 4 << 10

// Options tune the server.
type Options struct {
	Title       string
	SessionTTL  time.Duration
	MaxSessions int
	Metrics     *Metrics // nil → fresh registry
}

// Server routes HTTP requests to sessions.
type Server struct {
	dash    *dashboard.Dashboard
	store   *SessionStore
	metrics *Metrics
	title   string
	mux     *http.ServeMux
}

// New builds a Server over a dashboard.
func New(d *dashboard.Dashboard, opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	if opts.Title == "" {
		opts.Title = "Gapminder Dataset Analysis"
	}
	s := &Server{
		dash:    d,
		store:   NewSessionStore(opts.SessionTTL, opts.MaxSessions),
		metrics: opts.Metrics,
		title:   opts.Title,
		mux:     http.NewServeMux(),
	}
	s.route("GET /{$}", "page", s.handlePage)
	s.route("GET /healthz", "healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())
	s.route("POST /api/sessions", "session_create", s.handleCreateSession)
	s.route("GET /api/sessions/{id}", "session_get", s.handleGetSession)
	s.route("DELETE /api/sessions/{id}", "session_delete", s.handleDeleteSession)
	s.route("POST /api/sessions/{id}/tabs/{tab}/signals", "signal_set", s.handleSetSignal)
	return s
}

// Store exposes the session store.
func (s *Server) Store() *SessionStore { return s.store }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, sweeping idle
// sessions once a minute, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Printf("🚀 Dashboard listening on http://%s", addr)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ticker.C:
			if n := s.store.Sweep(); n > 0 {
				log.Printf("🧹 Evicted %d idle sessions", n)
			}
			s.metrics.sessions.Set(float64(s.store.Len()))
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			log.Printf("🛑 Shutting down dashboard")
			return srv.Shutdown(shutdownCtx)
		}
	}
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, map[string]string{"Title": s.title}); err != nil {
		log.Printf("⚠️ Page render failed: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"rows":     s.dash.Dataset().Len(),
		"sessions": s.store.Len(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess, err := s.dash.NewSession(reactive.WithObserver(s.metrics))
	if err != nil {
		log.Printf("⚠️ Session create failed: %v", err)
		writeError(w, http.StatusInternalServerError, "session could not be created")
		return
	}
	if err := s.store.Add(sess); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.metrics.sessions.Set(float64(s.store.Len()))
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

// session looks up the path's session. A lookup can evict an idle entry,
// so the gauge is refreshed on every call.
func (s *Server) session(r *http.Request) (*dashboard.Session, bool) {
	sess, ok := s.store.Get(r.PathValue("id"))
	s.metrics.sessions.Set(float64(s.store.Len()))
	return sess, ok
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.store.Delete(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.metrics.sessions.Set(float64(s.store.Len()))
	w.WriteHeader(http.StatusNoContent)
}

type signalRequest struct {
	Signal string          `json:"signal"`
	Value  json.RawMessage `json:"value"`
}

type signalResponse struct {
	Update reactive.Update `json:"update"`
}

type rejectionResponse struct {
	Error string               `json:"error"`
	State reactive.FilterState `json:"state"`
}

func (s *Server) handleSetSignal(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	tab := r.PathValue("tab")
	group, ok := sess.Tab(tab)
	if !ok {
		writeError(w, http.StatusNotFound, "tab not found")
		return
	}

	var req signalRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSignalBody)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "signal request payload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid signal request payload")
		return
	}
	value, err := decodeValue(req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	upd, err := group.Set(req.Signal, value)
	var invalid *reactive.InvalidSelectionError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, signalResponse{Update: upd})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, rejectionResponse{Error: err.Error(), State: group.State()})
	default:
		log.Printf("⚠️ Recompute failed in %s/%s: %v", sess.ID, tab, err)
		writeJSON(w, http.StatusInternalServerError, rejectionResponse{Error: err.Error(), State: group.State()})
	}
}

// decodeValue accepts a JSON string or number; 1952 and "1952" are equal.
func decodeValue(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("missing value")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("value must be a string or number, got %s", raw)
}

// ============================================================================
// PLUMBING
// ============================================================================

// route registers fn under pattern and counts responses by route label.
func (s *Server) route(pattern, name string, fn http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		fn(rec, r)
		s.metrics.requests.WithLabelValues(name, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
