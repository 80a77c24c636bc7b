package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/wind-weibull-service/internal/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sessions is the session registry as seen by the HTTP layer.
type Sessions interface {
	Create() (*session.Session, error)
	Get(id string) (*session.Session, error)
	Delete(id string) bool
}

// Server exposes health, readiness, metrics and the session API.
type Server struct {
	httpServer *http.Server
	sessions   Sessions
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// the /v1/sessions routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, sessions Sessions, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		sessions: sessions,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/sessions", s.handleCreate)
	mux.HandleFunc("GET /v1/sessions/{id}", s.handleGet)
	mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleDelete)
	mux.HandleFunc("PUT /v1/sessions/{id}/scale", s.handleScale)
	mux.HandleFunc("PUT /v1/sessions/{id}/shape", s.handleShape)
	mux.HandleFunc("PUT /v1/sessions/{id}/range", s.handleRange)
	mux.HandleFunc("GET /v1/sessions/{id}/curve", s.handleCurve)
	mux.HandleFunc("GET /v1/sessions/{id}/summary", s.handleSummary)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
