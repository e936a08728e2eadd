package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/collision-heatmap/internal/pipeline"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ResultSource exposes the most recent heatmap, nil until the first run succeeds.
type ResultSource interface {
	ReadinessChecker
	Latest() *pipeline.Result
}

// Server exposes the rendered heatmap plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /heatmap.svg, /matrix, /healthz,
// /readyz, and /metrics routes.
func NewServer(addr string, results ResultSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /heatmap.svg", handleSVG(results))
	mux.HandleFunc("GET /matrix", handleMatrix(results))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(results))
	mux.Handle("GET /metrics", promhttp.Handler())

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func handleSVG(results ResultSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		res := results.Latest()
		if res == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "heatmap not rendered yet"})
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Last-Modified", res.Snapshot.GeneratedAt.Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
		w.Write(res.SVG) //nolint:errcheck // client went away
	}
}

func handleMatrix(results ResultSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		res := results.Latest()
		if res == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "heatmap not rendered yet"})
			return
		}
		writeJSON(w, http.StatusOK, res.Snapshot)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
