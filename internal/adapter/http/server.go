// Package http serves the collector's operational endpoints: liveness,
// readiness gated on the first completed collection run, a last-run status
// report, and the Prometheus registry.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfeunekes/wxbench/internal/pipeline"
)

// StatusSource is the collector state consulted by the readiness and
// status routes.
type StatusSource interface {
	CheckReadiness(ctx context.Context) error
	LastRun() (pipeline.RunResult, bool)
}

// Server exposes the collector's ops endpoints.
type Server struct {
	httpServer *http.Server
	source     StatusSource
	logger     *slog.Logger
}

// NewServer routes /healthz, /readyz, /statusz, and /metrics over the
// given collector state.
func NewServer(addr string, source StatusSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source: source,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /statusz", s.handleStatus)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("ops server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying mux, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleHealth reports process liveness only; it says nothing about
// whether collection runs are succeeding.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady answers 200 once the collector has finished a run, so load
// balancers hold traffic until there is data behind the service.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.source.CheckReadiness(ctx); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// runStatus is the /statusz body for a completed run.
type runStatus struct {
	Status         string   `json:"status"`
	RunID          string   `json:"run_id"`
	RunAt          string   `json:"run_at"`
	RawPayloads    int      `json:"raw_payloads"`
	DataPoints     int      `json:"data_points"`
	ProviderErrors []string `json:"provider_errors,omitempty"`
}

// handleStatus reports the most recent run: identifiers, payload and point
// counts, and any per-provider failures. Partial failures degrade the
// status without failing the route, since the rest of the run still loaded.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	last, ok := s.source.LastRun()
	if !ok {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "waiting for first run"})
		return
	}

	status := "ok"
	if len(last.Errors) > 0 {
		status = "degraded"
	}
	s.writeJSON(w, http.StatusOK, runStatus{
		Status:         status,
		RunID:          last.RunID,
		RunAt:          last.RunAt.Format(time.RFC3339),
		RawPayloads:    last.RawPayloads,
		DataPoints:     last.DataPoints,
		ProviderErrors: last.Errors,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write ops response failed", "error", err)
	}
}
