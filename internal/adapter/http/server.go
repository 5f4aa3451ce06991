// Package http exposes the operational endpoints and the scored feed.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cosmicwatch/neo-monitor-service/internal/domain"
	"github.com/cosmicwatch/neo-monitor-service/internal/feed"
)

// FeedProvider serves scored feed snapshots. Implemented by feed.Service.
type FeedProvider interface {
	GetFeed(ctx context.Context, start, end domain.Date) (feed.Result, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the feed plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	feed       FeedProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /feed, /healthz, /readyz, and
// /metrics routes.
func NewServer(addr string, provider FeedProvider, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		feed:   provider,
		logger: logger,
	}

	mux.HandleFunc("GET /feed", s.handleFeed)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
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

// feedResponse wraps a snapshot with its provenance so clients can tell live
// data from degraded responses.
type feedResponse struct {
	domain.FeedSnapshot
	IsRealData bool        `json:"is_real_data"`
	Status     feed.Status `json:"status"`
}

// handleFeed serves the scored snapshot for the requested date window.
// Defaults to today when start_date is absent and to start_date when
// end_date is absent.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	start := domain.NewDate(time.Now().UTC())
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		parsed, err := domain.ParseDate(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date, want YYYY-MM-DD"})
			return
		}
		start = parsed
	}

	end := start
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		parsed, err := domain.ParseDate(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_date, want YYYY-MM-DD"})
			return
		}
		end = parsed
	}

	result, err := s.feed.GetFeed(r.Context(), start, end)
	if err != nil {
		if errors.Is(err, feed.ErrInvalidRange) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.logger.Error("feed request failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "feed unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, feedResponse{
		FeedSnapshot: result.Snapshot,
		IsRealData:   result.IsRealData,
		Status:       result.Status,
	})
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
