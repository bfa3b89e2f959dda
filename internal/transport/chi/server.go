// Package chi serves the admin HTTP surface: liveness, readiness and metrics.
package chi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mdsearch/internal/metrics"
	healthuc "github.com/kailas-cloud/mdsearch/internal/usecase/health"
	"github.com/kailas-cloud/mdsearch/internal/version"
)

// healthChecker is the consumer interface for readiness (ISP).
type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server handles admin requests.
type Server struct {
	health healthChecker
	logger *zap.Logger
}

// NewServer creates an admin server.
func NewServer(health healthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{health: health, logger: logger}
}

// Router builds the admin router. An empty apiKeys disables metrics auth.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.Healthz)
	r.Get("/readyz", s.Readyz)
	r.Get("/metrics", s.Metrics)
	return r
}

type livenessResponse struct {
	Status string `json:"status"`
	version.Info
}

// Healthz handles GET /healthz. The process is live once it answers.
func (s *Server) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, livenessResponse{
		Status: string(healthuc.Healthy),
		Info:   version.Get(),
	})
}

// Readyz handles GET /readyz. A degraded sink keeps the node ready; an
// unreachable engine does not.
func (s *Server) Readyz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
