package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	pgpkg "github.com/K4nnonn/FlowSightFi/pkg/postgres"
)

// HealthHandler provides HTTP health check endpoints.
type HealthHandler struct {
	serviceName string
	startedAt   time.Time
	db          pgpkg.Pinger
	kafka       bool
	logger      *slog.Logger
}

// NewHealthHandler creates a new HealthHandler. db may be nil when the
// service runs without a database.
func NewHealthHandler(serviceName string, db pgpkg.Pinger, kafkaEnabled bool, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		startedAt:   time.Now(),
		db:          db,
		kafka:       kafkaEnabled,
		logger:      logger,
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

type readinessResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks"`
}

// Liveness handles the liveness probe endpoint (GET /healthz).
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Service: h.serviceName,
		Uptime:  time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// Readiness handles the readiness probe endpoint (GET /readyz). It fails
// when the credential store cannot be reached.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "disabled", "kafka": "disabled"}
	status, code := "ok", http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pgpkg.HealthCheck(ctx, h.db); err != nil {
			h.logger.WarnContext(r.Context(), "readiness check failed", "check", "database", "error", err)
			checks["database"] = "unavailable"
			status, code = "unavailable", http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}
	}
	if h.kafka {
		checks["kafka"] = "configured"
	}

	writeJSON(w, code, readinessResponse{
		Status:  status,
		Service: h.serviceName,
		Checks:  checks,
	})
}

// RegisterRoutes registers health check routes on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Liveness)
	mux.HandleFunc("GET /readyz", h.Readiness)
}
