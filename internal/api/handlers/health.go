package handlers

import (
	"net/http"
	"time"

	"github.com/pratik-mahalle/linkboost/internal/health"
	"github.com/pratik-mahalle/linkboost/internal/pkg/utils"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	aggregator *health.Aggregator
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(agg *health.Aggregator) *HealthHandler {
	return &HealthHandler{aggregator: agg}
}

// LivenessResponse is the body of GET /healthz
type LivenessResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      float64   `json:"uptime"`
	Service     string    `json:"service"`
	Version     string    `json:"version"`
	Environment string    `json:"environment"`
}

// Healthz handles the liveness probe. It checks nothing beyond the process.
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} LivenessResponse
// @Router /healthz [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	info := h.aggregator.Info()
	now := time.Now().UTC()
	utils.WriteJSON(w, http.StatusOK, LivenessResponse{
		Status:      "ok",
		Timestamp:   now,
		Uptime:      now.Sub(info.Started).Seconds(),
		Service:     info.Service,
		Version:     info.Version,
		Environment: info.Environment,
	})
}

// Health runs every registered check
// @Summary Aggregate health
// @Description 200 when healthy or degraded, 503 when a required dependency is unhealthy
// @Tags Health
// @Produce json
// @Success 200 {object} health.Report
// @Failure 503 {object} health.Report
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.aggregator.Aggregate(r.Context())
	w.Header().Set("Cache-Control", "no-store")
	utils.WriteJSON(w, report.Status.HTTPStatus(), report)
}
