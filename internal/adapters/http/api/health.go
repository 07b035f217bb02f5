package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrdon/kioskd/pkg/metrics"
)

// HealthHandler serves liveness checks and Prometheus metrics.
type HealthHandler struct {
	metricsHandler http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		metricsHandler: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

// HandleHealth handles GET /healthz.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// HandleMetrics handles GET /metrics, exposing the Prometheus registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metricsHandler.ServeHTTP(w, r)
}
