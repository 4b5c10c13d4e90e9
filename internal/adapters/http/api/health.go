package api

import (
	"net/http"

	"github.com/okian/examscore/internal/adapters/repository"
	"github.com/okian/examscore/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler handles readiness requests.
type HealthHandler struct {
	deps Dependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps Dependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

type healthResponse struct {
	Status string           `json:"status"`
	Model  *repository.Info `json:"model,omitempty"`
}

// HandleHealth handles GET /healthz requests.
// Returns 200 with the model description once a model is loaded, 503 otherwise.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, "api.healthz", http.MethodGet+", "+http.MethodHead)
		return
	}
	info, ok := h.deps.Model()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "model_unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Model: &info})
}

// NewMetricsHandler serves the custom Prometheus registry.
func NewMetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
