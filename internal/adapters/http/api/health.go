package api

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/cardcatalog/pkg/metrics"
)

// Pinger reports whether the store can serve requests.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	pinger Pinger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(pinger Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

type healthResponse struct {
	Status string `json:"status"`
}

// HandleHealth handles GET /healthz. It answers 503 when the store cannot
// hand out a connection.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	const op = "api.healthz"
	if err := h.pinger.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// HandleMetrics serves the service registry in the Prometheus exposition format.
func HandleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
