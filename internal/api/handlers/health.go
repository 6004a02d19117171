package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/juanmagp80/Clyra-sub003/internal/api/response"
	"github.com/juanmagp80/Clyra-sub003/internal/storage"
)

// HealthHandler reports service health for load balancers and uptime
// monitoring.
type HealthHandler struct {
	store     storage.Store
	version   string
	startedAt time.Time
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(store storage.Store, version string) *HealthHandler {
	return &HealthHandler{store: store, version: version, startedAt: time.Now()}
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Database      string `json:"database"`
}

// Health handles GET /api/health. The database check has its own short
// deadline so a hung connection cannot stall the probe.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Database:      "ok",
	}

	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}

	response.WriteJSON(w, status, resp)
}
