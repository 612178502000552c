package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/arise-roster/internal/api/response"
	"github.com/mcoot/arise-roster/internal/realtime"
	"github.com/mcoot/arise-roster/internal/storage"
)

// HealthHandler reports storage reachability and live viewer count
type HealthHandler struct {
	storage     storage.Storage
	storageType string
	hub         *realtime.Hub
	logger      *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(storage storage.Storage, storageType string, hub *realtime.Hub, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage:     storage,
		storageType: storageType,
		hub:         hub,
		logger:      logger,
	}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := response.Health{Status: "ok", Storage: h.storageType, Viewers: h.hub.ClientCount()}
	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Error("storage health check failed", slog.String("error", err.Error()))
		resp.Status = "degraded"
		response.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}
