package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mcoot/arise-roster/internal/api/middleware"
	"github.com/mcoot/arise-roster/internal/realtime"
)

// LiveHandler serves the real-time change channel over SSE and websocket
type LiveHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewLiveHandler creates a new live handler
func NewLiveHandler(hub *realtime.Hub, allowedOrigins []string, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{
		hub:      hub,
		upgrader: realtime.NewUpgrader(allowedOrigins),
		logger:   logger,
	}
}

// Events handles GET /api/events
func (h *LiveHandler) Events(w http.ResponseWriter, r *http.Request) {
	viewer := realtime.ViewerFor(middleware.GetSession(r.Context()))
	realtime.ServeSSE(w, r, h.hub, viewer)
}

// WebSocket handles GET /api/ws
func (h *LiveHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	viewer := realtime.ViewerFor(middleware.GetSession(r.Context()))
	realtime.ServeWS(w, r, h.upgrader, h.hub, viewer, h.logger)
}
