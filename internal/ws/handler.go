package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/quizrace/quizrace/internal/services/session"
)

// Handler upgrades HTTP requests to websocket connections and hands them
// to a Client
type Handler struct {
	controller *session.Controller
	hubs       *HubManager
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewHandler creates a websocket Handler
func NewHandler(controller *session.Controller, hubs *HubManager, logger *slog.Logger) *Handler {
	return &Handler{
		controller: controller,
		hubs:       hubs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Casual unauthenticated game; CORS is enforced at the router
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP handles GET /ws
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(h, conn)
	h.logger.Info("client connected", slog.String("remote", r.RemoteAddr))

	go client.writePump()
	go client.readPump()
}
