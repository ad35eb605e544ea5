package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/quizrace/quizrace/internal/model"
	"github.com/quizrace/quizrace/internal/services/session"
)

// Hub holds the live connections of a single session
type Hub struct {
	code   model.SessionCode
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub creates a Hub for a session
func NewHub(code model.SessionCode, logger *slog.Logger) *Hub {
	return &Hub{
		code:    code,
		logger:  logger.With(slog.String("session", string(code))),
		clients: make(map[*Client]bool),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client registered",
		slog.String("player_id", string(client.playerID)),
		slog.Int("total_clients", count),
	)
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client unregistered",
		slog.String("player_id", string(client.playerID)),
		slog.Int("total_clients", count),
	)
}

// Broadcast queues a payload for every connected client. A client whose
// buffer is full is dropped; its pumps shut down and disconnect handling
// runs as if the transport had failed.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			delete(h.clients, client)
			close(client.send)
			h.logger.Warn("client dropped - send buffer full",
				slog.String("player_id", string(client.playerID)),
			)
		}
	}
}

// Unicast queues a payload for the client bound to one player
func (h *Hub) Unicast(playerID model.PlayerID, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if client.playerID != playerID {
			continue
		}
		select {
		case client.send <- payload:
		default:
			delete(h.clients, client)
			close(client.send)
			h.logger.Warn("client dropped - send buffer full",
				slog.String("player_id", string(client.playerID)),
			)
		}
		return
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubManager owns the hubs of all sessions and implements the session
// controller's Dispatcher
type HubManager struct {
	logger *slog.Logger

	mu   sync.RWMutex
	hubs map[model.SessionCode]*Hub
}

// Ensure HubManager satisfies the dispatcher contract
var _ session.Dispatcher = (*HubManager)(nil)

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		logger: logger.With(slog.String("component", "ws")),
		hubs:   make(map[model.SessionCode]*Hub),
	}
}

// GetOrCreateHub returns the hub for a session, creating one if needed
func (m *HubManager) GetOrCreateHub(code model.SessionCode) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[code]; ok {
		return hub
	}
	hub := NewHub(code, m.logger)
	m.hubs[code] = hub
	return hub
}

// GetHub returns the hub for a session, or nil if it doesn't exist
func (m *HubManager) GetHub(code model.SessionCode) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[code]
}

// RemoveHub discards the hub of a destroyed session
func (m *HubManager) RemoveHub(code model.SessionCode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.hubs[code]; ok {
		delete(m.hubs, code)
		m.logger.Info("hub removed", slog.String("session", string(code)))
	}
}

// Broadcast sends a message to every connected member of the session
func (m *HubManager) Broadcast(code model.SessionCode, msg model.ServerMessage) {
	hub := m.GetHub(code)
	if hub == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		m.logger.Error("marshal broadcast failed", slog.String("error", err.Error()))
		return
	}
	hub.Broadcast(payload)
}

// Unicast sends a message to a single member of the session
func (m *HubManager) Unicast(code model.SessionCode, playerID model.PlayerID, msg model.ServerMessage) {
	hub := m.GetHub(code)
	if hub == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		m.logger.Error("marshal unicast failed", slog.String("error", err.Error()))
		return
	}
	hub.Unicast(playerID, payload)
}
