package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/smartstorage/smartstorage-backend/pkg/logger"
)

// Message is the envelope pushed to dashboard clients
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client is one connected dashboard session
type Client struct {
	ID     string
	UserID string
	Send   chan []byte
}

// Hub fans dashboard events out to connected WebSocket clients. Clients that
// cannot keep up have messages dropped rather than blocking the broadcast.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *logger.Logger
}

// NewHub creates an empty hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  log,
	}
}

// Register adds a client and returns it with a buffered send channel
func (h *Hub) Register(userID string) *Client {
	client := &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Send:   make(chan []byte, 32),
	}

	h.mu.Lock()
	h.clients[client.ID] = client
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info().
		Str("client_id", client.ID).
		Str("user_id", userID).
		Int("clients", count).
		Msg("websocket client connected")

	return client
}

// Unregister removes a client and closes its send channel
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info().
		Str("client_id", client.ID).
		Int("clients", count).
		Msg("websocket client disconnected")
}

// Broadcast sends a typed message to every connected client
func (h *Hub) Broadcast(msgType string, data interface{}) {
	body, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		h.logger.Error().Err(err).Str("type", msgType).Msg("failed to marshal broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.Send <- body:
		default:
			h.logger.Warn().
				Str("client_id", client.ID).
				Str("type", msgType).
				Msg("client send buffer full, dropping message")
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
