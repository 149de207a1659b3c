package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types pushed to connected clients
const (
	EventMessageReceived = "message_received"
	EventFriendRequest   = "friend_request"
)

// Event is a realtime notification payload
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// hubConn wraps a connection with a write lock. gorilla/websocket
// allows at most one concurrent writer per connection, so every frame
// goes through write.
type hubConn struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func (c *hubConn) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages one WebSocket connection per user and pushes events to
// them. Delivery is best-effort: a failed write drops the connection.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*hubConn
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*hubConn),
	}
}

// Register registers a connection for a user, replacing any existing
// one
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[userID]; ok {
		existing.conn.Close()
	}
	h.connections[userID] = &hubConn{conn: conn}

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a user's connection if conn is still the
// registered one
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.connections[userID]; ok && current.conn == conn {
		current.conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// IsOnline checks whether a user has a registered connection
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[userID]
	return ok
}

// Notify pushes an event to a user if connected
func (h *Hub) Notify(userID string, event Event) {
	h.mu.RLock()
	c, ok := h.connections[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal event")
		return
	}

	if err := c.write(data); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to push event, dropping connection")
		h.Unregister(userID, c.conn)
	}
}
