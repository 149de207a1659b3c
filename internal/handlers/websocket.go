package handlers

import (
	"net/http"

	"vibe-social-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades connections and registers them with the
// notification hub
type WebSocketHandler struct {
	hub      *services.Hub
	sessions *services.SessionService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.Hub, sessions *services.SessionService) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, sessions: sessions}
}

// Handle handles GET /ws?token=
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "Unauthenticated", http.StatusUnauthorized)
		return
	}

	caller, err := h.sessions.RequireCaller(r.Context(), token)
	if err != nil {
		respondError(w, "Unauthenticated", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(caller.ID, conn)
	defer h.hub.Unregister(caller.ID, conn)

	// Server-push only: drain the connection until the client goes
	// away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
