package handlers

import (
	"net/http"

	"vibe-social-backend/internal/middleware"
	"vibe-social-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// MessagesHandler handles direct-messaging requests
type MessagesHandler struct {
	messages *services.MessagesService
	friends  *services.FriendsService
	sessions *services.SessionService
}

// NewMessagesHandler creates a new messages handler
func NewMessagesHandler(messages *services.MessagesService, friends *services.FriendsService, sessions *services.SessionService) *MessagesHandler {
	return &MessagesHandler{messages: messages, friends: friends, sessions: sessions}
}

// ListConversations handles GET /api/v1/messages
func (h *MessagesHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	conversations, err := h.messages.ListConversations(r.Context(), caller)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"conversations": conversations})
}

type sendMessageRequest struct {
	ReceiverID      string  `json:"receiver_id"`
	Content         *string `json:"content"`
	Type            string  `json:"type"`
	MediaURL        *string `json:"media_url"`
	Amount          *string `json:"amount"`
	TransactionHash *string `json:"transaction_hash"`
}

// Send handles POST /api/v1/messages
func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil || req.ReceiverID == "" {
		respondError(w, "Receiver required", http.StatusBadRequest)
		return
	}

	receiverID, err := h.sessions.ResolveUserID(r.Context(), req.ReceiverID)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}

	message, err := h.messages.Send(r.Context(), caller, services.SendMessageInput{
		ReceiverID:      receiverID,
		Content:         req.Content,
		Type:            req.Type,
		MediaURL:        req.MediaURL,
		Amount:          req.Amount,
		TransactionHash: req.TransactionHash,
	})
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"message": message})
}

// Thread handles GET /api/v1/messages/{userId}
func (h *MessagesHandler) Thread(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	otherID, err := h.sessions.ResolveUserID(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}

	messages, err := h.messages.Thread(r.Context(), caller, otherID)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

type markReadRequest struct {
	SenderID string `json:"sender_id"`
}

// MarkRead handles POST /api/v1/messages/read
func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	var req markReadRequest
	if err := decodeJSON(r, &req); err != nil || req.SenderID == "" {
		respondError(w, "Sender required", http.StatusBadRequest)
		return
	}

	senderID, err := h.sessions.ResolveUserID(r.Context(), req.SenderID)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}

	if err := h.messages.MarkRead(r.Context(), caller, senderID); err != nil {
		respondServiceError(w, err, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// NotificationCounts handles GET /api/v1/notifications/counts
func (h *MessagesHandler) NotificationCounts(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	unread, err := h.messages.CountUnread(r.Context(), caller.ID)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}
	pending, err := h.friends.CountPendingReceived(r.Context(), caller.ID)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"unread_messages":  unread,
		"pending_requests": pending,
		"total":            unread + pending,
	})
}
