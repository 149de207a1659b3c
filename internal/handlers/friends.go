package handlers

import (
	"errors"
	"net/http"

	"vibe-social-backend/internal/middleware"
	"vibe-social-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// FriendsHandler handles friend-graph requests
type FriendsHandler struct {
	friends  *services.FriendsService
	sessions *services.SessionService
}

// NewFriendsHandler creates a new friends handler
func NewFriendsHandler(friends *services.FriendsService, sessions *services.SessionService) *FriendsHandler {
	return &FriendsHandler{friends: friends, sessions: sessions}
}

// Overview handles GET /api/v1/friends: the caller's friends plus
// discovery candidates
func (h *FriendsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	overview, err := h.friends.Overview(r.Context(), caller)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

// ListRequests handles GET /api/v1/friends/requests
func (h *FriendsHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	requests, err := h.friends.ListPendingRequests(r.Context(), caller)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

type friendRequestBody struct {
	TargetUserID string `json:"target_user_id"`
}

// SendRequest handles POST /api/v1/friends/request
func (h *FriendsHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	var req friendRequestBody
	if err := decodeJSON(r, &req); err != nil || req.TargetUserID == "" {
		respondError(w, "Missing target user", http.StatusBadRequest)
		return
	}

	targetID, err := h.sessions.ResolveUserID(r.Context(), req.TargetUserID)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}

	if err := h.friends.SendRequest(r.Context(), caller, targetID); err != nil {
		switch {
		case errors.Is(err, services.ErrSelf):
			respondError(w, "Cannot add yourself", http.StatusBadRequest)
		case errors.Is(err, services.ErrAlreadyExists):
			respondError(w, "Request already pending or already friends", http.StatusBadRequest)
		default:
			respondServiceError(w, err, "User not found")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type friendRespondBody struct {
	TargetUserID string `json:"target_user_id"`
	Action       string `json:"action"`
}

// Respond handles POST /api/v1/friends/respond: accept or reject a
// pending request
func (h *FriendsHandler) Respond(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	var req friendRespondBody
	if err := decodeJSON(r, &req); err != nil || req.TargetUserID == "" {
		respondError(w, "Missing target user", http.StatusBadRequest)
		return
	}

	targetID, err := h.sessions.ResolveUserID(r.Context(), req.TargetUserID)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}

	if err := h.friends.Respond(r.Context(), caller, targetID, req.Action); err != nil {
		if errors.Is(err, services.ErrInvalid) {
			respondError(w, "Invalid action", http.StatusBadRequest)
			return
		}
		respondServiceError(w, err, "No pending request found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Status handles GET /api/v1/friends/status/{userId}
func (h *FriendsHandler) Status(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	// An unresolvable identifier reads as no relationship, matching
	// the two-layer identity-resolution policy.
	targetID, err := h.sessions.ResolveUserID(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondJSON(w, http.StatusOK, map[string]interface{}{"status": "none"})
			return
		}
		respondServiceError(w, err, "User not found")
		return
	}

	status, err := h.friends.StatusOf(r.Context(), caller, targetID)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": status})
}
