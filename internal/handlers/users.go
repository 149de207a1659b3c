package handlers

import (
	"net/http"

	"vibe-social-backend/internal/middleware"
	"vibe-social-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// UserHandler handles user profile requests
type UserHandler struct {
	sessions *services.SessionService
}

// NewUserHandler creates a new user handler
func NewUserHandler(sessions *services.SessionService) *UserHandler {
	return &UserHandler{sessions: sessions}
}

// GetProfile handles GET /api/v1/users/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": caller})
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
}

// UpdateProfile handles PUT /api/v1/users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.sessions.UpdateProfile(r.Context(), caller, req.DisplayName, req.Bio, req.AvatarURL)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// GetUser handles GET /api/v1/users/{id}; id is a UUID or a wallet
// address
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := h.sessions.ResolveUserID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}

	user, err := h.sessions.GetUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
