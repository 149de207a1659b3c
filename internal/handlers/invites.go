package handlers

import (
	"errors"
	"net/http"

	"vibe-social-backend/internal/middleware"
	"vibe-social-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// InvitesHandler handles invite requests
type InvitesHandler struct {
	invites *services.InvitesService
}

// NewInvitesHandler creates a new invites handler
func NewInvitesHandler(invites *services.InvitesService) *InvitesHandler {
	return &InvitesHandler{invites: invites}
}

// List handles GET /api/v1/invites
func (h *InvitesHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	invites, err := h.invites.List(r.Context(), caller)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"invites": invites})
}

// Create handles POST /api/v1/invites
func (h *InvitesHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	invite, err := h.invites.Create(r.Context(), caller)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"invite": invite})
}

// Preview handles GET /api/v1/invites/{code}, no auth
func (h *InvitesHandler) Preview(w http.ResponseWriter, r *http.Request) {
	preview, err := h.invites.Preview(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respondServiceError(w, err, "Invite not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"invite": preview})
}

// Redeem handles POST /api/v1/invites/{code}
func (h *InvitesHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	if err := h.invites.Redeem(r.Context(), caller, chi.URLParam(r, "code")); err != nil {
		if errors.Is(err, services.ErrSelf) {
			respondError(w, "Cannot accept your own invite", http.StatusBadRequest)
			return
		}
		respondServiceError(w, err, "Invite not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Revoke handles DELETE /api/v1/invites/{code}
func (h *InvitesHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	if err := h.invites.Revoke(r.Context(), caller, chi.URLParam(r, "code")); err != nil {
		respondServiceError(w, err, "Invite not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
