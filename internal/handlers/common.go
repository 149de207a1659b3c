package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"vibe-social-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondServiceError maps a service failure to an HTTP status.
// notFoundMsg names the missing resource for 404s; everything
// unclassified is logged and returned as an opaque 500.
func respondServiceError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, services.ErrStoreUnavailable):
		respondError(w, "Unauthenticated", http.StatusUnauthorized)
	case errors.Is(err, services.ErrNotFound):
		respondError(w, notFoundMsg, http.StatusNotFound)
	case errors.Is(err, services.ErrForbidden):
		respondError(w, "Unauthorized", http.StatusForbidden)
	case errors.Is(err, services.ErrGone):
		respondError(w, "No longer active", http.StatusGone)
	case errors.Is(err, services.ErrSelf), errors.Is(err, services.ErrAlreadyExists), errors.Is(err, services.ErrInvalid):
		respondError(w, "Invalid request", http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("Request failed")
		respondError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// decodeJSON reads a JSON request body
func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
