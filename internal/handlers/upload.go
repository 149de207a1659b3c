package handlers

import (
	"net/http"

	"vibe-social-backend/internal/middleware"
	"vibe-social-backend/internal/services"

	"github.com/rs/zerolog/log"
)

const maxUploadBytes = 15 << 20 // 15 MiB

// UploadHandler handles media uploads
type UploadHandler struct {
	media *services.MediaService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(media *services.MediaService) *UploadHandler {
	return &UploadHandler{media: media}
}

// Upload handles POST /api/v1/upload: stores a multipart file and
// returns its public URL
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, "No file provided", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := h.media.Upload(r.Context(), caller.ID, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		log.Error().Err(err).Str("user_id", caller.ID).Msg("Failed to upload media")
		respondError(w, "Failed to upload image", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"url": url})
}
