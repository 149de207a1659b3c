package handlers

import (
	"net/http"
	"strconv"
	"time"

	"vibe-social-backend/internal/middleware"
	"vibe-social-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// PostsHandler handles post, feed and wall requests
type PostsHandler struct {
	posts    *services.PostsService
	sessions *services.SessionService
}

// NewPostsHandler creates a new posts handler
func NewPostsHandler(posts *services.PostsService, sessions *services.SessionService) *PostsHandler {
	return &PostsHandler{posts: posts, sessions: sessions}
}

// ListFeed handles GET /api/v1/posts?limit=&cursor=
func (h *PostsHandler) ListFeed(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	var cursor *time.Time
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			respondError(w, "Invalid cursor", http.StatusBadRequest)
			return
		}
		cursor = &t
	}

	page, err := h.posts.ListFeed(r.Context(), caller, cursor, limit)
	if err != nil {
		respondServiceError(w, err, "Post not found")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

type createPostRequest struct {
	Content       *string    `json:"content"`
	Type          string     `json:"type"`
	MediaURL      *string    `json:"media_url"`
	Vibe          *string    `json:"vibe"`
	EventDate     *time.Time `json:"event_date"`
	EventLocation *string    `json:"event_location"`
	ExpiresAt     *time.Time `json:"expires_at"`
	TargetUserID  *string    `json:"target_user_id"`
}

// Create handles POST /api/v1/posts
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	input := services.CreatePostInput{
		Content:       req.Content,
		Type:          req.Type,
		MediaURL:      req.MediaURL,
		Vibe:          req.Vibe,
		EventDate:     req.EventDate,
		EventLocation: req.EventLocation,
		ExpiresAt:     req.ExpiresAt,
	}
	if req.TargetUserID != nil && *req.TargetUserID != "" {
		targetID, err := h.sessions.ResolveUserID(r.Context(), *req.TargetUserID)
		if err != nil {
			respondServiceError(w, err, "Target user not found")
			return
		}
		input.TargetUserID = &targetID
	}

	post, err := h.posts.CreatePost(r.Context(), caller, input)
	if err != nil {
		respondServiceError(w, err, "Target user not found")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"post": post})
}

// Get handles GET /api/v1/posts/{id}, gated by the +1 protocol
func (h *PostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	post, err := h.posts.GetPost(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "Post not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"post": post})
}

// Delete handles DELETE /api/v1/posts/{id}
func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	if err := h.posts.DeletePost(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err, "Post not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type featureRequest struct {
	IsFeatured bool `json:"is_featured"`
}

// Feature handles PUT /api/v1/posts/{id}/feature
func (h *PostsHandler) Feature(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	var req featureRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.posts.SetFeatured(r.Context(), caller, chi.URLParam(r, "id"), req.IsFeatured)
	if err != nil {
		respondServiceError(w, err, "Post not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"post": post})
}

type reactRequest struct {
	Emoji string `json:"emoji"`
}

// React handles POST /api/v1/posts/{id}/react: toggles a reaction
func (h *PostsHandler) React(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	var req reactRequest
	if err := decodeJSON(r, &req); err != nil || req.Emoji == "" {
		respondError(w, "Emoji required", http.StatusBadRequest)
		return
	}

	action, err := h.posts.ToggleReaction(r.Context(), caller, chi.URLParam(r, "id"), req.Emoji)
	if err != nil {
		respondServiceError(w, err, "Post not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "action": action})
}

type attendRequest struct {
	Status string `json:"status"`
}

// Attend handles POST /api/v1/posts/{id}/attend
func (h *PostsHandler) Attend(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	var req attendRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.posts.SetAttendance(r.Context(), caller, chi.URLParam(r, "id"), req.Status); err != nil {
		respondServiceError(w, err, "Event not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// ListComments handles GET /api/v1/posts/{id}/comments
func (h *PostsHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.posts.ListComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "Post not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

type commentRequest struct {
	MediaURL string `json:"media_url"`
}

// AddComment handles POST /api/v1/posts/{id}/comments
func (h *PostsHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil || req.MediaURL == "" {
		respondError(w, "Media URL is required", http.StatusBadRequest)
		return
	}

	comment, err := h.posts.AddComment(r.Context(), caller, chi.URLParam(r, "id"), req.MediaURL)
	if err != nil {
		respondServiceError(w, err, "Post not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"comment": comment})
}

type stackRequest struct {
	PostID   string `json:"post_id"`
	MediaURL string `json:"media_url"`
}

// AddStack handles POST /api/v1/posts/stack
func (h *PostsHandler) AddStack(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())

	var req stackRequest
	if err := decodeJSON(r, &req); err != nil || req.PostID == "" || req.MediaURL == "" {
		respondError(w, "Post ID and media URL required", http.StatusBadRequest)
		return
	}

	stack, err := h.posts.AddStack(r.Context(), caller, req.PostID, req.MediaURL)
	if err != nil {
		respondServiceError(w, err, "Post not found")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"stack": stack})
}

// Wall handles GET /api/v1/posts/wall/{userId}
func (h *PostsHandler) Wall(w http.ResponseWriter, r *http.Request) {
	ownerID, err := h.sessions.ResolveUserID(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}

	posts, err := h.posts.ListWall(r.Context(), ownerID)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

// PublicEvent handles GET /api/v1/public/events/{id}, no auth
func (h *PostsHandler) PublicEvent(w http.ResponseWriter, r *http.Request) {
	preview, err := h.posts.PublicEventPreview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "Event not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"event": preview})
}
