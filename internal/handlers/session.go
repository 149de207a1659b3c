package handlers

import (
	"net/http"
	"time"

	"vibe-social-backend/internal/middleware"
	"vibe-social-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// SessionHandler handles session lifecycle requests
type SessionHandler struct {
	sessions   *services.SessionService
	cookieName string
	secure     bool
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *services.SessionService, cookieName string, secure bool) *SessionHandler {
	return &SessionHandler{
		sessions:   sessions,
		cookieName: cookieName,
		secure:     secure,
	}
}

type createSessionRequest struct {
	WalletAddress string `json:"wallet_address"`
}

// Create handles POST /api/v1/auth/session: resolves or lazily
// creates the user for a wallet address and sets the session cookie
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil || req.WalletAddress == "" {
		respondError(w, "Missing wallet address", http.StatusBadRequest)
		return
	}

	user, err := h.sessions.GetOrCreateUser(r.Context(), req.WalletAddress)
	if err != nil {
		// The store may be unreachable; fall back to a wallet-subject
		// token so the session itself still works.
		log.Warn().Err(err).Msg("Failed to materialize user for session")
	}

	subject := req.WalletAddress
	if user != nil {
		subject = user.ID
	}
	token, err := h.sessions.CreateToken(subject, req.WalletAddress)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create session token")
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.setCookie(w, token, h.sessions.TTL())

	payload := map[string]interface{}{"ok": true, "token": token}
	if user != nil {
		payload["user"] = user
	} else {
		payload["user"] = services.Identity{Subject: req.WalletAddress, WalletAddress: req.WalletAddress}
	}
	respondJSON(w, http.StatusOK, payload)
}

// Check handles GET /api/v1/auth/session: reports whether a valid
// token is present, without touching the store
func (h *SessionHandler) Check(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r, h.cookieName)
	if token == "" {
		respondJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		return
	}

	ident, err := h.sessions.VerifyToken(token)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"authenticated": true, "user": ident})
}

// Destroy handles DELETE /api/v1/auth/session: clears the cookie
func (h *SessionHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, "", -time.Hour)
	respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (h *SessionHandler) setCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
