package middleware

import (
	"context"
	"net/http"
	"strings"

	"vibe-social-backend/internal/models"
	"vibe-social-backend/internal/services"
)

type contextKey string

const callerKey contextKey = "caller"

// TokenFromRequest extracts the session token from the session cookie
// or, failing that, a bearer Authorization header
func TokenFromRequest(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// Auth creates a middleware that verifies the session token,
// materializes the caller and threads it through the request context.
// Both a missing token and a valid token without a materializable
// user surface as 401.
func Auth(sessions *services.SessionService, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r, cookieName)

			caller, err := sessions.RequireCaller(r.Context(), token)
			if err != nil {
				respondError(w, "Unauthenticated", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), callerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Caller extracts the authenticated user from the context
func Caller(ctx context.Context) *models.User {
	caller, ok := ctx.Value(callerKey).(*models.User)
	if !ok {
		return nil
	}
	return caller
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
