package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/planthead/planthead-backend/internal/models"
	"github.com/planthead/planthead-backend/internal/services"
)

type contextKey string

const (
	sessionKey    contextKey = "session"
	tokenKey      contextKey = "session_token"
	queryTokenKey contextKey = "query_token"
)

// SessionResolver resolves bearer tokens to sessions.
type SessionResolver interface {
	CurrentSession(ctx context.Context, token string) (models.Session, error)
}

// extractBearerToken reads the token from the Authorization header, falling
// back to the ?token= query parameter used by WebSocket clients.
func extractBearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	if token, _ := r.Context().Value(queryTokenKey).(string); token != "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// HideQueryToken moves a ?token= parameter out of the URL and into the
// request context, so request logs never record a live session token. It
// must be installed before the request logger.
func HideQueryToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		token := strings.TrimSpace(query.Get("token"))
		if !query.Has("token") {
			next.ServeHTTP(w, r)
			return
		}

		query.Del("token")
		r = r.Clone(context.WithValue(r.Context(), queryTokenKey, token))
		r.URL.RawQuery = query.Encode()
		r.RequestURI = r.URL.RequestURI()
		next.ServeHTTP(w, r)
	})
}

// RequireSession resolves the caller's session once and stores it in the
// request context. Requests without a valid session get 401.
func RequireSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			session, err := resolver.CurrentSession(r.Context(), token)
			if err != nil {
				if !errors.Is(err, services.ErrUnauthenticated) {
					log.Printf("Session lookup failed: %v", err)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"success":false,"message":"Authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session stored by RequireSession.
func SessionFrom(ctx context.Context) (models.Session, bool) {
	session, ok := ctx.Value(sessionKey).(models.Session)
	return session, ok
}

// TokenFrom returns the raw session token stored by RequireSession.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}
