package middleware

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/planthead/planthead-backend/internal/models"
	"github.com/planthead/planthead-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver map[string]models.Session

func (f fakeResolver) CurrentSession(_ context.Context, token string) (models.Session, error) {
	s, ok := f[token]
	if !ok {
		return models.Session{}, services.ErrUnauthenticated
	}
	return s, nil
}

func TestRequireSession(t *testing.T) {
	resolver := fakeResolver{"tok": {ID: "u1", Name: "Ada"}}
	var seen models.Session
	var seenToken string
	h := RequireSession(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionFrom(r.Context())
		seenToken = TokenFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", seen.ID)
	assert.Equal(t, "tok", seenToken)

	req = httptest.NewRequest(http.MethodGet, "/ws/feed?token=tok", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionFromEmptyContext(t *testing.T) {
	_, ok := SessionFrom(context.Background())
	assert.False(t, ok)
}

func TestLoginRateLimitOnlyAppliesToCredentialRoutes(t *testing.T) {
	h := LoginRateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := []int{}
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Contains(t, codes, http.StatusTooManyRequests)

	req := httptest.NewRequest(http.MethodGet, "/api/plants", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHostCheck(t *testing.T) {
	h := HostCheck("api.planthead.app")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "http://api.planthead.app:443/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "http://evil.example/health", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHideQueryTokenKeepsTokenOutOfRequestLogs(t *testing.T) {
	var logs bytes.Buffer
	logger := chimw.RequestLogger(&chimw.DefaultLogFormatter{Logger: log.New(&logs, "", 0), NoColor: true})

	resolver := fakeResolver{"secret-token": {ID: "u1"}}
	var seen models.Session
	var seenURI string
	h := HideQueryToken(logger(RequireSession(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionFrom(r.Context())
		seenURI = r.RequestURI
	}))))

	req := httptest.NewRequest(http.MethodGet, "/ws/feed?token=secret-token&since=5", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", seen.ID)
	assert.Equal(t, "/ws/feed?since=5", seenURI)
	assert.NotContains(t, logs.String(), "secret-token")
	assert.Contains(t, logs.String(), "/ws/feed?since=5")
}

func TestHideQueryTokenPassesThroughWithoutToken(t *testing.T) {
	var seenURI string
	h := HideQueryToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenURI = r.RequestURI
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/posts?limit=5", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "/api/posts?limit=5", seenURI)
}
