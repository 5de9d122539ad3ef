package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-service-backend/internal/domain"
	"library-service-backend/internal/security"
)

func TestAuthMiddleware(t *testing.T) {
	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour, 24*time.Hour)

	var captured domain.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = actorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(tokens)(next)

	t.Run("No header proceeds anonymously", func(t *testing.T) {
		captured = domain.Actor{ID: -1}
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, captured.IsAuthenticated)
	})

	t.Run("Valid token attaches the actor", func(t *testing.T) {
		token, err := tokens.GenerateAccessToken(7, "reader@test.com", true)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, captured.IsAuthenticated)
		assert.Equal(t, int32(7), captured.ID)
		assert.True(t, captured.IsStaff)
	})

	t.Run("Invalid token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Refresh token is not an access credential", func(t *testing.T) {
		refresh, err := tokens.GenerateRefreshToken(7, "reader@test.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
