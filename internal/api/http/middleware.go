package http

import (
	"net/http"
	"strings"

	"library-service-backend/internal/domain"
	"library-service-backend/internal/security"
)

// AuthMiddleware resolves a Bearer token into an Actor. Requests without a
// token proceed as anonymous; each handler decides what anonymity means.
func AuthMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil || claims.Type != security.TokenTypeAccess {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "unauthenticated", Message: "invalid or expired token"})
				return
			}

			actor := domain.Actor{
				ID:              claims.UserID,
				Email:           claims.Email,
				IsStaff:         claims.IsStaff,
				IsAuthenticated: true,
			}
			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
		})
	}
}
