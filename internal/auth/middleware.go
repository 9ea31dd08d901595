package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/adoptimizer/adoptimizer/internal/api/response"
)

type contextKey string

const claimsKey contextKey = "auth.claims"

// RequireAuth returns middleware that rejects requests lacking a valid
// Bearer token and stores the claims on the request context.
func RequireAuth(tm *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				response.Unauthorized(w, "Missing or malformed Authorization header")
				return
			}

			claims, err := tm.Parse(token)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by RequireAuth, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// UserIDFromContext returns the authenticated user's ID, or 0 when absent.
func UserIDFromContext(ctx context.Context) int {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.UserID
	}
	return 0
}
