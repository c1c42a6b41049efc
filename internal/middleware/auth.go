// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type ctxKey string

const userKey ctxKey = "user"

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// BearerAuth is a middleware that gates requests on a valid bearer token.
//
// It extracts the token from the Authorization header, verifies it, and
// stores the resolved user id in the request context for downstream
// handlers. A missing, malformed, expired or badly signed token all
// produce the same 401 response so callers cannot tell which check failed.
func BearerAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			userID, err := verifier.Verify(tokenString)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext extracts the authenticated user id from the
// request context. Returns uuid.Nil if not found.
func GetUserIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(userKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
