package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/vamazon/storefront/internal/auth"
)

type contextKey struct{ name string }

var userIDKey = &contextKey{"user_id"}

// AuthMiddleware verifies the bearer token and stores the caller's
// user id in the request context. Requests without a valid token are
// rejected before any handler runs.
func AuthMiddleware(provider *auth.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				respondError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			userID, err := provider.ParseToken(token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
