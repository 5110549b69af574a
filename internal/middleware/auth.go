package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/arjun/music-app-backend/internal/auth"
)

type ctxKey int

const userIDKey ctxKey = 0

// UserIDFrom returns the authenticated user id injected by RequireAuth.
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// RequireAuth validates the Authorization bearer token and injects the token
// subject into the request context. Only the avatar routes use it; the legacy
// routes carry the token in the request body instead.
func RequireAuth(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				http.Error(w, `{"message":"Verification failed."}`, http.StatusUnauthorized)
				return
			}

			userID, err := tokens.Verify(raw)
			if err != nil {
				http.Error(w, `{"message":"Verification failed."}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
