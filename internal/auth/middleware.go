package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

// Middleware enforces bearer-token authentication. A missing or malformed
// Authorization header is 401; a token that fails verification (bad
// signature, expired) is 403.
func (t *Tokens) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userID, err := t.Verify(tokenString)
		if err != nil {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user's ID from the request context. The
// second return is false on unauthenticated requests.
func UserID(r *http.Request) (uint, bool) {
	id, ok := r.Context().Value(userIDContextKey).(uint)
	return id, ok
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
