package middleware

import (
	"crypto/subtle"
	"net/http"

	"notification-relay/internal/response"
)

// RequireToken rejects any request whose Authorization header does not equal
// the shared-secret token. The compare is constant-time; the token is not a
// bearer-prefixed JWT, just the historic opaque secret.
func RequireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("Authorization")
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				response.WriteFault(w, http.StatusUnauthorized, "401", "Access denied.", "Access denied.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
