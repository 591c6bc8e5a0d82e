package middleware

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/mahectf/ctfboard/internal/api/response"
)

// RequireOperatorKey returns middleware that admits requests whose X-API-Key
// matches the bcrypt hash of the operator key.
func RequireOperatorKey(keyHash []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			rawKey := r.Header.Get("X-API-Key")
			if rawKey == "" {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
				return
			}

			if err := bcrypt.CompareHashAndPassword(keyHash, []byte(rawKey)); err != nil {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Invalid API key", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
