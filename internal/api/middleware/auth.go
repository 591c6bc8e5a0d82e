package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mahectf/ctfboard/internal/api/response"
	"github.com/mahectf/ctfboard/internal/identity"
)

const accountKey contextKey = "account"

// AccessTokenCookie is the cookie set by sign-in and read by Authenticate.
const AccessTokenCookie = "access_token"

// Authenticate is middleware that resolves the caller's access token to an
// account. The token is taken from an "Authorization: Bearer" header, falling
// back to the access-token cookie. Missing or invalid tokens return 401.
func Authenticate(verifier identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			token := AccessToken(r)
			if token == "" {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication is required", requestID)
				return
			}

			account, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, identity.ErrInvalidToken) {
					response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired session", requestID)
					return
				}
				slog.Error("failed to verify access token", "error", err, "requestId", requestID)
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed", requestID)
				return
			}

			ctx := context.WithValue(r.Context(), accountKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccessToken extracts the caller's access token from the request, or "".
func AccessToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// GetAccount retrieves the authenticated account from the request context.
func GetAccount(ctx context.Context) *identity.Account {
	if a, ok := ctx.Value(accountKey).(*identity.Account); ok {
		return a
	}
	return nil
}

// WithAccount returns a copy of ctx carrying account. Handlers read it with
// GetAccount.
func WithAccount(ctx context.Context, account *identity.Account) context.Context {
	return context.WithValue(ctx, accountKey, account)
}
