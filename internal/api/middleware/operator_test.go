package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mahectf/ctfboard/internal/api/middleware"
)

func operatorHash(t *testing.T, key string) []byte {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func TestRequireOperatorKey(t *testing.T) {
	hash := operatorHash(t, "s3cret-operator-key")

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"missing key", "", http.StatusUnauthorized},
		{"wrong key", "guess", http.StatusForbidden},
		{"valid key", "s3cret-operator-key", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.RequireOperatorKey(hash)(okHandler())
			req := httptest.NewRequest(http.MethodPost, "/admin/revalidate", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}
