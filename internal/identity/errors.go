package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmailExists is returned when an account with the requested email already exists.
var ErrEmailExists = errors.New("email already registered")

// ErrInvalidToken is returned when an access token is missing, malformed or expired.
var ErrInvalidToken = errors.New("invalid access token")

// ErrMissingUser is returned when the service answered without the expected user payload.
var ErrMissingUser = errors.New("identity service returned no user")

// APIError represents an error response from the identity service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("identity request failed with status %d", e.Status)
	}
	return fmt.Sprintf("identity request failed (%d): %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrEmailExists) and errors.Is(err, ErrInvalidToken)
// match the service's own error shapes.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrEmailExists:
		return e.emailExists()
	case ErrInvalidToken:
		return e.Status == http.StatusUnauthorized || e.Code == "bad_jwt" || e.Code == "session_not_found"
	}
	return false
}

func (e *APIError) emailExists() bool {
	if e.Code == "email_exists" || e.Code == "user_already_exists" {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "already registered") ||
		strings.Contains(msg, "already been registered") ||
		strings.Contains(msg, "unique constraint")
}
