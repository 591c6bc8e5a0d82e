package identity

import "github.com/google/uuid"

// Account is an identity-service user as returned by the admin and user APIs.
type Account struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Session is the result of a password sign-in.
type Session struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int     `json:"expires_in"`
	User         Account `json:"user"`
}
