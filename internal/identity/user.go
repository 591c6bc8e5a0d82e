package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a single account that must confirm its email before signing in.
func (c *Client) SignUp(ctx context.Context, email, password, redirectTo string) (*Account, error) {
	var acct Account
	path := "/signup" + redirectQuery(redirectTo)
	if err := c.do(ctx, http.MethodPost, path, credentials{Email: email, Password: password}, c.anonKey, c.anonKey, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// SignIn exchanges an email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", credentials{Email: email, Password: password}, c.anonKey, c.anonKey, &s); err != nil {
		return nil, err
	}
	if s.AccessToken == "" {
		return nil, fmt.Errorf("signing in: %w", ErrMissingUser)
	}
	return &s, nil
}

// GetUser resolves an access token to the account that owns it.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*Account, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}
	var acct Account
	if err := c.do(ctx, http.MethodGet, "/user", nil, c.anonKey, accessToken, &acct); err != nil {
		return nil, err
	}
	if acct.ID == uuid.Nil {
		return nil, ErrMissingUser
	}
	return &acct, nil
}

// UpdatePassword changes the password of the account owning accessToken.
func (c *Client) UpdatePassword(ctx context.Context, accessToken, password string) error {
	body := map[string]string{"password": password}
	return c.do(ctx, http.MethodPut, "/user", body, c.anonKey, accessToken, nil)
}

// Recover sends a password reset email.
func (c *Client) Recover(ctx context.Context, email, redirectTo string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/recover"+redirectQuery(redirectTo), body, c.anonKey, c.anonKey, nil)
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, c.anonKey, accessToken, nil)
}

func redirectQuery(redirectTo string) string {
	if redirectTo == "" {
		return ""
	}
	return "?redirect_to=" + url.QueryEscape(redirectTo)
}
