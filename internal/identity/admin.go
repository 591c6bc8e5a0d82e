package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// Admin performs account operations with the service key. It must only be
// used for account creation and deletion.
type Admin struct {
	client *Client
}

type createAccountRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	EmailConfirm bool   `json:"email_confirm"`
}

// CreateAccount creates a pre-confirmed account. A duplicate email yields an
// error matching ErrEmailExists.
func (a *Admin) CreateAccount(ctx context.Context, email, password string) (*Account, error) {
	var acct Account
	err := a.client.do(ctx, http.MethodPost, "/admin/users", createAccountRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
	}, a.client.serviceKey, a.client.serviceKey, &acct)
	if err != nil {
		return nil, err
	}
	if acct.ID == uuid.Nil {
		return nil, fmt.Errorf("creating account %s: %w", email, ErrMissingUser)
	}
	return &acct, nil
}

// DeleteAccount permanently removes an account.
func (a *Admin) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	path := "/admin/users/" + url.PathEscape(id.String())
	return a.client.do(ctx, http.MethodDelete, path, nil, a.client.serviceKey, a.client.serviceKey, nil)
}
