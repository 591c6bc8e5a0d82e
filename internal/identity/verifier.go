package identity

import (
	"context"
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verifier resolves an access token to the account it was issued for.
type Verifier interface {
	Verify(ctx context.Context, accessToken string) (*Account, error)
}

// Claims is the access-token payload issued by the identity service.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwtlib.RegisteredClaims
}

// JWTVerifier checks HS256 access tokens locally with the shared signing secret.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for tokens signed with secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token and returns the subject account.
func (v *JWTVerifier) Verify(_ context.Context, accessToken string) (*Account, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwtlib.ParseWithClaims(accessToken, &Claims{}, func(*jwtlib.Token) (interface{}, error) {
		return v.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a uuid", ErrInvalidToken)
	}

	return &Account{ID: id, Email: claims.Email}, nil
}

// RemoteVerifier asks the identity service who owns a token.
type RemoteVerifier struct {
	client *Client
}

// NewRemoteVerifier creates a verifier backed by the /user endpoint.
func NewRemoteVerifier(c *Client) *RemoteVerifier {
	return &RemoteVerifier{client: c}
}

// Verify resolves the token through the identity service.
func (v *RemoteVerifier) Verify(ctx context.Context, accessToken string) (*Account, error) {
	return v.client.GetUser(ctx, accessToken)
}
