package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mahectf/ctfboard/internal/api/middleware"
	"github.com/mahectf/ctfboard/internal/api/response"
	"github.com/mahectf/ctfboard/internal/api/validation"
	"github.com/mahectf/ctfboard/internal/identity"
)

// AccountService is the user-facing part of the identity service.
type AccountService interface {
	SignUp(ctx context.Context, email, password, redirectTo string) (*identity.Account, error)
	SignIn(ctx context.Context, email, password string) (*identity.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	Recover(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, accessToken, password string) error
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email       string `json:"email"`
	CallbackURL string `json:"callbackUrl"`
}

type updatePasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type messageResponse struct {
	Message    string `json:"message"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

type accountResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type sessionResponse struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	ExpiresIn    int             `json:"expiresIn"`
	User         accountResponse `json:"user"`
	RedirectTo   string          `json:"redirectTo"`
}

// AuthHandler handles the account actions: sign-up, sign-in, sign-out and
// password recovery.
type AuthHandler struct {
	accounts      AccountService
	siteURL       string
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler. siteURL is the public origin used
// to build email callback links.
func NewAuthHandler(accounts AccountService, siteURL string) *AuthHandler {
	siteURL = strings.TrimRight(siteURL, "/")
	return &AuthHandler{
		accounts:      accounts,
		siteURL:       siteURL,
		secureCookies: strings.HasPrefix(siteURL, "https://"),
	}
}

// SignUp handles POST /api/auth/sign-up.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if fieldErrors := validation.ValidateSignUpRequest(validation.CredentialsRequest(req)); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required", fieldErrors, requestID)
		return
	}

	_, err := h.accounts.SignUp(r.Context(), strings.TrimSpace(req.Email), req.Password, h.siteURL+"/auth/callback")
	if err != nil {
		if errors.Is(err, identity.ErrEmailExists) {
			response.Err(w, http.StatusConflict, "EMAIL_EXISTS", "User already registered", requestID)
			return
		}
		h.identityError(w, err, "sign up failed", requestID)
		return
	}

	response.Success(w, http.StatusCreated, messageResponse{
		Message: "Thanks for signing up! Please check your email for a verification link.",
	}, requestID)
}

// SignIn handles POST /api/auth/sign-in. The access token is returned in the
// body and set as an HttpOnly cookie.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if fieldErrors := validation.ValidateSignInRequest(validation.CredentialsRequest(req)); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required", fieldErrors, requestID)
		return
	}

	session, err := h.accounts.SignIn(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		var apiErr *identity.APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			response.Err(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", apiErr.Message, requestID)
			return
		}
		h.identityError(w, err, "sign in failed", requestID)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    session.AccessToken,
		Path:     "/",
		MaxAge:   session.ExpiresIn,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	response.Success(w, http.StatusOK, sessionResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
		User: accountResponse{
			ID:    session.User.ID.String(),
			Email: session.User.Email,
		},
		RedirectTo: "/challenges",
	}, requestID)
}

// SignOut handles POST /api/auth/sign-out. It always clears the cookie; an
// already expired session is not an error.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if token := middleware.AccessToken(r); token != "" {
		if err := h.accounts.SignOut(r.Context(), token); err != nil && !errors.Is(err, identity.ErrInvalidToken) {
			slog.Warn("sign out failed", "error", err, "requestId", requestID)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	response.NoContent(w)
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req forgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if fieldErrors := validation.ValidateForgotPasswordRequest(req.Email); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email is required", fieldErrors, requestID)
		return
	}

	redirect := h.siteURL + "/auth/callback?redirect_to=/protected/reset-password"
	if err := h.accounts.Recover(r.Context(), strings.TrimSpace(req.Email), redirect); err != nil {
		slog.Error("password recovery failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "RECOVERY_FAILED", "Could not reset password", requestID)
		return
	}

	response.Success(w, http.StatusOK, messageResponse{
		Message:    "Check your email for a link to reset your password.",
		RedirectTo: localRedirect(req.CallbackURL),
	}, requestID)
}

// localRedirect returns path when it stays on this site, otherwise "".
// Scheme-relative and backslash forms are rejected because browsers resolve
// them against another host.
func localRedirect(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") || len(path) > 1 && (path[1] == '/' || path[1] == '\\') {
		return ""
	}
	if strings.ContainsAny(path, "\r\n\t") {
		return ""
	}
	return path
}

// UpdatePassword handles PUT /api/auth/password for an authenticated caller.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req updatePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if fieldErrors := validation.ValidatePasswordUpdateRequest(validation.PasswordUpdateRequest(req)); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", fieldErrors[0].Message, fieldErrors, requestID)
		return
	}

	if err := h.accounts.UpdatePassword(r.Context(), middleware.AccessToken(r), req.Password); err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired session", requestID)
			return
		}
		slog.Error("password update failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "PASSWORD_UPDATE_FAILED", "Password update failed", requestID)
		return
	}

	response.Success(w, http.StatusOK, messageResponse{Message: "Password updated"}, requestID)
}

func (h *AuthHandler) identityError(w http.ResponseWriter, err error, msg, requestID string) {
	var apiErr *identity.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 && apiErr.Message != "" {
		response.Err(w, http.StatusBadRequest, "IDENTITY_ERROR", apiErr.Message, requestID)
		return
	}
	slog.Error(msg, "error", err, "requestId", requestID)
	response.Err(w, http.StatusBadGateway, "IDENTITY_UNAVAILABLE", "Identity service request failed", requestID)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}
