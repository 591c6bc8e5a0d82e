package validation

import "strings"

// CredentialsRequest mirrors the fields of a sign-up or sign-in form.
type CredentialsRequest struct {
	Email    string
	Password string
}

// ValidateSignUpRequest requires an email and a password of acceptable length.
func ValidateSignUpRequest(req CredentialsRequest) []FieldError {
	var errs []FieldError

	email := strings.TrimSpace(req.Email)
	if email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "Email is required"})
	} else if !validEmail(email) {
		errs = append(errs, FieldError{Field: "email", Message: "Invalid email address."})
	}

	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "Password is required"})
	} else if len(req.Password) < MinPasswordLength {
		errs = append(errs, FieldError{Field: "password", Message: "Password must be at least 8 characters."})
	}

	return errs
}

// ValidateSignInRequest only requires both fields; credential checks belong
// to the identity service.
func ValidateSignInRequest(req CredentialsRequest) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, FieldError{Field: "email", Message: "Email is required"})
	}
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "Password is required"})
	}
	return errs
}

// ValidateForgotPasswordRequest requires an email.
func ValidateForgotPasswordRequest(email string) []FieldError {
	if strings.TrimSpace(email) == "" {
		return []FieldError{{Field: "email", Message: "Email is required"}}
	}
	return nil
}

// PasswordUpdateRequest mirrors the reset-password form.
type PasswordUpdateRequest struct {
	Password        string
	ConfirmPassword string
}

// ValidatePasswordUpdateRequest requires matching, non-empty passwords.
func ValidatePasswordUpdateRequest(req PasswordUpdateRequest) []FieldError {
	if req.Password == "" || req.ConfirmPassword == "" {
		return []FieldError{{Field: "password", Message: "Password and confirm password are required"}}
	}

	var errs []FieldError
	if len(req.Password) < MinPasswordLength {
		errs = append(errs, FieldError{Field: "password", Message: "Password must be at least 8 characters."})
	}
	if req.Password != req.ConfirmPassword {
		errs = append(errs, FieldError{Field: "confirmPassword", Message: "Passwords do not match"})
	}
	return errs
}
