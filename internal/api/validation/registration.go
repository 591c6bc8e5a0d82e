package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Team registration bounds.
const (
	MinTeamNameLength = 2
	MaxTeamNameLength = 50
	MinTeamSize       = 2
	MaxTeamSize       = 4
)

// RegistrationMember mirrors one member entry of the registration form.
type RegistrationMember struct {
	Email              string
	Password           string
	ConfirmPassword    string
	RegistrationNumber string
}

// RegistrationRequest mirrors the fields needed for team registration
// validation.
type RegistrationRequest struct {
	TeamName string
	TeamSize string
	Members  []RegistrationMember
}

// ValidateRegistrationRequest validates a team registration form. Member
// errors use the dotted paths members.<i>.<field>.
func ValidateRegistrationRequest(req RegistrationRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.TeamName)
	switch n := utf8.RuneCountInString(name); {
	case n < MinTeamNameLength:
		errs = append(errs, FieldError{Field: "teamName", Message: "Team name must be at least 2 characters."})
	case n > MaxTeamNameLength:
		errs = append(errs, FieldError{Field: "teamName", Message: "Team name must not exceed 50 characters."})
	}

	size, err := strconv.Atoi(req.TeamSize)
	if err != nil || size < MinTeamSize || size > MaxTeamSize {
		errs = append(errs, FieldError{Field: "teamSize", Message: "Please select a valid team size."})
		size = 0
	}

	switch n := len(req.Members); {
	case n < MinTeamSize:
		errs = append(errs, FieldError{Field: "members", Message: "Team must have at least 2 members."})
	case n > MaxTeamSize:
		errs = append(errs, FieldError{Field: "members", Message: "Team can have at most 4 members."})
	case size != 0 && n != size:
		errs = append(errs, FieldError{Field: "members", Message: fmt.Sprintf("Team size is %d but %d members were provided.", size, n)})
	}

	for i, m := range req.Members {
		errs = append(errs, validateMember(i, m)...)
	}

	return errs
}

func validateMember(i int, m RegistrationMember) []FieldError {
	var errs []FieldError
	field := func(name string) string { return fmt.Sprintf("members.%d.%s", i, name) }

	if !validEmail(strings.TrimSpace(m.Email)) {
		errs = append(errs, FieldError{Field: field("email"), Message: "Invalid email address."})
	}

	if len(m.Password) < MinPasswordLength {
		errs = append(errs, FieldError{Field: field("password"), Message: "Password must be at least 8 characters."})
	}

	if m.ConfirmPassword != m.Password {
		errs = append(errs, FieldError{Field: field("confirmPassword"), Message: "Passwords don't match."})
	}

	regNo := strings.TrimSpace(m.RegistrationNumber)
	if regNo == "" {
		errs = append(errs, FieldError{Field: field("registrationNumber"), Message: "Registration number is required."})
	} else if _, err := strconv.ParseInt(regNo, 10, 64); err != nil {
		errs = append(errs, FieldError{Field: field("registrationNumber"), Message: "Registration number must be a number."})
	}

	return errs
}
