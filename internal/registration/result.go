package registration

import (
	"errors"
	"fmt"

	"github.com/mahectf/ctfboard/internal/team"
)

// FieldPath names the registration input a field error belongs to, using the
// same dotted paths the registration form uses.
type FieldPath string

// TeamNameField is the path of the team name input.
const TeamNameField FieldPath = "teamName"

// GeneralField is the key under which non-field errors are reported.
const GeneralField = "_general"

// MemberField returns the path of one member input, e.g. members.1.email.
func MemberField(index int, name string) FieldPath {
	return FieldPath(fmt.Sprintf("members.%d.%s", index, name))
}

// MemberEmailField returns the path of the index-th member's email input.
func MemberEmailField(index int) FieldPath {
	return MemberField(index, "email")
}

// FieldError is a failure attributable to one input field.
type FieldError struct {
	Path    FieldPath
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// GeneralError is a failure that cannot be pinned to an input field. Message
// is safe to show to the user; Err carries the underlying cause for operators.
type GeneralError struct {
	Message string
	Err     error
}

func (e *GeneralError) Error() string {
	return e.Message
}

func (e *GeneralError) Unwrap() error {
	return e.Err
}

// Result is returned by a successful registration.
type Result struct {
	Team        *team.Team
	MemberCount int
	Message     string
}

// ActionResult is the caller-facing shape of a registration outcome.
type ActionResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// NewActionResult converts the outcome of Service.Register into an ActionResult.
func NewActionResult(res *Result, err error) ActionResult {
	if err == nil {
		msg := ""
		if res != nil {
			msg = res.Message
		}
		return ActionResult{Success: true, Message: msg}
	}

	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return ActionResult{Errors: map[string]string{string(fieldErr.Path): fieldErr.Message}}
	}

	var generalErr *GeneralError
	if errors.As(err, &generalErr) {
		return ActionResult{Errors: map[string]string{GeneralField: generalErr.Message}}
	}

	return ActionResult{Errors: map[string]string{GeneralField: "An unexpected error occurred during registration."}}
}
