// Package validation checks request payloads before they reach a workflow.
package validation

import (
	"net/mail"
	"strings"
)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ToMap keys errors by field, keeping the first message per field.
func ToMap(errs []FieldError) map[string]string {
	m := make(map[string]string, len(errs))
	for _, e := range errs {
		if _, ok := m[e.Field]; !ok {
			m[e.Field] = e.Message
		}
	}
	return m
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(addr.Address, "@")
}
