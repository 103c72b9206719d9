// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package password

import (
	"fmt"
	"strings"
	"unicode"
)

// Validator validates passwords against various criteria.
type Validator struct {
	MinLength           int
	CheckUserSimilarity bool
}

// DefaultValidator returns a validator with sensible defaults.
func DefaultValidator() *Validator {
	return &Validator{
		MinLength:           12,
		CheckUserSimilarity: true,
	}
}

// ValidationError represents a single password validation error.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// PasswordValidationError wraps multiple validation errors.
type PasswordValidationError struct {
	Errors []ValidationError
}

func (e *PasswordValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "password validation failed"
	}
	return e.Errors[0].Message
}

// Messages returns all error messages.
func (e *PasswordValidationError) Messages() []string {
	messages := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		messages[i] = err.Message
	}
	return messages
}

// Validate checks a password against all configured rules. userAttributes
// holds values the password must not resemble, typically the email.
func (v *Validator) Validate(plaintext string, userAttributes ...string) error {
	var errs []ValidationError

	if len(plaintext) < v.MinLength {
		errs = append(errs, ValidationError{
			Code:    "min_length",
			Message: fmt.Sprintf("Password must be at least %d characters long.", v.MinLength),
		})
	}

	if isEntirelyNumeric(plaintext) {
		errs = append(errs, ValidationError{
			Code:    "entirely_numeric",
			Message: "Password cannot be entirely numeric.",
		})
	}

	if v.CheckUserSimilarity && isSimilarToUserAttributes(plaintext, userAttributes) {
		errs = append(errs, ValidationError{
			Code:    "too_similar",
			Message: "Password is too similar to your personal information.",
		})
	}

	if len(errs) > 0 {
		return &PasswordValidationError{Errors: errs}
	}
	return nil
}

func isEntirelyNumeric(password string) bool {
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(password) > 0
}

func isSimilarToUserAttributes(password string, attributes []string) bool {
	passwordLower := strings.ToLower(password)

	for _, attr := range attributes {
		if attr == "" {
			continue
		}
		attrLower := strings.ToLower(attr)

		if strings.Contains(passwordLower, attrLower) {
			return true
		}
		if strings.Contains(attrLower, passwordLower) {
			return true
		}
	}

	return false
}
