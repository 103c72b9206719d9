// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package accounts

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotConfirmed is returned when the confirmation gate blocks login.
	ErrNotConfirmed = errors.New("account not confirmed")
	// ErrAlreadyConfirmed is returned for duplicate confirmation requests.
	ErrAlreadyConfirmed = errors.New("account already confirmed")
	// ErrUserNotFound is returned when a lookup misses, including a
	// confirmation token that no longer matches any record.
	ErrUserNotFound = errors.New("user not found")
	// ErrDeliveryFailed is returned when the notifier could not deliver the
	// confirmation instructions. The persisted token is not rolled back.
	ErrDeliveryFailed = errors.New("confirmation delivery failed")
	// ErrInvalidEmail is returned for malformed email addresses.
	ErrInvalidEmail = errors.New("invalid email format")
)
