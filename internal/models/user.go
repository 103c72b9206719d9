// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// User is an account identity record.
//
// PasswordHash and ConfirmationToken are excluded from JSON so they never
// cross the transport boundary.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID                string     `db:"id" json:"id"`
	Email             string     `db:"email" json:"email"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	ConfirmedAt       *time.Time `db:"confirmed_at" json:"confirmed_at"`
	ConfirmationToken *string    `db:"confirmation_token" json:"-"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Confirmed reports whether the account's email ownership has been verified.
func (u *User) Confirmed() bool {
	return u.ConfirmedAt != nil
}
