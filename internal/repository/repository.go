// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vinovest/sqlx"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// ValidationError reports a storage-level constraint violation, such as a
// duplicate email on create. It is a structured result, not a crash.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// Repository wraps sqlx for database operations.
type Repository struct {
	db *sqlx.DB
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying sqlx DB for direct access.
func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// wrapError converts driver errors to repository errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if constraintErr := asValidationError(err); constraintErr != nil {
		return constraintErr
	}
	return err
}

// asValidationError maps SQLite constraint violations to ValidationError.
func asValidationError(err error) *ValidationError {
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed: users.email") {
		return &ValidationError{Field: "email", Message: "has already been taken"}
	}
	if strings.Contains(msg, "NOT NULL constraint failed") ||
		strings.Contains(msg, "CHECK constraint failed") {
		return &ValidationError{Field: "record", Message: "is missing a required field"}
	}
	return nil
}
