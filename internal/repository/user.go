// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"codeberg.org/oliverandrich/accountd/internal/models"
)

// FindByID retrieves a user by their ID.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// FindByEmail retrieves a user by their email address.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// FindByConfirmationToken retrieves a user by the confirmation token
// persisted on their record. The match is exact; cleared tokens no longer
// resolve.
func (r *Repository) FindByConfirmationToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE confirmation_token = ?`, token)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// Save creates the user when it has no ID yet, otherwise updates the
// existing record. Constraint violations surface as *ValidationError.
func (r *Repository) Save(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC()
	user.UpdatedAt = now

	if user.ID == "" {
		user.ID = uuid.NewString()
		user.CreatedAt = now
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO users (id, email, password_hash, confirmed_at, confirmation_token, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			user.ID, user.Email, user.PasswordHash, user.ConfirmedAt, user.ConfirmationToken, user.CreatedAt, user.UpdatedAt)
		if err != nil {
			user.ID = ""
			return nil, wrapError(err)
		}
		return user, nil
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = ?, password_hash = ?, confirmed_at = ?, confirmation_token = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email, user.PasswordHash, user.ConfirmedAt, user.ConfirmationToken, user.UpdatedAt, user.ID)
	if err != nil {
		return nil, wrapError(err)
	}
	return user, nil
}

// Delete removes a user record and returns it.
func (r *Repository) Delete(ctx context.Context, user *models.User) (*models.User, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, user.ID)
	if err != nil {
		return nil, wrapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return user, nil
}

// List returns all users ordered by creation date (newest first).
func (r *Repository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the total number of users.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return 0, err
	}
	return count, nil
}
