// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"

	"codeberg.org/oliverandrich/accountd/internal/accounts"
	"codeberg.org/oliverandrich/accountd/internal/database"
	"codeberg.org/oliverandrich/accountd/internal/models"
	"codeberg.org/oliverandrich/accountd/internal/password"
	"codeberg.org/oliverandrich/accountd/internal/repository"
	"codeberg.org/oliverandrich/accountd/internal/token"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestIssuer creates a token issuer with a fixed test secret.
func NewTestIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	issuer, err := token.NewIssuer(token.Config{
		Secret: []byte("test-secret-key-for-signing"),
		Issuer: "accountd-test",
	})
	require.NoError(t, err)
	return issuer
}

// NewTestUser creates an unconfirmed test user with the given password.
func NewTestUser(t *testing.T, repo *repository.Repository, email, plaintext string) *models.User {
	t.Helper()
	hash, err := password.Hash(plaintext)
	require.NoError(t, err)
	user, err := repo.Save(context.Background(), &models.User{
		Email:        email,
		PasswordHash: hash,
	})
	require.NoError(t, err)
	return user
}

// ConfirmUser marks a user confirmed directly through the repository.
func ConfirmUser(t *testing.T, repo *repository.Repository, user *models.User) *models.User {
	t.Helper()
	now := time.Now().UTC()
	user.ConfirmedAt = &now
	user.ConfirmationToken = nil
	saved, err := repo.Save(context.Background(), user)
	require.NoError(t, err)
	return saved
}

// Delivery records one notifier invocation.
type Delivery struct {
	User            *models.User
	ConfirmationURL string
}

// RecordingNotifier is an accounts.Notifier that records deliveries and can
// be told to fail.
type RecordingNotifier struct {
	mu         sync.Mutex
	deliveries []Delivery
	failWith   error
}

var _ accounts.Notifier = (*RecordingNotifier)(nil)

// DeliverConfirmationInstructions records the delivery or returns the
// configured failure.
func (n *RecordingNotifier) DeliverConfirmationInstructions(_ context.Context, user *models.User, confirmationURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failWith != nil {
		return n.failWith
	}
	n.deliveries = append(n.deliveries, Delivery{User: user, ConfirmationURL: confirmationURL})
	return nil
}

// FailWith makes subsequent deliveries fail with err. Pass nil to recover.
func (n *RecordingNotifier) FailWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failWith = err
}

// Deliveries returns the recorded deliveries.
func (n *RecordingNotifier) Deliveries() []Delivery {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Delivery(nil), n.deliveries...)
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
