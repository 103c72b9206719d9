// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package accounts implements the account trust core: credential
// verification, signed-token issuance and the email confirmation workflow.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"codeberg.org/oliverandrich/accountd/internal/models"
	"codeberg.org/oliverandrich/accountd/internal/password"
	"codeberg.org/oliverandrich/accountd/internal/repository"
	"codeberg.org/oliverandrich/accountd/internal/token"
)

// Notifier delivers confirmation instructions through an external channel.
// Success or failure is the only signal visible to the core.
type Notifier interface {
	DeliverConfirmationInstructions(ctx context.Context, user *models.User, confirmationURL string) error
}

// Service is the top-level entry point for authentication and account
// confirmation. All state lives in the repository; the service itself is
// safe for concurrent use.
type Service struct {
	repo              *repository.Repository
	issuer            *token.Issuer
	notifier          Notifier
	passwordValidator *password.Validator
	primary           token.Strategy
	confirmationURL   string
}

// NewService wires the account core together. confirmationURL is the fixed
// endpoint confirmation links point at, configured per deployment.
func NewService(repo *repository.Repository, issuer *token.Issuer, notifier Notifier, confirmationURL string) *Service {
	return &Service{
		repo:              repo,
		issuer:            issuer,
		notifier:          notifier,
		passwordValidator: password.DefaultValidator(),
		primary:           token.NewSignedClaimsStrategy(issuer),
		confirmationURL:   strings.TrimSuffix(confirmationURL, "/"),
	}
}

// PasswordValidator returns the password validator for use in handlers.
func (s *Service) PasswordValidator() *password.Validator {
	return s.passwordValidator
}

// NormalizeEmail lowercases and trims an email address so uniqueness is
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new, unconfirmed user account.
func (s *Service) Register(ctx context.Context, email, plaintext string) (*models.User, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	if err := s.passwordValidator.Validate(plaintext, email); err != nil {
		return nil, err
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Save(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("register_success", "user_id", user.ID, "email", email)

	return user, nil
}

// Authenticate answers whether the email/password pair is valid and the
// account is allowed to authenticate. Unknown email and wrong password
// produce the same error; the unknown-email path performs an
// equivalent-cost dummy verification for timing parity.
func (s *Service) Authenticate(ctx context.Context, email, plaintext string) (*models.User, string, error) {
	email = NormalizeEmail(email)

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			password.NoUserVerify()
			slog.Warn("login_failed", "email", email, "reason", "user_not_found")
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if !password.Verify(plaintext, user.PasswordHash) {
		slog.Warn("login_failed", "email", email, "reason", "invalid_password")
		return nil, "", ErrInvalidCredentials
	}

	// Confirmation gate: the account being authenticated must have verified
	// its email address.
	if !user.Confirmed() {
		slog.Warn("login_failed", "email", email, "reason", "not_confirmed")
		return nil, "", ErrNotConfirmed
	}

	sessionToken, err := s.primary.IssueFor(user.ID)
	if err != nil {
		return nil, "", err
	}

	slog.Info("login_success", "user_id", user.ID, "email", email)
	return user, sessionToken, nil
}

// CreateToken issues a token for an already-authenticated user under the
// given strategy. A nil strategy selects the primary signed-claims one.
func (s *Service) CreateToken(user *models.User, strategy token.Strategy) (string, error) {
	if strategy == nil {
		strategy = s.primary
	}
	return strategy.IssueFor(user.ID)
}

// VerifySessionToken decodes a session token issued by the primary strategy
// and loads the user it was bound to.
func (s *Service) VerifySessionToken(ctx context.Context, sessionToken string) (*models.User, error) {
	userID, err := s.primary.Verify(sessionToken)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
