// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package accounts

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"codeberg.org/oliverandrich/accountd/internal/models"
	"codeberg.org/oliverandrich/accountd/internal/repository"
	"codeberg.org/oliverandrich/accountd/internal/token"
)

// RequestConfirmation issues a fresh confirmation token for an unconfirmed
// user, persists it and hands the confirmation link to the notifier.
//
// Issuing a new token supersedes any prior one: the stored value is
// overwritten, so the old link stops resolving. When delivery fails the
// token stays persisted; re-invoking RequestConfirmation is the retry path
// and is safe because it regenerates the token.
func (s *Service) RequestConfirmation(ctx context.Context, user *models.User) (*models.User, error) {
	if user.Confirmed() {
		return nil, ErrAlreadyConfirmed
	}

	confirmationToken, err := s.issuer.Issue(user.ID, token.PurposeConfirmation, nil)
	if err != nil {
		return nil, err
	}

	user.ConfirmationToken = &confirmationToken
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to persist confirmation token: %w", err)
	}

	confirmationURL := fmt.Sprintf("%s?token=%s", s.confirmationURL, url.QueryEscape(confirmationToken))

	if err := s.notifier.DeliverConfirmationInstructions(ctx, saved, confirmationURL); err != nil {
		slog.Warn("confirmation_delivery_failed", "user_id", saved.ID, "error", err)
		return saved, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	slog.Info("confirmation_requested", "user_id", saved.ID)
	return saved, nil
}

// RequestConfirmationByEmail resolves the account for an email address and
// requests confirmation for it.
func (s *Service) RequestConfirmationByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return s.RequestConfirmation(ctx, user)
}

// LookupByConfirmationToken resolves the user holding the given persisted
// confirmation token.
func (s *Service) LookupByConfirmationToken(ctx context.Context, confirmationToken string) (*models.User, error) {
	user, err := s.repo.FindByConfirmationToken(ctx, confirmationToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up confirmation token: %w", err)
	}
	return user, nil
}

// Confirm consumes a confirmation token: it marks the user confirmed and
// clears the stored token, so a second presentation no longer resolves.
//
// Beyond the storage match, the token's signature, purpose and subject are
// verified against the issuer, and the presented value is compared to the
// persisted one in constant time.
func (s *Service) Confirm(ctx context.Context, confirmationToken string) (*models.User, error) {
	user, err := s.LookupByConfirmationToken(ctx, confirmationToken)
	if err != nil {
		return nil, err
	}

	claims, err := s.issuer.VerifyAndDecode(confirmationToken, token.PurposeConfirmation)
	if err != nil {
		return nil, err
	}
	if claims.UserID != user.ID {
		return nil, fmt.Errorf("%w: subject mismatch", token.ErrInvalidToken)
	}
	if user.ConfirmationToken == nil ||
		subtle.ConstantTimeCompare([]byte(*user.ConfirmationToken), []byte(confirmationToken)) != 1 {
		return nil, ErrUserNotFound
	}

	// ConfirmedAt is set exactly once and never reset.
	if !user.Confirmed() {
		now := time.Now().UTC()
		user.ConfirmedAt = &now
	}
	user.ConfirmationToken = nil

	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to persist confirmation: %w", err)
	}

	slog.Info("confirmation_success", "user_id", saved.ID)
	return saved, nil
}
