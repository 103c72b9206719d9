// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package accounts_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/accountd/internal/accounts"
	"codeberg.org/oliverandrich/accountd/internal/testutil"
	"codeberg.org/oliverandrich/accountd/internal/token"
)

func TestRequestConfirmation(t *testing.T) {
	svc, repo, notifier := newService(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ghopper@example.com", "GraceHopper1234")

	saved, err := svc.RequestConfirmation(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, saved.ConfirmationToken)
	assert.False(t, saved.Confirmed())

	deliveries := notifier.Deliveries()
	require.Len(t, deliveries, 1)
	assert.Equal(t, user.ID, deliveries[0].User.ID)

	// The link embeds the token as a query parameter of the configured
	// endpoint.
	assert.True(t, strings.HasPrefix(deliveries[0].ConfirmationURL, "https://example.com/auth/confirm?token="))
	parsed, err := url.Parse(deliveries[0].ConfirmationURL)
	require.NoError(t, err)
	assert.Equal(t, *saved.ConfirmationToken, parsed.Query().Get("token"))
}

func TestRequestConfirmation_AlreadyConfirmed(t *testing.T) {
	svc, repo, notifier := newService(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ghopper@example.com", "GraceHopper1234")
	user = testutil.ConfirmUser(t, repo, user)

	_, err := svc.RequestConfirmation(ctx, user)

	assert.ErrorIs(t, err, accounts.ErrAlreadyConfirmed)
	assert.Empty(t, notifier.Deliveries())

	// The stored record is untouched.
	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, found.ConfirmationToken)
	assert.NotNil(t, found.ConfirmedAt)
}

func TestRequestConfirmation_ReplacesToken(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ghopper@example.com", "GraceHopper1234")

	first, err := svc.RequestConfirmation(ctx, user)
	require.NoError(t, err)
	firstToken := *first.ConfirmationToken

	second, err := svc.RequestConfirmation(ctx, first)
	require.NoError(t, err)
	secondToken := *second.ConfirmationToken

	assert.NotEqual(t, firstToken, secondToken)

	// Only the second token remains valid for confirmation.
	_, err = svc.Confirm(ctx, firstToken)
	assert.ErrorIs(t, err, accounts.ErrUserNotFound)

	confirmed, err := svc.Confirm(ctx, secondToken)
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed())
}

func TestRequestConfirmation_DeliveryFailure(t *testing.T) {
	svc, repo, notifier := newService(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ghopper@example.com", "GraceHopper1234")
	notifier.FailWith(errors.New("smtp unreachable"))

	_, err := svc.RequestConfirmation(ctx, user)
	assert.ErrorIs(t, err, accounts.ErrDeliveryFailed)

	// The token stays persisted; a retry regenerates it and still succeeds.
	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.ConfirmationToken)

	notifier.FailWith(nil)
	retried, err := svc.RequestConfirmation(ctx, found)
	require.NoError(t, err)

	confirmed, err := svc.Confirm(ctx, *retried.ConfirmationToken)
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed())
}

func TestRequestConfirmationByEmail(t *testing.T) {
	svc, repo, notifier := newService(t)
	ctx := context.Background()

	testutil.NewTestUser(t, repo, "ghopper@example.com", "GraceHopper1234")

	saved, err := svc.RequestConfirmationByEmail(ctx, "GHopper@Example.com")
	require.NoError(t, err)
	assert.NotNil(t, saved.ConfirmationToken)
	assert.Len(t, notifier.Deliveries(), 1)
}

func TestRequestConfirmationByEmail_Unknown(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.RequestConfirmationByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, accounts.ErrUserNotFound)
}

func TestConfirm(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ghopper@example.com", "GraceHopper1234")
	requested, err := svc.RequestConfirmation(ctx, user)
	require.NoError(t, err)

	confirmed, err := svc.Confirm(ctx, *requested.ConfirmationToken)
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed())
	assert.Nil(t, confirmed.ConfirmationToken)

	// Confirmation unlocks authentication.
	_, sessionToken, err := svc.Authenticate(ctx, "ghopper@example.com", "GraceHopper1234")
	require.NoError(t, err)
	assert.NotEmpty(t, sessionToken)
}

func TestConfirm_SecondPresentationFails(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ghopper@example.com", "GraceHopper1234")
	requested, err := svc.RequestConfirmation(ctx, user)
	require.NoError(t, err)
	presented := *requested.ConfirmationToken

	_, err = svc.Confirm(ctx, presented)
	require.NoError(t, err)

	// The stored token was cleared, so the same token no longer matches.
	_, err = svc.Confirm(ctx, presented)
	assert.ErrorIs(t, err, accounts.ErrUserNotFound)
}

func TestConfirm_UnknownToken(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Confirm(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, accounts.ErrUserNotFound)
}

func TestConfirm_SessionTokenRejected(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ghopper@example.com", "GraceHopper1234")

	// Persist a session-purpose token in the confirmation slot. The
	// cross-purpose check must reject it even though storage matches.
	issuer := testutil.NewTestIssuer(t)
	sessionToken, err := issuer.Issue(user.ID, token.PurposeSession, nil)
	require.NoError(t, err)
	user.ConfirmationToken = &sessionToken
	_, err = repo.Save(ctx, user)
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, sessionToken)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestConfirm_ForeignSubjectRejected(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ghopper@example.com", "GraceHopper1234")

	// A validly signed confirmation token for a different subject must not
	// confirm this user, even if it ends up stored on their record.
	issuer := testutil.NewTestIssuer(t)
	foreign, err := issuer.Issue("someone-else", token.PurposeConfirmation, nil)
	require.NoError(t, err)
	user.ConfirmationToken = &foreign
	_, err = repo.Save(ctx, user)
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, foreign)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestLookupByConfirmationToken(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ghopper@example.com", "GraceHopper1234")
	requested, err := svc.RequestConfirmation(ctx, user)
	require.NoError(t, err)

	found, err := svc.LookupByConfirmationToken(ctx, *requested.ConfirmationToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestLookupByConfirmationToken_Unknown(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.LookupByConfirmationToken(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, accounts.ErrUserNotFound)
}
