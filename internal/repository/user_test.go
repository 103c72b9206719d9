// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/accountd/internal/models"
	"codeberg.org/oliverandrich/accountd/internal/repository"
	"codeberg.org/oliverandrich/accountd/internal/testutil"
)

func TestSave_Create(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.Save(ctx, &models.User{
		Email:        "ghopper@example.com",
		PasswordHash: "$2a$10$fakehash",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Nil(t, user.ConfirmedAt)
	assert.Nil(t, user.ConfirmationToken)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestSave_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, &models.User{Email: "ghopper@example.com", PasswordHash: "$2a$10$fakehash"})
	require.NoError(t, err)

	_, err = repo.Save(ctx, &models.User{Email: "ghopper@example.com", PasswordHash: "$2a$10$otherhash"})

	var valErr *repository.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "email", valErr.Field)
}

func TestSave_EmptyPasswordHashRejected(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.Save(context.Background(), &models.User{Email: "ghopper@example.com"})

	var valErr *repository.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestSave_Update(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ghopper@example.com", "GraceHopper1234")

	tok := "confirmation-token-value"
	user.ConfirmationToken = &tok
	saved, err := repo.Save(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, user.ID, saved.ID)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.ConfirmationToken)
	assert.Equal(t, tok, *found.ConfirmationToken)
}

func TestFindByEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ghopper@example.com", "GraceHopper1234")

	found, err := repo.FindByEmail(ctx, "ghopper@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestFindByEmail_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFindByID_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.FindByID(context.Background(), "missing-id")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFindByConfirmationToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ghopper@example.com", "GraceHopper1234")
	tok := "confirmation-token-value"
	user.ConfirmationToken = &tok
	_, err := repo.Save(ctx, user)
	require.NoError(t, err)

	found, err := repo.FindByConfirmationToken(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestFindByConfirmationToken_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.FindByConfirmationToken(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFindByConfirmationToken_EmptyToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	// A user without an outstanding token must not be matched by an empty
	// lookup.
	testutil.NewTestUser(t, repo, "ghopper@example.com", "GraceHopper1234")

	_, err := repo.FindByConfirmationToken(ctx, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDelete(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ghopper@example.com", "GraceHopper1234")

	deleted, err := repo.Delete(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, user.ID, deleted.ID)

	_, err = repo.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDelete_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.Delete(context.Background(), &models.User{ID: "missing-id"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListAndCount(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	testutil.NewTestUser(t, repo, "first@example.com", "GraceHopper1234")
	time.Sleep(10 * time.Millisecond)
	testutil.NewTestUser(t, repo, "second@example.com", "GraceHopper1234")

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "second@example.com", users[0].Email)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSave_RoundTripsTimestamps(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ghopper@example.com", "GraceHopper1234")
	now := time.Now().UTC()
	user.ConfirmedAt = &now
	_, err := repo.Save(ctx, user)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.ConfirmedAt)
	assert.WithinDuration(t, now, *found.ConfirmedAt, time.Second)
}
