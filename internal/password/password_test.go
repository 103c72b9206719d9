// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package password_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/accountd/internal/password"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := password.Hash("GraceHopper1234")
	require.NoError(t, err)

	assert.NotEqual(t, "GraceHopper1234", hash)
	assert.True(t, password.Verify("GraceHopper1234", hash))
}

func TestVerify_WrongPassword(t *testing.T) {
	hash, err := password.Hash("GraceHopper1234")
	require.NoError(t, err)

	assert.False(t, password.Verify("WrongPass", hash))
}

func TestVerify_InvalidHash(t *testing.T) {
	assert.False(t, password.Verify("anything", "not-a-bcrypt-hash"))
}

func TestHash_Salted(t *testing.T) {
	hash1, err := password.Hash("GraceHopper1234")
	require.NoError(t, err)
	hash2, err := password.Hash("GraceHopper1234")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}

func TestNoUserVerify_TimingParity(t *testing.T) {
	hash, err := password.Hash("GraceHopper1234")
	require.NoError(t, err)

	// Warm up so both paths are measured under comparable conditions.
	password.Verify("WrongPass", hash)
	password.NoUserVerify()

	const rounds = 5

	start := time.Now()
	for range rounds {
		password.Verify("WrongPass", hash)
	}
	mismatch := time.Since(start)

	start = time.Now()
	for range rounds {
		password.NoUserVerify()
	}
	noUser := time.Since(start)

	// Both paths perform a full bcrypt comparison, so their cost must be in
	// the same ballpark. The tolerance is deliberately generous to keep the
	// test stable on loaded machines.
	ratio := float64(noUser) / float64(mismatch)
	assert.Greater(t, ratio, 0.2, "no-user path is suspiciously cheap")
	assert.Less(t, ratio, 5.0, "no-user path is suspiciously expensive")
}
