// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package password provides one-way credential hashing and verification.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when no account matches, so that a failed
// lookup costs the same as a failed password check.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Hash derives a one-way hash from a plaintext password.
func Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the plaintext matches the stored hash. bcrypt's
// comparison does not leak which byte mismatched.
func Verify(plaintext, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
}

// NoUserVerify performs an equivalent-cost comparison with no real target.
// Callers invoke it on the unknown-account path so email enumeration cannot
// be inferred from response latency.
func NoUserVerify() {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte("no-user-password"))
}
