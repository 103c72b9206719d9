// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package token

import (
	"fmt"

	"github.com/gorilla/securecookie"
)

// legacyContext is the fixed context string legacy tokens are keyed to.
const legacyContext = "user id"

// Strategy issues access tokens for an already-authenticated user. The two
// implementations cover the primary signed-claims format and a lightweight
// single-purpose format kept for older clients.
type Strategy interface {
	IssueFor(userID string) (string, error)
	Verify(token string) (string, error)
}

// SignedClaimsStrategy is the primary strategy: session-purpose tokens from
// the Issuer.
type SignedClaimsStrategy struct {
	issuer *Issuer
}

// NewSignedClaimsStrategy creates the primary token strategy.
func NewSignedClaimsStrategy(issuer *Issuer) *SignedClaimsStrategy {
	return &SignedClaimsStrategy{issuer: issuer}
}

// IssueFor issues a session-purpose token for the user.
func (s *SignedClaimsStrategy) IssueFor(userID string) (string, error) {
	return s.issuer.Issue(userID, PurposeSession, nil)
}

// Verify decodes a session-purpose token and returns the user ID.
func (s *SignedClaimsStrategy) Verify(token string) (string, error) {
	claims, err := s.issuer.VerifyAndDecode(token, PurposeSession)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// LegacyStrategy issues compact HMAC-signed tokens carrying only the user
// ID, keyed to a fixed context string. securecookie stamps the value with a
// timestamp, so MaxAge bounds its lifetime.
type LegacyStrategy struct {
	codec *securecookie.SecureCookie
}

// NewLegacyStrategy creates the alternate lightweight token strategy.
func NewLegacyStrategy(secret []byte, maxAgeSeconds int) *LegacyStrategy {
	codec := securecookie.New(secret, nil)
	codec.MaxAge(maxAgeSeconds)
	return &LegacyStrategy{codec: codec}
}

// IssueFor encodes the user ID under the legacy context.
func (s *LegacyStrategy) IssueFor(userID string) (string, error) {
	encoded, err := s.codec.Encode(legacyContext, userID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return encoded, nil
}

// Verify decodes a legacy token and returns the user ID.
func (s *LegacyStrategy) Verify(token string) (string, error) {
	var userID string
	if err := s.codec.Decode(legacyContext, token, &userID); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return userID, nil
}
