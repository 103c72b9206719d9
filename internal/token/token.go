// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token issues and verifies signed, purpose-scoped account tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Purpose restricts which operation a token may be redeemed for.
type Purpose string

const (
	// PurposeSession marks tokens granting authenticated access.
	PurposeSession Purpose = "session"
	// PurposeConfirmation marks tokens for the email confirmation workflow.
	PurposeConfirmation Purpose = "confirmation"
)

var (
	// ErrInvalidToken is returned when a token's signature does not verify,
	// its payload is malformed, it is expired, or its purpose does not match.
	ErrInvalidToken = errors.New("invalid token")
	// ErrSigning is returned when the signing operation itself fails. It is
	// not user-facing; callers should treat it as operator-alertable.
	ErrSigning = errors.New("token signing failed")
)

const (
	// DefaultSessionTTL is how long session tokens are valid.
	DefaultSessionTTL = 72 * time.Hour
	// DefaultConfirmationTTL is how long confirmation tokens are valid.
	DefaultConfirmationTTL = 24 * time.Hour
)

// Config is the immutable signing configuration, fixed at startup.
type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Secret          []byte
	Issuer          string
	SessionTTL      time.Duration
	ConfirmationTTL time.Duration
	Now             func() time.Time
}

// Issuer creates and verifies signed tokens. It never touches storage.
type Issuer struct {
	cfg Config
}

// NewIssuer creates an Issuer from explicit configuration.
func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token: signing secret is required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.ConfirmationTTL <= 0 {
		cfg.ConfirmationTTL = DefaultConfirmationTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Issuer{cfg: cfg}, nil
}

// Claims captures the validated payload of a token.
type Claims struct { //nolint:govet // fieldalignment: readability over optimization
	UserID    string
	Purpose   Purpose
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// tokenClaims is the internal claims type used for JWT parsing.
type tokenClaims struct {
	jwt.RegisteredClaims
	Purpose string `json:"purpose"`
}

// Issue produces an opaque signed string binding the user identity to a
// purpose. Extra claims are merged in but cannot override reserved names.
func (i *Issuer) Issue(userID string, purpose Purpose, extra map[string]any) (string, error) {
	now := i.cfg.Now().UTC()

	ttl := i.cfg.SessionTTL
	if purpose == PurposeConfirmation {
		ttl = i.cfg.ConfirmationTTL
	}

	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims["sub"] = userID
	claims["purpose"] = string(purpose)
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(ttl))
	claims["jti"] = uuid.NewString()
	if i.cfg.Issuer != "" {
		claims["iss"] = i.cfg.Issuer
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return signed, nil
}

// VerifyAndDecode checks the signature, well-formedness, expiry and purpose
// of a token and returns its claims. Cross-purpose reuse is rejected.
func (i *Issuer) VerifyAndDecode(tokenString string, expected Purpose) (Claims, error) {
	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &parsed, func(t *jwt.Token) (any, error) {
		return i.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(i.cfg.Now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if parsed.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if Purpose(parsed.Purpose) != expected {
		return Claims{}, fmt.Errorf("%w: purpose mismatch", ErrInvalidToken)
	}
	if i.cfg.Issuer != "" && parsed.Issuer != i.cfg.Issuer {
		return Claims{}, fmt.Errorf("%w: issuer mismatch", ErrInvalidToken)
	}

	claims := Claims{
		UserID:  parsed.Subject,
		Purpose: Purpose(parsed.Purpose),
		TokenID: parsed.ID,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time.UTC()
	}
	return claims, nil
}
