// Package jwtx signs and verifies the session tokens handed out by the mock
// directory server.
package jwtx

import (
	"time"

	"github.com/aussiebroadwan/openjub/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL matches the one-day lifetime of the browser cookie.
const DefaultSessionTTL = 24 * time.Hour

// Claims are session-token claims. Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims

	// Username of the signed-in user, so status checks need no lookup.
	Username string `json:"username,omitempty"`
}

// NewSessionClaims builds claims for a token issued at now.
func NewSessionClaims(subject, username, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Username: username,
	}
}

// NewJTI returns a sortable identifier for the "jti" claim.
func NewJTI() string {
	return idx.New().String()
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiry ensures the token has not expired (exp) and is not used
// before nbf, as seen at now. A token without exp is rejected.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}

	if !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
