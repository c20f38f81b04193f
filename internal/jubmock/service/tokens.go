package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/openjub/internal/jubmock/domain"
	"github.com/aussiebroadwan/openjub/pkg/jwtx"
)

// TokenService issues and checks session tokens. Signed-out tokens are
// remembered until they would have expired anyway.
type TokenService struct {
	Issuer string
	TTL    time.Duration

	signer   jwtx.Signer
	verifier jwtx.Verifier

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
	now     func() time.Time
}

// NewTokenService fails when secret is too short for HS256.
func NewTokenService(secret []byte, issuer string, ttl time.Duration) (*TokenService, error) {
	signer, err := jwtx.NewSignerHS256(secret)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	s := &TokenService{
		Issuer:  issuer,
		TTL:     ttl,
		signer:  signer,
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
	s.verifier = jwtx.NewVerifierHS256(secret, issuer, func() time.Time { return s.now() })
	return s, nil
}

// Issue signs a new token for u.
func (s *TokenService) Issue(u domain.User) (string, error) {
	claims := jwtx.NewSessionClaims(u.ID, u.Username, s.Issuer, s.TTL, s.now())

	signed, err := s.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, issuer, expiry and revocation of raw.
func (s *TokenService) Verify(raw string) (jwtx.Claims, error) {
	if raw == "" {
		return jwtx.Claims{}, domain.ErrInvalidToken
	}

	claims, err := s.verifier.Verify(raw)
	if err != nil {
		return jwtx.Claims{}, errors.Join(domain.ErrInvalidToken, err)
	}

	s.mu.Lock()
	_, gone := s.revoked[claims.ID]
	s.mu.Unlock()
	if gone {
		return jwtx.Claims{}, domain.ErrInvalidToken
	}
	return claims, nil
}

// Revoke invalidates raw for the rest of its lifetime.
func (s *TokenService) Revoke(raw string) error {
	claims, err := s.Verify(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[claims.ID] = claims.ExpiresAt.Time
	return nil
}

// PurgeRevoked forgets revocations whose tokens have expired and returns
// how many were dropped.
func (s *TokenService) PurgeRevoked() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for jti, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, jti)
			n++
		}
	}
	return n
}
