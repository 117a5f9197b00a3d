package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/odyssey-erp/odyssey-catalog/internal/users"
)

var (
	// ErrMissingToken is returned when no token was presented.
	ErrMissingToken = errors.New("auth: missing token")
	// ErrInvalidToken covers bad signatures, malformed tokens and wrong algorithms.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrExpiredToken is returned once the token's exp has passed.
	ErrExpiredToken = errors.New("auth: token expired")
)

// Claims is the signed payload: the public view plus exp and iat.
type Claims struct {
	users.Public
	jwt.RegisteredClaims
}

// Issuer mints and validates HS256 tokens with a shared key.
type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// IssuerOption customises an Issuer.
type IssuerOption func(*Issuer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIssuer builds an Issuer. The key must be non-empty and ttl positive.
func NewIssuer(key []byte, ttl time.Duration, opts ...IssuerOption) (*Issuer, error) {
	if len(key) == 0 {
		return nil, errors.New("auth: signing key required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("auth: token ttl must be positive, got %s", ttl)
	}
	i := &Issuer{key: append([]byte(nil), key...), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for the public view. Timestamps are truncated to whole
// seconds so identical input within one second yields an identical token.
func (i *Issuer) Issue(identity users.Public) (string, error) {
	now := i.now().Truncate(time.Second)
	claims := Claims{
		Public: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, algorithm and expiry and returns the embedded
// public view.
func (i *Issuer) Validate(raw string) (users.Public, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return users.Public{}, ErrMissingToken
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return users.Public{}, ErrExpiredToken
		}
		return users.Public{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.Public, nil
}
