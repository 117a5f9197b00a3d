package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/odyssey-erp/odyssey-catalog/internal/shared"
	"github.com/odyssey-erp/odyssey-catalog/internal/users"
)

// UserFinder looks up a stored identity by email.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (users.User, error)
}

// Service wraps authentication business rules.
type Service struct {
	users  UserFinder
	hasher *Hasher
	issuer *Issuer

	// dummyHash is compared against when the email is unknown.
	dummyHash string
}

// NewService constructs a new Service and computes the placeholder hash once.
func NewService(finder UserFinder, hasher *Hasher, issuer *Issuer) *Service {
	s := &Service{users: finder, hasher: hasher, issuer: issuer}
	if hash, err := hasher.Hash("odyssey-catalog-placeholder"); err == nil {
		s.dummyHash = hash
	}
	return s
}

// Authenticate validates email/password credentials. An unknown email and a
// wrong password both yield ok=false with a nil error; only lookup failures
// surface as errors.
func (s *Service) Authenticate(ctx context.Context, email, password string) (users.User, bool, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, shared.ErrNotFound) {
		// Burn a comparison so unknown emails cost the same as wrong passwords.
		s.hasher.Verify(s.dummyHash, password)
		return users.User{}, false, nil
	}
	if err != nil {
		return users.User{}, false, fmt.Errorf("auth: lookup: %w", err)
	}
	if user.Password == "" || !s.hasher.Verify(user.Password, password) {
		return users.User{}, false, nil
	}
	return user, true, nil
}

// Login authenticates and issues a token for the matched identity.
func (s *Service) Login(ctx context.Context, email, password string) (string, users.Public, error) {
	user, ok, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", users.Public{}, err
	}
	if !ok {
		return "", users.Public{}, shared.ErrInvalidCredentials
	}
	view := user.PublicView()
	token, err := s.issuer.Issue(view)
	if err != nil {
		return "", users.Public{}, err
	}
	return token, view, nil
}
