package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/odyssey-catalog/internal/shared"
)

// PasswordHasher turns a plaintext secret into its stored form.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// Service handles user business logic.
type Service struct {
	repo      Repository
	hasher    PasswordHasher
	validator *validator.Validate
}

// NewService builds Service instance.
func NewService(repo Repository, hasher PasswordHasher) *Service {
	return &Service{
		repo:      repo,
		hasher:    hasher,
		validator: newValidator(),
	}
}

// NormalizeEmail trims and lower-cases an email address. A Caser carries
// state, so one is built per call.
func (s *Service) NormalizeEmail(email string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get returns a single user.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.Get(ctx, id)
}

// FindByEmail looks up a user by normalized email.
func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.FindByEmail(ctx, s.NormalizeEmail(email))
}

// Create validates the input, hashes the password when present and persists the user.
func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	in.Email = s.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Struct(in); err != nil {
		return User{}, shared.ValidationError(err)
	}
	user := User{Name: in.Name, Email: in.Email, Role: in.Role}
	if user.Role == "" {
		user.Role = RoleUser
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return User{}, fmt.Errorf("users: hash password: %w", err)
		}
		user.Password = hash
	}
	return s.repo.Create(ctx, user)
}

// Update merges the input into the stored user. The password is re-hashed
// only when a non-empty value different from the stored hash is supplied.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (User, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if in.Email != nil {
		email := s.NormalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := s.validator.Struct(in); err != nil {
		return User{}, shared.ValidationError(err)
	}

	updated := existing
	if in.Name != nil {
		updated.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		if *in.Email == "" {
			return User{}, fmt.Errorf("%w: email: required", shared.ErrValidation)
		}
		updated.Email = *in.Email
	}
	if in.Role != nil && *in.Role != "" {
		updated.Role = *in.Role
	}
	if in.Password != nil && *in.Password != "" && *in.Password != existing.Password {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return User{}, fmt.Errorf("users: hash password: %w", err)
		}
		updated.Password = hash
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return User{}, err
	}
	return updated, nil
}

// Delete removes a user.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
