package users

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/odyssey-catalog/internal/platform/docstore"
)

// CollectionName is the document collection holding users.
const CollectionName = "users"

// Repository defines data access methods for users.
type Repository interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) error
	Delete(ctx context.Context, id string) error
}

// DocumentRepository persists users in a document collection.
type DocumentRepository struct {
	coll docstore.Collection[User]
}

var _ Repository = (*DocumentRepository)(nil)

// NewRepository constructs a repository.
func NewRepository(coll docstore.Collection[User]) *DocumentRepository {
	return &DocumentRepository{coll: coll}
}

func (r *DocumentRepository) List(ctx context.Context) ([]User, error) {
	list, err := r.coll.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	return list, nil
}

func (r *DocumentRepository) Get(ctx context.Context, id string) (User, error) {
	user, err := r.coll.Get(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("users: get %s: %w", id, err)
	}
	return user, nil
}

// FindByEmail returns the first user stored under email.
func (r *DocumentRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	user, err := r.coll.FindOne(ctx, "email", email)
	if err != nil {
		return User{}, fmt.Errorf("users: find by email: %w", err)
	}
	return user, nil
}

func (r *DocumentRepository) Create(ctx context.Context, user User) (User, error) {
	created, err := r.coll.Insert(ctx, user)
	if err != nil {
		return User{}, fmt.Errorf("users: create: %w", err)
	}
	return created, nil
}

func (r *DocumentRepository) Update(ctx context.Context, user User) error {
	if err := r.coll.Replace(ctx, user.ID, user); err != nil {
		return fmt.Errorf("users: update %s: %w", user.ID, err)
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	if err := r.coll.Delete(ctx, id); err != nil {
		return fmt.Errorf("users: delete %s: %w", id, err)
	}
	return nil
}
