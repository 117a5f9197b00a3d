package products

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/odyssey-catalog/internal/platform/docstore"
)

// CollectionName is the document collection holding products.
const CollectionName = "products"

// Repository defines data access for products.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	coll docstore.Collection[Product]
}

// NewRepository wraps a document collection.
func NewRepository(coll docstore.Collection[Product]) Repository {
	return &repository{coll: coll}
}

func (r *repository) List(ctx context.Context) ([]Product, error) {
	list, err := r.coll.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	return list, nil
}

func (r *repository) Get(ctx context.Context, id string) (Product, error) {
	p, err := r.coll.Get(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("products: get %s: %w", id, err)
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	p, err := r.coll.Insert(ctx, product)
	if err != nil {
		return Product{}, fmt.Errorf("products: create: %w", err)
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, product Product) error {
	if err := r.coll.Replace(ctx, product.ID, product); err != nil {
		return fmt.Errorf("products: update %s: %w", product.ID, err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if err := r.coll.Delete(ctx, id); err != nil {
		return fmt.Errorf("products: delete %s: %w", id, err)
	}
	return nil
}
