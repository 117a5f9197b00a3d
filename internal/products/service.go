package products

import (
	"context"

	"github.com/go-playground/validator/v10"
)

type Service struct {
	repo      Repository
	validator *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validator: validator.New()}
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	if err := s.validateCreate(&in); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
	})
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Product, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := s.validateUpdate(&in); err != nil {
		return Product{}, err
	}
	if in.Name != nil {
		existing.Name = *in.Name
	}
	if in.Description != nil {
		existing.Description = *in.Description
	}
	if in.Price != nil {
		existing.Price = *in.Price
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return Product{}, err
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
