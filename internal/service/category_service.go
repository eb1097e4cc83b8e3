package service

import (
	"context"

	"cashflow_tracker/internal/model"
	"cashflow_tracker/internal/repository"
)

// CategoryService exposes the read-only category catalog
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	return categories, nil
}
