package repository

import (
	"context"
	"fmt"

	"cashflow_tracker/internal/model"
)

// CategoryRepository reads the global category catalog
type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
}

type categoryRepository struct {
	db DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// List returns every category ordered by label
func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, label FROM categories ORDER BY label ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Label); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return categories, nil
}
