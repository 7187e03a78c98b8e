// Package services – CatalogService
//
// Thin read layer over the ingredient and tag reference data. The catalog is
// read-only through the API; rows are loaded by the bulk importer.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
	"github.com/tbourn/go-recipe-backend/internal/repo"
)

// CatalogService provides read access to ingredients and tags.
type CatalogService struct {
	// DB is the GORM handle used for catalog reads.
	DB *gorm.DB
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// Ingredients lists ingredients ordered by name, optionally narrowed to names
// starting with prefix (case-insensitive).
func (s *CatalogService) Ingredients(ctx context.Context, prefix string) ([]domain.Ingredient, error) {
	out, err := repo.ListIngredients(ctx, s.DB, prefix)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Ingredient{}
	}
	return out, nil
}

// Ingredient fetches one ingredient by id.
func (s *CatalogService) Ingredient(ctx context.Context, id string) (*domain.Ingredient, error) {
	ing, err := repo.GetIngredient(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	return ing, nil
}

// Tags lists all tags ordered by name.
func (s *CatalogService) Tags(ctx context.Context) ([]domain.Tag, error) {
	out, err := repo.ListTags(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Tag{}
	}
	return out, nil
}

// Tag fetches one tag by id.
func (s *CatalogService) Tag(ctx context.Context, id string) (*domain.Tag, error) {
	t, err := repo.GetTag(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return t, nil
}
