// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the catalog
// reference data: ingredients and tags.
package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
)

// ListIngredients returns ingredients ordered by name. A non-empty prefix
// narrows the result to names starting with it (case-insensitive); this is
// the only search the catalog supports.
func ListIngredients(ctx context.Context, db *gorm.DB, prefix string) ([]domain.Ingredient, error) {
	q := db.WithContext(ctx).Model(&domain.Ingredient{}).Order("name ASC, id ASC")
	if p := strings.TrimSpace(prefix); p != "" {
		q = q.Where("LOWER(name) LIKE ?", strings.ToLower(p)+"%")
	}
	var out []domain.Ingredient
	err := q.Find(&out).Error
	return out, err
}

// GetIngredient fetches an ingredient by ID.
func GetIngredient(ctx context.Context, db *gorm.DB, id string) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	if err := db.WithContext(ctx).Where("id = ?", id).First(&ing).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}

// CountIngredientsByIDs returns how many of the given ids exist. Used to
// validate recipe line items in one query instead of one lookup per line.
func CountIngredientsByIDs(ctx context.Context, db *gorm.DB, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Ingredient{}).
		Where("id IN ?", ids).
		Count(&n).Error
	return n, err
}

// FindIngredientByNameUnit fetches the ingredient with the exact (name, unit)
// pair, used by the bulk importer's upsert.
func FindIngredientByNameUnit(ctx context.Context, db *gorm.DB, name, unit string) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	err := db.WithContext(ctx).
		Where("name = ? AND measurement_unit = ?", name, unit).
		First(&ing).Error
	if err != nil {
		return nil, err
	}
	return &ing, nil
}

// CreateIngredient inserts a catalog row.
func CreateIngredient(ctx context.Context, db *gorm.DB, name, unit string) (*domain.Ingredient, error) {
	ing := &domain.Ingredient{
		ID:              uuid.NewString(),
		Name:            name,
		MeasurementUnit: unit,
	}
	return ing, db.WithContext(ctx).Create(ing).Error
}

// UpdateIngredientUnit rewrites the measurement unit of an existing row.
func UpdateIngredientUnit(ctx context.Context, db *gorm.DB, id, unit string) error {
	res := db.WithContext(ctx).
		Model(&domain.Ingredient{}).
		Where("id = ?", id).
		Update("measurement_unit", unit)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListTags returns all tags ordered by name.
func ListTags(ctx context.Context, db *gorm.DB) ([]domain.Tag, error) {
	var out []domain.Tag
	err := db.WithContext(ctx).Order("name ASC, id ASC").Find(&out).Error
	return out, err
}

// GetTag fetches a tag by ID.
func GetTag(ctx context.Context, db *gorm.DB, id string) (*domain.Tag, error) {
	var t domain.Tag
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTagsByIDs fetches the tags with the given ids in one query.
func ListTagsByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Tag, error) {
	if len(ids) == 0 {
		return []domain.Tag{}, nil
	}
	var out []domain.Tag
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}
