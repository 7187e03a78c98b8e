// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
)

// RecipesStats returns aggregate metadata for the recipes matching a filter:
// the total number of rows and the maximum UpdatedAt timestamp among them.
//
// When no recipes match, the returned count is 0 and maxUpdatedAt is nil.
//
// Return values:
//   - count:        total matching recipes
//   - maxUpdatedAt: pointer to the greatest UpdatedAt, or nil if no rows
//   - err:          database error, if any
func RecipesStats(ctx context.Context, db *gorm.DB, f RecipeFilter) (count int64, maxUpdatedAt *time.Time, err error) {
	q := filteredRecipes(ctx, db, f)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("recipes.updated_at").Order("recipes.updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// UsersStats returns aggregate metadata for the accounts table: row count and
// the maximum UpdatedAt timestamp. Used for the user list ETag.
func UsersStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.User{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// relationStats counts a user's rows in one of the relation tables and
// reports the latest created_at as unix nanoseconds. Relation toggles never
// touch the recipes or users tables, so list ETags fold these numbers in to
// stay honest about the per-viewer flags they cover.
func relationStats(ctx context.Context, db *gorm.DB, model any, userID string) (count int64, latest int64, err error) {
	q := db.WithContext(ctx).Model(model).Where("user_id = ?", userID)

	if err = q.Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return count, row.CreatedAt.UnixNano(), nil
}

// FavoritesStats returns the user's favorites count and latest created_at.
func FavoritesStats(ctx context.Context, db *gorm.DB, userID string) (int64, int64, error) {
	return relationStats(ctx, db, &domain.Favorite{}, userID)
}

// CartStats returns the user's shopping cart count and latest created_at.
func CartStats(ctx context.Context, db *gorm.DB, userID string) (int64, int64, error) {
	return relationStats(ctx, db, &domain.ShoppingListItem{}, userID)
}

// SubscriptionsStats returns the user's subscription count and latest
// created_at.
func SubscriptionsStats(ctx context.Context, db *gorm.DB, userID string) (int64, int64, error) {
	return relationStats(ctx, db, &domain.Subscription{}, userID)
}
