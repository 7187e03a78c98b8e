// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the user-scoped
// relation tables: favorites and shopping list entries. Both are unique
// (user, recipe) pairs; the unique index is the single source of truth for
// duplicates, so Add never pre-checks before inserting.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
)

// AddFavorite inserts a (user, recipe) favorite pair. A duplicate surfaces as
// the store's unique-constraint error.
func AddFavorite(ctx context.Context, db *gorm.DB, userID, recipeID string) error {
	f := &domain.Favorite{
		ID:        uuid.NewString(),
		UserID:    userID,
		RecipeID:  recipeID,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(f).Error
}

// RemoveFavorite deletes a favorite pair, reporting gorm.ErrRecordNotFound
// when the pair does not exist.
func RemoveFavorite(ctx context.Context, db *gorm.DB, userID, recipeID string) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&domain.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FavoriteExists reports whether the user has favorited the recipe.
func FavoriteExists(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&n).Error
	return n > 0, err
}

// FavoriteRecipeIDs returns, out of the candidate recipe ids, the subset the
// user has favorited. One query regardless of candidate count; list reads use
// it to annotate a whole page at once.
func FavoriteRecipeIDs(ctx context.Context, db *gorm.DB, userID string, recipeIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(recipeIDs))
	if userID == "" || len(recipeIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// AddShoppingListItem inserts a (user, recipe) cart pair. A duplicate
// surfaces as the store's unique-constraint error.
func AddShoppingListItem(ctx context.Context, db *gorm.DB, userID, recipeID string) error {
	s := &domain.ShoppingListItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		RecipeID:  recipeID,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(s).Error
}

// RemoveShoppingListItem deletes a cart pair, reporting
// gorm.ErrRecordNotFound when the pair does not exist.
func RemoveShoppingListItem(ctx context.Context, db *gorm.DB, userID, recipeID string) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&domain.ShoppingListItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ShoppingListItemExists reports whether the recipe is in the user's cart.
func ShoppingListItemExists(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ShoppingListItem{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&n).Error
	return n > 0, err
}

// CartRecipeIDs returns, out of the candidate recipe ids, the subset in the
// user's shopping cart. One query regardless of candidate count.
func CartRecipeIDs(ctx context.Context, db *gorm.DB, userID string, recipeIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(recipeIDs))
	if userID == "" || len(recipeIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.ShoppingListItem{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
