// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the recipe
// aggregate: the recipe row, its ingredient lines, and tag associations.
//
// Writes that span the parent row and its lines are composed by the service
// layer inside a transaction; every function here accepts the handle it is
// given, which may be transaction-bound.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
)

// RecipeFilter narrows List/Count queries. Zero values mean "no filter".
type RecipeFilter struct {
	AuthorID    string   // only recipes by this author
	TagSlugs    []string // recipes carrying at least one of these tags
	FavoritedBy string   // only recipes favorited by this user
	InCartOf    string   // only recipes in this user's shopping cart
}

// InsertRecipe inserts the parent recipe row only. Lines and tag associations
// are written separately so the service can batch them in the same
// transaction.
func InsertRecipe(ctx context.Context, db *gorm.DB, r *domain.Recipe) error {
	return db.WithContext(ctx).Omit("Tags", "Ingredients", "Author").Create(r).Error
}

// UpdateRecipeRow rewrites the mutable scalar fields of a recipe. CreatedAt
// is deliberately not touched: the publication date is immutable.
func UpdateRecipeRow(ctx context.Context, db *gorm.DB, id string, name, text, image string, cookingTime int) error {
	res := db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":         name,
			"text":         text,
			"image":        image,
			"cooking_time": cookingTime,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// InsertRecipeLines bulk-inserts a line-item batch.
func InsertRecipeLines(ctx context.Context, db *gorm.DB, lines []domain.RecipeIngredient) error {
	if len(lines) == 0 {
		return nil
	}
	return db.WithContext(ctx).Omit("Recipe", "Ingredient").Create(&lines).Error
}

// DeleteRecipeLines removes every line item of a recipe. Used by the
// full-replacement update path before re-inserting the new set.
func DeleteRecipeLines(ctx context.Context, db *gorm.DB, recipeID string) error {
	return db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Delete(&domain.RecipeIngredient{}).Error
}

// ReplaceRecipeTags resets the recipe's tag associations to exactly the given
// set.
func ReplaceRecipeTags(ctx context.Context, db *gorm.DB, r *domain.Recipe, tags []domain.Tag) error {
	return db.WithContext(ctx).Model(r).Association("Tags").Replace(tags)
}

// DeleteRecipeCascade removes a recipe together with its owned line items,
// tag associations, and any favorite/cart rows referencing it. Explicit
// deletes are used so the cascade does not depend on the driver honoring
// foreign keys.
func DeleteRecipeCascade(ctx context.Context, db *gorm.DB, id string) error {
	h := db.WithContext(ctx)
	if err := h.Where("recipe_id = ?", id).Delete(&domain.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if err := h.Where("recipe_id = ?", id).Delete(&domain.Favorite{}).Error; err != nil {
		return err
	}
	if err := h.Where("recipe_id = ?", id).Delete(&domain.ShoppingListItem{}).Error; err != nil {
		return err
	}
	if err := h.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
		return err
	}
	res := h.Where("id = ?", id).Delete(&domain.Recipe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// orderedLines sorts an ingredient-line preload by ingredient name, with the
// ingredient id as tiebreak, so line order is stable across drivers instead
// of whatever the engine returns. The explicit select keeps the joined
// ingredients columns from clobbering the line's own id.
func orderedLines(db *gorm.DB) *gorm.DB {
	return db.
		Select("recipe_ingredients.*").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Order("ingredients.name ASC, recipe_ingredients.ingredient_id ASC")
}

// GetRecipe fetches one recipe with author, tags, and lines (including each
// line's ingredient) eagerly loaded.
func GetRecipe(ctx context.Context, db *gorm.DB, id string) (*domain.Recipe, error) {
	var r domain.Recipe
	err := db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients", orderedLines).
		Preload("Ingredients.Ingredient").
		Where("id = ?", id).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// filteredRecipes builds the filtered base query shared by Count and List.
func filteredRecipes(ctx context.Context, db *gorm.DB, f RecipeFilter) *gorm.DB {
	q := db.WithContext(ctx).Model(&domain.Recipe{})
	if f.AuthorID != "" {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		q = q.Where("recipes.id IN (?)", db.
			Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs))
	}
	if f.FavoritedBy != "" {
		q = q.Where("recipes.id IN (?)", db.
			Table("favorites").
			Select("favorites.recipe_id").
			Where("favorites.user_id = ?", f.FavoritedBy))
	}
	if f.InCartOf != "" {
		q = q.Where("recipes.id IN (?)", db.
			Table("shopping_list_items").
			Select("shopping_list_items.recipe_id").
			Where("shopping_list_items.user_id = ?", f.InCartOf))
	}
	return q
}

// CountRecipes returns the number of recipes matching the filter.
func CountRecipes(ctx context.Context, db *gorm.DB, f RecipeFilter) (int64, error) {
	var total int64
	err := filteredRecipes(ctx, db, f).Count(&total).Error
	return total, err
}

// ListRecipesPage returns a page of recipes matching the filter, newest
// first, with author, tags, and lines eagerly loaded in batched queries so a
// page costs a fixed number of round trips.
func ListRecipesPage(ctx context.Context, db *gorm.DB, f RecipeFilter, offset, limit int) ([]domain.Recipe, error) {
	var out []domain.Recipe
	err := filteredRecipes(ctx, db, f).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients", orderedLines).
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at DESC, recipes.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListRecipesByAuthor returns an author's recipes, newest first, optionally
// capped. Used by the subscription views, which only need the short card.
func ListRecipesByAuthor(ctx context.Context, db *gorm.DB, authorID string, limit int) ([]domain.Recipe, error) {
	q := db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.Recipe
	err := q.Find(&out).Error
	return out, err
}

// CountRecipesByAuthor returns how many recipes an author has published.
func CountRecipesByAuthor(ctx context.Context, db *gorm.DB, authorID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&total).Error
	return total, err
}
