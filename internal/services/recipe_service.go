// Package services – RecipeService
//
// This file implements the RecipeService, which owns the recipe aggregate:
// the recipe row, its quantified ingredient lines, and its tag associations.
// Creates and updates validate value bounds and line uniqueness, then write
// the parent row and the full line-item set in one transaction. Updates
// replace the line set wholesale (delete + re-insert), never diff it.
//
// Service-level errors (e.g. ErrRecipeNotFound, ErrNotRecipeAuthor) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
	"github.com/tbourn/go-recipe-backend/internal/repo"
)

// IngredientLineInput is one submitted line item: an ingredient reference and
// a quantity.
type IngredientLineInput struct {
	IngredientID string
	Amount       int
}

// RecipeInput carries the writable fields of a recipe for Create and Update.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	TagIDs      []string
	Ingredients []IngredientLineInput
}

// RecipeListFilter narrows List results. Favorited/InCart apply relative to
// the viewer and are ignored for anonymous callers.
type RecipeListFilter struct {
	AuthorID  string
	TagSlugs  []string
	Favorited bool
	InCart    bool
}

// RecipeService provides create/read/update/delete operations on the recipe
// aggregate plus the list view with viewer-relative annotations.
type RecipeService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// CookingTimeMin/Max bound the cooking time in minutes, inclusive.
	CookingTimeMin int
	CookingTimeMax int
	// AmountMin/Max bound each line item amount, inclusive. Configured
	// separately from the cooking time bounds even when the values coincide.
	AmountMin int
	AmountMax int
}

// NewRecipeService constructs a RecipeService with the default value bounds.
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{
		DB:             db,
		CookingTimeMin: 1,
		CookingTimeMax: 32000,
		AmountMin:      1,
		AmountMax:      32000,
	}
}

// validate checks bounds, required fields, and line-set integrity. It only
// inspects the input; referential checks run inside the write transaction.
func (s *RecipeService) validate(in RecipeInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name", "must not be empty")
	}
	if strings.TrimSpace(in.Text) == "" {
		return NewValidationError("text", "must not be empty")
	}
	if in.CookingTime < s.CookingTimeMin || in.CookingTime > s.CookingTimeMax {
		return NewValidationError("cooking_time",
			fmt.Sprintf("must be between %d and %d", s.CookingTimeMin, s.CookingTimeMax))
	}
	if len(in.Ingredients) == 0 {
		return NewValidationError("ingredients", "at least one ingredient is required")
	}
	seen := make(map[string]struct{}, len(in.Ingredients))
	for _, li := range in.Ingredients {
		if li.IngredientID == "" {
			return NewValidationError("ingredients", "ingredient id must not be empty")
		}
		if _, dup := seen[li.IngredientID]; dup {
			return NewValidationError("ingredients", "duplicate ingredient in recipe")
		}
		seen[li.IngredientID] = struct{}{}
		if li.Amount < s.AmountMin || li.Amount > s.AmountMax {
			return NewValidationError("amount",
				fmt.Sprintf("must be between %d and %d", s.AmountMin, s.AmountMax))
		}
	}
	return nil
}

// resolveRefs confirms every referenced ingredient exists and loads the tag
// set, both in single batched queries.
func (s *RecipeService) resolveRefs(ctx context.Context, tx *gorm.DB, in RecipeInput) ([]domain.Tag, error) {
	ids := make([]string, 0, len(in.Ingredients))
	for _, li := range in.Ingredients {
		ids = append(ids, li.IngredientID)
	}
	n, err := repo.CountIngredientsByIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	if n != int64(len(ids)) {
		return nil, NewValidationError("ingredients", "unknown ingredient id")
	}

	tags, err := repo.ListTagsByIDs(ctx, tx, in.TagIDs)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(in.TagIDs) {
		return nil, NewValidationError("tags", "unknown tag id")
	}
	return tags, nil
}

func buildLines(recipeID string, in RecipeInput) []domain.RecipeIngredient {
	lines := make([]domain.RecipeIngredient, 0, len(in.Ingredients))
	for _, li := range in.Ingredients {
		lines = append(lines, domain.RecipeIngredient{
			ID:           uuid.NewString(),
			RecipeID:     recipeID,
			IngredientID: li.IngredientID,
			Amount:       li.Amount,
		})
	}
	return lines
}

// Create inserts a new recipe owned by authorID together with its line items
// and tag associations, atomically. On success it returns the read model a
// subsequent GET would produce for the author.
func (s *RecipeService) Create(ctx context.Context, authorID string, in RecipeInput) (*RecipeView, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := s.resolveRefs(ctx, tx, in)
		if err != nil {
			return err
		}
		r := &domain.Recipe{
			ID:          id,
			Name:        in.Name,
			Text:        in.Text,
			CookingTime: in.CookingTime,
			AuthorID:    authorID,
			Image:       in.Image,
			CreatedAt:   time.Now().UTC(),
		}
		if err := repo.InsertRecipe(ctx, tx, r); err != nil {
			return err
		}
		if err := repo.InsertRecipeLines(ctx, tx, buildLines(id, in)); err != nil {
			return err
		}
		if len(tags) > 0 {
			if err := repo.ReplaceRecipeTags(ctx, tx, r, tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, authorID, id)
}

// Update rewrites a recipe the caller owns. The entire line-item set is
// replaced: existing lines are deleted and the submitted set is re-inserted
// in the same transaction, so a partial write can never survive a crash.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID string, in RecipeInput) (*RecipeView, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r domain.Recipe
		if err := tx.Where("id = ?", recipeID).First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}
		if r.AuthorID != userID {
			return ErrNotRecipeAuthor
		}

		tags, err := s.resolveRefs(ctx, tx, in)
		if err != nil {
			return err
		}
		if err := repo.UpdateRecipeRow(ctx, tx, recipeID, in.Name, in.Text, in.Image, in.CookingTime); err != nil {
			return err
		}
		if err := repo.DeleteRecipeLines(ctx, tx, recipeID); err != nil {
			return err
		}
		if err := repo.InsertRecipeLines(ctx, tx, buildLines(recipeID, in)); err != nil {
			return err
		}
		return repo.ReplaceRecipeTags(ctx, tx, &r, tags)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, recipeID)
}

// Delete removes a recipe the caller owns, cascading line items and any
// favorite/cart rows referencing it.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r domain.Recipe
		if err := tx.Where("id = ?", recipeID).First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}
		if r.AuthorID != userID {
			return ErrNotRecipeAuthor
		}
		return repo.DeleteRecipeCascade(ctx, tx, recipeID)
	})
}

// Get returns the read model of one recipe for the given viewer. An empty
// viewerID means anonymous: relation flags come back false, never an error.
func (s *RecipeService) Get(ctx context.Context, viewerID, recipeID string) (*RecipeView, error) {
	r, err := repo.GetRecipe(ctx, s.DB, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	var favorited, inCart, subscribed bool
	if viewerID != "" {
		if favorited, err = repo.FavoriteExists(ctx, s.DB, viewerID, recipeID); err != nil {
			return nil, err
		}
		if inCart, err = repo.ShoppingListItemExists(ctx, s.DB, viewerID, recipeID); err != nil {
			return nil, err
		}
		if subscribed, err = repo.SubscriptionExists(ctx, s.DB, viewerID, r.AuthorID); err != nil {
			return nil, err
		}
	}
	v := toRecipeView(r, favorited, inCart, subscribed)
	return &v, nil
}

// List returns a page of recipe read models matching the filter, newest
// first, plus the total count. Relation flags are resolved for the whole page
// in three batched queries; the favorited/in-cart filters are ignored for
// anonymous viewers.
func (s *RecipeService) List(ctx context.Context, viewerID string, f RecipeListFilter, page, pageSize int) ([]RecipeView, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	rf := repo.RecipeFilter{
		AuthorID: f.AuthorID,
		TagSlugs: f.TagSlugs,
	}
	if viewerID != "" {
		if f.Favorited {
			rf.FavoritedBy = viewerID
		}
		if f.InCart {
			rf.InCartOf = viewerID
		}
	}

	total, err := repo.CountRecipes(ctx, s.DB, rf)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []RecipeView{}, 0, nil
	}

	items, err := repo.ListRecipesPage(ctx, s.DB, rf, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}

	recipeIDs := make([]string, 0, len(items))
	authorIDs := make([]string, 0, len(items))
	for i := range items {
		recipeIDs = append(recipeIDs, items[i].ID)
		authorIDs = append(authorIDs, items[i].AuthorID)
	}
	favs, err := repo.FavoriteRecipeIDs(ctx, s.DB, viewerID, recipeIDs)
	if err != nil {
		return nil, 0, err
	}
	carts, err := repo.CartRecipeIDs(ctx, s.DB, viewerID, recipeIDs)
	if err != nil {
		return nil, 0, err
	}
	subs, err := repo.SubscribedAuthorIDs(ctx, s.DB, viewerID, authorIDs)
	if err != nil {
		return nil, 0, err
	}

	views := make([]RecipeView, 0, len(items))
	for i := range items {
		r := &items[i]
		views = append(views, toRecipeView(r, favs[r.ID], carts[r.ID], subs[r.AuthorID]))
	}
	return views, total, nil
}

// RecipeListStamp summarizes everything a cached recipe list depends on for
/// one viewer: the filtered rows plus the viewer's favorite and cart state.
// The relation numbers matter because the list body embeds is_favorited and
// is_in_shopping_cart, which change on a toggle even though no recipe row is
// written.
type RecipeListStamp struct {
	Count      int64
	Latest     int64
	FavCount   int64
	FavLatest  int64
	CartCount  int64
	CartLatest int64
}

// ListStamp computes the change-detection stamp behind the recipe list ETag.
// The relation fields stay zero for anonymous viewers.
func (s *RecipeService) ListStamp(ctx context.Context, viewerID string, f RecipeListFilter) (RecipeListStamp, error) {
	rf := repo.RecipeFilter{
		AuthorID: f.AuthorID,
		TagSlugs: f.TagSlugs,
	}
	if viewerID != "" {
		if f.Favorited {
			rf.FavoritedBy = viewerID
		}
		if f.InCart {
			rf.InCartOf = viewerID
		}
	}

	var st RecipeListStamp
	count, maxTS, err := repo.RecipesStats(ctx, s.DB, rf)
	if err != nil {
		return st, err
	}
	st.Count = count
	if maxTS != nil {
		st.Latest = maxTS.UnixNano()
	}
	if viewerID == "" {
		return st, nil
	}
	if st.FavCount, st.FavLatest, err = repo.FavoritesStats(ctx, s.DB, viewerID); err != nil {
		return st, err
	}
	if st.CartCount, st.CartLatest, err = repo.CartStats(ctx, s.DB, viewerID); err != nil {
		return st, err
	}
	return st, nil
}

// Card returns the short card shape of a recipe, used by the relation
// endpoints' confirmation responses.
func (s *RecipeService) Card(ctx context.Context, recipeID string) (*RecipeCard, error) {
	var r domain.Recipe
	if err := s.DB.WithContext(ctx).Where("id = ?", recipeID).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	c := toRecipeCard(&r)
	return &c, nil
}
