// Package services – RelationService
//
// This file implements the toggleable user-scoped relations: favorites,
// shopping cart entries, and author subscriptions. Each relation is a unique
// pair in the store; Add relies on the unique constraint to surface
// duplicates (no pre-check-then-insert, so two concurrent Adds race safely)
// and Remove reports the missing pair as a not-found error.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
	"github.com/tbourn/go-recipe-backend/internal/repo"
)

// RelationService implements the favorite, shopping cart, and subscription
// use-cases.
type RelationService struct {
	// DB is the database handle used for all relation operations.
	DB *gorm.DB
}

// NewRelationService constructs a RelationService.
func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{DB: db}
}

// recipeExists verifies the target recipe before touching a relation, so a
// missing recipe maps to not-found rather than a dangling pair.
func (s *RelationService) recipeExists(ctx context.Context, recipeID string) error {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&domain.Recipe{}).Where("id = ?", recipeID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// AddFavorite marks the recipe as a favorite of the user. A pair that already
// exists yields ErrAlreadyFavorited.
func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID string) error {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return err
	}
	if err := repo.AddFavorite(ctx, s.DB, userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
			return ErrAlreadyFavorited
		}
		return err
	}
	return nil
}

// RemoveFavorite deletes the favorite pair, yielding ErrFavoriteNotFound when
// it does not exist.
func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID string) error {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return err
	}
	if err := repo.RemoveFavorite(ctx, s.DB, userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFavoriteNotFound
		}
		return err
	}
	return nil
}

// AddToCart puts the recipe in the user's shopping cart. A pair that already
// exists yields ErrAlreadyInCart.
func (s *RelationService) AddToCart(ctx context.Context, userID, recipeID string) error {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return err
	}
	if err := repo.AddShoppingListItem(ctx, s.DB, userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
			return ErrAlreadyInCart
		}
		return err
	}
	return nil
}

// RemoveFromCart deletes the cart pair, yielding ErrNotInCart when it does
// not exist.
func (s *RelationService) RemoveFromCart(ctx context.Context, userID, recipeID string) error {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return err
	}
	if err := repo.RemoveShoppingListItem(ctx, s.DB, userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotInCart
		}
		return err
	}
	return nil
}

// Subscribe adds the (user, author) pair. Self-subscription always fails with
// ErrSelfSubscribe; the store's check constraint backs the same invariant for
// any write path that bypasses this service. A duplicate pair yields
// ErrAlreadySubscribed; an unknown author yields ErrUserNotFound.
func (s *RelationService) Subscribe(ctx context.Context, userID, authorID string) error {
	if userID == authorID {
		return ErrSelfSubscribe
	}
	if _, err := repo.GetUser(ctx, s.DB, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := repo.AddSubscription(ctx, s.DB, userID, authorID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err):
			return ErrAlreadySubscribed
		case isCheckViolation(err):
			return ErrSelfSubscribe
		}
		return err
	}
	return nil
}

// Unsubscribe deletes the (user, author) pair, yielding ErrNotSubscribed when
// it does not exist and ErrUserNotFound for an unknown author.
func (s *RelationService) Unsubscribe(ctx context.Context, userID, authorID string) error {
	if _, err := repo.GetUser(ctx, s.DB, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := repo.RemoveSubscription(ctx, s.DB, userID, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotSubscribed
		}
		return err
	}
	return nil
}

// IsSubscribed reports whether userID follows authorID. Anonymous viewers
// (empty userID) are never subscribed.
func (s *RelationService) IsSubscribed(ctx context.Context, userID, authorID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return repo.SubscriptionExists(ctx, s.DB, userID, authorID)
}
