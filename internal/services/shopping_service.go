// Package services – ShoppingListService
//
// This file implements the shopping-list consolidator: every recipe in the
// user's cart is joined to its ingredient lines and amounts are summed per
// (ingredient name, measurement unit) bucket. The bucket key is deliberately
// the name+unit pair rather than the ingredient id, so catalog rows that read
// the same collapse into one line on the printed list.
package services

import (
	"context"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/export"
	"github.com/tbourn/go-recipe-backend/internal/repo"
)

// ShoppingListService produces the consolidated shopping list for a user.
type ShoppingListService struct {
	// DB is the GORM handle used for the aggregation query.
	DB *gorm.DB

	// collator orders ingredient names; the catalog is Russian-language, so
	// a collation-aware sort keeps е/ё and case from scattering the list.
	collator *collate.Collator
}

// NewShoppingListService constructs a ShoppingListService.
func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{
		DB:       db,
		collator: collate.New(language.Russian),
	}
}

// Consolidate aggregates the user's cart into one row per (name, unit)
// bucket, sorted by ingredient name, then unit. An empty cart yields an empty
// slice, not an error.
func (s *ShoppingListService) Consolidate(ctx context.Context, userID string) ([]export.Item, error) {
	rows, err := repo.AggregateShoppingList(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	items := make([]export.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, export.Item{
			Name:   r.Name,
			Amount: r.TotalAmount,
			Unit:   r.MeasurementUnit,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if c := s.collator.CompareString(items[i].Name, items[j].Name); c != 0 {
			return c < 0
		}
		return s.collator.CompareString(items[i].Unit, items[j].Unit) < 0
	})
	return items, nil
}
