// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the shopping-list aggregation query: one
// batched join from the user's cart rows through recipe lines to ingredient
// reference data, grouped and summed in the store.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// AggregatedIngredient is one consolidated shopping-list bucket. Buckets are
// keyed by the (name, measurement unit) pair rather than ingredient id, so
// two catalog rows that read the same collapse into one line on the list.
type AggregatedIngredient struct {
	Name            string `gorm:"column:name"`
	TotalAmount     int64  `gorm:"column:total_amount"`
	MeasurementUnit string `gorm:"column:measurement_unit"`
}

// AggregateShoppingList sums ingredient amounts across every recipe in the
// user's shopping cart. Rows come back grouped by (name, unit); ordering is
// applied by the service so collation stays out of SQL.
func AggregateShoppingList(ctx context.Context, db *gorm.DB, userID string) ([]AggregatedIngredient, error) {
	var out []AggregatedIngredient
	err := db.WithContext(ctx).Raw(`
		SELECT i.name AS name,
		       SUM(ri.amount) AS total_amount,
		       i.measurement_unit AS measurement_unit
		FROM shopping_list_items s
		JOIN recipe_ingredients ri ON ri.recipe_id = s.recipe_id
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE s.user_id = ?
		GROUP BY i.name, i.measurement_unit`, userID).
		Scan(&out).Error
	return out, err
}
