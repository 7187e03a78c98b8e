package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-recipe-backend/internal/domain"
	"github.com/tbourn/go-recipe-backend/internal/repo"
)

func newShoppingSvcDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("shopping_svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// cartWith seeds a user with the given recipes in their cart, each recipe
// built from the (ingredient, amount) lines.
func cartWith(t *testing.T, db *gorm.DB, recipes ...map[*domain.Ingredient]int) string {
	t.Helper()
	ctx := context.Background()

	u := &domain.User{ID: uuid.NewString(), Email: "u@example.com", Username: "u", PasswordHash: "h"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	for i, lines := range recipes {
		r := &domain.Recipe{ID: uuid.NewString(), Name: fmt.Sprintf("r%d", i), Text: "mix", CookingTime: 10, AuthorID: u.ID, CreatedAt: time.Now().UTC()}
		if err := repo.InsertRecipe(ctx, db, r); err != nil {
			t.Fatalf("seed recipe: %v", err)
		}
		batch := make([]domain.RecipeIngredient, 0, len(lines))
		for ing, amount := range lines {
			batch = append(batch, domain.RecipeIngredient{
				ID: uuid.NewString(), RecipeID: r.ID, IngredientID: ing.ID, Amount: amount,
			})
		}
		if err := repo.InsertRecipeLines(ctx, db, batch); err != nil {
			t.Fatalf("seed lines: %v", err)
		}
		if err := repo.AddShoppingListItem(ctx, db, u.ID, r.ID); err != nil {
			t.Fatalf("add to cart: %v", err)
		}
	}
	return u.ID
}

func TestShoppingListService_Consolidate(t *testing.T) {
	db := newShoppingSvcDB(t)
	svc := NewShoppingListService(db)

	flour := svcIngredient(t, db, "Мука", "г")
	sugarG := svcIngredient(t, db, "Сахар", "г")
	sugarPc := svcIngredient(t, db, "Сахар", "шт")
	uid := cartWith(t, db,
		map[*domain.Ingredient]int{flour: 200, sugarG: 50},
		map[*domain.Ingredient]int{flour: 100, sugarPc: 30},
	)

	items, err := svc.Consolidate(context.Background(), uid)
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 buckets, got %d: %+v", len(items), items)
	}

	// Sorted by name then unit: Мука before Сахар, г before шт.
	if items[0].Name != "Мука" || items[0].Amount != 300 || items[0].Unit != "г" {
		t.Fatalf("first bucket wrong: %+v", items[0])
	}
	if items[1].Name != "Сахар" || items[1].Amount != 50 || items[1].Unit != "г" {
		t.Fatalf("second bucket wrong: %+v", items[1])
	}
	if items[2].Name != "Сахар" || items[2].Amount != 30 || items[2].Unit != "шт" {
		t.Fatalf("third bucket wrong: %+v", items[2])
	}
}

func TestShoppingListService_Consolidate_EmptyCart(t *testing.T) {
	db := newShoppingSvcDB(t)
	svc := NewShoppingListService(db)
	uid := cartWith(t, db)

	items, err := svc.Consolidate(context.Background(), uid)
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("empty cart must yield an empty slice, got %#v", items)
	}
}

func TestShoppingListService_Consolidate_CollationOrder(t *testing.T) {
	db := newShoppingSvcDB(t)
	svc := NewShoppingListService(db)

	// Byte-wise UTF-8 order would put the ё variant after all of а..я; the
	// collator must keep these adjacent and alphabetical.
	a := svcIngredient(t, db, "ёлочная соль", "г")
	b := svcIngredient(t, db, "абрикос", "г")
	c := svcIngredient(t, db, "яблоко", "г")
	uid := cartWith(t, db, map[*domain.Ingredient]int{a: 1, b: 2, c: 3})

	items, err := svc.Consolidate(context.Background(), uid)
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(items))
	}
	if items[0].Name != "абрикос" || items[1].Name != "ёлочная соль" || items[2].Name != "яблоко" {
		t.Fatalf("collation order wrong: %q %q %q", items[0].Name, items[1].Name, items[2].Name)
	}
}
