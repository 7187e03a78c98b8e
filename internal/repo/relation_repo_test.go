package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-recipe-backend/internal/domain"
)

func newRelationRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("relation_repo_test_%d.db", time.Now().UnixNano()))
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
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func relationFixture(t *testing.T, db *gorm.DB) (userID, recipeID string) {
	t.Helper()
	u := &domain.User{ID: uuid.NewString(), Email: "u@example.com", Username: "u", PasswordHash: "h"}
	a := &domain.User{ID: uuid.NewString(), Email: "a@example.com", Username: "a", PasswordHash: "h"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("seed author: %v", err)
	}
	r := &domain.Recipe{ID: uuid.NewString(), Name: "Омлет", Text: "whisk", CookingTime: 10, AuthorID: a.ID, CreatedAt: time.Now().UTC()}
	if err := InsertRecipe(context.Background(), db, r); err != nil {
		t.Fatalf("seed recipe: %v", err)
	}
	return u.ID, r.ID
}

func TestFavorite_PairLifecycle(t *testing.T) {
	db := newRelationRepoDB(t)
	ctx := context.Background()
	uid, rid := relationFixture(t, db)

	if err := AddFavorite(ctx, db, uid, rid); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if err := AddFavorite(ctx, db, uid, rid); err == nil {
		t.Fatalf("expected unique pair violation on second add")
	}

	exists, err := FavoriteExists(ctx, db, uid, rid)
	if err != nil || !exists {
		t.Fatalf("FavoriteExists: exists=%v err=%v", exists, err)
	}

	if err := RemoveFavorite(ctx, db, uid, rid); err != nil {
		t.Fatalf("RemoveFavorite: %v", err)
	}
	if err := RemoveFavorite(ctx, db, uid, rid); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound on second remove, got %v", err)
	}
}

func TestShoppingListItem_PairLifecycle(t *testing.T) {
	db := newRelationRepoDB(t)
	ctx := context.Background()
	uid, rid := relationFixture(t, db)

	if err := AddShoppingListItem(ctx, db, uid, rid); err != nil {
		t.Fatalf("AddShoppingListItem: %v", err)
	}
	if err := AddShoppingListItem(ctx, db, uid, rid); err == nil {
		t.Fatalf("expected unique pair violation on second add")
	}

	exists, err := ShoppingListItemExists(ctx, db, uid, rid)
	if err != nil || !exists {
		t.Fatalf("ShoppingListItemExists: exists=%v err=%v", exists, err)
	}

	if err := RemoveShoppingListItem(ctx, db, uid, rid); err != nil {
		t.Fatalf("RemoveShoppingListItem: %v", err)
	}
	if err := RemoveShoppingListItem(ctx, db, uid, rid); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound on second remove, got %v", err)
	}
}

func TestFavoriteRecipeIDs_BatchedMap(t *testing.T) {
	db := newRelationRepoDB(t)
	ctx := context.Background()
	uid, rid := relationFixture(t, db)

	other := &domain.Recipe{ID: uuid.NewString(), Name: "Блины", Text: "fry", CookingTime: 20, AuthorID: uid, CreatedAt: time.Now().UTC()}
	if err := InsertRecipe(ctx, db, other); err != nil {
		t.Fatalf("seed second recipe: %v", err)
	}
	if err := AddFavorite(ctx, db, uid, rid); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}

	m, err := FavoriteRecipeIDs(ctx, db, uid, []string{rid, other.ID})
	if err != nil {
		t.Fatalf("FavoriteRecipeIDs: %v", err)
	}
	if !m[rid] || m[other.ID] {
		t.Fatalf("unexpected map: %+v", m)
	}

	// Anonymous viewer never has favorites.
	m, err = FavoriteRecipeIDs(ctx, db, "", []string{rid})
	if err != nil {
		t.Fatalf("FavoriteRecipeIDs anonymous: %v", err)
	}
	if m[rid] {
		t.Fatalf("anonymous favorites should be empty: %+v", m)
	}
}

func TestCartRecipeIDs_BatchedMap(t *testing.T) {
	db := newRelationRepoDB(t)
	ctx := context.Background()
	uid, rid := relationFixture(t, db)

	if err := AddShoppingListItem(ctx, db, uid, rid); err != nil {
		t.Fatalf("AddShoppingListItem: %v", err)
	}
	m, err := CartRecipeIDs(ctx, db, uid, []string{rid, uuid.NewString()})
	if err != nil {
		t.Fatalf("CartRecipeIDs: %v", err)
	}
	if !m[rid] || len(m) != 1 {
		t.Fatalf("unexpected map: %+v", m)
	}
}
