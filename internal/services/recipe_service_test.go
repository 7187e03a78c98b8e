package services

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
	"github.com/tbourn/go-recipe-backend/internal/repo"
)

func newRecipeSvcDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("recipe_svc_test_%d.db", time.Now().UnixNano()))
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

func svcUser(t *testing.T, db *gorm.DB, email, username string) *domain.User {
	t.Helper()
	u := &domain.User{ID: uuid.NewString(), Email: email, Username: username, PasswordHash: "h"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func svcIngredient(t *testing.T, db *gorm.DB, name, unit string) *domain.Ingredient {
	t.Helper()
	ing := &domain.Ingredient{ID: uuid.NewString(), Name: name, MeasurementUnit: unit}
	if err := db.Create(ing).Error; err != nil {
		t.Fatalf("seed ingredient: %v", err)
	}
	return ing
}

func svcTag(t *testing.T, db *gorm.DB, name, slug string) *domain.Tag {
	t.Helper()
	tag := &domain.Tag{ID: uuid.NewString(), Name: name, Color: "#49B64E", Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("seed tag: %v", err)
	}
	return tag
}

func validInput(ing *domain.Ingredient) RecipeInput {
	return RecipeInput{
		Name:        "Каша",
		Text:        "Варить 10 минут",
		CookingTime: 10,
		Ingredients: []IngredientLineInput{{IngredientID: ing.ID, Amount: 100}},
	}
}

func TestRecipeService_Validate_CookingTimeBoundsInclusive(t *testing.T) {
	db := newRecipeSvcDB(t)
	svc := NewRecipeService(db)
	author := svcUser(t, db, "a@example.com", "author")
	ing := svcIngredient(t, db, "Овсянка", "г")

	cases := []struct {
		ct     int
		wantOK bool
	}{
		{0, false},
		{1, true},
		{32000, true},
		{32001, false},
	}
	for _, tc := range cases {
		in := validInput(ing)
		in.CookingTime = tc.ct
		_, err := svc.Create(context.Background(), author.ID, in)
		if tc.wantOK && err != nil {
			t.Fatalf("cooking_time=%d: unexpected error %v", tc.ct, err)
		}
		if !tc.wantOK {
			if _, ok := AsValidation(err); !ok {
				t.Fatalf("cooking_time=%d: expected validation error, got %v", tc.ct, err)
			}
		}
	}
}

func TestRecipeService_Validate_AmountBoundsInclusive(t *testing.T) {
	db := newRecipeSvcDB(t)
	svc := NewRecipeService(db)
	author := svcUser(t, db, "a@example.com", "author")
	ing := svcIngredient(t, db, "Сахар", "г")

	for _, amount := range []int{1, 32000} {
		in := validInput(ing)
		in.Ingredients[0].Amount = amount
		if _, err := svc.Create(context.Background(), author.ID, in); err != nil {
			t.Fatalf("amount=%d should be accepted: %v", amount, err)
		}
	}
	for _, amount := range []int{0, 32001} {
		in := validInput(ing)
		in.Ingredients[0].Amount = amount
		_, err := svc.Create(context.Background(), author.ID, in)
		if _, ok := AsValidation(err); !ok {
			t.Fatalf("amount=%d: expected validation error, got %v", amount, err)
		}
	}
}

func TestRecipeService_Validate_Lines(t *testing.T) {
	db := newRecipeSvcDB(t)
	svc := NewRecipeService(db)
	author := svcUser(t, db, "a@example.com", "author")
	ing := svcIngredient(t, db, "Мука", "г")

	in := validInput(ing)
	in.Ingredients = nil
	if _, err := svc.Create(context.Background(), author.ID, in); err == nil {
		t.Fatalf("expected error for empty line set")
	}

	in = validInput(ing)
	in.Ingredients = append(in.Ingredients, IngredientLineInput{IngredientID: ing.ID, Amount: 5})
	_, err := svc.Create(context.Background(), author.ID, in)
	if _, ok := AsValidation(err); !ok {
		t.Fatalf("expected validation error for duplicate ingredient, got %v", err)
	}

	in = validInput(ing)
	in.Ingredients[0].IngredientID = uuid.NewString()
	_, err = svc.Create(context.Background(), author.ID, in)
	if _, ok := AsValidation(err); !ok {
		t.Fatalf("expected validation error for unknown ingredient, got %v", err)
	}
}

func TestRecipeService_Create_UnknownTag(t *testing.T) {
	db := newRecipeSvcDB(t)
	svc := NewRecipeService(db)
	author := svcUser(t, db, "a@example.com", "author")
	ing := svcIngredient(t, db, "Мука", "г")

	in := validInput(ing)
	in.TagIDs = []string{uuid.NewString()}
	_, err := svc.Create(context.Background(), author.ID, in)
	if _, ok := AsValidation(err); !ok {
		t.Fatalf("expected validation error for unknown tag, got %v", err)
	}

	// No partial write may survive the failed transaction.
	var n int64
	db.Model(&domain.Recipe{}).Count(&n)
	if n != 0 {
		t.Fatalf("failed create left %d recipe rows behind", n)
	}
}

func TestRecipeService_Create_ReturnsReadModel(t *testing.T) {
	db := newRecipeSvcDB(t)
	svc := NewRecipeService(db)
	author := svcUser(t, db, "a@example.com", "author")
	ing := svcIngredient(t, db, "Мука", "г")
	tag := svcTag(t, db, "Завтрак", "breakfast")

	in := validInput(ing)
	in.TagIDs = []string{tag.ID}
	view, err := svc.Create(context.Background(), author.ID, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if view.ID == "" || view.Name != "Каша" || view.Author.Username != "author" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if len(view.Tags) != 1 || view.Tags[0].Slug != "breakfast" {
		t.Fatalf("tags missing from view: %+v", view.Tags)
	}
	if len(view.Ingredients) != 1 || view.Ingredients[0].Name != "Мука" || view.Ingredients[0].Amount != 100 {
		t.Fatalf("lines missing from view: %+v", view.Ingredients)
	}
	if view.IsFavorited || view.IsInShoppingCart {
		t.Fatalf("fresh recipe must not carry relation flags: %+v", view)
	}
}

func TestRecipeService_Update_ReplacesLineSetWholesale(t *testing.T) {
	db := newRecipeSvcDB(t)
	svc := NewRecipeService(db)
	ctx := context.Background()
	author := svcUser(t, db, "a@example.com", "author")
	a := svcIngredient(t, db, "Мука", "г")
	b := svcIngredient(t, db, "Сахар", "г")

	in := validInput(a)
	in.Ingredients = []IngredientLineInput{
		{IngredientID: a.ID, Amount: 2},
		{IngredientID: b.ID, Amount: 3},
	}
	created, err := svc.Create(ctx, author.ID, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	upd := validInput(a)
	upd.Ingredients = []IngredientLineInput{{IngredientID: a.ID, Amount: 5}}
	view, err := svc.Update(ctx, author.ID, created.ID, upd)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(view.Ingredients) != 1 || view.Ingredients[0].Name != "Мука" || view.Ingredients[0].Amount != 5 {
		t.Fatalf("line set not replaced: %+v", view.Ingredients)
	}

	var n int64
	db.Model(&domain.RecipeIngredient{}).Where("recipe_id = ?", created.ID).Count(&n)
	if n != 1 {
		t.Fatalf("expected exactly 1 stored line after replacement, got %d", n)
	}
}

func TestRecipeService_Update_AuthorOnly(t *testing.T) {
	db := newRecipeSvcDB(t)
	svc := NewRecipeService(db)
	ctx := context.Background()
	author := svcUser(t, db, "a@example.com", "author")
	intruder := svcUser(t, db, "i@example.com", "intruder")
	ing := svcIngredient(t, db, "Мука", "г")

	created, err := svc.Create(ctx, author.ID, validInput(ing))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Update(ctx, intruder.ID, created.ID, validInput(ing)); !errors.Is(err, ErrNotRecipeAuthor) {
		t.Fatalf("expected ErrNotRecipeAuthor, got %v", err)
	}
	if _, err := svc.Update(ctx, author.ID, uuid.NewString(), validInput(ing)); !errors.Is(err, ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound, got %v", err)
	}
}

func TestRecipeService_Delete_AuthorOnlyAndCascade(t *testing.T) {
	db := newRecipeSvcDB(t)
	svc := NewRecipeService(db)
	ctx := context.Background()
	author := svcUser(t, db, "a@example.com", "author")
	intruder := svcUser(t, db, "i@example.com", "intruder")
	ing := svcIngredient(t, db, "Мука", "г")

	created, err := svc.Create(ctx, author.ID, validInput(ing))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.AddFavorite(ctx, db, intruder.ID, created.ID); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}

	if err := svc.Delete(ctx, intruder.ID, created.ID); !errors.Is(err, ErrNotRecipeAuthor) {
		t.Fatalf("expected ErrNotRecipeAuthor, got %v", err)
	}
	if err := svc.Delete(ctx, author.ID, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, "", created.ID); !errors.Is(err, ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound after delete, got %v", err)
	}
	var n int64
	db.Model(&domain.Favorite{}).Where("recipe_id = ?", created.ID).Count(&n)
	if n != 0 {
		t.Fatalf("favorites survived delete: %d", n)
	}
}

func TestRecipeService_Get_ViewerFlags(t *testing.T) {
	db := newRecipeSvcDB(t)
	svc := NewRecipeService(db)
	ctx := context.Background()
	author := svcUser(t, db, "a@example.com", "author")
	fan := svcUser(t, db, "f@example.com", "fan")
	ing := svcIngredient(t, db, "Мука", "г")

	created, err := svc.Create(ctx, author.ID, validInput(ing))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.AddFavorite(ctx, db, fan.ID, created.ID); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if err := repo.AddSubscription(ctx, db, fan.ID, author.ID); err != nil {
		t.Fatalf("AddSubscription: %v", err)
	}

	got, err := svc.Get(ctx, fan.ID, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.IsFavorited || got.IsInShoppingCart {
		t.Fatalf("viewer flags wrong: %+v", got)
	}
	if !got.Author.IsSubscribed {
		t.Fatalf("author subscription flag missing: %+v", got.Author)
	}

	// Anonymous viewer: all flags false, never an error.
	anon, err := svc.Get(ctx, "", created.ID)
	if err != nil {
		t.Fatalf("Get anonymous: %v", err)
	}
	if anon.IsFavorited || anon.IsInShoppingCart || anon.Author.IsSubscribed {
		t.Fatalf("anonymous flags must be false: %+v", anon)
	}
}

func TestRecipeService_List_AnonymousIgnoresViewerFilters(t *testing.T) {
	db := newRecipeSvcDB(t)
	svc := NewRecipeService(db)
	ctx := context.Background()
	author := svcUser(t, db, "a@example.com", "author")
	ing := svcIngredient(t, db, "Мука", "г")

	if _, err := svc.Create(ctx, author.ID, validInput(ing)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	views, total, err := svc.List(ctx, "", RecipeListFilter{Favorited: true, InCart: true}, 1, 20)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(views) != 1 {
		t.Fatalf("anonymous viewer filters must be ignored: total=%d len=%d", total, len(views))
	}
}

func TestRecipeService_List_ViewerRelativeFilters(t *testing.T) {
	db := newRecipeSvcDB(t)
	svc := NewRecipeService(db)
	ctx := context.Background()
	author := svcUser(t, db, "a@example.com", "author")
	fan := svcUser(t, db, "f@example.com", "fan")
	ing := svcIngredient(t, db, "Мука", "г")

	first, err := svc.Create(ctx, author.ID, validInput(ing))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second := validInput(ing)
	second.Name = "Хлеб"
	if _, err := svc.Create(ctx, author.ID, second); err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if err := repo.AddFavorite(ctx, db, fan.ID, first.ID); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}

	views, total, err := svc.List(ctx, fan.ID, RecipeListFilter{Favorited: true}, 1, 20)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(views) != 1 || views[0].ID != first.ID || !views[0].IsFavorited {
		t.Fatalf("favorited filter wrong: total=%d views=%+v", total, views)
	}
}
