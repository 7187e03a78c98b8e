package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		User{}.TableName():             "users",
		Subscription{}.TableName():     "subscriptions",
		Ingredient{}.TableName():       "ingredients",
		Tag{}.TableName():              "tags",
		Recipe{}.TableName():           "recipes",
		RecipeIngredient{}.TableName(): "recipe_ingredients",
		Favorite{}.TableName():         "favorites",
		ShoppingListItem{}.TableName(): "shopping_list_items",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("table name %q, want %q", got, want)
		}
	}
}

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	u := User{ID: "id", Email: "a@example.com", Username: "a", PasswordHash: "bcrypt-hash"}
	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "bcrypt-hash") || strings.Contains(string(b), "password") {
		t.Fatalf("password hash leaked into JSON: %s", b)
	}
}
