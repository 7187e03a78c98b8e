// Package services – read models
//
// Mutating operations return the same read view a subsequent GET would, via
// the explicit mapping functions in this file. Handlers serialize these types
// directly; domain entities never cross the transport boundary with their
// persistence-only fields.
package services

import (
	"github.com/tbourn/go-recipe-backend/internal/domain"
)

// UserView is the public shape of an account, annotated with the viewer's
// subscription state. IsSubscribed is always false for anonymous viewers.
type UserView struct {
	Email        string `json:"email"`
	ID           string `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// IngredientLineView is one quantified line item of a recipe, flattened with
// the referenced ingredient's name and unit.
type IngredientLineView struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView is the full read model of a recipe. IsFavorited and
// IsInShoppingCart reflect the requesting user's relation state and are false
// for anonymous callers.
type RecipeView struct {
	ID               string               `json:"id"`
	Tags             []domain.Tag         `json:"tags"`
	Author           UserView             `json:"author"`
	Ingredients      []IngredientLineView `json:"ingredients"`
	IsFavorited      bool                 `json:"is_favorited"`
	IsInShoppingCart bool                 `json:"is_in_shopping_cart"`
	Name             string               `json:"name"`
	Image            string               `json:"image"`
	Text             string               `json:"text"`
	CookingTime      int                  `json:"cooking_time"`
}

// RecipeCard is the short recipe shape used in favorite/cart confirmations
// and subscription listings.
type RecipeCard struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// AuthorView is a UserView extended with the author's recipe cards and total
// count, used by the subscriptions listing.
type AuthorView struct {
	UserView
	Recipes      []RecipeCard `json:"recipes"`
	RecipesCount int64        `json:"recipes_count"`
}

// toUserView maps an account to its public shape.
func toUserView(u *domain.User, isSubscribed bool) UserView {
	return UserView{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

// toRecipeCard maps a recipe to its short card shape.
func toRecipeCard(r *domain.Recipe) RecipeCard {
	return RecipeCard{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// toRecipeView maps a fully-loaded recipe (author, tags, lines with
// ingredients) to the read model, annotated with the viewer's relation state.
func toRecipeView(r *domain.Recipe, favorited, inCart, authorSubscribed bool) RecipeView {
	tags := r.Tags
	if tags == nil {
		tags = []domain.Tag{}
	}
	lines := make([]IngredientLineView, 0, len(r.Ingredients))
	for _, li := range r.Ingredients {
		lines = append(lines, IngredientLineView{
			ID:              li.Ingredient.ID,
			Name:            li.Ingredient.Name,
			MeasurementUnit: li.Ingredient.MeasurementUnit,
			Amount:          li.Amount,
		})
	}
	return RecipeView{
		ID:               r.ID,
		Tags:             tags,
		Author:           toUserView(&r.Author, authorSubscribed),
		Ingredients:      lines,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}
