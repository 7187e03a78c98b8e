// Package domain defines the persistence models for users, catalog reference
// data, recipes with their quantified ingredient lines, and the user-scoped
// relation tables (favorites, shopping list, subscriptions). These types are
// mapped with GORM and form the core data layer of the application.
package domain

import (
	"time"
)

// User is an account record. Email is the login identifier; both email and
// username are unique.
type User struct {
	ID           string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email"      gorm:"type:varchar(254);not null;uniqueIndex:ux_users_email"`
	Username     string    `json:"username"   gorm:"type:varchar(150);not null;uniqueIndex:ux_users_username"`
	FirstName    string    `json:"first_name" gorm:"type:varchar(150)"`
	LastName     string    `json:"last_name"  gorm:"type:varchar(150)"`
	PasswordHash string    `json:"-"          gorm:"type:varchar(128);not null"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Subscription links a subscriber to an author they follow.
//
// The (user, author) pair is unique and a store-level check rejects
// self-subscription, so the invariant holds on every write path rather than
// only in the service that happens to validate it.
type Subscription struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"   gorm:"type:char(36);not null;index;uniqueIndex:ux_subscriptions_pair;check:chk_no_self_subscribe,user_id <> author_id"`
	AuthorID  string    `json:"author_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_subscriptions_pair"`
	CreatedAt time.Time `json:"-"`

	User   User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Author User `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Subscription.
func (Subscription) TableName() string { return "subscriptions" }

// Ingredient is read-mostly catalog data administered by the bulk importer.
// Name-level uniqueness is an administrative responsibility, not a schema
// constraint; listing is ordered by name.
type Ingredient struct {
	ID              string `json:"id"               gorm:"type:char(36);primaryKey"`
	Name            string `json:"name"             gorm:"type:varchar(200);not null;index:idx_ingredients_name"`
	MeasurementUnit string `json:"measurement_unit" gorm:"type:varchar(200);not null"`
}

// TableName returns the database table name for Ingredient.
func (Ingredient) TableName() string { return "ingredients" }

// Tag is shared reference data attached to recipes (many-to-many). Color is a
// 6-digit hex value validated by the service layer; slug is unique.
type Tag struct {
	ID    string `json:"id"    gorm:"type:char(36);primaryKey"`
	Name  string `json:"name"  gorm:"type:varchar(16);not null"`
	Color string `json:"color" gorm:"type:varchar(7)"`
	Slug  string `json:"slug"  gorm:"type:varchar(64);uniqueIndex:ux_tags_slug"`
}

// TableName returns the database table name for Tag.
func (Tag) TableName() string { return "tags" }

// Recipe is the aggregate root: a recipe row plus its owned ingredient lines
// and tag associations. CreatedAt is the publication date, set once on create
// and never updated afterwards.
type Recipe struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name"         gorm:"type:varchar(200);not null"`
	Text        string    `json:"text"         gorm:"type:text;not null"`
	CookingTime int       `json:"cooking_time" gorm:"not null"`
	AuthorID    string    `json:"author_id"    gorm:"type:char(36);not null;index:idx_recipes_author"`
	Image       string    `json:"image"        gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"   gorm:"index:idx_recipes_created"`
	UpdatedAt   time.Time `json:"-"`

	Author      User               `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Tags        []Tag              `json:"-" gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ingredients []RecipeIngredient `json:"-" gorm:"foreignKey:RecipeID;references:ID"`
}

// TableName returns the database table name for Recipe.
func (Recipe) TableName() string { return "recipes" }

// RecipeIngredient is a quantified line item owned by exactly one recipe.
// Lines are replaced as a set whenever the parent recipe is written and are
// cascade-deleted with it. An ingredient appears at most once per recipe.
type RecipeIngredient struct {
	ID           string `json:"id"            gorm:"type:char(36);primaryKey"`
	RecipeID     string `json:"recipe_id"     gorm:"type:char(36);not null;index;uniqueIndex:ux_recipe_ingredient"`
	IngredientID string `json:"ingredient_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_recipe_ingredient"`
	Amount       int    `json:"amount"        gorm:"not null"`

	Recipe     Recipe     `json:"-" gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Ingredient Ingredient `json:"-" gorm:"foreignKey:IngredientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for RecipeIngredient.
func (RecipeIngredient) TableName() string { return "recipe_ingredients" }

// Favorite marks a recipe as favorited by a user. Unique per (user, recipe).
type Favorite struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"   gorm:"type:char(36);not null;index;uniqueIndex:ux_favorites_pair"`
	RecipeID  string    `json:"recipe_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_favorites_pair"`
	CreatedAt time.Time `json:"-"`

	User   User   `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Recipe Recipe `json:"-" gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Favorite.
func (Favorite) TableName() string { return "favorites" }

// ShoppingListItem puts a recipe in a user's shopping cart. Unique per
// (user, recipe); the consolidator aggregates over these rows.
type ShoppingListItem struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"   gorm:"type:char(36);not null;index;uniqueIndex:ux_shopping_pair"`
	RecipeID  string    `json:"recipe_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_shopping_pair"`
	CreatedAt time.Time `json:"-"`

	User   User   `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Recipe Recipe `json:"-" gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ShoppingListItem.
func (ShoppingListItem) TableName() string { return "shopping_list_items" }
