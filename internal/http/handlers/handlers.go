// Handler wiring shared by all endpoint files.
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. Service dependencies are abstract
// interfaces so transport concerns stay separate from business logic.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-recipe-backend/internal/domain"
	"github.com/tbourn/go-recipe-backend/internal/export"
	"github.com/tbourn/go-recipe-backend/internal/http/middleware"
	"github.com/tbourn/go-recipe-backend/internal/services"
	"github.com/tbourn/go-recipe-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// UserService defines the account operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type UserService interface {
	// Register creates an account and returns its public view.
	Register(ctx context.Context, in services.RegisterInput) (*services.UserView, error)
	// Authenticate verifies email/password credentials.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	// ChangePassword replaces the caller's password after verifying the current one.
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	// Profile returns a user's public view annotated for the viewer.
	Profile(ctx context.Context, viewerID, userID string) (*services.UserView, error)
	// ListPage returns a page of accounts plus the total count.
	ListPage(ctx context.Context, viewerID string, page, pageSize int) ([]services.UserView, int64, error)
	// Subscriptions returns a page of the authors the user follows.
	Subscriptions(ctx context.Context, userID string, page, pageSize, recipesLimit int) ([]services.AuthorView, int64, error)
	// ListStamp returns the change-detection stamp behind the user list ETag.
	ListStamp(ctx context.Context, viewerID string) (services.UserListStamp, error)
}

// RecipeService defines recipe aggregate operations consumed by HTTP handlers.
type RecipeService interface {
	// Create inserts a recipe owned by authorID and returns its read model.
	Create(ctx context.Context, authorID string, in services.RecipeInput) (*services.RecipeView, error)
	// Update rewrites a recipe the caller owns, replacing the line-item set.
	Update(ctx context.Context, userID, recipeID string, in services.RecipeInput) (*services.RecipeView, error)
	// Delete removes a recipe the caller owns.
	Delete(ctx context.Context, userID, recipeID string) error
	// Get returns one recipe's read model for the given viewer.
	Get(ctx context.Context, viewerID, recipeID string) (*services.RecipeView, error)
	// List returns a page of read models matching the filter plus the total count.
	List(ctx context.Context, viewerID string, f services.RecipeListFilter, page, pageSize int) ([]services.RecipeView, int64, error)
	// Card returns the short card shape used in relation confirmations.
	Card(ctx context.Context, recipeID string) (*services.RecipeCard, error)
	// ListStamp returns the change-detection stamp behind the recipe list ETag.
	ListStamp(ctx context.Context, viewerID string, f services.RecipeListFilter) (services.RecipeListStamp, error)
}

// RelationService defines the favorite/cart/subscription toggles.
type RelationService interface {
	AddFavorite(ctx context.Context, userID, recipeID string) error
	RemoveFavorite(ctx context.Context, userID, recipeID string) error
	AddToCart(ctx context.Context, userID, recipeID string) error
	RemoveFromCart(ctx context.Context, userID, recipeID string) error
	Subscribe(ctx context.Context, userID, authorID string) error
	Unsubscribe(ctx context.Context, userID, authorID string) error
}

// CatalogService defines read access to ingredients and tags.
type CatalogService interface {
	Ingredients(ctx context.Context, prefix string) ([]domain.Ingredient, error)
	Ingredient(ctx context.Context, id string) (*domain.Ingredient, error)
	Tags(ctx context.Context) ([]domain.Tag, error)
	Tag(ctx context.Context, id string) (*domain.Tag, error)
}

// ShoppingService defines the consolidated shopping-list export.
type ShoppingService interface {
	// Consolidate aggregates the user's cart into one row per (name, unit).
	Consolidate(ctx context.Context, userID string) ([]export.Item, error)
}

//
// Handler wiring
//

// TokenIssuer mints bearer tokens for the login endpoint.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

// Handlers groups the HTTP endpoints for accounts, catalog, recipes,
// relations, and the shopping-list export.
type Handlers struct {
	userSvc     UserService
	recipeSvc   RecipeService
	relationSvc RelationService
	catalogSvc  CatalogService
	shoppingSvc ShoppingService
	tokens      TokenIssuer
}

// New constructs a Handlers instance bound to the given services.
func New(userSvc UserService, recipeSvc RecipeService, relationSvc RelationService,
	catalogSvc CatalogService, shoppingSvc ShoppingService, tokens TokenIssuer) *Handlers {
	return &Handlers{
		userSvc:     userSvc,
		recipeSvc:   recipeSvc,
		relationSvc: relationSvc,
		catalogSvc:  catalogSvc,
		shoppingSvc: shoppingSvc,
		tokens:      tokens,
	}
}

// userID extracts the authenticated account id from Gin context (set by the
// auth middleware). An empty result means the caller is anonymous.
func userID(c *gin.Context) string {
	if v, ok := c.Get(middleware.ContextUserIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

//
// Shared DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// paginate computes the metadata block for a page of `total` items.
func paginate(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}
