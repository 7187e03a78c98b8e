// Recipe HTTP handlers.
//
// This file exposes REST endpoints for the recipe aggregate and its
// user-scoped relations:
//   - GET    /recipes                         (list, filters, ETag support)
//   - POST   /recipes                         (create)
//   - GET    /recipes/{id}
//   - PATCH  /recipes/{id}                    (author only, full line replacement)
//   - DELETE /recipes/{id}                    (author only)
//   - POST   /recipes/{id}/favorite           DELETE to remove
//   - POST   /recipes/{id}/shopping_cart      DELETE to remove
//   - GET    /recipes/download_shopping_cart  (consolidated export, csv|txt)
package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-recipe-backend/internal/export"
	"github.com/tbourn/go-recipe-backend/internal/services"
)

//
// DTOs
//

// IngredientLineRequest is one submitted recipe line item.
type IngredientLineRequest struct {
	ID     string `json:"id" binding:"required" format:"uuid"`
	Amount int    `json:"amount" binding:"required" example:"200"`
}

// RecipeRequest is the JSON payload for creating or updating a recipe. Update
// replaces the entire ingredient line set with the submitted one.
type RecipeRequest struct {
	Name        string                  `json:"name" binding:"required" example:"Борщ"`
	Text        string                  `json:"text" binding:"required"`
	Image       string                  `json:"image"`
	CookingTime int                     `json:"cooking_time" binding:"required" example:"90"`
	Tags        []string                `json:"tags"`
	Ingredients []IngredientLineRequest `json:"ingredients" binding:"required"`
}

// ListRecipesResponse wraps a page of recipes and pagination information.
type ListRecipesResponse struct {
	Recipes    []services.RecipeView `json:"recipes"`
	Pagination Pagination            `json:"pagination"`
}

func (r RecipeRequest) toInput() services.RecipeInput {
	lines := make([]services.IngredientLineInput, 0, len(r.Ingredients))
	for _, li := range r.Ingredients {
		lines = append(lines, services.IngredientLineInput{
			IngredientID: li.ID,
			Amount:       li.Amount,
		})
	}
	return services.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		Image:       r.Image,
		CookingTime: r.CookingTime,
		TagIDs:      r.Tags,
		Ingredients: lines,
	}
}

// failRecipe maps service-level recipe/relation errors onto HTTP results.
func failRecipe(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, ve.Error())
	case errors.Is(err, services.ErrRecipeNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "recipe not found")
	case errors.Is(err, services.ErrNotRecipeAuthor):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, services.ErrAlreadyFavorited),
		errors.Is(err, services.ErrAlreadyInCart):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrFavoriteNotFound),
		errors.Is(err, services.ErrNotInCart):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// listFilter reads the recipe list filter from query parameters.
func listFilter(c *gin.Context) services.RecipeListFilter {
	return services.RecipeListFilter{
		AuthorID:  c.Query("author"),
		TagSlugs:  c.QueryArray("tags"),
		Favorited: c.Query("is_favorited") == "1",
		InCart:    c.Query("is_in_shopping_cart") == "1",
	}
}

//
// Handlers
//

// ListRecipes godoc
// @ID          listRecipes
// @Summary     List recipes (paginated)
// @Description Returns a page of recipes, newest first. Filters: author, tags (repeatable slug), is_favorited, is_in_shopping_cart. Supports weak ETag via If-None-Match.
// @Tags        Recipes
// @Produce     json
//
// @Param       If-None-Match        header  string  false "Return 304 if ETag matches"
// @Param       author               query   string  false "Filter by author id"  format(uuid)
// @Param       tags                 query   []string false "Filter by tag slug (repeatable)" collectionFormat(multi)
// @Param       is_favorited         query   int     false "1 = only the viewer's favorites"
// @Param       is_in_shopping_cart  query   int     false "1 = only recipes in the viewer's cart"
// @Param       page                 query   int     false "Page number"    minimum(1) default(1)
// @Param       page_size            query   int     false "Items per page" minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListRecipesResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipes [get]
func (h *Handlers) ListRecipes(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := userID(c)
	page, pageSize := clampPagination(c)
	f := listFilter(c)

	// ETag pre-check (best effort). The tag folds in the viewer id and the
	// viewer's favorite/cart state: the body carries per-viewer flags, so a
	// relation toggle must invalidate the viewer's cached list even though no
	// recipe row changes.
	if st, err := h.recipeSvc.ListStamp(ctx, viewer, f); err == nil {
		etag := fmt.Sprintf(`W/"recipes:%s:%d:%d:%d:%d:%d:%d"`,
			viewer, st.Count, st.Latest, st.FavCount, st.FavLatest, st.CartCount, st.CartLatest)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.recipeSvc.List(ctx, viewer, f, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ListRecipesResponse{
		Recipes:    items,
		Pagination: paginate(page, pageSize, total),
	})
}

// CreateRecipe godoc
// @ID          createRecipe
// @Summary     Create a recipe
// @Description Creates a recipe with its ingredient lines and tags atomically and returns the full read model.
// @Tags        Recipes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.RecipeRequest  true  "Recipe payload"
//
// @Success     201  {object} services.RecipeView
// @Failure     400  {object} handlers.ErrorResponse "Validation failure"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipes [post]
func (h *Handlers) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	v, err := h.recipeSvc.Create(c.Request.Context(), userID(c), req.toInput())
	if err != nil {
		failRecipe(c, err)
		return
	}
	ok(c, http.StatusCreated, v)
}

// GetRecipe godoc
// @ID          getRecipe
// @Summary     Get a recipe
// @Description Returns the full read model; is_favorited and is_in_shopping_cart reflect the viewer and are false for anonymous callers.
// @Tags        Recipes
// @Produce     json
//
// @Param       id  path  string  true  "Recipe ID (UUID)"  format(uuid)
//
// @Success     200  {object} services.RecipeView
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipes/{id} [get]
func (h *Handlers) GetRecipe(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipe id must be a UUID")
		return
	}
	v, err := h.recipeSvc.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		failRecipe(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

// UpdateRecipe godoc
// @ID          updateRecipe
// @Summary     Update a recipe
// @Description Author-only. Replaces the entire ingredient line set and tag associations with the submitted payload; the publication date is immutable.
// @Tags        Recipes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string                  true  "Recipe ID (UUID)"  format(uuid)
// @Param       body  body  handlers.RecipeRequest  true  "Recipe payload"
//
// @Success     200  {object} services.RecipeView
// @Failure     400  {object} handlers.ErrorResponse "Validation failure"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Not the author"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipes/{id} [patch]
func (h *Handlers) UpdateRecipe(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipe id must be a UUID")
		return
	}
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	v, err := h.recipeSvc.Update(c.Request.Context(), userID(c), id, req.toInput())
	if err != nil {
		failRecipe(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

// DeleteRecipe godoc
// @ID          deleteRecipe
// @Summary     Delete a recipe
// @Description Author-only. Cascades ingredient lines, favorites, and cart entries.
// @Tags        Recipes
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Recipe ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Not the author"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipes/{id} [delete]
func (h *Handlers) DeleteRecipe(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipe id must be a UUID")
		return
	}
	if err := h.recipeSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		failRecipe(c, err)
		return
	}
	noContent(c)
}

// relationToggle factors the shared shape of the four favorite/cart endpoints:
// validate the id, run the relation mutation, and confirm with the recipe
// card (201) or no content (204).
func (h *Handlers) relationToggle(c *gin.Context, mutate func(ctx *gin.Context, uid, recipeID string) error, confirm bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipe id must be a UUID")
		return
	}
	if err := mutate(c, userID(c), id); err != nil {
		failRecipe(c, err)
		return
	}
	if !confirm {
		noContent(c)
		return
	}
	card, err := h.recipeSvc.Card(c.Request.Context(), id)
	if err != nil {
		failRecipe(c, err)
		return
	}
	ok(c, http.StatusCreated, card)
}

// AddFavorite godoc
// @ID          addFavorite
// @Summary     Favorite a recipe
// @Tags        Recipes
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Recipe ID (UUID)"  format(uuid)
//
// @Success     201  {object} services.RecipeCard
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Failure     409  {object} handlers.ErrorResponse "Already favorited"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipes/{id}/favorite [post]
func (h *Handlers) AddFavorite(c *gin.Context) {
	h.relationToggle(c, func(ctx *gin.Context, uid, recipeID string) error {
		return h.relationSvc.AddFavorite(ctx.Request.Context(), uid, recipeID)
	}, true)
}

// RemoveFavorite godoc
// @ID          removeFavorite
// @Summary     Unfavorite a recipe
// @Tags        Recipes
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Recipe ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Recipe or favorite not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipes/{id}/favorite [delete]
func (h *Handlers) RemoveFavorite(c *gin.Context) {
	h.relationToggle(c, func(ctx *gin.Context, uid, recipeID string) error {
		return h.relationSvc.RemoveFavorite(ctx.Request.Context(), uid, recipeID)
	}, false)
}

// AddToCart godoc
// @ID          addToCart
// @Summary     Add a recipe to the shopping cart
// @Tags        Recipes
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Recipe ID (UUID)"  format(uuid)
//
// @Success     201  {object} services.RecipeCard
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Failure     409  {object} handlers.ErrorResponse "Already in cart"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipes/{id}/shopping_cart [post]
func (h *Handlers) AddToCart(c *gin.Context) {
	h.relationToggle(c, func(ctx *gin.Context, uid, recipeID string) error {
		return h.relationSvc.AddToCart(ctx.Request.Context(), uid, recipeID)
	}, true)
}

// RemoveFromCart godoc
// @ID          removeFromCart
// @Summary     Remove a recipe from the shopping cart
// @Tags        Recipes
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Recipe ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Recipe or cart entry not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipes/{id}/shopping_cart [delete]
func (h *Handlers) RemoveFromCart(c *gin.Context) {
	h.relationToggle(c, func(ctx *gin.Context, uid, recipeID string) error {
		return h.relationSvc.RemoveFromCart(ctx.Request.Context(), uid, recipeID)
	}, false)
}

// DownloadShoppingCart godoc
// @ID          downloadShoppingCart
// @Summary     Download the consolidated shopping list
// @Description Aggregates every recipe in the caller's cart into one row per (ingredient, unit) and serves it as an attachment. Format is csv (default) or txt. An empty cart yields a header-only file.
// @Tags        Recipes
// @Produce     text/csv
// @Produce     text/plain
// @Security    BearerAuth
//
// @Param       format  query  string  false  "Export format"  Enums(csv, txt)  default(csv)
//
// @Success     200  {string} string "Shopping list file"
// @Header      200  {string} Content-Disposition "attachment; filename=shopping_list.csv"
// @Failure     400  {object} handlers.ErrorResponse "Unknown format"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipes/download_shopping_cart [get]
func (h *Handlers) DownloadShoppingCart(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "txt" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "format must be csv or txt")
		return
	}

	items, err := h.shoppingSvc.Consolidate(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	var buf bytes.Buffer
	var contentType, filename string
	switch format {
	case "csv":
		err = export.WriteCSV(&buf, items)
		contentType = "text/csv; charset=utf-8"
		filename = "shopping_list.csv"
	case "txt":
		err = export.WriteText(&buf, items)
		contentType = "text/plain; charset=utf-8"
		filename = "shopping_list.txt"
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
