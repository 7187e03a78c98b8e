// Catalog HTTP handlers.
//
// Read-only endpoints for the ingredient and tag reference data:
//   - GET /ingredients       (list, optional ?name= prefix search)
//   - GET /ingredients/{id}
//   - GET /tags
//   - GET /tags/{id}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-recipe-backend/internal/services"
)

// ListIngredients godoc
// @ID          listIngredients
// @Summary     List ingredients
// @Description Returns ingredients ordered by name. The optional name parameter narrows the result to a case-insensitive prefix match.
// @Tags        Catalog
// @Produce     json
//
// @Param       name  query  string  false  "Name prefix"  example(мук)
//
// @Success     200  {array}  domain.Ingredient
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /ingredients [get]
func (h *Handlers) ListIngredients(c *gin.Context) {
	items, err := h.catalogSvc.Ingredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// GetIngredient godoc
// @ID          getIngredient
// @Summary     Get an ingredient
// @Tags        Catalog
// @Produce     json
//
// @Param       id  path  string  true  "Ingredient ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Ingredient
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Ingredient not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /ingredients/{id} [get]
func (h *Handlers) GetIngredient(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ingredient id must be a UUID")
		return
	}
	ing, err := h.catalogSvc.Ingredient(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrIngredientNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "ingredient not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ing)
}

// ListTags godoc
// @ID          listTags
// @Summary     List tags
// @Tags        Catalog
// @Produce     json
//
// @Success     200  {array}  domain.Tag
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /tags [get]
func (h *Handlers) ListTags(c *gin.Context) {
	items, err := h.catalogSvc.Tags(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// GetTag godoc
// @ID          getTag
// @Summary     Get a tag
// @Tags        Catalog
// @Produce     json
//
// @Param       id  path  string  true  "Tag ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Tag
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Tag not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /tags/{id} [get]
func (h *Handlers) GetTag(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "tag id must be a UUID")
		return
	}
	t, err := h.catalogSvc.Tag(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrTagNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "tag not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, t)
}
