// User HTTP handlers.
//
// This file exposes REST endpoints for account resources:
//   - POST   /users                      (register)
//   - GET    /users                      (list, paginated, ETag support)
//   - GET    /users/me                   (current profile)
//   - POST   /users/set_password         (change password)
//   - GET    /users/subscriptions        (subscribed authors)
//   - GET    /users/{id}                 (profile)
//   - POST   /users/{id}/subscribe       (subscribe)
//   - DELETE /users/{id}/subscribe       (unsubscribe)
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-recipe-backend/internal/services"
	"github.com/tbourn/go-recipe-backend/internal/utils"
)

//
// DTOs
//

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required" example:"chef@example.com"`
	Username  string `json:"username" binding:"required" example:"chef"`
	FirstName string `json:"first_name" example:"Anna"`
	LastName  string `json:"last_name" example:"Smirnova"`
	Password  string `json:"password" binding:"required" example:"correct-horse"`
}

// SetPasswordRequest is the JSON payload for changing the caller's password.
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ListUsersResponse wraps a page of accounts and pagination information.
type ListUsersResponse struct {
	Users      []services.UserView `json:"users"`
	Pagination Pagination          `json:"pagination"`
}

// ListSubscriptionsResponse wraps a page of subscribed authors.
type ListSubscriptionsResponse struct {
	Authors    []services.AuthorView `json:"authors"`
	Pagination Pagination            `json:"pagination"`
}

// failUser maps service-level account errors onto HTTP results.
func failUser(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, ve.Error())
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrAlreadySubscribed):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrSelfSubscribe):
		fail(c, http.StatusBadRequest, ErrCodeSelfSubscribe, err.Error())
	case errors.Is(err, services.ErrNotSubscribed):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// Handlers
//

// Register godoc
// @ID          registerUser
// @Summary     Register an account
// @Description Creates an account and returns its public profile.
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Registration payload"
//
// @Success     201  {object}  services.UserView
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Email or username taken"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	v, err := h.userSvc.Register(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		failUser(c, err)
		return
	}
	ok(c, http.StatusCreated, v)
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List accounts (paginated)
// @Description Returns a page of accounts with is_subscribed computed for the viewer. Supports weak ETag via If-None-Match.
// @Tags        Users
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"      minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"   minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListUsersResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := userID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort). The tag embeds the viewer id and the
	// viewer's subscription state because the body carries is_subscribed per
	// account; a subscribe toggle must miss the cache.
	if st, err := h.userSvc.ListStamp(ctx, viewer); err == nil {
		etag := fmt.Sprintf(`W/"users:%s:%d:%d:%d:%d"`,
			viewer, st.Count, st.Latest, st.SubCount, st.SubLatest)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	users, total, err := h.userSvc.ListPage(ctx, viewer, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ListUsersResponse{
		Users:      users,
		Pagination: paginate(page, pageSize, total),
	})
}

// Me godoc
// @ID          currentUser
// @Summary     Current profile
// @Description Returns the authenticated account's profile.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object} services.UserView
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/me [get]
func (h *Handlers) Me(c *gin.Context) {
	uid := userID(c)
	v, err := h.userSvc.Profile(c.Request.Context(), uid, uid)
	if err != nil {
		failUser(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

// SetPassword godoc
// @ID          setPassword
// @Summary     Change password
// @Description Replaces the caller's password after verifying the current one.
// @Tags        Users
// @Accept      json
// @Security    BearerAuth
//
// @Param       body  body  handlers.SetPasswordRequest  true  "Password change payload"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request or current password mismatch"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/set_password [post]
func (h *Handlers) SetPassword(c *gin.Context) {
	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "current_password and new_password are required")
		return
	}
	if err := h.userSvc.ChangePassword(c.Request.Context(), userID(c), req.CurrentPassword, req.NewPassword); err != nil {
		failUser(c, err)
		return
	}
	noContent(c)
}

// ListSubscriptions godoc
// @ID          listSubscriptions
// @Summary     List subscribed authors (paginated)
// @Description Returns the authors the caller follows, each with recipe cards (capped by recipes_limit) and the total recipe count.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Param       page           query  int  false "Page number"                minimum(1) default(1)
// @Param       page_size      query  int  false "Items per page"             minimum(1) maximum(100) default(20)
// @Param       recipes_limit  query  int  false "Max recipe cards per author" minimum(0)
//
// @Success     200  {object} handlers.ListSubscriptionsResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/subscriptions [get]
func (h *Handlers) ListSubscriptions(c *gin.Context) {
	page, pageSize := clampPagination(c)
	recipesLimit := utils.AtoiDefault(c.Query("recipes_limit"), 0)
	if recipesLimit < 0 {
		recipesLimit = 0
	}

	authors, total, err := h.userSvc.Subscriptions(c.Request.Context(), userID(c), page, pageSize, recipesLimit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ListSubscriptionsResponse{
		Authors:    authors,
		Pagination: paginate(page, pageSize, total),
	})
}

// GetUser godoc
// @ID          getUser
// @Summary     Get a profile
// @Description Returns a user's public profile with is_subscribed computed for the viewer.
// @Tags        Users
// @Produce     json
//
// @Param       id  path  string  true  "User ID (UUID)"  format(uuid)
//
// @Success     200  {object} services.UserView
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "User not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a UUID")
		return
	}
	v, err := h.userSvc.Profile(c.Request.Context(), userID(c), id)
	if err != nil {
		failUser(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

// Subscribe godoc
// @ID          subscribe
// @Summary     Subscribe to an author
// @Description Adds the (user, author) subscription pair. Self-subscription is rejected.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Author ID (UUID)"  format(uuid)
//
// @Success     201  {object} services.UserView
// @Failure     400  {object} handlers.ErrorResponse "Self-subscription"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Author not found"
// @Failure     409  {object} handlers.ErrorResponse "Already subscribed"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/{id}/subscribe [post]
func (h *Handlers) Subscribe(c *gin.Context) {
	authorID := c.Param("id")
	if _, err := uuid.Parse(authorID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a UUID")
		return
	}
	uid := userID(c)
	if err := h.relationSvc.Subscribe(c.Request.Context(), uid, authorID); err != nil {
		failUser(c, err)
		return
	}
	v, err := h.userSvc.Profile(c.Request.Context(), uid, authorID)
	if err != nil {
		failUser(c, err)
		return
	}
	ok(c, http.StatusCreated, v)
}

// Unsubscribe godoc
// @ID          unsubscribe
// @Summary     Unsubscribe from an author
// @Description Removes the (user, author) subscription pair.
// @Tags        Users
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Author ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Author or subscription not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/{id}/subscribe [delete]
func (h *Handlers) Unsubscribe(c *gin.Context) {
	authorID := c.Param("id")
	if _, err := uuid.Parse(authorID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a UUID")
		return
	}
	if err := h.relationSvc.Unsubscribe(c.Request.Context(), userID(c), authorID); err != nil {
		failUser(c, err)
		return
	}
	noContent(c)
}
