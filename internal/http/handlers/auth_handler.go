// Auth HTTP handlers.
//
// This file exposes the token endpoints:
//   - POST /auth/token         (login, returns a bearer token)
//   - POST /auth/token/logout  (client-side token discard, always 204)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-recipe-backend/internal/services"
)

// LoginRequest is the JSON payload for obtaining a bearer token.
type LoginRequest struct {
	// Email is the login identifier.
	Email string `json:"email" binding:"required" example:"chef@example.com"`
	// Password is the account password.
	Password string `json:"password" binding:"required" example:"correct-horse"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	AuthToken string `json:"auth_token"`
}

// Login godoc
// @ID          login
// @Summary     Obtain a bearer token
// @Description Verifies email/password credentials and returns a signed bearer token.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object}  handlers.TokenResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/token [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		return
	}

	u, err := h.userSvc.Authenticate(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid email or password")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	tok, err := h.tokens.Issue(u.ID, u.Email)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, TokenResponse{AuthToken: tok})
}

// Logout godoc
// @ID          logout
// @Summary     Discard the bearer token
// @Description Tokens are stateless; logout is a client-side discard and always succeeds.
// @Tags        Auth
//
// @Success     204  {string}  string  "No Content"
// @Router      /auth/token/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	noContent(c)
}
