// Package services defines the business logic for users, recipes, relations,
// and the shopping list. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRecipeNotFound indicates that the requested recipe does not exist.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrNotRecipeAuthor is returned when a caller attempts to update or
	// delete a recipe they do not own.
	ErrNotRecipeAuthor = errors.New("only the author may modify this recipe")

	// ErrUserNotFound indicates that the requested account does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrIngredientNotFound indicates an unknown catalog ingredient.
	ErrIngredientNotFound = errors.New("ingredient not found")

	// ErrTagNotFound indicates an unknown catalog tag.
	ErrTagNotFound = errors.New("tag not found")

	// ErrInvalidCredentials is returned when login email/password do not match
	// an account.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when registration uses an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUsernameTaken is returned when registration uses a username that is
	// already in use.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrAlreadyFavorited is returned when the (user, recipe) favorite pair
	// already exists. Callers should treat it as already-satisfied state.
	ErrAlreadyFavorited = errors.New("recipe already in favorites")

	// ErrFavoriteNotFound is returned when removing a favorite pair that does
	// not exist.
	ErrFavoriteNotFound = errors.New("recipe is not in favorites")

	// ErrAlreadyInCart is returned when the (user, recipe) shopping cart pair
	// already exists.
	ErrAlreadyInCart = errors.New("recipe already in shopping cart")

	// ErrNotInCart is returned when removing a cart pair that does not exist.
	ErrNotInCart = errors.New("recipe is not in shopping cart")

	// ErrAlreadySubscribed is returned when the (user, author) pair already
	// exists.
	ErrAlreadySubscribed = errors.New("already subscribed to this author")

	// ErrNotSubscribed is returned when unsubscribing from an author the user
	// does not follow.
	ErrNotSubscribed = errors.New("not subscribed to this author")

	// ErrSelfSubscribe is returned when a user attempts to subscribe to
	// themselves, regardless of prior state.
	ErrSelfSubscribe = errors.New("cannot subscribe to yourself")
)

// ValidationError reports malformed or out-of-range input with the field it
// concerns, so handlers can surface field-level detail. It is terminal per
// request and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// AsValidation extracts a ValidationError from an error chain, if present.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// isDuplicate detects unique-constraint violations across drivers that may
// not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

// isCheckViolation detects check-constraint violations (e.g. the
// self-subscription guard) across drivers.
func isCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "check constraint")
}
