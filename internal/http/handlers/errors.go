// Package handlers defines the HTTP-layer error codes used across the API.
//
// Codes are lowercase snake_case and form a stable, machine-readable taxonomy
// alongside the human-readable message. Generic codes mirror HTTP status
// semantics; domain-specific codes cover business errors the status alone
// cannot convey, e.g. self_subscribe on POST /users/:id/subscribe.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "conflict",
//	  "message": "recipe already in shopping cart"
//	}
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeSelfSubscribe    = "self_subscribe"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
