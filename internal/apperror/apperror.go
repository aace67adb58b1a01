// Package apperror defines the domain error taxonomy and the standardized
// error response structures for the API. All errors returned to clients go
// through this package to ensure consistency and to prevent leaking internal
// details (stack traces, DB errors, etc.).
package apperror

import (
	"errors"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}

// StatusCode maps a domain error to its HTTP status. Unknown errors map to
// 500 so that internal failures are never mistaken for caller mistakes.
func StatusCode(err error) int {
	var (
		notFound  *NotFoundError
		duplicate *DuplicateKeyError
		state     *InvalidStateError
		exceeded  *QuantityExceededError
		noop      *NoOpError
		input     *InvalidInputError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &duplicate):
		return http.StatusConflict
	case errors.As(err, &state):
		return http.StatusConflict
	case errors.As(err, &exceeded):
		return http.StatusUnprocessableEntity
	case errors.As(err, &noop):
		return http.StatusBadRequest
	case errors.As(err, &input):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
