package apperr

import (
	"errors"
	"net/http"
)

// Sentinel errors for the service layer. Handlers wrap these with %w and
// map them to HTTP statuses at the boundary; anything unrecognized is a 500.
var (
	ErrValidation        = errors.New("validation")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlreadyVerified   = errors.New("already verified")
)

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrAlreadyVerified):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsExpected reports whether err belongs to the taxonomy above, i.e. it is
// safe to surface its message to the client.
func IsExpected(err error) bool {
	return HTTPStatus(err) != http.StatusInternalServerError
}
