// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer.
var (
	// ErrUnauthorized indicates missing or failed authentication.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden indicates the caller's role does not permit the operation.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrNotFound indicates the entity is absent or outside the caller's scope.
	ErrNotFound = errors.New("resource not found")
	// ErrConflict indicates a duplicate or an invalid state transition.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates a rejected request payload.
	ErrValidation = errors.New("validation failed")
	// ErrUnprocessable indicates malformed query parameters.
	ErrUnprocessable = errors.New("unprocessable query")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Duplicates and invalid state transitions map to 400 per the API contract.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrConflict):
		Problem(w, http.StatusBadRequest, "Conflict", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrUnprocessable):
		Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
