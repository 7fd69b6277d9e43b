package sessions

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/plagiat/internal/checker"
	"github.com/JaimeStill/plagiat/internal/documents"
)

// Domain errors for session operations.
var (
	ErrNotFound        = errors.New("session not found")
	ErrInvalidID       = errors.New("invalid session id")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrEmptyText       = errors.New("text is empty")
	ErrBusy            = errors.New("operation already in progress")
	ErrNoReformulation = errors.New("no reformulation available")
	ErrClosed          = errors.New("session closed")
)

// MapHTTPStatus maps session domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrEmptyText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrBusy), errors.Is(err, ErrNoReformulation):
		return http.StatusConflict
	case errors.Is(err, ErrClosed):
		return http.StatusGone
	case errors.Is(err, documents.ErrFileTooLarge), errors.Is(err, documents.ErrInvalidFile):
		return documents.MapHTTPStatus(err)
	case errors.Is(err, checker.ErrTransport), errors.Is(err, checker.ErrShape):
		return checker.MapHTTPStatus(err)
	}
	return http.StatusInternalServerError
}
