package checker

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for analysis service calls.
var (
	// ErrTransport indicates the request failed or the service rejected it.
	ErrTransport = errors.New("analysis service request failed")
	// ErrShape indicates a response was missing fields the client requires.
	ErrShape = errors.New("unexpected analysis service response")
)

// StatusError carries a non-2xx response from the analysis service.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Detail)
}

// MapHTTPStatus maps analysis service errors to the status a gateway
// should report to its own callers.
func MapHTTPStatus(err error) int {
	var se *StatusError
	if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 {
		return se.Code
	}
	if errors.Is(err, ErrTransport) || errors.Is(err, ErrShape) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
