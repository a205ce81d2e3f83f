package care

import (
	"fmt"
	"net/http"
	"time"

	"github.com/campuscare/wellness-hub/internal/domain/shared"
)

// APIError is a non-2xx response of the care service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter time.Duration
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("care api: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("care api: status %d", e.StatusCode)
}

// UserMessage returns the message the service meant for the user, if any.
func (e *APIError) UserMessage() string {
	return e.Message
}

// Temporary reports whether the request may succeed when repeated.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Is maps the status code onto the shared error kinds.
func (e *APIError) Is(target error) bool {
	switch target {
	case shared.ErrExternalService:
		return true
	case shared.ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case shared.ErrServiceUnavailable:
		return e.StatusCode >= 500
	case shared.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}
