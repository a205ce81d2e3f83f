// Package shared contains common domain types, errors and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound = errors.New("entity not found")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrValueOutOfRange = errors.New("value out of range")

	// State errors
	ErrClosed = errors.New("closed")

	// Persistence errors
	ErrPersistence      = errors.New("persistence error")
	ErrPersistenceParse = errors.New("persisted content is not parseable")

	// External service errors
	ErrExternalService      = errors.New("external service error")
	ErrNetwork              = errors.New("network error")
	ErrInvalidResponseShape = errors.New("invalid response shape")
	ErrServiceUnavailable   = errors.New("service unavailable")
	ErrTimeout              = errors.New("operation timeout")
	ErrRateLimited          = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "mood", "appointment", "assessment"
	Op      string // Operation that failed, e.g., "Load", "Fetch"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Mood domain errors
var (
	ErrMoodNotSelected   = NewDomainError("mood", "Submit", ErrValidation, "no mood selected")
	ErrMoodScoreRange    = NewDomainError("mood", "Validate", ErrValueOutOfRange, "mood score must be between 0 and 100")
	ErrUnknownMoodAnchor = NewDomainError("mood", "Validate", ErrInvalidInput, "mood score is not a selectable option")
	ErrInvalidStudentID  = NewDomainError("mood", "Validate", ErrInvalidID, "student id is required")
)

// Care service errors
var (
	ErrAppointmentsShape = NewDomainError("appointment", "Fetch", ErrInvalidResponseShape, "appointments response is not a list")
	ErrCareAPITimeout    = NewDomainError("care", "Request", ErrTimeout, "care service request timeout")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsRetryable reports whether a failed call may succeed when repeated.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrNetwork)
}
