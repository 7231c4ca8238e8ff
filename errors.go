package medglot

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when a row or column is absent.
var ErrNotFound = errors.New("not found")

// ProviderError indicates a generation-service failure (API error, rate
// limit, malformed response, open breaker).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // whether the call can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// KeywordError indicates that keyword resolution or generation failed.
// Fatal for the record: translation never proceeds without keywords.
type KeywordError struct {
	RouteKey string
	Cause    error
}

func (e *KeywordError) Error() string {
	return fmt.Sprintf("keyword resolution failed for %s: %v", e.RouteKey, e.Cause)
}

func (e *KeywordError) Unwrap() error {
	return e.Cause
}

// FieldError indicates that one field's translation failed, either because
// the service call errored or the output failed structural validation.
// Fatal for the record: no partial persistence.
type FieldError struct {
	RouteKey string
	Field    string
	Cause    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q failed for %s: %v", e.Field, e.RouteKey, e.Cause)
}

func (e *FieldError) Unwrap() error {
	return e.Cause
}

// ErrInvalidFormat is the cause carried by a FieldError when translated
// output fails structural validation.
var ErrInvalidFormat = errors.New("translated value does not match source format")

// PersistError indicates the final atomic write failed after every field
// had validated.
type PersistError struct {
	RouteKey string
	Cause    error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persisting %s failed: %v", e.RouteKey, e.Cause)
}

func (e *PersistError) Unwrap() error {
	return e.Cause
}
