package domain

import (
	"fmt"
	"time"
)

// APIError is the single error kind that crosses the evidence-fetching
// boundary. Upstream schema variability is absorbed internally; transport
// failures, upstream application errors and unexpected aggregation failures
// are all surfaced as an APIError.
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *APIError) Unwrap() error {
	return e.cause
}

// Error codes for different failure scenarios
const (
	ErrUpstreamAPI  = "UPSTREAM_API_ERROR"
	ErrTimeout      = "UPSTREAM_TIMEOUT"
	ErrParseFailure = "PARSE_FAILURE"
	ErrInvalidInput = "INVALID_INPUT"
)

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// WrapAPIError creates a new APIError that preserves the underlying cause.
func WrapAPIError(code, message string, cause error) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}
