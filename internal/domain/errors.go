// Package domain defines core types, interfaces, and errors for the dashboard backend.
package domain

import "fmt"

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UnauthorizedError indicates a missing or unusable caller identity.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// UnavailableError indicates a feature that is not configured on this deployment.
type UnavailableError struct {
	Message string
}

func (e *UnavailableError) Error() string { return e.Message }

// UpstreamError indicates a failed call to the warehouse or a serving endpoint.
// StatusCode is the upstream HTTP status, or 0 for transport-level failures.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string { return e.Message }

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrUnauthorized creates an UnauthorizedError with a formatted message.
func ErrUnauthorized(format string, args ...interface{}) *UnauthorizedError {
	return &UnauthorizedError{Message: fmt.Sprintf(format, args...)}
}

// ErrUnavailable creates an UnavailableError with a formatted message.
func ErrUnavailable(format string, args ...interface{}) *UnavailableError {
	return &UnavailableError{Message: fmt.Sprintf(format, args...)}
}

// ErrUpstream creates an UpstreamError with the given upstream status code.
func ErrUpstream(statusCode int, format string, args ...interface{}) *UpstreamError {
	return &UpstreamError{StatusCode: statusCode, Message: fmt.Sprintf(format, args...)}
}
