// Package errors provides centralized error definitions and error handling utilities
// for taglog. It defines sentinel errors for usage mistakes, semantic error types
// with context wrapping, and classification helpers.
//
// # Error Types
//
// Sentinel errors name the failure conditions callers are expected to test for:
//   - ErrInvalidSortKey: an analyzer sort key outside the supported set
//   - ErrUnsupportedFormat: an export or report format that is not recognized
//   - ErrInvalidLevel: a level name that does not parse
//   - ErrInvalidInput: generic input validation failure
//   - ErrHandlerFailed: a log handler returned an error or panicked
//
// Typed errors carry context:
//   - ValidationError: invalid input (field, value)
//   - HandlerError: a sink failure (handler name, cause)
//
// # Usage
//
//	err := errors.NewValidationError("unknown sort key").
//	    WithField("primary_key").WithValue("color").WithCause(errors.ErrInvalidSortKey)
//
//	if errors.Is(err, errors.ErrInvalidSortKey) { ... }
//	if errors.IsUsageError(err) { ... }
//
// # Error Classification
//
// Usage errors (invalid sort key, unsupported format, invalid level) fail fast
// and are always surfaced to the caller. Handler errors are recovered by the
// logger and only reported on the diagnostics stream.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	// ErrInvalidSortKey indicates an analyzer sort key outside the supported set.
	ErrInvalidSortKey = New("invalid sort key")
	// ErrUnsupportedFormat indicates an unknown export or report format.
	ErrUnsupportedFormat = New("unsupported format")
	// ErrInvalidLevel indicates a level name that could not be parsed.
	ErrInvalidLevel = New("invalid log level")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrHandlerFailed indicates that a log handler failed to process an entry.
	ErrHandlerFailed = New("log handler failed")
)

// usageSentinels are the sentinels that classify an error as a caller mistake.
var usageSentinels = []error{
	ErrInvalidSortKey,
	ErrUnsupportedFormat,
	ErrInvalidLevel,
	ErrInvalidInput,
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message  string
	cause    error
	severity Severity
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// -----------------------------------------------------------------------------
// ValidationError
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("unknown export format")
//	err = err.WithField("format").WithValue("xml").WithCause(errors.ErrUnsupportedFormat)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:  message,
			severity: SeverityWarning,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return target == ErrInvalidInput
}

// -----------------------------------------------------------------------------
// HandlerError
// -----------------------------------------------------------------------------

// HandlerError reports a failure inside a log handler. The logger never
// returns it to the emitting caller; it is only reported on diagnostics.
type HandlerError struct {
	baseError
	Handler string
}

// NewHandlerError creates a new HandlerError for the named handler.
func NewHandlerError(handler string, cause error) *HandlerError {
	return &HandlerError{
		baseError: baseError{
			message:  "log handler failed",
			cause:    cause,
			severity: SeverityError,
		},
		Handler: handler,
	}
}

// Error returns the formatted error message.
func (e *HandlerError) Error() string {
	prefix := "handler error"
	if e.Handler != "" {
		prefix = fmt.Sprintf("handler error [handler=%s]", e.Handler)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.cause)
	}
	return prefix
}

// Is checks if this error matches the target.
func (e *HandlerError) Is(target error) bool {
	if _, ok := target.(*HandlerError); ok {
		return true
	}
	return target == ErrHandlerFailed
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsUsageError reports whether err stems from a caller mistake (bad sort key,
// unsupported format, invalid level or other invalid input). Usage errors are
// surfaced immediately and never retried.
func IsUsageError(err error) bool {
	if err == nil {
		return false
	}
	for _, sentinel := range usageSentinels {
		if Is(err, sentinel) {
			return true
		}
	}
	var validation *ValidationError
	return As(err, &validation)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that carry no severity of their own.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var sev interface{ Severity() Severity }
	if As(err, &sev) {
		return sev.Severity()
	}

	return SeverityError
}
