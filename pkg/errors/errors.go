// Package errors provides structured error types for dotwhisker.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI, and server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a flat naming convention mirroring the failure
// taxonomy of the transformation pipeline:
//   - INPUT_FORMAT: the tidied input lacks required columns
//   - INVALID_PARAMETER: a caller-supplied parameter is out of range
//   - INSUFFICIENT_MODELS: a multi-model plot was requested with < 2 models
//   - AMBIGUOUS_ORDER: an explicit ordering omits entries present in the data
//   - UNKNOWN_TERM: a bracket group references a term absent from the table
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidParameter, "alpha must be in (0,1), got %v", alpha)
//	if errors.Is(err, errors.ErrCodeInvalidParameter) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInputFormat, origErr, "tidy model %d", i)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure taxonomy of the plotting pipeline.
const (
	// Input validation errors
	ErrCodeInputFormat      Code = "INPUT_FORMAT"
	ErrCodeInvalidParameter Code = "INVALID_PARAMETER"
	ErrCodeInvalidTheme     Code = "INVALID_THEME"

	// Plot construction errors
	ErrCodeInsufficientModels Code = "INSUFFICIENT_MODELS"
	ErrCodeAmbiguousOrder     Code = "AMBIGUOUS_ORDER"
	ErrCodeUnknownTerm        Code = "UNKNOWN_TERM"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
