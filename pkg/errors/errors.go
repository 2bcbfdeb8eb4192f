// Package errors provides structured error types for slngraph.
//
// Errors carry a machine-readable [Code] so the CLI, the view panel and the
// HTTP display surface can decide how to report a failure without matching
// on message text:
//   - HOST_UNAVAILABLE: the solution or its host files could not be opened
//   - PROJECT_LOAD: a single project could not be loaded (non-fatal)
//   - SCAN_FAILED: no project of the solution could be scanned
//   - RENDER / RENDER_WRITE: the graph could not be rendered or persisted
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRenderWrite, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Host and scan errors
	ErrCodeHostUnavailable Code = "HOST_UNAVAILABLE"
	ErrCodeProjectLoad     Code = "PROJECT_LOAD"
	ErrCodeScanFailed      Code = "SCAN_FAILED"

	// Output errors
	ErrCodeRender      Code = "RENDER"
	ErrCodeRenderWrite Code = "RENDER_WRITE"

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
// For *Error types, returns the message followed by the cause, without
// the code prefix. For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}

// Fatal reports whether err aborts a whole scan-and-render operation, as
// opposed to a per-project failure that is reported next to partial results.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	return GetCode(err) != ErrCodeProjectLoad
}
