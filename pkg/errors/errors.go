// Package errors provides structured error types for the Karmyc layout engine.
//
// This package defines error codes and types that enable:
//   - A shared taxonomy for layout, gesture, and storage failures
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Malformed input or a layout that violates an invariant
//   - *_NOT_FOUND: A referenced node, screen, or stored layout does not exist
//   - GESTURE_*, SELF_DROP, AREA_TOO_SMALL: Interactive edits that resolve to a no-op
//   - STORAGE_*, INTERNAL_*: Backend and unexpected failures
//
// Layout mutations never panic on bad input. They return the unchanged tree
// together with one of these errors, so callers can log it and carry on.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNodeNotFound, "row %q does not exist", id)
//	if errors.Is(err, errors.ErrCodeNodeNotFound) {
//	    // Treat as a no-op
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "save layout %s", name)
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
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidID        Code = "INVALID_ID"
	ErrCodeInvalidLayout    Code = "INVALID_LAYOUT"
	ErrCodeInvalidReference Code = "INVALID_REFERENCE"
	ErrCodeInvalidRoot      Code = "INVALID_ROOT"
	ErrCodeInvalidSize      Code = "INVALID_SIZE"
	ErrCodeInvalidPlacement Code = "INVALID_PLACEMENT"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeNodeNotFound   Code = "NODE_NOT_FOUND"
	ErrCodeScreenNotFound Code = "SCREEN_NOT_FOUND"

	// Interaction errors. These describe edits that resolve to a no-op.
	ErrCodeAreaTooSmall   Code = "AREA_TOO_SMALL"
	ErrCodeSelfDrop       Code = "SELF_DROP"
	ErrCodeNotSiblings    Code = "NOT_SIBLINGS"
	ErrCodeGestureAborted Code = "GESTURE_ABORTED"

	// Storage errors
	ErrCodeStorage Code = "STORAGE_ERROR"

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

// IsNoop reports whether err describes an interaction that was cancelled
// rather than a genuine failure. The surrounding UI treats these silently.
func IsNoop(err error) bool {
	switch GetCode(err) {
	case ErrCodeSelfDrop, ErrCodeGestureAborted, ErrCodeAreaTooSmall:
		return true
	}
	return false
}
