// Package errors provides structured error types for floorcad.
//
// Every failure that can reach a user carries a machine-readable [Code] so
// that the CLI and the HTTP server can map it to an exit status or response
// code without string matching. Compilation failures additionally carry the
// field path of the offending value (for example "rooms[1].doors[0].width").
//
// # Error Codes
//
//   - MALFORMED_DOCUMENT: a required field is absent or has the wrong type
//   - INVALID_GEOMETRY: a dimension is non-positive or not finite
//   - UNKNOWN_OPENING_SIDE: an opening names a wall outside top/bottom/left/right
//   - SINK_FAILURE: the drawing could not be written or persisted
//
// # Usage
//
//	err := errors.Field(errors.ErrCodeInvalidGeometry, "rooms[0].width", "width must be positive, got %g", w)
//	if errors.Is(err, errors.ErrCodeInvalidGeometry) {
//	    // reject the document
//	}
//
//	err := errors.Wrap(errors.ErrCodeSinkFailure, cause, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Floor-plan document errors
	ErrCodeMalformedDocument  Code = "MALFORMED_DOCUMENT"
	ErrCodeInvalidGeometry    Code = "INVALID_GEOMETRY"
	ErrCodeUnknownOpeningSide Code = "UNKNOWN_OPENING_SIDE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidID     Code = "INVALID_ID"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Output errors
	ErrCodeSinkFailure Code = "SINK_FAILURE"
	ErrCodeNotFound    Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code, an optional field path and an
// optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Field   string // Path of the offending field, empty when not field specific
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
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

// Field creates a new Error attributed to the field at path.
func Field(code Code, path string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Field:   path,
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

// GetField extracts the field path from an error, if available.
func GetField(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (prefixed by the field path when set)
// without the code prefix. For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Field != "" {
			return e.Field + ": " + e.Message
		}
		return e.Message
	}
	return err.Error()
}

// IsDocumentError reports whether err rejects the input document itself, as
// opposed to a failure while writing the result.
func IsDocumentError(err error) bool {
	switch GetCode(err) {
	case ErrCodeMalformedDocument, ErrCodeInvalidGeometry, ErrCodeUnknownOpeningSide:
		return true
	}
	return false
}
