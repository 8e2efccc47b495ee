package errors

import (
	"strings"
	"unicode"
)

// MaxDrawingIDLength bounds caller-supplied drawing identifiers.
const MaxDrawingIDLength = 128

// ValidateDrawingID validates a caller-supplied drawing identifier.
// Identifiers become file names and storage keys, so they are restricted to
// ASCII letters, digits, '.', '_' and '-', and may not contain "..".
func ValidateDrawingID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "drawing id cannot be empty")
	}

	if len(id) > MaxDrawingIDLength {
		return New(ErrCodeInvalidID, "drawing id too long (max %d characters)", MaxDrawingIDLength)
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidID, "drawing id cannot contain %q", "..")
	}

	for _, r := range id {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-') {
			return New(ErrCodeInvalidID, "drawing id contains invalid character %q", r)
		}
	}

	return nil
}

// ValidateOutputPath validates a file path the CLI is asked to write to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
