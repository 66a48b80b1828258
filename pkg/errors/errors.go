// Package errors provides structured error types for masonry.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input or configuration validation failures
//   - NOT_FOUND*: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// The layout engine itself only ever produces [ErrCodeInvalidConfiguration].
// Every other code belongs to the host surfaces around it.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfiguration, "outer width %v must be positive", w)
//	if errors.Is(err, errors.ErrCodeInvalidConfiguration) {
//	    // skip the visual update
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "decode manifest %s", path)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidConfiguration Code = "INVALID_CONFIGURATION"
	ErrCodeInvalidInput         Code = "INVALID_INPUT"
	ErrCodeInvalidFormat        Code = "INVALID_FORMAT"
	ErrCodeInvalidPolicy        Code = "INVALID_POLICY"
	ErrCodeInvalidManifest      Code = "INVALID_MANIFEST"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeGalleryNotFound Code = "GALLERY_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

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

// Messages joins the messages along err's chain without their codes, e.g.
// "decode manifest: tile 3: height must be non-negative". Unlike
// UserMessage it keeps the detail of wrapped causes.
func Messages(err error) string {
	var parts []string
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			parts = append(parts, err.Error())
			break
		}
		parts = append(parts, e.Message)
		err = e.Cause
	}
	return strings.Join(parts, ": ")
}

// IsInvalid reports whether err carries one of the INVALID_* codes.
func IsInvalid(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidConfiguration, ErrCodeInvalidInput, ErrCodeInvalidFormat,
		ErrCodeInvalidPolicy, ErrCodeInvalidManifest:
		return true
	}
	return false
}

// IsNotFound reports whether err carries one of the not-found codes.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeGalleryNotFound, ErrCodeFileNotFound:
		return true
	}
	return false
}
