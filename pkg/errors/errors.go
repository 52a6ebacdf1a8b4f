// Package errors provides structured error types for fsdcheck.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Mapping of failures to process exit codes
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - CONFIG_*: Policy configuration problems (fatal for a run)
//   - INVALID_*: Input validation failures
//   - UNKNOWN_*: References to things that do not exist
//   - POLICY_*: The graph breaches the architecture policy
//   - INTERNAL_*: Unexpected internal errors
//
// Violations themselves are never errors; they are returned as data by the
// rule engine. [ErrCodePolicyFailure] exists only so the command-line boundary
// can surface a failed check as a non-zero exit status.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfig, "unknown collapse mode %q", mode)
//	if errors.Is(err, errors.ErrCodeConfig) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "failed to read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeConfig        Code = "CONFIG_INVALID"
	ErrCodeConfigPattern Code = "CONFIG_PATTERN"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Reference errors
	ErrCodeUnknownModule Code = "UNKNOWN_MODULE"
	ErrCodeNotFound      Code = "NOT_FOUND"

	// Policy outcome
	ErrCodePolicyFailure Code = "POLICY_FAILURE"

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
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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

// IsConfiguration reports whether err is a fatal configuration or input-contract
// error. These abort a run, in contrast to policy failures.
func IsConfiguration(err error) bool {
	return Is(err, ErrCodeConfig) || Is(err, ErrCodeConfigPattern) || Is(err, ErrCodeUnknownModule)
}

// ExitCode maps an error to the process exit status used by the CLI:
// 0 for nil, 1 for policy failures, 2 for configuration and input errors,
// and 1 for anything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case Is(err, ErrCodePolicyFailure):
		return 1
	case IsConfiguration(err), Is(err, ErrCodeInvalidInput), Is(err, ErrCodeInvalidFormat), Is(err, ErrCodeInvalidPath):
		return 2
	default:
		return 1
	}
}
