// Package domainerrors provides code-carrying errors shared across modules.
// Services attach a Code so transport layers can map outcomes without string
// matching, and callers can branch with HasCode instead of errors.Is chains.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies the category of a domain error.
type Code string

const (
	// CodeInvalidInput marks malformed or incomplete caller input. The error
	// may carry structured failure reasons via Details.
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound marks a lookup for an entity that does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict marks an unresolvable ambiguity between equally valid
	// records. Retrying does not help until a human acts.
	CodeConflict Code = "conflict"
	// CodeWithheld marks a submission held back for human review.
	// Non-retryable from the caller's perspective.
	CodeWithheld Code = "withheld"
	// CodeUnavailable marks a transient infrastructure failure. Retryable.
	CodeUnavailable Code = "unavailable"
	// CodeUnauthorized marks missing or invalid caller credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeInternal marks an unexpected internal failure.
	CodeInternal Code = "internal"
)

// Error is a domain error with a machine-readable code, a human-readable
// message, optional structured details, and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// WithDetails returns a copy of the error carrying structured detail strings.
// Used for multi-reason validation failures so every problem is reported in
// one response.
func (e *Error) WithDetails(details ...string) *Error {
	clone := *e
	clone.Details = append([]string(nil), details...)
	return &clone
}

// HasCode reports whether err or any error in its chain carries the code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// CodeOf returns the code of the first domain error in the chain, or
// CodeInternal when the error carries no code.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// DetailsOf returns the structured details of the first domain error in the
// chain, if any.
func DetailsOf(err error) []string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}
