// Package domainerrors defines the stable error kinds surfaced by services.
//
// Services return *Error values carrying a Code; transport layers translate the
// Code into a status and a caller-safe message (see pkg/platform/httputil).
// Store and infrastructure layers return sentinel errors instead and let the
// service decide which Code applies.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for translation at the transport boundary.
type Code string

const (
	CodeValidation    Code = "validation_error"
	CodeBadRequest    Code = "bad_request"
	CodeNotFound      Code = "not_found"
	CodeInvalidState  Code = "invalid_state"
	CodeUnauthorized  Code = "unauthorized"
	CodeForbidden     Code = "forbidden"
	CodeRateLimited   Code = "rate_limited"
	CodeConfiguration Code = "configuration_error"
	CodeGeneration    Code = "generation_error"
	CodeParse         Code = "parse_error"
	CodeTimeout       Code = "timeout"
	CodeInternal      Code = "internal_error"
)

// Error is a domain error with a stable Code and a caller-safe Message.
// Cause holds the underlying failure for logs and diagnostics; it is never
// part of Message.
type Error struct {
	Code    Code
	Message string
	Fields  []string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same Code and Message, so tests can use
// errors.Is against a freshly constructed value.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New builds an Error without an underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds an Error that keeps err as its cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Cause: err}
}

// Validation builds a CodeValidation error naming the offending fields.
func Validation(message string, fields ...string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Cause
	}
	return false
}

// Is is shorthand for HasCode, kept for call sites that read better as a predicate.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost Code in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}
