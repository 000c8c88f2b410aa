// Package errors provides the typed error taxonomy for the duty engine.
package errors

import (
	"errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeInput indicates invalid calculation input, rejected before any
	// repository or price-feed access
	TypeInput Type = "INPUT_ERROR"

	// TypePricing indicates a commodity price could not be resolved
	TypePricing Type = "PRICING_ERROR"

	// TypeRepository indicates the rule repository failed; fatal for the
	// calculation, no partial result is returned
	TypeRepository Type = "REPOSITORY_ERROR"

	// TypeNetwork indicates a transport-level feed failure
	TypeNetwork Type = "NETWORK_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeNotFound indicates a record was not found
	TypeNotFound Type = "NOT_FOUND"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error is a domain error with a category and optional cause
type Error struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps a cause with a category and message
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{Type: errType, Message: message, Cause: cause}
}

// Wrapf wraps a cause with a category and formatted message
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsType reports whether err (or anything it wraps) carries the given type
func IsType(err error, t Type) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// TypeOf returns the category of err, or TypeInternal for untyped errors
func TypeOf(err error) Type {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return TypeInternal
}

// Input creates an input validation error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Inputf creates a formatted input validation error
func Inputf(format string, args ...interface{}) *Error {
	return Newf(TypeInput, format, args...)
}

// PriceUnavailable creates a pricing resolution error for a commodity
func PriceUnavailable(commodity string, cause error) *Error {
	return Wrapf(TypePricing, cause, "no price available for %s", commodity)
}

// Repository creates a repository failure error
func Repository(message string, cause error) *Error {
	return Wrap(TypeRepository, message, cause)
}

// NotFound creates a not found error
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier)
}
