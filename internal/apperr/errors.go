// Package apperr defines the error taxonomy shared by repositories, services
// and handlers. Every error carries a stable code that handlers map to an
// HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of application error.
type Code string

const (
	CodeValidation         Code = "validation_error"
	CodeEmptyCart          Code = "empty_cart"
	CodeInvalidQuantity    Code = "invalid_quantity"
	CodeProductUnavailable Code = "product_unavailable"
	CodeInsufficientStock  Code = "insufficient_stock"
	CodeMissingAuthHeader  Code = "missing_or_malformed_header"
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeExpiredToken       Code = "token_expired"
	CodeInvalidToken       Code = "invalid_token"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInternal           Code = "internal_error"
)

// Error is an application error with a machine readable code and a message
// that is safe to return to API clients.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error with the same code, so that
// errors.Is(err, ErrNotFound) matches any not-found error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Status returns the HTTP status associated with the error code.
func (e *Error) Status() int {
	return StatusFor(e.Code)
}

var (
	ErrInvalidInput       = &Error{Code: CodeValidation, Message: "invalid input"}
	ErrEmptyCart          = &Error{Code: CodeEmptyCart, Message: "order must include at least one item"}
	ErrInvalidQuantity    = &Error{Code: CodeInvalidQuantity, Message: "quantity must be > 0"}
	ErrProductUnavailable = &Error{Code: CodeProductUnavailable, Message: "product not available"}
	ErrInsufficientStock  = &Error{Code: CodeInsufficientStock, Message: "insufficient stock"}
	ErrMissingAuthHeader  = &Error{Code: CodeMissingAuthHeader, Message: "missing or invalid Authorization header"}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Message: "invalid credentials"}
	ErrExpiredToken       = &Error{Code: CodeExpiredToken, Message: "token expired"}
	ErrInvalidToken       = &Error{Code: CodeInvalidToken, Message: "invalid token"}
	ErrForbidden          = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConflict           = &Error{Code: CodeConflict, Message: "conflict"}
)

// New builds an error with the given code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...any) *Error {
	return New(CodeValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(CodeConflict, format, args...)
}

// StatusFor maps an error code to its HTTP status. Unknown codes are 500.
func StatusFor(code Code) int {
	switch code {
	case CodeValidation, CodeEmptyCart, CodeInvalidQuantity, CodeProductUnavailable, CodeInsufficientStock:
		return http.StatusBadRequest
	case CodeMissingAuthHeader, CodeInvalidCredentials, CodeExpiredToken, CodeInvalidToken:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// From extracts the *Error in err's chain. The second result is false for
// errors outside the taxonomy, which callers treat as internal failures.
func From(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
