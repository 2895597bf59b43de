// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Kind classifies a domain failure; each kind maps to exactly one HTTP status.
type Kind int

const (
	Internal Kind = iota
	Validation
	Unauthenticated
	InvalidCredentials
	Forbidden
	NotFound
	Conflict
	TooManyRequests
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Unauthenticated:
		return "unauthenticated"
	case InvalidCredentials:
		return "invalid_credentials"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case TooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

// AppError is the typed failure returned by services. Message is safe to show
// to clients; Err carries the underlying cause for logs only.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status for the error kind.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case Unauthenticated, InvalidCredentials:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case TooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Response converts the error into the client envelope. Internal errors never
// expose their message.
func (e *AppError) Response() *APIError {
	if e.Kind == Internal {
		return New(MsgInternal)
	}
	return New(e.Message)
}

const MsgInternal = "Error interno del servidor"

func NewValidationErr(msg string) *AppError {
	return &AppError{Kind: Validation, Message: msg}
}

func NewUnauthenticated(msg string) *AppError {
	return &AppError{Kind: Unauthenticated, Message: msg}
}

func NewInvalidCredentials() *AppError {
	return &AppError{Kind: InvalidCredentials, Message: "credenciales invalidas"}
}

func NewForbidden(msg string) *AppError {
	return &AppError{Kind: Forbidden, Message: msg}
}

func NewNotFound(msg string) *AppError {
	return &AppError{Kind: NotFound, Message: msg}
}

func NewConflict(msg string, err error) *AppError {
	return &AppError{Kind: Conflict, Message: msg, Err: err}
}

func NewTooManyRequests(msg string) *AppError {
	return &AppError{Kind: TooManyRequests, Message: msg}
}

func NewInternal(err error) *AppError {
	return &AppError{Kind: Internal, Message: MsgInternal, Err: err}
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether err carries an *AppError of the given kind.
func Is(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}
