package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code is the stable identifier clients switch on.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeQuotaExceeded Code = "QUOTA_EXCEEDED"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Metadata drives how a code is rendered at the HTTP boundary.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

const (
	hideDetails = false
	showDetails = true
)

var metadataByCode = map[Code]Metadata{
	CodeValidation:    {http.StatusBadRequest, false, "validation failed", showDetails},
	CodeUnauthorized:  {http.StatusUnauthorized, false, "authentication required", hideDetails},
	CodeForbidden:     {http.StatusForbidden, false, "access denied", hideDetails},
	CodeNotFound:      {http.StatusNotFound, false, "resource not found", hideDetails},
	CodeConflict:      {http.StatusConflict, false, "conflict detected", hideDetails},
	CodeStateConflict: {http.StatusUnprocessableEntity, false, "state transition disallowed", showDetails},
	CodeQuotaExceeded: {http.StatusPaymentRequired, false, "plan limit reached, upgrade required", showDetails},
	CodeIdempotency:   {http.StatusConflict, false, "idempotency key reused", showDetails},
	CodeRateLimit:     {http.StatusTooManyRequests, false, "rate limit exceeded", hideDetails},
	CodeInternal:      {http.StatusInternalServerError, true, "internal server error", hideDetails},
	CodeDependency:    {http.StatusServiceUnavailable, true, "dependency unavailable", showDetails},
}

// MetadataFor falls back to the internal error entry for unknown codes.
func MetadataFor(code Code) Metadata {
	meta, ok := metadataByCode[code]
	if !ok {
		return metadataByCode[CodeInternal]
	}
	return meta
}

// Error is the typed error services return. The message is for logs; clients
// only ever see the public message of its code plus allowed details.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches a code to err. A nil err behaves like New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	default:
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// IsCode reports whether err carries the given typed code anywhere in its chain.
func IsCode(err error, code Code) bool {
	if typed := As(err); typed != nil {
		return typed.code == code
	}
	return false
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
