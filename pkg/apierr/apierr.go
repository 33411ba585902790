// Package apierr defines the gateway's error taxonomy. Business logic returns
// *Error values; the HTTP edge maps each Kind to a status code and a
// structured JSON body.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP edge.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindAuthentication  Kind = "authentication"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindPayloadTooLarge Kind = "payload_too_large"
	KindRateLimit       Kind = "rate_limit"
	KindInternal        Kind = "internal"
)

// Stable machine-readable codes. Messages may change, codes may not.
const (
	CodeValidationFailed    = "validation_failed"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeMissingToken        = "missing_token"
	CodeInvalidToken        = "invalid_token"
	CodeInvalidRefreshToken = "invalid_refresh_token"
	CodeForbidden           = "forbidden"
	CodeNotFound            = "not_found"
	CodeConflict            = "conflict"
	CodePayloadTooLarge     = "payload_too_large"
	CodeRateLimited         = "rate_limited"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeInternal            = "internal_error"
)

// Error is a typed gateway error.
type Error struct {
	Kind    Kind
	Code    string
	Message string

	// RetryAfter is the number of seconds a client should wait. Only set for
	// KindRateLimit.
	RetryAfter int

	// Err is the underlying cause, never rendered to clients.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidationFailed, Message: msg}
}

func Authentication(code, msg string) *Error {
	return &Error{Kind: KindAuthentication, Code: code, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Code: CodeForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Code: CodeConflict, Message: msg}
}

func PayloadTooLarge(msg string) *Error {
	return &Error{Kind: KindPayloadTooLarge, Code: CodePayloadTooLarge, Message: msg}
}

// RateLimited builds a 429 error. retryAfter is clamped to at least one second.
func RateLimited(retryAfter int) *Error {
	return &Error{
		Kind:       KindRateLimit,
		Code:       CodeRateLimited,
		Message:    "Too many requests. Please try again later.",
		RetryAfter: max(retryAfter, 1),
	}
}

func Internal(code, msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Code: code, Message: msg, Err: cause}
}

// Predefined errors shared across packages.
var (
	ErrMissingToken = Authentication(CodeMissingToken, "Missing access token")
	ErrInvalidToken = Authentication(CodeInvalidToken, "Invalid or expired token")
)

// From converts any error into an *Error. Unknown errors become internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(CodeInternal, "Internal server error", err)
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
