package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"-"`
	Internal   error       `json:"-"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Error codes returned in the "code" field of error envelopes
const (
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	ErrCodeAuthorization          = "AUTHORIZATION_ERROR"
	ErrCodeUpstreamUnavailable    = "UPSTREAM_UNAVAILABLE"
	ErrCodeInternal               = "INTERNAL_ERROR"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeRateLimited            = "RATE_LIMITED"
	ErrCodeDatabase               = "DATABASE_ERROR"
)

// UpstreamUnavailableMessage is the only text a client sees when a proxied call fails.
const UpstreamUnavailableMessage = "Failed to connect to upstream"

// New creates a new AppError
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Internal:   err,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// ValidationError reports missing or malformed input.
func ValidationError(message string, details interface{}) *AppError {
	return New(ErrCodeValidation, message, http.StatusBadRequest).WithDetails(details)
}

// AuthenticationRequired reports a request without a usable identity.
func AuthenticationRequired(message string) *AppError {
	return New(ErrCodeAuthenticationRequired, message, http.StatusUnauthorized)
}

// AuthorizationError reports an identity whose subscription tier is too low.
func AuthorizationError(message string) *AppError {
	return New(ErrCodeAuthorization, message, http.StatusForbidden)
}

// UpstreamUnavailable reports an unreachable or misbehaving proxy target.
// The cause is kept for logging and never serialized.
func UpstreamUnavailable(err error) *AppError {
	return Wrap(err, ErrCodeUpstreamUnavailable, UpstreamUnavailableMessage, http.StatusInternalServerError)
}

// Internal creates an internal server error carrying a client-safe message
func Internal(message string, err error) *AppError {
	return Wrap(err, ErrCodeInternal, message, http.StatusInternalServerError)
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// RateLimited creates a rate limited error
func RateLimited(message string) *AppError {
	return New(ErrCodeRateLimited, message, http.StatusTooManyRequests)
}

// DatabaseError creates a database error
func DatabaseError(message string, err error) *AppError {
	return Wrap(err, ErrCodeDatabase, message, http.StatusInternalServerError)
}

// ForEnvironment returns the error as it should be shown to a client.
// Outside development, internal errors keep only their generic message.
func ForEnvironment(err *AppError, environment string) *AppError {
	if err.StatusCode < http.StatusInternalServerError || environment != "development" || err.Internal == nil {
		return err
	}
	if err.Code == ErrCodeUpstreamUnavailable {
		return err
	}
	detailed := *err
	detailed.Details = map[string]string{"cause": err.Internal.Error()}
	return &detailed
}

// As reports whether err is an *AppError and returns it.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
