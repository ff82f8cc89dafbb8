// Package apperror provides structured, code-tagged errors.
//
// The depth search depends on telling real failures apart from the
// domain "no quote for this size" signal, so errors are never collapsed
// into zero values: every failure carries a Code that classifies it as
// transient, client-side, malformed, or domain.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError implements the error interface and carries a classification
// code plus the originating HTTP status, when one exists.
type AppError struct {
	Code       Code   `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
	Context    string `json:"context,omitempty"`
	cause      error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Context)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is implements errors.Is; two AppErrors match when their codes match.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Option is a functional option for AppError
type Option func(*AppError)

// WithMessage sets a custom message
func WithMessage(message string) Option {
	return func(e *AppError) {
		e.Message = message
	}
}

// WithContext adds context information
func WithContext(context string) Option {
	return func(e *AppError) {
		e.Context = context
	}
}

// WithStatusCode records the HTTP status that produced the error
func WithStatusCode(statusCode int) Option {
	return func(e *AppError) {
		e.StatusCode = statusCode
	}
}

// WithCause wraps an underlying error
func WithCause(cause error) Option {
	return func(e *AppError) {
		e.cause = cause
	}
}

// New creates a new AppError with the given code and options
func New(code Code, opts ...Option) *AppError {
	err := &AppError{
		Code:    code,
		Message: messages[code],
	}

	for _, opt := range opts {
		opt(err)
	}

	if err.Message == "" {
		err.Message = string(code)
	}

	return err
}

// FromStatus classifies an HTTP status code into an AppError.
func FromStatus(statusCode int, context string) *AppError {
	var code Code
	switch {
	case statusCode == http.StatusTooManyRequests:
		code = CodeRateLimited
	case statusCode >= 500:
		code = CodeServerError
	case statusCode >= 400:
		code = CodeClientError
	default:
		code = CodeUnknownError
	}
	return New(code, WithStatusCode(statusCode), WithContext(context))
}

// Wrap wraps a standard error into an AppError with the given code.
// An error that is already an AppError is returned unchanged.
func Wrap(err error, code Code, context string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if context != "" && appErr.Context == "" {
			appErr.Context = context
		}
		return appErr
	}

	return New(code, WithContext(context), WithCause(err))
}

// GetCode extracts the error code from an error
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}

// StatusCode returns the HTTP status carried by err, or 0 if none.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 0
}

// IsTransient reports whether err is worth retrying: a 429 or 5xx
// status, or one of the transient codes (timeouts, unavailability).
// Malformed responses and domain no-quote errors are never transient.
func IsTransient(err error) bool {
	status := StatusCode(err)
	if status == http.StatusTooManyRequests || status >= 500 {
		return true
	}
	switch GetCode(err) {
	case CodeRateLimited, CodeServerError, CodeServiceTimeout, CodeServiceUnavailable:
		return true
	}
	return false
}

// IsNoQuote reports whether err is the domain "no viable quote" signal.
func IsNoQuote(err error) bool {
	return GetCode(err) == CodeNoQuote
}

// IsMalformed reports whether err is a response-schema mismatch.
func IsMalformed(err error) bool {
	return GetCode(err) == CodeMalformedResponse
}
