// Package errors defines the structured error type returned across the
// notification core's component boundaries.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ValidationError ErrorType = "VALIDATION_ERROR"
	NotFoundError   ErrorType = "NOT_FOUND"
	AuthError       ErrorType = "AUTHENTICATION_ERROR"
	TransportError  ErrorType = "TRANSPORT_ERROR"
	APIError        ErrorType = "API_ERROR"
	DecodeError     ErrorType = "DECODE_ERROR"
	ConflictError   ErrorType = "CONFLICT"
	ServerError     ErrorType = "SERVER_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code,omitempty"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the status the local API answers with for this error.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func AuthenticationFailed(message string) *AppError {
	return &AppError{
		Type:       AuthError,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func Conflict(message string, detail string) *AppError {
	return &AppError{
		Type:       ConflictError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusConflict,
	}
}

// Transport wraps a network-level failure (dial, TLS, connection reset).
func Transport(err error, message string) *AppError {
	return Wrap(err, TransportError, message)
}

// Decode wraps a response body that could not be parsed.
func Decode(err error, message string) *AppError {
	return Wrap(err, DecodeError, message)
}

// APIFailure describes a non-2xx answer from the backend. The upstream status
// is kept in Code; the local API answers 502 for it.
func APIFailure(status int, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	return &AppError{
		Type:       APIError,
		Code:       fmt.Sprintf("%d", status),
		Message:    message,
		HTTPStatus: upstreamStatus(status),
	}
}

// StatusOf returns the upstream HTTP status carried by an API_ERROR, or 0.
func StatusOf(err error) int {
	var appErr *AppError
	if !stderrors.As(err, &appErr) || appErr.Type != APIError {
		return 0
	}
	var status int
	if _, scanErr := fmt.Sscanf(appErr.Code, "%d", &status); scanErr != nil {
		return 0
	}
	return status
}

// IsType reports whether err is, or wraps, an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Type == errType
}

// upstreamStatus maps backend statuses onto what the local API should answer:
// auth and not-found pass through, everything else is a bad gateway.
func upstreamStatus(status int) int {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusConflict:
		return status
	default:
		return http.StatusBadGateway
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case AuthError:
		return http.StatusUnauthorized
	case ConflictError:
		return http.StatusConflict
	case TransportError, APIError, DecodeError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
