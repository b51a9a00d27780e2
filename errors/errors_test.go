package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ValidationError, "invalid input", "field required")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "field required", err.Detail)
	assert.Equal(t, 400, err.HTTPStatus)
}

func TestWrap(t *testing.T) {
	originalErr := fmt.Errorf("original error")
	wrappedErr := Wrap(originalErr, TransportError, "request failed")

	assert.Equal(t, TransportError, wrappedErr.Type)
	assert.Equal(t, "request failed", wrappedErr.Message)
	assert.Equal(t, originalErr.Error(), wrappedErr.Detail)
	assert.Equal(t, 502, wrappedErr.HTTPStatus)
	assert.True(t, stderrors.Is(wrappedErr, originalErr))
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ServerError, "nothing"))
}

func TestNotFound(t *testing.T) {
	err := NotFound("Notification", "n1")
	assert.Equal(t, NotFoundError, err.Type)
	assert.Equal(t, "Notification not found", err.Message)
	assert.Equal(t, "ID: n1", err.Detail)
	assert.Equal(t, 404, err.HTTPStatus)
}

func TestAPIFailure(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		message        string
		expectedMsg    string
		expectedStatus int
	}{
		{name: "server error maps to bad gateway", status: 500, message: "boom", expectedMsg: "boom", expectedStatus: 502},
		{name: "empty message falls back to status", status: 503, expectedMsg: "HTTP 503", expectedStatus: 502},
		{name: "not found passes through", status: 404, message: "gone", expectedMsg: "gone", expectedStatus: 404},
		{name: "unauthorized passes through", status: 401, message: "expired", expectedMsg: "expired", expectedStatus: 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := APIFailure(tt.status, tt.message)
			assert.Equal(t, APIError, err.Type)
			assert.Equal(t, tt.expectedMsg, err.Message)
			assert.Equal(t, tt.expectedStatus, err.GetHTTPStatus())
			assert.Equal(t, tt.status, StatusOf(err))
		})
	}
}

func TestStatusOf_NonAPIError(t *testing.T) {
	assert.Equal(t, 0, StatusOf(fmt.Errorf("plain")))
	assert.Equal(t, 0, StatusOf(ValidationFailed("bad", "")))
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("outer: %w", AuthenticationFailed("no token"))
	assert.True(t, IsType(err, AuthError))
	assert.False(t, IsType(err, ValidationError))
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "with detail",
			err:      &AppError{Type: ValidationError, Message: "invalid input", Detail: "field required"},
			expected: "VALIDATION_ERROR: invalid input (field required)",
		},
		{
			name:     "without detail",
			err:      &AppError{Type: AuthError, Message: "unauthorized"},
			expected: "AUTHENTICATION_ERROR: unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}
