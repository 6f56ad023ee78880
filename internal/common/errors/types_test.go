package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := ConnectionError("request failed", fmt.Errorf("dial tcp: refused"))
	assert.Contains(t, err.Error(), "connection")
	assert.Contains(t, err.Error(), "request failed")
	assert.Contains(t, err.Error(), "dial tcp: refused")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := InternalError("wrapper", cause)
	assert.True(t, stderrors.Is(err, cause))
}

func TestAppError_WithContext(t *testing.T) {
	err := ValidationError("bad input").WithContext("field", "subject")
	assert.Equal(t, "subject", err.Context["field"])
	assert.Contains(t, err.Error(), "field=subject")
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected ErrorType
	}{
		{"connection", ConnectionError("msg", nil), ErrTypeConnection},
		{"auth", AuthError("msg"), ErrTypeAuth},
		{"rate limit", RateLimitError("apollo"), ErrTypeRateLimit},
		{"not found", NotFoundError("person"), ErrTypeNotFound},
		{"validation", ValidationError("msg"), ErrTypeValidation},
		{"config", ConfigError("msg"), ErrTypeConfig},
		{"timeout", TimeoutError("match"), ErrTypeTimeout},
		{"internal", InternalError("msg", nil), ErrTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Type)
		})
	}
}

func TestFromHTTPStatus(t *testing.T) {
	tests := []struct {
		status   int
		expected ErrorType
	}{
		{http.StatusUnauthorized, ErrTypeAuth},
		{http.StatusForbidden, ErrTypeAuth},
		{http.StatusTooManyRequests, ErrTypeRateLimit},
		{http.StatusNotFound, ErrTypeNotFound},
		{http.StatusInternalServerError, ErrTypeConnection},
		{http.StatusBadGateway, ErrTypeConnection},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			err := FromHTTPStatus(tt.status, "apollo")
			assert.Equal(t, tt.expected, err.Type)
			assert.Contains(t, err.Error(), "apollo")
		})
	}
}

func TestIsType(t *testing.T) {
	assert.True(t, IsType(NotFoundError("person"), ErrTypeNotFound))
	assert.False(t, IsType(NotFoundError("person"), ErrTypeAuth))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrTypeInternal))
	assert.False(t, IsType(nil, ErrTypeInternal))
}

func TestGetType(t *testing.T) {
	assert.Equal(t, ErrTypeRateLimit, GetType(RateLimitError("apollo")))
	assert.Equal(t, ErrTypeInternal, GetType(fmt.Errorf("plain")))
	assert.Equal(t, ErrorType(""), GetType(nil))
}
