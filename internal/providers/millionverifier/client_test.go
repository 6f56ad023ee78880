package millionverifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "enrich-service/internal/common/errors"
)

func TestVerify_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api"))
		assert.Equal(t, "jane@x.com", r.URL.Query().Get("email"))

		w.Write([]byte(`{"result": "ok", "quality": "good"}`))
	}))
	defer srv.Close()

	result, err := NewClient("test-key", srv.URL).Verify(context.Background(), "jane@x.com")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestVerify_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "api key not found"}`))
	}))
	defer srv.Close()

	_, err := NewClient("bad-key", srv.URL).Verify(context.Background(), "jane@x.com")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeAuth))
}

func TestVerify_RetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"result": "catch_all"}`))
	}))
	defer srv.Close()

	result, err := NewClient("test-key", srv.URL).Verify(context.Background(), "jane@x.com")

	require.NoError(t, err)
	assert.Equal(t, "catch_all", result)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestVerify_DoesNotRetryAuthFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient("bad-key", srv.URL).Verify(context.Background(), "jane@x.com")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeAuth))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestVerify_RequiresEmail(t *testing.T) {
	_, err := NewClient("test-key", "http://unused.invalid").Verify(context.Background(), "")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}
