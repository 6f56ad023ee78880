package prospeo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "enrich-service/internal/common/errors"
)

func TestFindEmail_Success(t *testing.T) {
	var gotKey string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/email-finder", r.URL.Path)
		gotKey = r.Header.Get("X-KEY")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Write([]byte(`{"error": false, "response": {"email": {"email": "jane.doe@xcorp.com"}}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	email, err := client.FindEmail(context.Background(), "Jane", "Doe", "X Corp")

	require.NoError(t, err)
	assert.Equal(t, "jane.doe@xcorp.com", email)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "Jane", gotBody["first_name"])
	assert.Equal(t, "X Corp", gotBody["company"])
}

func TestFindEmail_NothingFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": true}`))
	}))
	defer srv.Close()

	_, err := NewClient("test-key", srv.URL).FindEmail(context.Background(), "Jane", "Doe", "X Corp")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestFindEmail_StatusMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient("bad-key", srv.URL).FindEmail(context.Background(), "Jane", "Doe", "X Corp")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeAuth))
}

func TestFindEmail_RequiresAName(t *testing.T) {
	_, err := NewClient("test-key", "http://unused.invalid").FindEmail(context.Background(), "", "", "X Corp")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}
