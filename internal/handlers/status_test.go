package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrich-service/internal/correlation"
	"enrich-service/internal/usage"
)

func TestHandleUsage(t *testing.T) {
	ledger := testLedger(t)
	require.NoError(t, ledger.RecordAttempt(&usage.Record{
		AttemptID: "a1", Subject: "s1", Outcome: usage.OutcomeSuccess, PhoneDelivered: true,
	}))
	require.NoError(t, ledger.RecordAttempt(&usage.Record{
		AttemptID: "a2", Subject: "s2", Outcome: usage.OutcomeError,
	}))

	h := New(nil, correlation.NewStore(), ledger, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/usage?limit=10", nil)
	rr := httptest.NewRecorder()
	h.HandleUsage(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"total_attempts":2`)
	assert.Contains(t, rr.Body.String(), `"phones_delivered":1`)
	assert.Contains(t, rr.Body.String(), `"a1"`)
}

func TestHealthCheck(t *testing.T) {
	store := correlation.NewStore()
	store.Put("k", &correlation.PendingPayload{})
	h := New(nil, store, testLedger(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.HealthCheck(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"healthy"`)
	assert.Contains(t, rr.Body.String(), `"pending_payloads":1`)
}
