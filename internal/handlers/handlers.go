// Package handlers contains the HTTP handlers for the enrichment
// service: the provider callback receiver, the enrichment API used by
// the browser extension, and the usage/health endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"enrich-service/internal/common/logging"
	"enrich-service/internal/correlation"
	"enrich-service/internal/enrich"
	"enrich-service/internal/usage"
)

// Enricher runs one enrichment request end to end.
type Enricher interface {
	Enrich(ctx context.Context, subject string, wantPhone bool) (*enrich.Result, error)
}

// SheetAppender writes an enrichment result to a spreadsheet.
type SheetAppender interface {
	AppendResult(ctx context.Context, spreadsheetID, writeRange string, result *enrich.Result) error
}

// Handlers bundles the HTTP handlers and their dependencies.
type Handlers struct {
	enricher Enricher
	store    *correlation.Store
	ledger   *usage.DB
	sheets   SheetAppender // may be nil when no credentials are configured
}

// New creates the handler set. sheets may be nil to disable the
// spreadsheet sink.
func New(enricher Enricher, store *correlation.Store, ledger *usage.DB, sheets SheetAppender) *Handlers {
	return &Handlers{
		enricher: enricher,
		store:    store,
		ledger:   ledger,
		sheets:   sheets,
	}
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode response", err)
	}
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
