package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	apperrors "enrich-service/internal/common/errors"
	"enrich-service/internal/common/logging"
	"enrich-service/internal/usage"
)

// EnrichRequest is the body of POST /api/enrich.
type EnrichRequest struct {
	// Subject is the profile to enrich, usually a LinkedIn URL.
	Subject string `json:"subject"`
	// WantPhone asks for asynchronous phone delivery; the call then
	// blocks up to the configured wait window before responding.
	WantPhone bool `json:"want_phone"`
	// Sheet optionally appends the result to a spreadsheet.
	Sheet *SheetTarget `json:"sheet,omitempty"`
}

// SheetTarget names the spreadsheet range to append to.
type SheetTarget struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	Range         string `json:"range"`
}

// HandleEnrich runs one enrichment. A result missing phone fields is a
// success: the wait window elapsing is a degraded result, never an
// error. Provider failures during the synchronous phase map to distinct
// statuses so clients know whether to retry.
func (h *Handlers) HandleEnrich(w http.ResponseWriter, r *http.Request) {
	var req EnrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Subject == "" {
		writeError(w, http.StatusBadRequest, "subject is required")
		return
	}
	if req.Sheet != nil && (req.Sheet.SpreadsheetID == "" || req.Sheet.Range == "") {
		writeError(w, http.StatusBadRequest, "sheet requires spreadsheet_id and range")
		return
	}

	start := time.Now()
	result, err := h.enricher.Enrich(r.Context(), req.Subject, req.WantPhone)
	if err != nil {
		h.recordAttempt(&usage.Record{
			AttemptID:      uuid.NewString(),
			Subject:        req.Subject,
			Outcome:        usage.OutcomeError,
			PhoneRequested: req.WantPhone,
			DurationMs:     time.Since(start).Milliseconds(),
		})
		writeError(w, statusForError(err), err.Error())
		return
	}

	h.recordAttempt(&usage.Record{
		AttemptID:      result.AttemptID,
		Subject:        result.Subject,
		ProviderID:     result.ProviderID,
		Outcome:        usage.OutcomeSuccess,
		PhoneRequested: req.WantPhone,
		PhoneDelivered: result.PhoneDelivered,
		DurationMs:     time.Since(start).Milliseconds(),
	})

	response := map[string]interface{}{"result": result}

	if req.Sheet != nil {
		if h.sheets == nil {
			response["sheet_appended"] = false
			response["sheet_error"] = "sheets sink is not configured"
		} else if err := h.sheets.AppendResult(r.Context(), req.Sheet.SpreadsheetID, req.Sheet.Range, result); err != nil {
			// The enrichment itself succeeded; surface the sink failure
			// without failing the call.
			logging.Error("Failed to append result to sheet", err,
				logging.String("spreadsheet_id", req.Sheet.SpreadsheetID))
			response["sheet_appended"] = false
			response["sheet_error"] = err.Error()
		} else {
			response["sheet_appended"] = true
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// recordAttempt appends to the usage ledger, logging instead of failing
// when the ledger write goes wrong.
func (h *Handlers) recordAttempt(record *usage.Record) {
	if h.ledger == nil {
		return
	}
	if err := h.ledger.RecordAttempt(record); err != nil {
		logging.Error("Failed to record usage", err,
			logging.String("attempt_id", record.AttemptID))
	}
}

// statusForError maps provider error kinds to response statuses.
func statusForError(err error) int {
	switch apperrors.GetType(err) {
	case apperrors.ErrTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrTypeRateLimit:
		return http.StatusTooManyRequests
	case apperrors.ErrTypeAuth, apperrors.ErrTypeConnection:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
