package handlers

import (
	"net/http"
	"strconv"
	"time"

	"enrich-service/internal/common/logging"
)

// HandleUsage returns the newest ledger entries plus aggregate totals.
func (h *Handlers) HandleUsage(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	records, err := h.ledger.RecentAttempts(limit)
	if err != nil {
		logging.Error("Failed to read usage ledger", err)
		writeError(w, http.StatusInternalServerError, "failed to read usage ledger")
		return
	}

	stats, err := h.ledger.GetStats()
	if err != nil {
		logging.Error("Failed to read usage stats", err)
		writeError(w, http.StatusInternalServerError, "failed to read usage stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats":    stats,
		"attempts": records,
	})
}

// HealthCheck returns the health status of the service and its
// dependencies.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":           "healthy",
		"timestamp":        time.Now(),
		"pending_payloads": h.store.Size(),
	}

	code := http.StatusOK
	if h.ledger != nil {
		if err := h.ledger.Health(); err != nil {
			status["status"] = "degraded"
			status["ledger_status"] = "unhealthy"
			status["ledger_error"] = err.Error()
			code = http.StatusServiceUnavailable
		} else {
			status["ledger_status"] = "healthy"
		}
	}

	writeJSON(w, code, status)
}
