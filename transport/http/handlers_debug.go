package httptransport

import (
	"net/http"
	"strconv"

	"secure-chat/internal"
)

const defaultDebugLimit = 200

// handleDebugKeys lists stored keys and sizes. Values are never returned.
func (h *Handler) handleDebugKeys(w http.ResponseWriter, r *http.Request) {
	limit := defaultDebugLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	rows, err := internal.ScanKeys(h.inspector, r.URL.Query().Get("prefix"), limit, nil)
	if err != nil {
		h.log.ErrorContext(r.Context(), "Unable to scan keys", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "unavailable", Message: "storage temporarily unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
