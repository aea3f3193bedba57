package api

import (
	"encoding/json"
	"net/http"

	"github.com/buemura/scamscan/internal/logging"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; all that is left is to record it.
		logging.Logger.Warnw("encoding API response failed", "status", status, "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if status >= http.StatusInternalServerError {
		logging.Logger.Errorw("API request failed", "status", status, "error", msg)
	}
	writeJSON(w, status, ErrorResponse{Error: msg, Code: status})
}
