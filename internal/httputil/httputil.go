// Package httputil provides JSON response helpers shared by HTTP handlers.
package httputil

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrorBody is the wire form of an error response.
type ErrorBody struct {
	ID      uuid.UUID      `json:"id"`
	Time    time.Time      `json:"time"`
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteErrorResponse writes a structured error response. Each response gets a
// unique identifier so callers can quote it in support requests.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	WriteJSON(w, status, ErrorBody{
		ID:      uuid.New(),
		Time:    time.Now().UTC(),
		Error:   code,
		Message: message,
		Details: details,
	})
}
