// Package response provides helpers for writing the API's JSON responses,
// including the structured error body shared by every endpoint.
package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the error body returned by all ledger endpoints. Error
// holds the stable, user-facing description; Details optionally carries the
// underlying cause (a field-error map from validation, or an error string).
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// RespondJSON writes data as JSON with the given status code. A nil data
// writes the status code only, which is how 204 No Content responses are
// sent. Encoding failures are logged, not surfaced; the status line has
// already gone out by then.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("failed to encode JSON response: %v", err)
		}
	}
}

// RespondError writes a structured error response.
//
// Example:
//
//	response.RespondError(w, http.StatusUnprocessableEntity, "insufficient available balance", err.Error())
//	response.RespondError(w, http.StatusNotFound, "ledger record not found", "")
func RespondError(w http.ResponseWriter, status int, message string, details interface{}) {
	RespondJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}
