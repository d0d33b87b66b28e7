// Package response renders the JSON envelope every handler replies with.
// The HTTP status is mirrored into the body so clients can branch on the
// payload alone.
package response

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the wire envelope. Data carries the payload on success,
// Errors carries field-level detail on failure; both are omitted when empty.
type APIResponse struct {
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// JSON writes resp with the given status code. Encoding failures are not
// recoverable at this point since the header has already been written.
func JSON(w http.ResponseWriter, statusCode int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

// Success writes a 200 envelope around data.
func Success(w http.ResponseWriter, data any, message string) {
	JSON(w, http.StatusOK, APIResponse{
		Status:  http.StatusOK,
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error writes a failure envelope. errs may be nil when the message says
// everything.
func Error(w http.ResponseWriter, statusCode int, message string, errs any) {
	JSON(w, statusCode, APIResponse{
		Status:  statusCode,
		Success: false,
		Message: message,
		Errors:  errs,
	})
}
