// Package response provides the JSON response helpers shared by all API
// handlers.
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the wire shape of every error response. Details carries
// diagnostic context and is omitted in production deployments.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing left to do but drop it.
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// WriteError writes a standardized error response. Pass an empty details
// string to omit the field.
func WriteError(w http.ResponseWriter, statusCode int, message, details string) {
	WriteJSON(w, statusCode, ErrorBody{Error: message, Details: details})
}

// WriteBadRequest writes a 400 error
func WriteBadRequest(w http.ResponseWriter, message, details string) {
	WriteError(w, http.StatusBadRequest, message, details)
}

// WriteUnauthorized writes a 401 error
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, "")
}

// WriteInternalError writes a 500 error
func WriteInternalError(w http.ResponseWriter, message, details string) {
	WriteError(w, http.StatusInternalServerError, message, details)
}

// WriteServiceUnavailable writes a 503 error
func WriteServiceUnavailable(w http.ResponseWriter, message, details string) {
	WriteError(w, http.StatusServiceUnavailable, message, details)
}
