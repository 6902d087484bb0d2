// Package httputil centralizes JSON response envelopes so every endpoint
// reports success and failure the same way.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "onestack/pkg/domain-errors"
)

// ErrorResponse is the uniform failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into an HTTP failure envelope.
// Coded errors carry safe messages by construction; anything uncoded is
// reported generically so internals never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	WriteJSON(w, dErrors.ToHTTPStatus(code), ErrorResponse{
		Success: false,
		Error:   dErrors.MessageOf(err),
	})
}
