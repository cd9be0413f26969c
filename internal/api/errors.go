package api

import (
	"encoding/json"
	"io"
	"net/http"
)

// ErrorCode represents error codes used in API responses
type ErrorCode string

const (
	// ErrorCodeInvalidRequest represents a malformed or oversized request
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	// ErrorCodeInvalidEntity represents an external entity that violates
	// the offset or confidence contract
	ErrorCodeInvalidEntity ErrorCode = "INVALID_ENTITY"

	// ErrorCodeInternalError represents an internal server error
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   ErrorCode `json:"error"`
	Message string    `json:"message"`
}

// writeJSON writes a JSON response to the response writer
func writeJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(data)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = writeJSON(w, data)
}

// respondWithError sends an error response
func respondWithError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	respondJSON(w, status, ErrorResponse{Error: code, Message: message})
}
