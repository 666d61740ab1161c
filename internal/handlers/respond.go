package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"fastrag/internal/llm"
	"fastrag/internal/service"
	"fastrag/internal/storage"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Detail: message,
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// statusForError maps service and storage errors to HTTP status codes.
func statusForError(err error) int {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, llm.ErrUnsupportedProvider),
		errors.Is(err, llm.ErrMissingCredential):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		// ErrUpstream, ErrStorage, and anything unexpected.
		return http.StatusInternalServerError
	}
}
