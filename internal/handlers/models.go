package handlers

import (
	"net/http"

	"fastrag/internal/llm"
)

// ModelsHandler serves the catalog of common model names per provider.
type ModelsHandler struct{}

// NewModelsHandler creates a new ModelsHandler.
func NewModelsHandler() *ModelsHandler {
	return &ModelsHandler{}
}

// ServeHTTP returns the model catalog as provider -> display name -> model id.
func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, llm.Catalog())
}
