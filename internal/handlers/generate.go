package handlers

import (
	"encoding/json"
	"net/http"

	"fastrag/internal/contextutil"
	"fastrag/internal/service"
)

// Defaults applied when the request body omits the field, matching the
// documented API defaults.
const (
	defaultTemperature = 0.3
	defaultMaxTokens   = 1024
)

// GenerateHandler handles streaming generation requests.
type GenerateHandler struct {
	generateService service.GenerateService
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(generateService service.GenerateService) *GenerateHandler {
	return &GenerateHandler{
		generateService: generateService,
	}
}

// GenerateRequest represents the HTTP request payload for generation.
// Temperature and MaxTokens are pointers so that absent fields get defaults.
type GenerateRequest struct {
	Question    string   `json:"question"`
	LLMProvider string   `json:"llm_provider"`
	LLMModel    string   `json:"llm_model"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
	SessionID   string   `json:"session_id"`
	RAGEnabled  bool     `json:"rag_enabled"`
}

// ServeHTTP streams the generated answer as a chunked text/plain body, one
// fragment per chunk. Errors before the first fragment map to JSON error
// responses; a failure mid-stream can only terminate the body.
func (h *GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	svcReq := service.GenerationRequest{
		Question:    req.Question,
		Provider:    req.LLMProvider,
		Model:       req.LLMModel,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		SessionID:   req.SessionID,
		RAGEnabled:  req.RAGEnabled,
	}
	if req.Temperature != nil {
		svcReq.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		svcReq.MaxTokens = *req.MaxTokens
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	// Headers are committed on the first fragment; until then errors can
	// still pick their own status code.
	started := false
	err := h.generateService.Generate(ctx, svcReq, func(fragment string) error {
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := w.Write([]byte(fragment)); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})

	if err != nil {
		if started {
			// Partial output is already caller-visible; the truncated body
			// is the only possible signal at this point.
			logger.ErrorContext(ctx, "generation failed mid-stream", "error", err)
			return
		}
		logger.ErrorContext(ctx, "generation failed", "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	if !started {
		// Empty completion: still a success, just with no fragments.
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
	}
}
