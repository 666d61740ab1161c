package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fastrag/internal/contextutil"
	"fastrag/internal/storage"
)

// HistoryHandler handles chat history requests.
type HistoryHandler struct {
	chats storage.ChatStore
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(chats storage.ChatStore) *HistoryHandler {
	return &HistoryHandler{chats: chats}
}

// ChatMessageCreate represents the request payload for creating a chat message.
type ChatMessageCreate struct {
	SessionID   string `json:"session_id"`
	Role        string `json:"role"`
	Message     string `json:"message"`
	LLMProvider string `json:"llm_provider"`
	LLMModel    string `json:"llm_model"`
}

// ChatMessageResponse represents a stored chat message.
type ChatMessageResponse struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	Role        string    `json:"role"`
	Message     string    `json:"message"`
	LLMProvider string    `json:"llm_provider"`
	LLMModel    string    `json:"llm_model"`
	Timestamp   time.Time `json:"timestamp"`
}

func toChatMessageResponse(msg *storage.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:          msg.ID,
		SessionID:   msg.SessionID,
		Role:        msg.Role,
		Message:     msg.Message,
		LLMProvider: msg.Provider,
		LLMModel:    msg.Model,
		Timestamp:   msg.Timestamp,
	}
}

// List returns the chat history for a session, ascending by timestamp.
// An unknown session yields an empty array.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chats.ListBySession(ctx, sessionID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list chat history", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list chat history")
		return
	}

	resp := make([]ChatMessageResponse, 0, len(messages))
	for i := range messages {
		resp = append(resp, toChatMessageResponse(&messages[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create stores one chat message and returns the stored entity.
func (h *HistoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ChatMessageCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Role != storage.RoleUser && req.Role != storage.RoleAssistant {
		writeError(w, http.StatusBadRequest, "role must be 'user' or 'assistant'")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	stored, err := h.chats.Append(ctx, storage.ChatMessage{
		SessionID: req.SessionID,
		Role:      req.Role,
		Message:   req.Message,
		Provider:  req.LLMProvider,
		Model:     req.LLMModel,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to store chat message", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store chat message")
		return
	}

	writeJSON(w, http.StatusOK, toChatMessageResponse(stored))
}
