package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generate.go -package=mocks fastrag/internal/service ClientRegistry,ContextRetriever,GenerateService
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_stream_client.go -package=mocks fastrag/internal/llm StreamClient

import (
	"context"
	"errors"
	"strings"
	"time"

	"fastrag/internal/contextutil"
	"fastrag/internal/llm"
	"fastrag/internal/prompt"
	"fastrag/internal/storage"
)

// ClientRegistry resolves a provider tag to a streaming client.
// This interface is defined from the service layer's perspective (consumer-first).
type ClientRegistry interface {
	ClientFor(provider llm.Provider, params llm.ChatParams) (llm.StreamClient, error)
}

// ContextRetriever supplies context text for a question when augmentation is
// enabled. Implemented by the note retriever; nil disables augmentation.
type ContextRetriever interface {
	Context(ctx context.Context, question string, k int) (string, error)
}

// GenerationRequest represents one generation call in the domain layer.
// It is transient: only the derived chat messages are persisted.
type GenerationRequest struct {
	Question    string
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
	SessionID   string
	RAGEnabled  bool
}

// GenerateService runs the streaming generation pipeline.
type GenerateService interface {
	// Generate validates the request, persists the user message, streams the
	// answer fragment by fragment through emit, and persists the assistant
	// message once the stream completes successfully.
	Generate(ctx context.Context, req GenerationRequest, emit func(fragment string) error) error
}

// generateService implements GenerateService.
//
// The pipeline is an explicit sequence of states:
// validate -> user persisted -> streaming -> completed (persist assistant)
// or failed (nothing further persisted). A failure after streaming began
// leaves the already-relayed fragments with the caller but records no
// partial assistant message.
type generateService struct {
	registry  ClientRegistry
	chats     storage.ChatStore
	retriever ContextRetriever
	timeout   time.Duration
}

// NewGenerateService creates a new GenerateService. retriever may be nil,
// in which case rag_enabled requests degrade to plain generation.
func NewGenerateService(registry ClientRegistry, chats storage.ChatStore, retriever ContextRetriever, timeout time.Duration) GenerateService {
	return &generateService{
		registry:  registry,
		chats:     chats,
		retriever: retriever,
		timeout:   timeout,
	}
}

// Generate runs one generation request.
func (s *generateService) Generate(ctx context.Context, req GenerationRequest, emit func(fragment string) error) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validate(req); err != nil {
		logger.WarnContext(ctx, "invalid generation request", "error", err)
		return err
	}

	// validate already rejected unknown tags.
	provider, _ := llm.ParseProvider(req.Provider)

	// Persist the user message before any fragment is emitted, so history
	// reflects the question even if generation later fails.
	if _, err := s.chats.Append(ctx, storage.ChatMessage{
		SessionID: req.SessionID,
		Role:      storage.RoleUser,
		Message:   req.Question,
		Provider:  req.Provider,
		Model:     req.Model,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to persist user message", "error", err)
		return WrapError(ErrStorage, err.Error())
	}

	client, err := s.registry.ClientFor(provider, llm.ChatParams{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		logger.WarnContext(ctx, "provider setup failed", "provider", req.Provider, "error", err)
		return err
	}

	contextText := ""
	if req.RAGEnabled && s.retriever != nil {
		contextText, err = s.retriever.Context(ctx, req.Question, 0)
		if err != nil {
			// Context is auxiliary input; degrade to plain generation.
			logger.WarnContext(ctx, "context retrieval failed, generating without context", "error", err)
			contextText = ""
		}
	}

	streamCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		streamCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var full strings.Builder
	err = prompt.Stream(streamCtx, client, req.Question, contextText, func(chunk string) error {
		full.WriteString(chunk)
		return emit(chunk)
	})
	if err != nil {
		// Failure mid-stream: whatever fragments were already relayed stay
		// with the caller, but no assistant message is persisted.
		logger.ErrorContext(ctx, "generation stream failed", "provider", req.Provider, "error", err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return WrapError(ErrUpstream, err.Error())
	}

	if _, err := s.chats.Append(ctx, storage.ChatMessage{
		SessionID: req.SessionID,
		Role:      storage.RoleAssistant,
		Message:   full.String(),
		Provider:  req.Provider,
		Model:     req.Model,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to persist assistant message", "error", err)
		return WrapError(ErrStorage, err.Error())
	}

	logger.InfoContext(ctx, "generation completed",
		"session_id", req.SessionID,
		"provider", req.Provider,
		"model", req.Model,
		"reply_length", full.Len(),
	)
	return nil
}

// validate checks request fields against their allowed ranges.
func validate(req GenerationRequest) error {
	if strings.TrimSpace(req.Question) == "" {
		return &ValidationError{Field: "question", Message: "cannot be empty"}
	}
	if _, ok := llm.ParseProvider(req.Provider); !ok {
		return &ValidationError{Field: "llm_provider", Message: "must be one of claude, openai, gemini"}
	}
	if req.Model == "" {
		return &ValidationError{Field: "llm_model", Message: "cannot be empty"}
	}
	if req.Temperature < 0 || req.Temperature > 1 {
		return &ValidationError{Field: "temperature", Message: "must be between 0 and 1"}
	}
	if req.MaxTokens <= 0 {
		return &ValidationError{Field: "max_tokens", Message: "must be greater than 0"}
	}
	if req.SessionID == "" {
		return &ValidationError{Field: "session_id", Message: "cannot be empty"}
	}
	return nil
}
