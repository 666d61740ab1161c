package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"fastrag/internal/llm"
	"fastrag/internal/service"
	"fastrag/internal/service/mocks"
	"fastrag/internal/storage"
	storagemocks "fastrag/internal/storage/mocks"
)

func validRequest() service.GenerationRequest {
	return service.GenerationRequest{
		Question:    "Hi",
		Provider:    "claude",
		Model:       "claude-3-5-sonnet-20240620",
		Temperature: 0.3,
		MaxTokens:   1024,
		SessionID:   "session-1",
	}
}

func storedMessage(msg storage.ChatMessage) *storage.ChatMessage {
	stored := msg
	stored.ID = 1
	stored.Timestamp = time.Now()
	return &stored
}

func TestGenerate_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := mocks.NewMockClientRegistry(ctrl)
	chats := storagemocks.NewMockChatStore(ctrl)
	streamClient := mocks.NewMockStreamClient(ctrl)

	req := validRequest()

	gomock.InOrder(
		chats.EXPECT().
			Append(gomock.Any(), storage.ChatMessage{
				SessionID: "session-1",
				Role:      storage.RoleUser,
				Message:   "Hi",
				Provider:  "claude",
				Model:     "claude-3-5-sonnet-20240620",
			}).
			DoAndReturn(func(ctx context.Context, msg storage.ChatMessage) (*storage.ChatMessage, error) {
				return storedMessage(msg), nil
			}),
		chats.EXPECT().
			Append(gomock.Any(), storage.ChatMessage{
				SessionID: "session-1",
				Role:      storage.RoleAssistant,
				Message:   "Hello!",
				Provider:  "claude",
				Model:     "claude-3-5-sonnet-20240620",
			}).
			DoAndReturn(func(ctx context.Context, msg storage.ChatMessage) (*storage.ChatMessage, error) {
				return storedMessage(msg), nil
			}),
	)

	registry.EXPECT().
		ClientFor(llm.ProviderClaude, llm.ChatParams{
			Model:       "claude-3-5-sonnet-20240620",
			Temperature: 0.3,
			MaxTokens:   1024,
		}).
		Return(streamClient, nil)

	streamClient.EXPECT().
		StreamChat(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, messages []llm.Message, callback func(string) error) error {
			if err := callback("Hel"); err != nil {
				return err
			}
			return callback("lo!")
		})

	svc := service.NewGenerateService(registry, chats, nil, 0)

	var emitted []string
	err := svc.Generate(context.Background(), req, func(fragment string) error {
		emitted = append(emitted, fragment)
		return nil
	})
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if strings.Join(emitted, "") != "Hello!" {
		t.Errorf("Generate() emitted %v, want the full reply in fragments", emitted)
	}
}

func TestGenerate_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No calls should reach the registry or the store on invalid input.
	registry := mocks.NewMockClientRegistry(ctrl)
	chats := storagemocks.NewMockChatStore(ctrl)
	svc := service.NewGenerateService(registry, chats, nil, 0)

	tests := []struct {
		name      string
		mutate    func(*service.GenerationRequest)
		wantField string
	}{
		{
			name:      "empty question",
			mutate:    func(r *service.GenerationRequest) { r.Question = "   " },
			wantField: "question",
		},
		{
			name:      "unknown provider",
			mutate:    func(r *service.GenerationRequest) { r.Provider = "mistral" },
			wantField: "llm_provider",
		},
		{
			name:      "empty model",
			mutate:    func(r *service.GenerationRequest) { r.Model = "" },
			wantField: "llm_model",
		},
		{
			name:      "temperature too high",
			mutate:    func(r *service.GenerationRequest) { r.Temperature = 1.5 },
			wantField: "temperature",
		},
		{
			name:      "negative temperature",
			mutate:    func(r *service.GenerationRequest) { r.Temperature = -0.1 },
			wantField: "temperature",
		},
		{
			name:      "zero max tokens",
			mutate:    func(r *service.GenerationRequest) { r.MaxTokens = 0 },
			wantField: "max_tokens",
		},
		{
			name:      "empty session id",
			mutate:    func(r *service.GenerationRequest) { r.SessionID = "" },
			wantField: "session_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := svc.Generate(context.Background(), req, func(string) error {
				t.Error("emit should not be called for invalid requests")
				return nil
			})

			var validationErr *service.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Generate() error = %v, want ValidationError", err)
			}
			if validationErr.Field != tt.wantField {
				t.Errorf("Generate() validation field = %q, want %q", validationErr.Field, tt.wantField)
			}
		})
	}
}

func TestGenerate_UserPersistFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := mocks.NewMockClientRegistry(ctrl)
	chats := storagemocks.NewMockChatStore(ctrl)

	chats.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("disk full"))

	svc := service.NewGenerateService(registry, chats, nil, 0)
	err := svc.Generate(context.Background(), validRequest(), func(string) error {
		t.Error("emit should not be called when the user message cannot be persisted")
		return nil
	})
	if !errors.Is(err, service.ErrStorage) {
		t.Errorf("Generate() error = %v, want ErrStorage", err)
	}
}

func TestGenerate_ProviderSetupFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := mocks.NewMockClientRegistry(ctrl)
	chats := storagemocks.NewMockChatStore(ctrl)

	// The user message is persisted before provider resolution; a missing
	// credential must not undo it.
	chats.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msg storage.ChatMessage) (*storage.ChatMessage, error) {
			if msg.Role != storage.RoleUser {
				t.Errorf("Append() role = %q, want user", msg.Role)
			}
			return storedMessage(msg), nil
		})

	registry.EXPECT().
		ClientFor(gomock.Any(), gomock.Any()).
		Return(nil, llm.ErrMissingCredential)

	svc := service.NewGenerateService(registry, chats, nil, 0)
	err := svc.Generate(context.Background(), validRequest(), func(string) error {
		t.Error("emit should not be called when provider setup fails")
		return nil
	})
	if !errors.Is(err, llm.ErrMissingCredential) {
		t.Errorf("Generate() error = %v, want ErrMissingCredential", err)
	}
}

func TestGenerate_MidStreamFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := mocks.NewMockClientRegistry(ctrl)
	chats := storagemocks.NewMockChatStore(ctrl)
	streamClient := mocks.NewMockStreamClient(ctrl)

	// Only the user append happens; no assistant message may be persisted
	// after a failed stream.
	chats.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msg storage.ChatMessage) (*storage.ChatMessage, error) {
			return storedMessage(msg), nil
		})

	registry.EXPECT().
		ClientFor(gomock.Any(), gomock.Any()).
		Return(streamClient, nil)

	streamClient.EXPECT().
		StreamChat(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, messages []llm.Message, callback func(string) error) error {
			if err := callback("par"); err != nil {
				return err
			}
			return errors.New("connection reset")
		})

	svc := service.NewGenerateService(registry, chats, nil, 0)

	var emitted []string
	err := svc.Generate(context.Background(), validRequest(), func(fragment string) error {
		emitted = append(emitted, fragment)
		return nil
	})
	if !errors.Is(err, service.ErrUpstream) {
		t.Errorf("Generate() error = %v, want ErrUpstream", err)
	}
	if strings.Join(emitted, "") != "par" {
		t.Errorf("Generate() emitted %v, want the fragments relayed before the failure", emitted)
	}
}

func TestGenerate_RetrievalDegrades(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := mocks.NewMockClientRegistry(ctrl)
	chats := storagemocks.NewMockChatStore(ctrl)
	retriever := mocks.NewMockContextRetriever(ctrl)
	streamClient := mocks.NewMockStreamClient(ctrl)

	chats.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Times(2).
		DoAndReturn(func(ctx context.Context, msg storage.ChatMessage) (*storage.ChatMessage, error) {
			return storedMessage(msg), nil
		})

	registry.EXPECT().
		ClientFor(gomock.Any(), gomock.Any()).
		Return(streamClient, nil)

	retriever.EXPECT().
		Context(gomock.Any(), "Hi", 0).
		Return("", errors.New("qdrant unavailable"))

	streamClient.EXPECT().
		StreamChat(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, messages []llm.Message, callback func(string) error) error {
			// Retrieval failed, so generation proceeds with the plain prompt.
			if strings.Contains(messages[0].Content, "Context:") {
				t.Error("StreamChat() system prompt should not contain a context block")
			}
			return callback("Hello!")
		})

	svc := service.NewGenerateService(registry, chats, retriever, 0)

	req := validRequest()
	req.RAGEnabled = true
	err := svc.Generate(context.Background(), req, func(string) error { return nil })
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
}

func TestGenerate_WithRetrievedContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := mocks.NewMockClientRegistry(ctrl)
	chats := storagemocks.NewMockChatStore(ctrl)
	retriever := mocks.NewMockContextRetriever(ctrl)
	streamClient := mocks.NewMockStreamClient(ctrl)

	chats.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Times(2).
		DoAndReturn(func(ctx context.Context, msg storage.ChatMessage) (*storage.ChatMessage, error) {
			return storedMessage(msg), nil
		})

	registry.EXPECT().
		ClientFor(gomock.Any(), gomock.Any()).
		Return(streamClient, nil)

	retriever.EXPECT().
		Context(gomock.Any(), "Hi", 0).
		Return("Go is a language from Google.", nil)

	streamClient.EXPECT().
		StreamChat(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, messages []llm.Message, callback func(string) error) error {
			if !strings.Contains(messages[0].Content, "Go is a language from Google.") {
				t.Error("StreamChat() system prompt should contain the retrieved context")
			}
			return callback("Hello!")
		})

	svc := service.NewGenerateService(registry, chats, retriever, 0)

	req := validRequest()
	req.RAGEnabled = true
	err := svc.Generate(context.Background(), req, func(string) error { return nil })
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
}
