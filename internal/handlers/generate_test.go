package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"fastrag/internal/llm"
	"fastrag/internal/service"
	"fastrag/internal/service/mocks"
)

func TestGenerateHandler_Stream(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockGenerateService(ctrl)
	mockService.EXPECT().
		Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req service.GenerationRequest, emit func(string) error) error {
			if err := emit("Hello "); err != nil {
				return err
			}
			return emit("world")
		})

	handler := NewGenerateHandler(mockService)

	body, _ := json.Marshal(GenerateRequest{
		Question:    "Hi",
		LLMProvider: "claude",
		LLMModel:    "claude-3-5-sonnet-20240620",
		SessionID:   "session-1",
	})
	req := httptest.NewRequest(http.MethodPost, "/generate_stream", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("ServeHTTP() status = %v, want %v", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("ServeHTTP() Content-Type = %q, want text/plain", ct)
	}
	if w.Body.String() != "Hello world" {
		t.Errorf("ServeHTTP() body = %q, want %q", w.Body.String(), "Hello world")
	}
}

func TestGenerateHandler_Defaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockGenerateService(ctrl)
	mockService.EXPECT().
		Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req service.GenerationRequest, emit func(string) error) error {
			if req.Temperature != defaultTemperature {
				t.Errorf("temperature = %v, want default %v", req.Temperature, defaultTemperature)
			}
			if req.MaxTokens != defaultMaxTokens {
				t.Errorf("max tokens = %v, want default %v", req.MaxTokens, defaultMaxTokens)
			}
			return nil
		})

	handler := NewGenerateHandler(mockService)

	req := httptest.NewRequest(http.MethodPost, "/generate_stream",
		bytes.NewReader([]byte(`{"question":"Hi","llm_provider":"claude","llm_model":"m","session_id":"s"}`)))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("ServeHTTP() status = %v, want %v", w.Code, http.StatusOK)
	}
}

func TestGenerateHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockSetup  func(*mocks.MockGenerateService)
		wantStatus int
	}{
		{
			name:       "invalid JSON body",
			body:       "not json",
			mockSetup:  func(m *mocks.MockGenerateService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "validation error",
			body: `{"question":"","llm_provider":"claude","llm_model":"m","session_id":"s"}`,
			mockSetup: func(m *mocks.MockGenerateService) {
				m.EXPECT().
					Generate(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&service.ValidationError{Field: "question", Message: "cannot be empty"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing credential",
			body: `{"question":"Hi","llm_provider":"claude","llm_model":"m","session_id":"s"}`,
			mockSetup: func(m *mocks.MockGenerateService) {
				m.EXPECT().
					Generate(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(llm.ErrMissingCredential)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "upstream failure before first fragment",
			body: `{"question":"Hi","llm_provider":"claude","llm_model":"m","session_id":"s"}`,
			mockSetup: func(m *mocks.MockGenerateService) {
				m.EXPECT().
					Generate(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(service.ErrUpstream)
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockGenerateService(ctrl)
			tt.mockSetup(mockService)
			handler := NewGenerateHandler(mockService)

			req := httptest.NewRequest(http.MethodPost, "/generate_stream", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}

			var errResp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
				t.Fatalf("error response is not JSON: %v", err)
			}
			if errResp.Detail == "" {
				t.Error("error response should carry a detail message")
			}
		})
	}
}

func TestGenerateHandler_MidStreamFailureTruncates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockGenerateService(ctrl)
	mockService.EXPECT().
		Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req service.GenerationRequest, emit func(string) error) error {
			if err := emit("partial"); err != nil {
				return err
			}
			return errors.New("provider dropped the connection")
		})

	handler := NewGenerateHandler(mockService)

	req := httptest.NewRequest(http.MethodPost, "/generate_stream",
		bytes.NewReader([]byte(`{"question":"Hi","llm_provider":"claude","llm_model":"m","session_id":"s"}`)))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	// Headers went out with the first fragment; the failure can only
	// truncate the body.
	if w.Code != http.StatusOK {
		t.Errorf("ServeHTTP() status = %v, want %v", w.Code, http.StatusOK)
	}
	if w.Body.String() != "partial" {
		t.Errorf("ServeHTTP() body = %q, want the fragments relayed before the failure", w.Body.String())
	}
}

func TestGenerateHandler_EmptyCompletion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockGenerateService(ctrl)
	mockService.EXPECT().
		Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)

	handler := NewGenerateHandler(mockService)

	req := httptest.NewRequest(http.MethodPost, "/generate_stream",
		bytes.NewReader([]byte(`{"question":"Hi","llm_provider":"claude","llm_model":"m","session_id":"s"}`)))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("ServeHTTP() status = %v, want %v", w.Code, http.StatusOK)
	}
	if w.Body.Len() != 0 {
		t.Errorf("ServeHTTP() body = %q, want empty", w.Body.String())
	}
}
