package prompt_test

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"fastrag/internal/llm"
	"fastrag/internal/prompt"
	"fastrag/internal/service/mocks"
)

func TestBuild(t *testing.T) {
	t.Run("without context", func(t *testing.T) {
		messages := prompt.Build("What is Go?", "")
		if len(messages) != 2 {
			t.Fatalf("Build() returned %d messages, want 2", len(messages))
		}
		if messages[0].Role != llm.RoleSystem {
			t.Errorf("Build()[0].Role = %q, want system", messages[0].Role)
		}
		if strings.Contains(messages[0].Content, "Context:") {
			t.Error("Build() system prompt should not mention context when none is given")
		}
		if messages[1].Role != llm.RoleUser || messages[1].Content != "What is Go?" {
			t.Errorf("Build()[1] = %+v, want the user question", messages[1])
		}
	})

	t.Run("with context", func(t *testing.T) {
		messages := prompt.Build("What is Go?", "Go is a language from Google.")
		if len(messages) != 2 {
			t.Fatalf("Build() returned %d messages, want 2", len(messages))
		}
		system := messages[0].Content
		if !strings.Contains(system, "Context:") {
			t.Error("Build() system prompt should carry a context block")
		}
		if !strings.Contains(system, "Go is a language from Google.") {
			t.Error("Build() system prompt should contain the context text")
		}
	})
}

func TestStream(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockStreamClient(ctrl)
	client.EXPECT().
		StreamChat(gomock.Any(), prompt.Build("Hi", ""), gomock.Any()).
		DoAndReturn(func(ctx context.Context, messages []llm.Message, callback func(string) error) error {
			if err := callback("Hel"); err != nil {
				return err
			}
			return callback("lo!")
		})

	var chunks []string
	err := prompt.Stream(context.Background(), client, "Hi", "", func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream() unexpected error: %v", err)
	}
	if strings.Join(chunks, "") != "Hello!" {
		t.Errorf("Stream() chunks = %v, want Hel+lo!", chunks)
	}
}
