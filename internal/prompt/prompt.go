package prompt

import (
	"context"
	"fmt"

	"fastrag/internal/llm"
)

// systemInstructions is the fixed system prompt for plain generation.
const systemInstructions = "You are a helpful AI assistant. Answer the user's questions clearly and concisely."

// contextTemplate wraps retrieved context into the system instructions,
// ahead of the user question.
const contextTemplate = systemInstructions +
	" Use the following provided context if relevant:\n\n---\nContext:\n%s\n---\n"

// Build composes the two-role prompt for a question. When contextText is
// non-empty it is interpolated into the system instructions.
func Build(question, contextText string) []llm.Message {
	system := systemInstructions
	if contextText != "" {
		system = fmt.Sprintf(contextTemplate, contextText)
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: question},
	}
}

// Stream pipes the built prompt through the given client. Consuming the
// callback drives the underlying provider call; fragments arrive in order
// and the stream is forward-only and non-restartable.
func Stream(ctx context.Context, client llm.StreamClient, question, contextText string, callback func(chunk string) error) error {
	return client.StreamChat(ctx, Build(question, contextText), callback)
}
