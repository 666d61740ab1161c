package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedProvider is returned for provider tags outside the closed set.
	ErrUnsupportedProvider = errors.New("unsupported llm provider")
	// ErrMissingCredential is returned when the selected provider has no API key configured.
	ErrMissingCredential = errors.New("provider credential not configured")
)

// StreamClient is the streaming generation handle produced by the registry.
type StreamClient interface {
	// StreamChat sends the conversation to the provider and invokes the
	// callback for each output fragment, in arrival order.
	StreamChat(ctx context.Context, messages []Message, callback func(chunk string) error) error
}

// ProviderConfig holds the credential and base URL for one provider.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
}

// Registry maps provider tags to concrete streaming clients. Credentials are
// read once at startup; a missing credential only fails requests that select
// that provider.
type Registry struct {
	anthropic ProviderConfig
	openai    ProviderConfig
	gemini    ProviderConfig
}

// NewRegistry creates a registry from per-provider configuration.
func NewRegistry(anthropic, openai, gemini ProviderConfig) *Registry {
	return &Registry{
		anthropic: anthropic,
		openai:    openai,
		gemini:    gemini,
	}
}

// ClientFor returns a streaming client for the given provider and parameters.
// Fails with ErrMissingCredential when the provider's API key is absent and
// ErrUnsupportedProvider for unrecognized tags. Errors are permanent for the
// request's lifetime; there are no retries.
func (r *Registry) ClientFor(provider Provider, params ChatParams) (StreamClient, error) {
	switch provider {
	case ProviderClaude:
		if r.anthropic.APIKey == "" {
			return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY not set", ErrMissingCredential)
		}
		return NewAnthropicClient(r.anthropic.BaseURL, r.anthropic.APIKey, params), nil
	case ProviderOpenAI:
		if r.openai.APIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrMissingCredential)
		}
		return NewOpenAIClient(r.openai.BaseURL, r.openai.APIKey, params), nil
	case ProviderGemini:
		if r.gemini.APIKey == "" {
			return nil, fmt.Errorf("%w: GOOGLE_API_KEY not set", ErrMissingCredential)
		}
		return NewGeminiClient(r.gemini.BaseURL, r.gemini.APIKey, params), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
}
