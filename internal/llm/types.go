package llm

// Provider identifies a supported LLM provider. The set is closed: dispatch
// on it is an exhaustive switch, so adding a provider is a compile-time
// checked extension point.
type Provider string

const (
	// ProviderClaude is the Anthropic messages API.
	ProviderClaude Provider = "claude"
	// ProviderOpenAI is the OpenAI chat completions API.
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Generative Language API.
	ProviderGemini Provider = "gemini"
)

// ParseProvider maps a provider tag to a Provider.
// The second return value is false for unrecognized tags.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(s) {
	case ProviderClaude, ProviderOpenAI, ProviderGemini:
		return Provider(s), true
	}
	return "", false
}

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message roles understood by every provider client.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatParams holds generation parameters for a single request.
type ChatParams struct {
	// Model specifies the provider-side model identifier.
	Model string

	// Temperature controls the randomness of the output.
	Temperature float64

	// MaxTokens specifies the maximum number of tokens to generate.
	MaxTokens int
}
