package llm

// Catalog lists common model names per provider for display purposes.
// The map is keyed by provider tag, then display name to model identifier.
func Catalog() map[Provider]map[string]string {
	return map[Provider]map[string]string{
		ProviderClaude: {
			"Sonnet 3.5": "claude-3-5-sonnet-20240620",
			"Opus 3":     "claude-3-opus-20240229",
			"Haiku 3":    "claude-3-haiku-20240307",
		},
		ProviderOpenAI: {
			"GPT-4o":        "gpt-4o",
			"GPT-4o-mini":   "gpt-4o-mini",
			"GPT-3.5 Turbo": "gpt-3.5-turbo",
		},
		ProviderGemini: {
			"Gemini 1.5 Flash": "gemini-1.5-flash",
			"Gemini 1.5 Pro":   "gemini-1.5-pro",
		},
	}
}
