package llm

import (
	"fmt"
	"os"
	"strings"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		config.APIKey = withEnvFallback(config.APIKey, "OPENAI_API_KEY")
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		config.APIKey = withEnvFallback(config.APIKey, "ANTHROPIC_API_KEY")
		return NewAnthropicProvider(config)

	case "cohere":
		config.APIKey = withEnvFallback(config.APIKey, "COHERE_API_KEY")
		return NewCohereProvider(config)

	case "ollama":
		config.BaseURL = withEnvFallback(config.BaseURL, "OLLAMA_BASE_URL")
		return NewOllamaProvider(config)

	case "":
		// No provider configured - return nil (LLM disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: anthropic, openai, cohere, ollama)", config.Provider)
	}
}

func withEnvFallback(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}
