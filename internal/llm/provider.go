package llm

import (
	"context"
	"time"

	"github.com/ppiankov/curator/internal/model"
)

// Provider defines the interface for text-generation services
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one prompt and returns a single text completion
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is a single-turn completion request
type CompletionRequest struct {
	// Model is the specific model to use (provider-specific, empty for the provider default)
	Model string

	// System is an optional system prompt
	System string

	// Prompt is the user message
	Prompt string

	// MaxTokens bounds the completion length
	MaxTokens int

	// Temperature is passed through when non-zero
	Temperature float64
}

// CompletionResponse is the service's reply
type CompletionResponse struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "anthropic", "openai", "cohere", "ollama", ""
	Provider string

	// Model is the default model when a request leaves it empty
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for one API request
	Timeout time.Duration

	// MaxTokens default for requests that leave it zero
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "",
		Timeout:   60 * time.Second,
		MaxTokens: 1000,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	cfg := DefaultConfig()
	cfg.Provider = modelConfig.Provider
	cfg.APIKey = modelConfig.APIKey
	cfg.BaseURL = modelConfig.BaseURL
	if modelConfig.Timeout > 0 {
		cfg.Timeout = modelConfig.Timeout
	}
	cfg.HTTPProxy = modelConfig.HTTPProxy
	cfg.HTTPSProxy = modelConfig.HTTPSProxy
	cfg.NoProxy = modelConfig.NoProxy
	return cfg
}

func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return fallback
}

func resolveModel(requested, configured, fallback string) string {
	if requested != "" {
		return requested
	}
	if configured != "" {
		return configured
	}
	return fallback
}

func resolveMaxTokens(requested, configured int) int {
	if requested > 0 {
		return requested
	}
	if configured > 0 {
		return configured
	}
	return 1000
}
