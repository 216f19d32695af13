package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	coherecore "github.com/cohere-ai/cohere-go/v2/core"

	"github.com/ppiankov/curator/internal/util"
)

const cohereDefaultModel = "command-r-plus"

// CohereProvider implements the Provider interface for Cohere chat models
type CohereProvider struct {
	client *cohereclient.Client
	config Config
}

// NewCohereProvider creates a new Cohere provider
func NewCohereProvider(config Config) (*CohereProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Cohere API key is required")
	}

	httpClient := &http.Client{
		Timeout: config.timeout(60 * time.Second),
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}

	var client *cohereclient.Client
	if config.BaseURL != "" {
		client = cohereclient.NewClient(
			cohereclient.WithToken(config.APIKey),
			cohereclient.WithHTTPClient(httpClient),
			cohereclient.WithBaseURL(strings.TrimSuffix(config.BaseURL, "/")),
		)
	} else {
		client = cohereclient.NewClient(
			cohereclient.WithToken(config.APIKey),
			cohereclient.WithHTTPClient(httpClient),
		)
	}

	return &CohereProvider{
		client: client,
		config: config,
	}, nil
}

// Name returns the provider name
func (p *CohereProvider) Name() string {
	return "cohere"
}

// IsAvailable sends a one-token chat request
func (p *CohereProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.Complete(ctx, CompletionRequest{Prompt: "Hi", MaxTokens: 1})
	return err == nil
}

// Complete uses the Cohere chat endpoint with the system prompt as preamble
func (p *CohereProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := resolveModel(req.Model, p.config.Model, cohereDefaultModel)
	if strings.HasPrefix(model, "claude") || strings.HasPrefix(model, "gpt") {
		model = resolveModel(p.config.Model, "", cohereDefaultModel)
	}
	maxTokens := resolveMaxTokens(req.MaxTokens, p.config.MaxTokens)

	chatReq := &cohere.ChatRequest{
		Message:   req.Prompt,
		Model:     &model,
		MaxTokens: &maxTokens,
	}
	if req.System != "" {
		chatReq.Preamble = &req.System
	}
	if req.Temperature != 0 {
		temperature := req.Temperature
		chatReq.Temperature = &temperature
	}

	resp, err := p.client.Chat(ctx, chatReq)
	if err != nil {
		return nil, convertCohereError(err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, fmt.Errorf("no content in Cohere response")
	}

	out := &CompletionResponse{
		Text:  strings.TrimSpace(resp.Text),
		Model: model,
	}
	if resp.Meta != nil && resp.Meta.BilledUnits != nil {
		if units := resp.Meta.BilledUnits.InputTokens; units != nil {
			out.InputTokens = int(*units)
		}
		if units := resp.Meta.BilledUnits.OutputTokens; units != nil {
			out.OutputTokens = int(*units)
		}
	}
	return out, nil
}

func convertCohereError(err error) error {
	var apiErr *coherecore.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			Provider:   "cohere",
			StatusCode: apiErr.StatusCode,
			Message:    err.Error(),
		}
	}
	return fmt.Errorf("cohere chat error: %w", err)
}
