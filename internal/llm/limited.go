package llm

import (
	"context"

	"github.com/ppiankov/curator/internal/worker"
)

// Limited serializes completions through a shared limiter keyed by provider
// name, so several callers stay under one account-wide request rate.
type Limited struct {
	Provider
	limiter *worker.Limiter
}

// NewLimited wraps p. A nil limiter returns p unchanged.
func NewLimited(p Provider, limiter *worker.Limiter) Provider {
	if p == nil || limiter == nil {
		return p
	}
	return &Limited{Provider: p, limiter: limiter}
}

// Complete waits for a token and then delegates
func (l *Limited) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := l.limiter.Wait(ctx, l.Provider.Name()); err != nil {
		return nil, err
	}
	return l.Provider.Complete(ctx, req)
}
