package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/curator/internal/llm"
	"github.com/ppiankov/curator/internal/model"
	"github.com/ppiankov/curator/internal/util"
)

// Usage is the token spend of one Generate call
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Result is the outcome of one batch
type Result struct {
	Posts     []model.Post
	Attempted int
	Failed    int
	Aborted   bool // quota exhausted; later articles were never attempted
	Usage     Usage
}

// Generator drafts posts for the top relevance-ranked articles
type Generator struct {
	provider     llm.Provider
	model        string
	maxPosts     int
	maxRetries   int
	retryDelay   time.Duration
	maxTokens    int
	systemPrompt string
	logger       *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Generator; the system prompt is rendered here once
func New(cfg model.GenerationConfig, provider llm.Provider, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxPosts <= 0 {
		cfg.MaxPosts = 3
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = 1800
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Language == "" {
		cfg.Language = "Korean"
	}

	return &Generator{
		provider:     provider,
		model:        cfg.Model,
		maxPosts:     cfg.MaxPosts,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
		maxTokens:    cfg.MaxTokens,
		systemPrompt: buildSystemPrompt(cfg),
		logger:       logger.With("component", "generator"),
		sleep:        sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Generate drafts one post per article for the first maxPosts articles.
// A quota-class error stops the whole batch.
func (g *Generator) Generate(ctx context.Context, articles []model.Article) Result {
	var res Result

	targets := articles
	if len(targets) > g.maxPosts {
		targets = targets[:g.maxPosts]
	}
	g.logger.Info("generating posts", "targets", len(targets), "max_posts", g.maxPosts)

	for i, a := range targets {
		if ctx.Err() != nil {
			break
		}

		res.Attempted++
		started := time.Now()
		title := util.Truncate(a.Title, 50)

		post, usage, err := g.generateOne(ctx, a)
		if err != nil {
			res.Failed++
			if llm.IsQuotaExhausted(err) {
				g.logger.Warn("quota exhausted, aborting generation", "index", i+1, "title", title, "error", err)
				res.Aborted = true
				break
			}
			g.logger.Warn("post generation failed", "index", i+1, "title", title, "error", err)
			continue
		}

		res.Usage.InputTokens += usage.InputTokens
		res.Usage.OutputTokens += usage.OutputTokens
		res.Posts = append(res.Posts, post)

		g.logger.Info("post generated",
			"index", i+1,
			"title", title,
			"elapsed", time.Since(started).Round(100*time.Millisecond),
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
		)
	}

	g.logger.Info("generation complete",
		"generated", len(res.Posts),
		"failed", res.Failed,
		"aborted", res.Aborted,
		"input_tokens", res.Usage.InputTokens,
		"output_tokens", res.Usage.OutputTokens,
	)
	return res
}

// generateOne retries every error except quota exhaustion
func (g *Generator) generateOne(ctx context.Context, a model.Article) (model.Post, Usage, error) {
	if g.provider == nil {
		return model.Post{}, Usage{}, fmt.Errorf("no text-generation provider configured")
	}

	req := llm.CompletionRequest{
		Model:     g.model,
		System:    g.systemPrompt,
		Prompt:    buildUserPrompt(a),
		MaxTokens: g.maxTokens,
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		resp, err := g.provider.Complete(ctx, req)
		if err == nil {
			return toPost(ParseDraft(resp.Text), a), Usage{resp.InputTokens, resp.OutputTokens}, nil
		}
		if llm.IsQuotaExhausted(err) {
			return model.Post{}, Usage{}, err
		}

		lastErr = err
		if attempt < g.maxRetries {
			g.logger.Warn("retrying generation", "attempt", attempt, "max", g.maxRetries, "error", err)
			if serr := g.sleep(ctx, g.retryDelay); serr != nil {
				return model.Post{}, Usage{}, serr
			}
		}
	}
	return model.Post{}, Usage{}, fmt.Errorf("after %d attempts: %w", g.maxRetries, lastErr)
}

func toPost(d Draft, a model.Article) model.Post {
	category := d.Category
	if category == "" {
		category = string(a.Category)
	}
	return model.Post{
		Title:          d.Title,
		Body:           d.Body,
		Hashtags:       d.Hashtags,
		Category:       category,
		SourceURL:      a.URL,
		SourceTitle:    a.Title,
		RelevanceScore: a.Relevance(),
	}
}
