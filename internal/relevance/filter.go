package relevance

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ppiankov/curator/internal/collector"
	"github.com/ppiankov/curator/internal/llm"
	"github.com/ppiankov/curator/internal/model"
	"github.com/ppiankov/curator/internal/util"
)

const fallbackScore = 5

// Result holds each stage's output
type Result struct {
	Input     int
	Stage1    []model.Article
	Output    []model.Article
	Fallbacks int
}

// Filter narrows analyzed articles to those worth drafting posts for
type Filter struct {
	keywords    []string
	audience    string
	threshold   int
	minFallback int
	model       string
	maxTokens   int
	provider    llm.Provider
	logger      *slog.Logger
}

// New creates a Filter. provider should already be rate limited
// (see llm.NewLimited); a nil provider sends every article down the fallback path.
func New(cfg model.RelevanceConfig, provider llm.Provider, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}

	keywords := make([]string, 0, len(cfg.Keywords))
	for _, kw := range cfg.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		keywords = collector.DefaultKeywords
	}

	f := &Filter{
		keywords:    keywords,
		audience:    cfg.Audience,
		threshold:   cfg.Threshold,
		minFallback: cfg.MinFallbackMatches,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		provider:    provider,
		logger:      logger.With("component", "relevance"),
	}
	if f.audience == "" {
		f.audience = "B2B SaaS sales and business operations practitioners"
	}
	if f.threshold <= 0 {
		f.threshold = 7
	}
	if f.minFallback <= 0 {
		f.minFallback = 2
	}
	if f.maxTokens <= 0 {
		f.maxTokens = 100
	}
	return f
}

// Filter runs both stages. Remote failures never drop the run; they fall
// back to a neutral score for articles with enough keyword support.
func (f *Filter) Filter(ctx context.Context, articles []model.Article) Result {
	res := Result{Input: len(articles)}

	res.Stage1 = f.KeywordStage(articles)
	f.logger.Info("keyword stage", "input", len(articles), "matched", len(res.Stage1))
	if len(res.Stage1) == 0 {
		return res
	}

	res.Output, res.Fallbacks = f.judgeStage(ctx, res.Stage1)
	f.logger.Info("relevance stage", "input", len(res.Stage1), "kept", len(res.Output), "fallbacks", res.Fallbacks)
	return res
}

// KeywordStage keeps articles matching at least one keyword, annotated with
// their matches and stable-sorted by match count descending
func (f *Filter) KeywordStage(articles []model.Article) []model.Article {
	var matched []model.Article
	for _, a := range articles {
		blob := strings.ToLower(strings.Join([]string{
			a.Title, a.Summary, a.Excerpt, strings.Join(a.Tags, " "),
		}, " "))

		var hits []string
		for _, kw := range f.keywords {
			if strings.Contains(blob, kw) {
				hits = append(hits, kw)
			}
		}
		if len(hits) == 0 {
			continue
		}

		c := a.Clone()
		c.MatchedKeywords = hits
		c.KeywordMatchCount = len(hits)
		matched = append(matched, c)
	}

	slices.SortStableFunc(matched, func(x, y model.Article) int {
		return y.KeywordMatchCount - x.KeywordMatchCount
	})
	return matched
}

func (f *Filter) judgeStage(ctx context.Context, articles []model.Article) ([]model.Article, int) {
	var kept []model.Article
	fallbacks := 0
	exhausted := false

	for _, a := range articles {
		if ctx.Err() != nil {
			break
		}

		var judgment Judgment
		var err error
		if exhausted {
			// Further calls cannot succeed; go straight to the fallback
			err = llm.ErrQuotaExhausted
		} else {
			judgment, err = f.judge(ctx, a)
			exhausted = llm.IsQuotaExhausted(err)
		}
		c := a.Clone()
		title := util.Truncate(a.Title, 50)

		if err != nil {
			f.logger.Warn("relevance evaluation failed", "title", title, "error", err)
			score := fallbackScore
			c.RelevanceScore = &score
			c.RelevanceReason = fmt.Sprintf("evaluation failed (stage-1 keyword matches: %d)", a.KeywordMatchCount)
			if a.KeywordMatchCount >= f.minFallback {
				kept = append(kept, c)
				fallbacks++
			}
			continue
		}

		score := judgment.Score
		c.RelevanceScore = &score
		c.RelevanceReason = judgment.Reason

		if score >= f.threshold {
			f.logger.Info("article kept", "score", score, "title", title, "reason", judgment.Reason)
			kept = append(kept, c)
		} else {
			f.logger.Debug("article dropped", "score", score, "title", title, "reason", judgment.Reason)
		}
	}

	slices.SortStableFunc(kept, func(x, y model.Article) int {
		return y.Relevance() - x.Relevance()
	})
	return kept, fallbacks
}

func (f *Filter) judge(ctx context.Context, a model.Article) (Judgment, error) {
	if f.provider == nil {
		return Judgment{}, fmt.Errorf("no text-generation provider configured")
	}

	resp, err := f.provider.Complete(ctx, llm.CompletionRequest{
		Model:     f.model,
		Prompt:    buildPrompt(f.audience, a),
		MaxTokens: f.maxTokens,
	})
	if err != nil {
		return Judgment{}, err
	}
	return DecodeJudgment(resp.Text)
}
