package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ppiankov/curator/internal/analyzer"
	"github.com/ppiankov/curator/internal/archive"
	"github.com/ppiankov/curator/internal/cache"
	"github.com/ppiankov/curator/internal/collector"
	"github.com/ppiankov/curator/internal/feed"
	"github.com/ppiankov/curator/internal/generator"
	"github.com/ppiankov/curator/internal/llm"
	"github.com/ppiankov/curator/internal/model"
	"github.com/ppiankov/curator/internal/orchestrator"
	"github.com/ppiankov/curator/internal/relevance"
	"github.com/ppiankov/curator/internal/report"
	"github.com/ppiankov/curator/internal/store"
	"github.com/ppiankov/curator/internal/store/notion"
	"github.com/ppiankov/curator/internal/store/postgres"
	"github.com/ppiankov/curator/internal/util"
	"github.com/ppiankov/curator/internal/worker"
)

// app holds everything a run needs plus what must be closed afterwards
type app struct {
	cfg          model.Config
	logger       *slog.Logger
	collector    *collector.Collector
	analyzer     *analyzer.Analyzer
	orchestrator *orchestrator.Orchestrator
	closers      []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}

func newLogger(cfg model.Config) *slog.Logger {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return util.NewLogger(level, cfg.Log.Format)
}

// buildCollection wires the stages that need no credentials
func buildCollection(cfg model.Config, logger *slog.Logger) (*collector.Collector, *analyzer.Analyzer) {
	feedLimiter := worker.NewLimiter(cfg.Collector.RequestsPerSecond, 1)
	fetcher := feed.NewFetcher(cfg.Collector, feedLimiter, logger)

	c := collector.New(cfg.Collector, cfg.FeedSources(), fetcher, logger)
	if cfg.Collector.EnrichExcerpts {
		c = c.WithEnricher(collector.NewEnricher(fetcher, cfg.Collector.Workers, logger))
	}

	lexicon := analyzer.DefaultLexicon().WithCredibility(cfg.Analyzer.Credibility)
	return c, analyzer.New(lexicon)
}

// buildApp wires the full pipeline. Missing article-store credentials are fatal;
// a missing text-generation provider or posts store only disables the post steps.
func buildApp(ctx context.Context, cfg model.Config, logger *slog.Logger) (*app, error) {
	if err := validateStore(cfg); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	a.collector, a.analyzer = buildCollection(cfg, logger)

	articles, posts, err := a.openStores(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	urlCache, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Warn("cache unavailable, continuing without it", "error", err)
		urlCache = nil
	}
	if closer, ok := urlCache.(io.Closer); ok {
		a.closers = append(a.closers, closer)
	}
	articles = store.NewCached(articles, urlCache, cfg.Cache.TTL)

	sinks, err := report.FromConfig(ctx, cfg.Report)
	if err != nil {
		a.Close()
		return nil, err
	}
	for _, s := range sinks {
		if closer, ok := s.(io.Closer); ok {
			a.closers = append(a.closers, closer)
		}
	}

	deps := orchestrator.Deps{
		Collector: a.collector,
		Analyzer:  a.analyzer,
		Archiver:  archive.NewArticleArchiver(articles, logger),
		Sinks:     sinks,
		Logger:    logger,
	}

	provider := newProvider(cfg, logger)
	if provider != nil && posts != nil {
		deps.Filter = relevance.New(withModel(cfg.Relevance, provider), provider, logger)
		deps.Generator = generator.New(withGenModel(cfg.Generation, provider), provider, logger)
		deps.PostArchiver = archive.NewPostArchiver(posts, cfg.Store.PostRetries, cfg.Store.PostRetryDelay, logger)
	}

	a.orchestrator = orchestrator.New(deps)
	return a, nil
}

func (a *app) openStores(cfg model.Config) (store.ArticleStore, store.PostStore, error) {
	switch cfg.Store.Backend {
	case "postgres":
		pg, err := postgres.Open(cfg.Store.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, pg)
		return pg, pg, nil

	default:
		limiter := worker.NewLimiter(cfg.Store.RequestsPerSecond, 1)
		client, err := notion.New(cfg.Store.Notion, limiter)
		if err != nil {
			return nil, nil, err
		}
		if !client.HasPostsDatabase() {
			return client, nil, nil
		}
		return client, client, nil
	}
}

// newProvider returns the rate-limited text-generation client, or nil when
// none is configured or it cannot be created
func newProvider(cfg model.Config, logger *slog.Logger) llm.Provider {
	p, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		logger.Warn("text-generation provider unavailable, post generation disabled", "error", err)
		return nil
	}
	if p == nil {
		return nil
	}

	return llm.NewLimited(p, worker.NewLimiter(cfg.LLM.RequestsPerSecond, cfg.LLM.Burst))
}

// hosted Claude model names mean nothing to other providers; let them use their default
func modelFor(provider llm.Provider, m string) string {
	if provider.Name() != "anthropic" && strings.HasPrefix(m, "claude") {
		return ""
	}
	return m
}

func withModel(cfg model.RelevanceConfig, provider llm.Provider) model.RelevanceConfig {
	cfg.Model = modelFor(provider, cfg.Model)
	return cfg
}

func withGenModel(cfg model.GenerationConfig, provider llm.Provider) model.GenerationConfig {
	cfg.Model = modelFor(provider, cfg.Model)
	return cfg
}

func describeProvider(cfg model.Config) string {
	if cfg.LLM.Provider == "" {
		return "disabled"
	}
	return fmt.Sprintf("%s (%.1f req/s)", cfg.LLM.Provider, cfg.LLM.RequestsPerSecond)
}
