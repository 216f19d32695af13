package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/curator/internal/generator"
	"github.com/ppiankov/curator/internal/model"
	"github.com/ppiankov/curator/internal/relevance"
	"github.com/ppiankov/curator/internal/report"
)

// Collector gathers recent articles
type Collector interface {
	Collect(ctx context.Context, lookbackHours int) model.CollectResult
}

// Analyzer scores and ranks articles
type Analyzer interface {
	Analyze(articles []model.Article) []model.Article
}

// ArticleArchiver persists analyzed articles
type ArticleArchiver interface {
	Archive(ctx context.Context, articles []model.Article) model.ArchiveResult
}

// RelevanceFilter selects post-worthy articles
type RelevanceFilter interface {
	Filter(ctx context.Context, articles []model.Article) relevance.Result
}

// PostGenerator drafts posts
type PostGenerator interface {
	Generate(ctx context.Context, articles []model.Article) generator.Result
}

// PostArchiver persists drafted posts
type PostArchiver interface {
	Archive(ctx context.Context, posts []model.Post) model.ArchiveResult
}

// Deps wires the stages. Archiver may be nil (nothing is stored); the post
// steps run only when Filter, Generator and PostArchiver are all set.
type Deps struct {
	Collector    Collector
	Analyzer     Analyzer
	Archiver     ArticleArchiver
	Filter       RelevanceFilter
	Generator    PostGenerator
	PostArchiver PostArchiver
	Sinks        []report.Sink
	Logger       *slog.Logger
}

// Orchestrator runs collect, analyze, archive and the optional post steps
type Orchestrator struct {
	deps   Deps
	logger *slog.Logger
	now    func() time.Time
}

// New creates an Orchestrator
func New(deps Deps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		deps:   deps,
		logger: logger.With("component", "orchestrator"),
		now:    time.Now,
	}
}

// PostsEnabled reports whether the post steps will run
func (o *Orchestrator) PostsEnabled() bool {
	return o.deps.Filter != nil && o.deps.Generator != nil && o.deps.PostArchiver != nil
}

// Run executes one full pass and delivers the report to every sink.
// Stage failures are recorded in the report, never returned.
func (o *Orchestrator) Run(ctx context.Context, lookbackHours int) *model.RunReport {
	r := &model.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: o.now().UTC(),
		Errors:    []string{},
	}
	logger := o.logger.With("run_id", r.RunID)
	logger.Info("run started", "lookback_hours", lookbackHours)

	o.execute(ctx, logger, r, lookbackHours)

	r.FinishedAt = o.now().UTC()
	logger.Info("run finished", "elapsed", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond), "errors", len(r.Errors))

	o.deliver(ctx, logger, r)
	return r
}

func (o *Orchestrator) execute(ctx context.Context, logger *slog.Logger, r *model.RunReport, lookbackHours int) {
	// 1. Collect
	collected := o.deps.Collector.Collect(ctx, lookbackHours)
	r.Steps.Collection = &model.CollectionStep{
		Total:       collected.TotalCount,
		Sources:     collected.Sources,
		FailedFeeds: collected.FailedFeeds,
	}
	for _, f := range collected.FailedFeeds {
		r.Errors = append(r.Errors, fmt.Sprintf("feed %s: %s", f.Source, f.Error))
	}
	logger.Info("collection complete", "total", collected.TotalCount, "sources", collected.Sources, "failed_feeds", len(collected.FailedFeeds))

	if collected.TotalCount == 0 {
		logger.Warn("no articles collected, stopping")
		return
	}

	// 2. Analyze
	analyzed := o.deps.Analyzer.Analyze(collected.Articles)
	r.Steps.Analysis = analysisStep(analyzed)
	logger.Info("analysis complete", "total", len(analyzed), "by_importance", r.Steps.Analysis.ByImportance)

	// 3. Archive
	if o.deps.Archiver != nil {
		archived := o.deps.Archiver.Archive(ctx, analyzed)
		r.Steps.Archive = &archived
		for _, e := range archived.Errors {
			r.Errors = append(r.Errors, fmt.Sprintf("archive %q: %s", e.Title, e.Error))
		}
	}

	if !o.PostsEnabled() {
		logger.Info("post generation skipped, not configured")
		return
	}

	// 4-6. Posts
	started := o.now()
	defer func() {
		r.Steps.LinkedInElapsed = fmt.Sprintf("%.1fs", o.now().Sub(started).Seconds())
	}()

	filtered := o.deps.Filter.Filter(ctx, analyzed)
	r.Steps.LinkedInFilter = &model.FilterStep{
		Input:     filtered.Input,
		Stage1:    len(filtered.Stage1),
		Output:    len(filtered.Output),
		Fallbacks: filtered.Fallbacks,
	}
	if len(filtered.Output) == 0 {
		logger.Info("no relevant articles for posts")
		return
	}

	generated := o.deps.Generator.Generate(ctx, filtered.Output)
	r.Steps.LinkedInGen = &model.GenerateStep{
		Generated:    len(generated.Posts),
		Attempted:    generated.Attempted,
		Failed:       generated.Failed,
		Aborted:      generated.Aborted,
		InputTokens:  generated.Usage.InputTokens,
		OutputTokens: generated.Usage.OutputTokens,
	}
	if generated.Aborted {
		r.Errors = append(r.Errors, "post generation aborted: quota exhausted")
	}
	if len(generated.Posts) == 0 {
		return
	}

	postsArchived := o.deps.PostArchiver.Archive(ctx, generated.Posts)
	r.Steps.LinkedInArchive = &postsArchived
	for _, e := range postsArchived.Errors {
		r.Errors = append(r.Errors, fmt.Sprintf("post archive %q: %s", e.Title, e.Error))
	}
}

func (o *Orchestrator) deliver(ctx context.Context, logger *slog.Logger, r *model.RunReport) {
	for _, sink := range o.deps.Sinks {
		if err := sink.Deliver(ctx, r); err != nil {
			logger.Warn("report delivery failed", "sink", sink.Name(), "error", err)
		}
	}
}

func analysisStep(articles []model.Article) *model.AnalysisStep {
	step := &model.AnalysisStep{
		Total:        len(articles),
		ByImportance: map[model.Importance]int{},
		ByCategory:   map[model.Category]int{},
	}
	for _, a := range articles {
		step.ByImportance[a.Importance]++
		step.ByCategory[a.Category]++
	}
	return step
}
