package collector

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/ppiankov/curator/internal/model"
	"github.com/ppiankov/curator/internal/worker"
)

// Fetcher produces the entries of one feed
type Fetcher interface {
	Fetch(ctx context.Context, src model.FeedSource, cutoff time.Time) (iter.Seq[model.Article], error)
}

// Collector fans feeds out to a bounded pool and merges what comes back
type Collector struct {
	fetcher  Fetcher
	feeds    []model.FeedSource
	workers  int
	filter   keywordFilter
	enricher *Enricher
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Collector over feeds
func New(cfg model.CollectorConfig, feeds []model.FeedSource, fetcher Fetcher, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 10
	}

	return &Collector{
		fetcher: fetcher,
		feeds:   feeds,
		workers: workers,
		filter:  newKeywordFilter(cfg.Keywords),
		logger:  logger.With("component", "collector"),
		now:     time.Now,
	}
}

// WithEnricher fills empty excerpts from article pages after collection
func (c *Collector) WithEnricher(e *Enricher) *Collector {
	c.enricher = e
	return c
}

// fetchJob fetches one feed; index is its position in the configuration
type fetchJob struct {
	index   int
	src     model.FeedSource
	fetcher Fetcher
	cutoff  time.Time
}

type fetchResult struct {
	index    int
	src      model.FeedSource
	articles []model.Article
	err      error
}

func (r *fetchResult) GetError() error { return r.err }

func (j *fetchJob) Execute(ctx context.Context) worker.Result {
	seq, err := j.fetcher.Fetch(ctx, j.src, j.cutoff)
	res := &fetchResult{index: j.index, src: j.src, err: err}
	if seq != nil {
		for a := range seq {
			res.articles = append(res.articles, a)
		}
	}
	return res
}

// Collect fetches every feed concurrently, then dedups by id in feed order,
// then applies the keyword filter. Feed failures are reported, never fatal.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) model.CollectResult {
	started := c.now().UTC()
	cutoff := started.Add(-time.Duration(lookbackHours) * time.Hour)

	c.logger.Info("collecting", "feeds", len(c.feeds), "workers", c.workers, "cutoff", cutoff.Format(time.RFC3339))

	jobs := make([]worker.Job, len(c.feeds))
	for i, src := range c.feeds {
		jobs[i] = &fetchJob{index: i, src: src, fetcher: c.fetcher, cutoff: cutoff}
	}

	// Completion order is arbitrary; slot results by feed index
	byFeed := make([]*fetchResult, len(c.feeds))
	for _, r := range worker.Run(ctx, c.workers, jobs) {
		fr := r.(*fetchResult)
		byFeed[fr.index] = fr
	}

	result := model.CollectResult{
		CollectedAt: started,
		Sources:     len(c.feeds),
	}

	seen := make(map[string]struct{})
	var merged []model.Article
	for i, fr := range byFeed {
		if fr == nil {
			src := c.feeds[i]
			result.FailedFeeds = append(result.FailedFeeds, model.FeedFailure{
				Source: src.Name, URL: src.URL, Error: "not fetched: " + errString(ctx.Err()),
			})
			continue
		}
		if fr.err != nil {
			result.FailedFeeds = append(result.FailedFeeds, model.FeedFailure{
				Source: fr.src.Name, URL: fr.src.URL, Error: fr.err.Error(),
			})
		}
		for _, a := range fr.articles {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			merged = append(merged, a)
		}
	}

	if c.enricher != nil {
		merged = c.enricher.Enrich(ctx, merged)
	}

	articles := make([]model.Article, 0, len(merged))
	for _, a := range merged {
		if c.filter.match(a) {
			articles = append(articles, a)
		}
	}

	result.Articles = articles
	result.TotalCount = len(articles)

	c.logger.Info("collection complete",
		"unique", len(merged),
		"kept", len(articles),
		"failed_feeds", len(result.FailedFeeds),
	)

	return result
}

func errString(err error) string {
	if err == nil {
		return "cancelled"
	}
	return err.Error()
}
