package collector

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html/charset"

	"github.com/ppiankov/curator/internal/feed"
	"github.com/ppiankov/curator/internal/model"
	"github.com/ppiankov/curator/internal/util"
	"github.com/ppiankov/curator/internal/worker"
)

const enrichedExcerptRunes = 500

// PageGetter fetches an article page
type PageGetter interface {
	GetPage(ctx context.Context, rawURL string) ([]byte, string, error)
}

// Enricher extracts readable text from article pages for entries whose feed
// carried no description
type Enricher struct {
	pages   PageGetter
	workers int
	logger  *slog.Logger
}

// NewEnricher creates an Enricher sharing the feed fetcher's politeness rules
func NewEnricher(pages PageGetter, workers int, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 5
	}
	return &Enricher{pages: pages, workers: workers, logger: logger.With("component", "enricher")}
}

type enrichJob struct {
	index   int
	article model.Article
	e       *Enricher
}

type enrichResult struct {
	index   int
	article model.Article
	err     error
}

func (r *enrichResult) GetError() error { return r.err }

func (j *enrichJob) Execute(ctx context.Context) worker.Result {
	a, err := j.e.enrichOne(ctx, j.article)
	return &enrichResult{index: j.index, article: a, err: err}
}

// Enrich returns a copy of articles with empty excerpts filled where possible.
// Failures leave the article unchanged.
func (e *Enricher) Enrich(ctx context.Context, articles []model.Article) []model.Article {
	out := make([]model.Article, len(articles))
	copy(out, articles)

	var jobs []worker.Job
	for i, a := range articles {
		if a.Excerpt == "" {
			jobs = append(jobs, &enrichJob{index: i, article: a.Clone(), e: e})
		}
	}
	if len(jobs) == 0 {
		return out
	}

	filled := 0
	for _, r := range worker.Run(ctx, e.workers, jobs) {
		er := r.(*enrichResult)
		if er.err != nil {
			e.logger.Debug("enrichment failed", "url", articles[er.index].URL, "error", er.err)
			continue
		}
		out[er.index] = er.article
		filled++
	}

	e.logger.Info("excerpts enriched", "candidates", len(jobs), "filled", filled)
	return out
}

func (e *Enricher) enrichOne(ctx context.Context, a model.Article) (model.Article, error) {
	pageURL, err := url.Parse(a.URL)
	if err != nil {
		return a, fmt.Errorf("parse URL: %w", err)
	}

	body, contentType, err := e.pages.GetPage(ctx, a.URL)
	if err != nil {
		return a, err
	}

	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return a, fmt.Errorf("decode charset: %w", err)
	}

	page, err := readability.FromReader(reader, pageURL)
	if err != nil {
		return a, fmt.Errorf("readability: %w", err)
	}

	excerpt := feed.CleanText(page.Excerpt)
	if excerpt == "" {
		excerpt = strings.Join(strings.Fields(page.TextContent), " ")
	}
	if excerpt == "" {
		return a, fmt.Errorf("no readable text")
	}

	a.Excerpt = util.Truncate(excerpt, enrichedExcerptRunes)
	if a.ImageURL == "" {
		a.ImageURL = page.Image
	}
	if a.Author == "" {
		a.Author = strings.TrimSpace(page.Byline)
	}
	return a, nil
}
