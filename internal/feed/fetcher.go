package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ppiankov/curator/internal/model"
	"github.com/ppiankov/curator/internal/util"
	"github.com/ppiankov/curator/internal/worker"
)

const (
	feedAccept = "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"
	pageAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	maxAttempts = 3
)

// ErrDisallowed is returned for URLs excluded by robots.txt
var ErrDisallowed = errors.New("disallowed by robots.txt")

// sleepFunc waits between attempts; tests replace it
var sleepFunc = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// statusError is a non-2xx HTTP response
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.code, e.status)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

// Fetcher downloads syndication feeds and normalizes their entries into Articles
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher from collector settings. A nil limiter disables
// per-host pacing; robots.txt is consulted only when cfg.RespectRobots is set.
func NewFetcher(cfg model.CollectorConfig, limiter *worker.Limiter, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	f := &Fetcher{
		httpClient: client,
		userAgent:  cfg.UserAgent,
		maxBytes:   maxBytes,
		limiter:    limiter,
		logger:     logger.With("component", "feed"),
	}
	if cfg.RespectRobots {
		f.robots = util.NewRobotsCheckerWithClient(cfg.UserAgent, client)
	}
	return f
}

// Fetch downloads and parses one feed. The returned sequence is never nil:
// on failure it is empty and the error says why. Entries with a parsed
// timestamp strictly before cutoff are dropped; undated entries are kept.
func (f *Fetcher) Fetch(ctx context.Context, src model.FeedSource, cutoff time.Time) (iter.Seq[model.Article], error) {
	parsed, err := f.fetchFeed(ctx, src.URL)
	if err != nil {
		f.logger.Warn("feed fetch failed", "source", src.Name, "url", src.URL, "error", err)
		return empty, err
	}

	f.logger.Debug("feed fetched", "source", src.Name, "entries", len(parsed.Items))

	return func(yield func(model.Article) bool) {
		for _, item := range parsed.Items {
			article, ok := toArticle(item, src, cutoff)
			if !ok {
				continue
			}
			if !yield(article) {
				return
			}
		}
	}, nil
}

func empty(func(model.Article) bool) {}

func (f *Fetcher) fetchFeed(ctx context.Context, rawURL string) (*gofeed.Feed, error) {
	body, _, err := f.Get(ctx, rawURL, feedAccept)
	if err != nil {
		return nil, err
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return parsed, nil
}

// Get performs a polite GET: robots.txt check, per-host rate limit, and up to
// three attempts for network errors, 429 and 5xx. It returns the body (capped
// at the configured size) and the response content type.
func (f *Fetcher) Get(ctx context.Context, rawURL, accept string) ([]byte, string, error) {
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, "", err
		}
		if !allowed {
			return nil, "", ErrDisallowed
		}
		if f.limiter != nil && delay > 0 {
			if err := f.limiter.WaitWithDelay(ctx, rawURL, delay); err != nil {
				return nil, "", err
			}
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepFunc(ctx, time.Duration(attempt-1)*time.Second); err != nil {
				return nil, "", err
			}
		}

		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, rawURL); err != nil {
				return nil, "", err
			}
		}

		body, contentType, err := f.get(ctx, rawURL, accept)
		if err == nil {
			return body, contentType, nil
		}
		lastErr = err

		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			return nil, "", err
		}
		if ctx.Err() != nil {
			return nil, "", err
		}
		f.logger.Debug("retrying fetch", "url", rawURL, "attempt", attempt, "error", err)
	}
	return nil, "", lastErr
}

func (f *Fetcher) get(ctx context.Context, rawURL, accept string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", accept)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &statusError{code: resp.StatusCode, status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// GetPage fetches an HTML page with the same politeness rules as feeds
func (f *Fetcher) GetPage(ctx context.Context, rawURL string) ([]byte, string, error) {
	return f.Get(ctx, rawURL, pageAccept)
}
