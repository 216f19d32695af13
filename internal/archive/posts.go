package archive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/curator/internal/model"
	"github.com/ppiankov/curator/internal/store"
	"github.com/ppiankov/curator/internal/util"
)

// PostArchiver writes drafted posts with bounded retries
type PostArchiver struct {
	store      store.PostStore
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewPostArchiver creates a PostArchiver; zero values default to 3 attempts and 1s
func NewPostArchiver(s store.PostStore, maxRetries int, retryDelay time.Duration, logger *slog.Logger) *PostArchiver {
	if logger == nil {
		logger = slog.Default()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &PostArchiver{
		store:      s,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     logger.With("component", "post-archiver"),
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Archive writes every post, retrying each one independently
func (a *PostArchiver) Archive(ctx context.Context, posts []model.Post) model.ArchiveResult {
	res := model.ArchiveResult{Errors: []model.ArchiveError{}}

	for _, p := range posts {
		ref, err := a.putWithRetry(ctx, p)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, model.ArchiveError{Title: p.Title, Error: err.Error()})
			a.logger.Warn("post archive failed",
				"title", util.Truncate(p.Title, 40),
				"preview", util.Truncate(p.Body, 100)+"...",
				"error", err,
			)
			continue
		}

		res.Success++
		a.logger.Info("post archived", "title", util.Truncate(p.Title, 40), "ref", ref)
	}

	return res
}

func (a *PostArchiver) putWithRetry(ctx context.Context, p model.Post) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= a.maxRetries; attempt++ {
		ref, err := a.store.PutPost(ctx, p)
		if err == nil {
			return ref, nil
		}
		lastErr = err

		if attempt < a.maxRetries {
			a.logger.Warn("retrying post archive", "attempt", attempt, "max", a.maxRetries, "error", err)
			if serr := a.sleep(ctx, a.retryDelay); serr != nil {
				return "", serr
			}
		}
	}
	return "", fmt.Errorf("after %d attempts: %w", a.maxRetries, lastErr)
}
