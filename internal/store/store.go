package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/curator/internal/cache"
	"github.com/ppiankov/curator/internal/model"
)

// ArticleStore persists analyzed articles, one record per URL
type ArticleStore interface {
	// HasURL reports whether a record with this URL already exists
	HasURL(ctx context.Context, url string) (bool, error)

	// PutArticle creates a record and returns its reference (page URL or row id)
	PutArticle(ctx context.Context, a model.Article) (string, error)
}

// PostStore persists drafted posts
type PostStore interface {
	PutPost(ctx context.Context, p model.Post) (string, error)
}

// APIError is a rejected document-store request
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("store API error (%d): %s", e.StatusCode, e.Body)
}

// Cached remembers URLs known to exist so repeated runs skip the remote lookup.
// Only positive answers are cached.
type Cached struct {
	ArticleStore
	cache cache.Cache
	ttl   time.Duration
}

// NewCached wraps s. A nil cache returns s unchanged.
func NewCached(s ArticleStore, c cache.Cache, ttl time.Duration) ArticleStore {
	if s == nil || c == nil {
		return s
	}
	return &Cached{ArticleStore: s, cache: c, ttl: ttl}
}

var present = []byte("1")

// HasURL answers from the cache first
func (c *Cached) HasURL(ctx context.Context, url string) (bool, error) {
	key := cache.CacheKey(url)
	if _, ok := c.cache.Get(key); ok {
		return true, nil
	}

	exists, err := c.ArticleStore.HasURL(ctx, url)
	if err != nil {
		return false, err
	}
	if exists {
		_ = c.cache.Set(key, present, c.ttl)
	}
	return exists, nil
}

// PutArticle records the URL after a successful write
func (c *Cached) PutArticle(ctx context.Context, a model.Article) (string, error) {
	ref, err := c.ArticleStore.PutArticle(ctx, a)
	if err != nil {
		return "", err
	}
	_ = c.cache.Set(cache.CacheKey(a.URL), present, c.ttl)
	return ref, nil
}
