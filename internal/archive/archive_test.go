package archive

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/curator/internal/model"
)

type fakeArticleStore struct {
	existing map[string]bool
	queryErr error
	putErrs  map[string]error
	puts     []string
}

func (s *fakeArticleStore) HasURL(ctx context.Context, url string) (bool, error) {
	if s.queryErr != nil {
		return false, s.queryErr
	}
	return s.existing[url], nil
}

func (s *fakeArticleStore) PutArticle(ctx context.Context, a model.Article) (string, error) {
	if err := s.putErrs[a.URL]; err != nil {
		return "", err
	}
	s.puts = append(s.puts, a.URL)
	return "page-" + a.URL, nil
}

type flakyPostStore struct {
	failures map[string]int // title -> failures before success
	calls    map[string]int
}

func (s *flakyPostStore) PutPost(ctx context.Context, p model.Post) (string, error) {
	s.calls[p.Title]++
	if s.calls[p.Title] <= s.failures[p.Title] {
		return "", errors.New("502 bad gateway")
	}
	return "page-" + p.Title, nil
}

func TestArticleArchiver(t *testing.T) {
	st := &fakeArticleStore{
		existing: map[string]bool{"https://dup": true},
		putErrs:  map[string]error{"https://bad": errors.New("validation_error")},
	}
	a := NewArticleArchiver(st, nil)

	res := a.Archive(context.Background(), []model.Article{
		{Title: "New", URL: "https://new"},
		{Title: "Dup", URL: "https://dup"},
		{Title: "Bad", URL: "https://bad"},
	})

	if res.Success != 1 || res.Skipped != 1 || res.Failed != 1 {
		t.Fatalf("res = %+v", res)
	}
	if len(res.Errors) != 1 || res.Errors[0].Title != "Bad" || res.Errors[0].Error != "validation_error" {
		t.Errorf("Errors = %+v", res.Errors)
	}
}

func TestArticleArchiver_QueryErrorIsNotDuplicate(t *testing.T) {
	st := &fakeArticleStore{queryErr: errors.New("timeout")}
	res := NewArticleArchiver(st, nil).Archive(context.Background(), []model.Article{{Title: "A", URL: "https://a"}})

	if res.Success != 1 || res.Skipped != 0 {
		t.Errorf("res = %+v", res)
	}
	if len(st.puts) != 1 {
		t.Errorf("puts = %v", st.puts)
	}
}

func TestArticleArchiver_Empty(t *testing.T) {
	res := NewArticleArchiver(&fakeArticleStore{}, nil).Archive(context.Background(), nil)
	if res.Success+res.Skipped+res.Failed != 0 || res.Errors == nil {
		t.Errorf("res = %+v", res)
	}
}

func newTestPostArchiver(st *flakyPostStore) (*PostArchiver, *int) {
	a := NewPostArchiver(st, 3, time.Second, nil)
	sleeps := 0
	a.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps++
		return nil
	}
	return a, &sleeps
}

func TestPostArchiver_Retries(t *testing.T) {
	st := &flakyPostStore{
		failures: map[string]int{"flaky": 2, "broken": 5},
		calls:    map[string]int{},
	}
	a, sleeps := newTestPostArchiver(st)

	res := a.Archive(context.Background(), []model.Post{
		{Title: "ok", Body: "b"},
		{Title: "flaky", Body: "b"},
		{Title: "broken", Body: strings.Repeat("x", 300)},
	})

	if res.Success != 2 || res.Failed != 1 {
		t.Fatalf("res = %+v", res)
	}
	if st.calls["flaky"] != 3 || st.calls["broken"] != 3 {
		t.Errorf("calls = %v", st.calls)
	}
	if *sleeps != 4 {
		t.Errorf("sleeps = %d, want 4", *sleeps)
	}
	if !strings.Contains(res.Errors[0].Error, "after 3 attempts") {
		t.Errorf("error = %q", res.Errors[0].Error)
	}
}

func TestPostArchiver_Defaults(t *testing.T) {
	a := NewPostArchiver(&flakyPostStore{}, 0, 0, nil)
	if a.maxRetries != 3 || a.retryDelay != time.Second {
		t.Errorf("maxRetries = %d, retryDelay = %v", a.maxRetries, a.retryDelay)
	}
}
