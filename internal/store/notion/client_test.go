package notion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/curator/internal/model"
	"github.com/ppiankov/curator/internal/store"
)

type capturedRequest struct {
	path    string
	headers http.Header
	body    map[string]any
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]capturedRequest) {
	t.Helper()

	var captured []capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		captured = append(captured, capturedRequest{path: r.URL.Path, headers: r.Header.Clone(), body: body})
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	c, err := New(model.NotionConfig{
		Token:           "secret",
		DatabaseID:      "articles-db",
		PostsDatabaseID: "posts-db",
		BaseURL:         server.URL,
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.now = func() time.Time { return time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC) }
	return c, &captured
}

func TestNew_RequiresCredentials(t *testing.T) {
	if _, err := New(model.NotionConfig{DatabaseID: "db"}, nil); err == nil {
		t.Error("expected error without token")
	}
	if _, err := New(model.NotionConfig{Token: "t"}, nil); err == nil {
		t.Error("expected error without database id")
	}
}

func TestClient_HasURL(t *testing.T) {
	c, captured := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"id":"page-1"}]}`))
	})

	ok, err := c.HasURL(context.Background(), "https://example.com/a")
	if err != nil || !ok {
		t.Fatalf("HasURL = %v, %v", ok, err)
	}

	req := (*captured)[0]
	if req.path != "/v1/databases/articles-db/query" {
		t.Errorf("path = %s", req.path)
	}
	if req.headers.Get("Notion-Version") != "2022-06-28" || req.headers.Get("Authorization") != "Bearer secret" {
		t.Errorf("headers = %v", req.headers)
	}
	filter := req.body["filter"].(map[string]any)
	if filter["property"] != "URL" || filter["url"].(map[string]any)["equals"] != "https://example.com/a" {
		t.Errorf("filter = %v", filter)
	}
}

func TestClient_HasURL_Empty(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	ok, err := c.HasURL(context.Background(), "https://example.com/new")
	if err != nil || ok {
		t.Errorf("HasURL = %v, %v", ok, err)
	}
}

func TestClient_PutArticle(t *testing.T) {
	c, captured := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"p1","url":"https://notion.so/p1"}`))
	})

	published := time.Date(2025, 2, 28, 22, 0, 0, 0, time.UTC)
	ref, err := c.PutArticle(context.Background(), model.Article{
		Title:       strings.Repeat("t", 150),
		URL:         "https://example.com/a",
		Source:      "OpenAI Blog",
		Category:    model.CategoryProduct,
		Importance:  model.ImportanceCritical,
		Tags:        []string{"OpenAI", "GPT", "LLM", "RAG", "Agent", "Extra"},
		Summary:     "short summary",
		Language:    "en",
		PublishedAt: &published,
	})
	if err != nil {
		t.Fatalf("PutArticle: %v", err)
	}
	if ref != "https://notion.so/p1" {
		t.Errorf("ref = %q", ref)
	}

	body := (*captured)[0].body
	if body["parent"].(map[string]any)["database_id"] != "articles-db" {
		t.Errorf("parent = %v", body["parent"])
	}

	props := body["properties"].(map[string]any)
	title := props["이름"].(map[string]any)["title"].([]any)[0].(map[string]any)["text"].(map[string]any)["content"].(string)
	if len(title) != 100 {
		t.Errorf("title length = %d, want 100", len(title))
	}
	if got := props["Category"].(map[string]any)["select"].(map[string]any)["name"]; got != "🚀 Product" {
		t.Errorf("Category = %v", got)
	}
	if got := props["Importance"].(map[string]any)["select"].(map[string]any)["name"]; got != "🔴 Critical" {
		t.Errorf("Importance = %v", got)
	}
	if tags := props["Tags"].(map[string]any)["multi_select"].([]any); len(tags) != 5 {
		t.Errorf("tags = %d, want 5", len(tags))
	}
	if got := props["Published"].(map[string]any)["date"].(map[string]any)["start"]; got != "2025-02-28" {
		t.Errorf("Published = %v", got)
	}
	if got := props["Language"].(map[string]any)["select"].(map[string]any)["name"]; got != "🇺🇸 English" {
		t.Errorf("Language = %v", got)
	}

	children := body["children"].([]any)
	if len(children) != 7 {
		t.Errorf("children = %d, want 7", len(children))
	}
}

func TestClient_PutPost(t *testing.T) {
	c, captured := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"p2","url":"https://notion.so/p2"}`))
	})

	tags := make([]string, 12)
	for i := range tags {
		tags[i] = "#t"
	}
	_, err := c.PutPost(context.Background(), model.Post{
		Title:          "Post",
		Body:           "line one\n\n" + strings.Repeat("가", 2500),
		Hashtags:       tags,
		SourceURL:      "https://example.com/a",
		SourceTitle:    "Source",
		RelevanceScore: 8,
	})
	if err != nil {
		t.Fatalf("PutPost: %v", err)
	}

	body := (*captured)[0].body
	if body["parent"].(map[string]any)["database_id"] != "posts-db" {
		t.Errorf("parent = %v", body["parent"])
	}
	props := body["properties"].(map[string]any)
	if _, ok := props["Source URL"]; !ok {
		t.Error("expected Source URL property")
	}
	if got := props["Category"].(map[string]any)["select"].(map[string]any)["name"]; got != "General" {
		t.Errorf("Category = %v", got)
	}
	if n := len(props["Hashtags"].(map[string]any)["multi_select"].([]any)); n != 10 {
		t.Errorf("hashtags = %d, want 10", n)
	}

	// "line one", two chunks of the long paragraph, divider, heading, callout
	children := body["children"].([]any)
	if len(children) != 6 {
		t.Fatalf("children = %d, want 6", len(children))
	}
	if children[3].(map[string]any)["type"] != "divider" {
		t.Errorf("children[3] = %v", children[3])
	}
}

func TestClient_PutPost_NoSourceURL(t *testing.T) {
	c, captured := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"p3"}`))
	})

	if _, err := c.PutPost(context.Background(), model.Post{Title: "t", Body: "b"}); err != nil {
		t.Fatalf("PutPost: %v", err)
	}
	body := (*captured)[0].body
	if _, ok := body["properties"].(map[string]any)["Source URL"]; ok {
		t.Error("empty Source URL must be omitted")
	}
	if n := len(body["children"].([]any)); n != 2 {
		t.Errorf("children = %d, want paragraph and divider", n)
	}
}

func TestClient_PutPost_NoDatabase(t *testing.T) {
	c, err := New(model.NotionConfig{Token: "t", DatabaseID: "db"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.HasPostsDatabase() {
		t.Error("HasPostsDatabase() = true")
	}
	if _, err := c.PutPost(context.Background(), model.Post{}); err == nil {
		t.Error("expected error")
	}
}

func TestClient_APIError(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"object":"error","code":"validation_error"}`))
	})

	_, err := c.PutArticle(context.Background(), model.Article{URL: "https://example.com"})

	var apiErr *store.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *store.APIError, got %v", err)
	}
	if apiErr.StatusCode != 400 || !strings.Contains(apiErr.Body, "validation_error") {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestChunkRunes(t *testing.T) {
	if got := chunkRunes("", 3); got != nil {
		t.Errorf("chunkRunes(\"\") = %v", got)
	}
	got := chunkRunes("abcdefg", 3)
	if strings.Join(got, "|") != "abc|def|g" {
		t.Errorf("chunkRunes = %v", got)
	}
}
