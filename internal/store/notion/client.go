package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/curator/internal/model"
	"github.com/ppiankov/curator/internal/store"
	"github.com/ppiankov/curator/internal/util"
	"github.com/ppiankov/curator/internal/worker"
)

const apiVersion = "2022-06-28"

// Client writes articles and posts into two Notion databases
type Client struct {
	token           string
	baseURL         string
	databaseID      string
	postsDatabaseID string
	httpClient      *http.Client
	limiter         *worker.Limiter

	now func() time.Time
}

type queryResponse struct {
	Results []json.RawMessage `json:"results"`
}

type pageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// New creates a client. The token and article database id are required;
// the posts database id is only needed for PutPost.
func New(cfg model.NotionConfig, limiter *worker.Limiter) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("notion token is required")
	}
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("notion database id is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.notion.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		token:           cfg.Token,
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		databaseID:      cfg.DatabaseID,
		postsDatabaseID: cfg.PostsDatabaseID,
		httpClient:      &http.Client{Timeout: timeout},
		limiter:         limiter,
		now:             time.Now,
	}, nil
}

// HasURL queries the article database for a page whose URL property matches
func (c *Client) HasURL(ctx context.Context, url string) (bool, error) {
	payload := map[string]any{
		"filter": map[string]any{
			"property": "URL",
			"url":      map[string]any{"equals": url},
		},
	}

	var resp queryResponse
	if err := c.post(ctx, fmt.Sprintf("/v1/databases/%s/query", c.databaseID), payload, &resp); err != nil {
		return false, err
	}
	return len(resp.Results) > 0, nil
}

// PutArticle creates an article page and returns its URL
func (c *Client) PutArticle(ctx context.Context, a model.Article) (string, error) {
	payload := map[string]any{
		"parent":     map[string]any{"database_id": c.databaseID},
		"properties": articleProperties(a, c.now()),
		"children":   articleBlocks(a),
	}

	var resp pageResponse
	if err := c.post(ctx, "/v1/pages", payload, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// PutPost creates a draft page in the posts database
func (c *Client) PutPost(ctx context.Context, p model.Post) (string, error) {
	if c.postsDatabaseID == "" {
		return "", fmt.Errorf("notion posts database id is not configured")
	}

	payload := map[string]any{
		"parent":     map[string]any{"database_id": c.postsDatabaseID},
		"properties": postProperties(p, c.now()),
		"children":   postBlocks(p),
	}

	var resp pageResponse
	if err := c.post(ctx, "/v1/pages", payload, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// HasPostsDatabase reports whether PutPost can be used
func (c *Client) HasPostsDatabase() bool {
	return c.postsDatabaseID != ""
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, "notion"); err != nil {
			return err
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &store.APIError{StatusCode: resp.StatusCode, Body: util.Truncate(string(respBody), 300)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
