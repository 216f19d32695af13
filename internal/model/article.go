package model

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"time"
)

// Importance is the ordinal label derived from an importance score
type Importance string

const (
	ImportanceCritical Importance = "Critical"
	ImportanceHigh     Importance = "High"
	ImportanceMedium   Importance = "Medium"
	ImportanceLow      Importance = "Low"
)

// Category is one of the fixed article categories
type Category string

const (
	CategoryResearch   Category = "Research"
	CategoryProduct    Category = "Product"
	CategoryBusiness   Category = "Business"
	CategoryPolicy     Category = "Policy"
	CategoryOpenSource Category = "OpenSource"
	CategoryTutorial   Category = "Tutorial"
	CategoryOpinion    Category = "Opinion"
)

// FeedSource describes one syndication feed to collect from
type FeedSource struct {
	Name     string `mapstructure:"name" yaml:"name" json:"name"`
	URL      string `mapstructure:"url" yaml:"url" json:"url"`
	Language string `mapstructure:"language" yaml:"language" json:"language"` // 2-letter code
	Priority string `mapstructure:"priority" yaml:"priority" json:"priority"` // high, medium, low
}

// Article is one normalized news item moving through the pipeline.
// Stages never modify an Article they received; they return enriched copies.
type Article struct {
	ID          string     `json:"id"` // ArticleID(URL)
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	Author      string     `json:"author,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	Language    string     `json:"language"`
	PublishedAt *time.Time `json:"published_at,omitempty"` // UTC, nil when unknown
	Priority    string     `json:"priority,omitempty"`

	// Set by the analyzer
	ImportanceScore float64    `json:"importance_score"`
	Importance      Importance `json:"importance,omitempty"`
	Category        Category   `json:"category,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Summary         string     `json:"summary,omitempty"`
	KeyPoints       []string   `json:"key_points,omitempty"`

	// Set by the relevance filter
	MatchedKeywords   []string `json:"matched_keywords,omitempty"`
	KeywordMatchCount int      `json:"keyword_match_count,omitempty"`
	RelevanceScore    *int     `json:"relevance_score,omitempty"`
	RelevanceReason   string   `json:"relevance_reason,omitempty"`
}

// Clone returns a deep copy so the caller can enrich it without aliasing the original
func (a Article) Clone() Article {
	c := a
	if a.PublishedAt != nil {
		t := *a.PublishedAt
		c.PublishedAt = &t
	}
	if a.RelevanceScore != nil {
		s := *a.RelevanceScore
		c.RelevanceScore = &s
	}
	c.Tags = slices.Clone(a.Tags)
	c.KeyPoints = slices.Clone(a.KeyPoints)
	c.MatchedKeywords = slices.Clone(a.MatchedKeywords)
	return c
}

// Relevance returns the relevance score, or 0 when the article was never judged
func (a Article) Relevance() int {
	if a.RelevanceScore == nil {
		return 0
	}
	return *a.RelevanceScore
}

// ArticleID derives the stable dedup key for a URL
func ArticleID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:16])
}

// Post is one drafted social-media item derived from an Article
type Post struct {
	Title          string   `json:"title"`
	Body           string   `json:"body"`
	Hashtags       []string `json:"hashtags"`
	Category       string   `json:"category"`
	SourceURL      string   `json:"source_url"`
	SourceTitle    string   `json:"source_title"`
	RelevanceScore int      `json:"relevance_score"`
}
