package model

import (
	"sort"
	"strings"
	"time"
)

// Config is the complete curator configuration
type Config struct {
	Feeds           []FeedSource     `mapstructure:"feeds" yaml:"feeds"`
	FeedGroups      FeedGroups       `mapstructure:"feed_groups" yaml:"feed_groups,omitempty"` // legacy layout: language -> feeds
	CredentialsFile string           `mapstructure:"credentials_file" yaml:"credentials_file"`
	Collector       CollectorConfig  `mapstructure:"collector" yaml:"collector"`
	Analyzer        AnalyzerConfig   `mapstructure:"analyzer" yaml:"analyzer"`
	Relevance       RelevanceConfig  `mapstructure:"relevance" yaml:"relevance"`
	Generation      GenerationConfig `mapstructure:"generation" yaml:"generation"`
	LLM             LLMConfig        `mapstructure:"llm" yaml:"llm"`
	Store           StoreConfig      `mapstructure:"store" yaml:"store"`
	Cache           CacheConfig      `mapstructure:"cache" yaml:"cache"`
	Report          ReportConfig     `mapstructure:"report" yaml:"report"`
	Schedule        ScheduleConfig   `mapstructure:"schedule" yaml:"schedule"`
	Server          ServerConfig     `mapstructure:"server" yaml:"server"`
	Log             LogConfig        `mapstructure:"log" yaml:"log"`
}

// CollectorConfig controls feed collection
type CollectorConfig struct {
	Workers           int           `mapstructure:"workers" yaml:"workers"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	Keywords          []string      `mapstructure:"keywords" yaml:"keywords"` // empty means the built-in AI/ML vocabulary
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	RespectRobots     bool          `mapstructure:"respect_robots" yaml:"respect_robots"`
	EnrichExcerpts    bool          `mapstructure:"enrich_excerpts" yaml:"enrich_excerpts"`
	HTTPProxy         string        `mapstructure:"http_proxy" yaml:"http_proxy"`
	HTTPSProxy        string        `mapstructure:"https_proxy" yaml:"https_proxy"`
	NoProxy           string        `mapstructure:"no_proxy" yaml:"no_proxy"`
}

// AnalyzerConfig extends the built-in lexicon
type AnalyzerConfig struct {
	Credibility map[string]float64 `mapstructure:"credibility" yaml:"credibility"`
}

// RelevanceConfig controls the two-stage relevance filter
type RelevanceConfig struct {
	Keywords           []string `mapstructure:"keywords" yaml:"keywords"`
	Audience           string   `mapstructure:"audience" yaml:"audience"`
	Threshold          int      `mapstructure:"threshold" yaml:"threshold"`
	MinFallbackMatches int      `mapstructure:"min_fallback_matches" yaml:"min_fallback_matches"`
	Model              string   `mapstructure:"model" yaml:"model"`
	MaxTokens          int      `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// GenerationConfig controls post drafting
type GenerationConfig struct {
	Model         string           `mapstructure:"model" yaml:"model"`
	MaxPosts      int              `mapstructure:"max_posts" yaml:"max_posts"`
	MaxLength     int              `mapstructure:"max_length" yaml:"max_length"`
	MaxRetries    int              `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelay    time.Duration    `mapstructure:"retry_delay" yaml:"retry_delay"`
	MaxTokens     int              `mapstructure:"max_tokens" yaml:"max_tokens"`
	Language      string           `mapstructure:"language" yaml:"language"`
	Profile       ProfileConfig    `mapstructure:"profile" yaml:"profile"`
	PostStructure []StructureEntry `mapstructure:"post_structure" yaml:"post_structure"`
	WritingRules  []string         `mapstructure:"writing_rules" yaml:"writing_rules"`
}

// ProfileConfig describes the author persona posts are written as
type ProfileConfig struct {
	Name             string   `mapstructure:"name" yaml:"name"`
	Role             string   `mapstructure:"role" yaml:"role"`
	Experience       string   `mapstructure:"experience" yaml:"experience"`
	CareerHighlights []string `mapstructure:"career_highlights" yaml:"career_highlights"`
	Expertise        []string `mapstructure:"expertise" yaml:"expertise"`
	BrandingGoal     string   `mapstructure:"branding_goal" yaml:"branding_goal"`
	Tone             string   `mapstructure:"tone" yaml:"tone"`
}

// StructureEntry is one section of the desired post layout
type StructureEntry struct {
	Section string `mapstructure:"section" yaml:"section"`
	Guide   string `mapstructure:"guide" yaml:"guide"`
}

// LLMConfig selects the text-generation service
type LLMConfig struct {
	Provider          string        `mapstructure:"provider" yaml:"provider"` // anthropic, openai, cohere, ollama
	APIKey            string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int           `mapstructure:"burst" yaml:"burst"`
	HTTPProxy         string        `mapstructure:"http_proxy" yaml:"http_proxy"`
	HTTPSProxy        string        `mapstructure:"https_proxy" yaml:"https_proxy"`
	NoProxy           string        `mapstructure:"no_proxy" yaml:"no_proxy"`
}

// StoreConfig selects and configures the document store
type StoreConfig struct {
	Backend           string         `mapstructure:"backend" yaml:"backend"` // notion, postgres
	Notion            NotionConfig   `mapstructure:"notion" yaml:"notion"`
	Postgres          PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
	PostRetries       int            `mapstructure:"post_retries" yaml:"post_retries"`
	PostRetryDelay    time.Duration  `mapstructure:"post_retry_delay" yaml:"post_retry_delay"`
	RequestsPerSecond float64        `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// NotionConfig holds document-store credentials
type NotionConfig struct {
	Token           string        `mapstructure:"token" yaml:"token,omitempty"`
	DatabaseID      string        `mapstructure:"database_id" yaml:"database_id"`
	PostsDatabaseID string        `mapstructure:"posts_database_id" yaml:"posts_database_id"`
	BaseURL         string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// PostgresConfig holds the relational store DSN
type PostgresConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// CacheConfig configures the URL-existence cache
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
	DiskDir string        `mapstructure:"disk_dir" yaml:"disk_dir"`
	Redis   RedisConfig   `mapstructure:"redis" yaml:"redis"`
}

// RedisConfig configures the shared cache layer
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

// ReportConfig lists where run reports are delivered
type ReportConfig struct {
	Path  string      `mapstructure:"path" yaml:"path"`
	S3    S3Config    `mapstructure:"s3" yaml:"s3"`
	Kafka KafkaConfig `mapstructure:"kafka" yaml:"kafka"`
}

// S3Config configures the object-storage report sink
type S3Config struct {
	Bucket       string `mapstructure:"bucket" yaml:"bucket"`
	Prefix       string `mapstructure:"prefix" yaml:"prefix"`
	Region       string `mapstructure:"region" yaml:"region"`
	Profile      string `mapstructure:"profile" yaml:"profile"`
	UsePathStyle bool   `mapstructure:"use_path_style" yaml:"use_path_style"`
}

// KafkaConfig configures the messaging report sink
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers" yaml:"brokers"`
	Topic   string   `mapstructure:"topic" yaml:"topic"`
}

// ScheduleConfig controls repeated runs
type ScheduleConfig struct {
	Cron          string `mapstructure:"cron" yaml:"cron"`
	LookbackHours int    `mapstructure:"lookback_hours" yaml:"lookback_hours"`
}

// ServerConfig controls the HTTP control surface
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() Config {
	return Config{
		Feeds:           DefaultFeeds(),
		CredentialsFile: "config/credentials.yaml",
		Collector: CollectorConfig{
			Workers:           10,
			Timeout:           20 * time.Second,
			UserAgent:         "Curator/0.3 (+https://github.com/ppiankov/curator)",
			MaxBodyBytes:      5 * 1024 * 1024,
			RequestsPerSecond: 2,
		},
		Relevance: RelevanceConfig{
			Keywords: []string{
				"saas", "b2b", "crm", "sales", "revenue", "pipeline", "automation",
				"enterprise", "workflow", "productivity", "agent", "copilot",
				"customer", "pricing", "go-to-market", "startup", "funding",
			},
			Audience:           "B2B SaaS sales and business operations practitioners",
			Threshold:          7,
			MinFallbackMatches: 2,
			Model:              "claude-haiku-4-5-20251001",
			MaxTokens:          100,
		},
		Generation: GenerationConfig{
			Model:      "claude-sonnet-4-20250514",
			MaxPosts:   3,
			MaxLength:  1800,
			MaxRetries: 3,
			RetryDelay: 2 * time.Second,
			MaxTokens:  2000,
			Language:   "Korean",
			Profile: ProfileConfig{
				Role: "B2B SaaS Sales / BizOps",
				Tone: "Practical and calm, written by a practitioner for practitioners",
			},
			PostStructure: []StructureEntry{
				{Section: "hook", Guide: "One or two lines that state why this news matters now"},
				{Section: "insight", Guide: "The core facts and what changes for practitioners"},
				{Section: "experience", Guide: "Connect the news to hands-on sales or operations work"},
				{Section: "closing", Guide: "A short takeaway or outlook"},
			},
		},
		LLM: LLMConfig{
			Provider:          "anthropic",
			Timeout:           60 * time.Second,
			RequestsPerSecond: 3,
			Burst:             1,
		},
		Store: StoreConfig{
			Backend: "notion",
			Notion: NotionConfig{
				BaseURL: "https://api.notion.com",
				Timeout: 30 * time.Second,
			},
			PostRetries:       3,
			PostRetryDelay:    time.Second,
			RequestsPerSecond: 2,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     7 * 24 * time.Hour,
		},
		Report: ReportConfig{
			Path: "data/logs/last_run.json",
		},
		Schedule: ScheduleConfig{
			Cron:          "0 7 * * *",
			LookbackHours: 24,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultFeeds returns the built-in feed list
func DefaultFeeds() []FeedSource {
	return []FeedSource{
		{Name: "TechCrunch AI", URL: "https://techcrunch.com/category/artificial-intelligence/feed/", Language: "en", Priority: "high"},
		{Name: "The Verge AI", URL: "https://www.theverge.com/rss/ai-artificial-intelligence/index.xml", Language: "en", Priority: "high"},
		{Name: "VentureBeat AI", URL: "https://venturebeat.com/category/ai/feed/", Language: "en", Priority: "medium"},
		{Name: "MIT Technology Review", URL: "https://www.technologyreview.com/feed/", Language: "en", Priority: "high"},
		{Name: "Wired AI", URL: "https://www.wired.com/feed/tag/ai/latest/rss", Language: "en", Priority: "medium"},
		{Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/technology-lab", Language: "en", Priority: "medium"},
		{Name: "OpenAI Blog", URL: "https://openai.com/blog/rss.xml", Language: "en", Priority: "high"},
		{Name: "Google AI Blog", URL: "https://blog.google/technology/ai/rss/", Language: "en", Priority: "high"},
		{Name: "Hacker News", URL: "https://hnrss.org/frontpage", Language: "en", Priority: "low"},
		{Name: "AI 타임스", URL: "https://www.aitimes.com/rss/allArticle.xml", Language: "ko", Priority: "medium"},
	}
}

// FeedGroups lists feeds by language group name ("english", "korean")
type FeedGroups map[string][]FeedSource

// FeedSources returns the flat feed list: Feeds first, then every group in
// name order, with the group name as the language when an entry has none.
func (c Config) FeedSources() []FeedSource {
	feeds := append([]FeedSource(nil), c.Feeds...)

	groups := make([]string, 0, len(c.FeedGroups))
	for name := range c.FeedGroups {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	for _, name := range groups {
		for _, f := range c.FeedGroups[name] {
			if f.Language == "" {
				f.Language = name
			}
			feeds = append(feeds, f)
		}
	}
	return NormalizeFeeds(feeds)
}

// NormalizeFeeds fills language and priority defaults
func NormalizeFeeds(feeds []FeedSource) []FeedSource {
	out := make([]FeedSource, 0, len(feeds))
	for _, f := range feeds {
		if f.URL == "" {
			continue
		}
		if f.Name == "" {
			f.Name = f.URL
		}
		f.Language = languageCode(f.Language)
		if f.Priority == "" {
			f.Priority = "medium"
		}
		out = append(out, f)
	}
	return out
}

var languageGroups = map[string]string{
	"english":  "en",
	"korean":   "ko",
	"한국어":      "ko",
	"japanese": "ja",
	"日本語":      "ja",
	"chinese":  "zh",
	"中文":       "zh",
	"german":   "de",
	"french":   "fr",
	"spanish":  "es",
}

// languageCode accepts either a code or a language group name ("english" -> "en")
func languageCode(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if code, ok := languageGroups[lang]; ok {
		return code
	}
	runes := []rune(lang)
	if len(runes) < 2 {
		return "en"
	}
	return string(runes[:2])
}
