package model

import "time"

// CollectResult is the output of one collection run
type CollectResult struct {
	CollectedAt time.Time     `json:"collected_at"`
	TotalCount  int           `json:"total_count"`
	Articles    []Article     `json:"articles"`
	Sources     int           `json:"sources"`
	FailedFeeds []FeedFailure `json:"failed_feeds,omitempty"`
}

// FeedFailure records a feed that could not be fetched or parsed
type FeedFailure struct {
	Source string `json:"source"`
	URL    string `json:"url"`
	Error  string `json:"error"`
}

// ArchiveResult tallies one archiver pass. Skipped is only used for articles.
type ArchiveResult struct {
	Success int            `json:"success"`
	Skipped int            `json:"skipped"`
	Failed  int            `json:"failed"`
	Errors  []ArchiveError `json:"errors"`
}

// ArchiveError names a record that could not be written
type ArchiveError struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

// RunReport is the structured summary of one orchestrator run
type RunReport struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Steps      RunSteps  `json:"steps"`
	Errors     []string  `json:"errors,omitempty"`
}

// RunSteps holds per-stage counts. Absent stages stay nil.
type RunSteps struct {
	Collection      *CollectionStep `json:"collection,omitempty"`
	Analysis        *AnalysisStep   `json:"analysis,omitempty"`
	Archive         *ArchiveResult  `json:"archive,omitempty"`
	LinkedInFilter  *FilterStep     `json:"linkedin_filter,omitempty"`
	LinkedInGen     *GenerateStep   `json:"linkedin_generate,omitempty"`
	LinkedInArchive *ArchiveResult  `json:"linkedin_archive,omitempty"`
	LinkedInElapsed string          `json:"linkedin_elapsed,omitempty"`
}

// CollectionStep summarizes collection
type CollectionStep struct {
	Total       int           `json:"total"`
	Sources     int           `json:"sources"`
	FailedFeeds []FeedFailure `json:"failed_feeds,omitempty"`
}

// AnalysisStep summarizes analysis
type AnalysisStep struct {
	Total        int                `json:"total"`
	ByImportance map[Importance]int `json:"by_importance"`
	ByCategory   map[Category]int   `json:"by_category"`
}

// FilterStep summarizes the relevance filter
type FilterStep struct {
	Input     int `json:"input"`
	Stage1    int `json:"stage1"`
	Output    int `json:"output"`
	Fallbacks int `json:"fallbacks"`
}

// GenerateStep summarizes post generation
type GenerateStep struct {
	Generated    int  `json:"generated"`
	Attempted    int  `json:"attempted"`
	Failed       int  `json:"failed"`
	Aborted      bool `json:"aborted"`
	InputTokens  int  `json:"input_tokens"`
	OutputTokens int  `json:"output_tokens"`
}
