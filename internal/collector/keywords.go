package collector

import (
	"strings"

	"github.com/ppiankov/curator/internal/model"
)

// DefaultKeywords is the AI/ML vocabulary used when no keywords are configured
var DefaultKeywords = []string{
	"ai", "artificial intelligence", "machine learning", "deep learning",
	"neural network", "llm", "large language model", "gpt", "claude",
	"gemini", "llama", "transformer", "diffusion", "generative", "chatgpt",
	"openai", "anthropic", "deepmind",
	"인공지능", "머신러닝", "딥러닝", "생성형",
}

// keywordFilter keeps articles whose title or excerpt mentions any keyword
type keywordFilter struct {
	keywords []string
}

func newKeywordFilter(keywords []string) keywordFilter {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	if len(lowered) == 0 {
		return newKeywordFilter(DefaultKeywords)
	}
	return keywordFilter{keywords: lowered}
}

func (f keywordFilter) match(a model.Article) bool {
	text := strings.ToLower(a.Title + " " + a.Excerpt)
	for _, kw := range f.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
