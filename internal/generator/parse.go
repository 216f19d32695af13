package generator

import (
	"strings"

	"github.com/ppiankov/curator/internal/util"
)

// Draft is the decoded content of one completion
type Draft struct {
	Title    string
	Body     string
	Hashtags []string
	Category string
}

// ParseDraft decodes the [TITLE]/[BODY]/[HASHTAGS]/[CATEGORY] block format.
// Each block is optional; without a body the whole text becomes the body and
// its first 30 characters the title.
func ParseDraft(text string) Draft {
	var d Draft

	if title, ok := block(text, "TITLE"); ok {
		d.Title = title
	}
	if body, ok := block(text, "BODY"); ok {
		d.Body = body
	}
	if tags, ok := block(text, "HASHTAGS"); ok {
		d.Hashtags = splitHashtags(tags)
	}
	if category, ok := block(text, "CATEGORY"); ok {
		d.Category = category
	}

	if d.Body == "" {
		d.Body = text
		d.Title = util.Truncate(text, 30) + "..."
	}
	return d
}

// block returns the trimmed text between the first [NAME] and the [/NAME] after it
func block(text, name string) (string, bool) {
	open, closing := "["+name+"]", "[/"+name+"]"

	start := strings.Index(text, open)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(open):]

	end := strings.Index(rest, closing)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// splitHashtags turns "#a #b#c" into ["#a", "#b", "#c"]
func splitHashtags(s string) []string {
	var tags []string
	for _, tok := range strings.Fields(strings.ReplaceAll(s, "#", " #")) {
		if strings.HasPrefix(tok, "#") && len(tok) > 1 {
			tags = append(tags, tok)
		}
	}
	return tags
}
