package notion

import (
	"strings"
	"time"

	"github.com/ppiankov/curator/internal/model"
	"github.com/ppiankov/curator/internal/util"
)

// Notion rejects rich_text content longer than this
const maxRichText = 2000

var categoryLabels = map[model.Category]string{
	model.CategoryResearch:   "🔬 Research",
	model.CategoryProduct:    "🚀 Product",
	model.CategoryBusiness:   "💼 Business",
	model.CategoryPolicy:     "⚖️ Policy",
	model.CategoryOpenSource: "🔓 OpenSource",
	model.CategoryTutorial:   "🎓 Tutorial",
	model.CategoryOpinion:    "💭 Opinion",
}

var importanceLabels = map[model.Importance]string{
	model.ImportanceCritical: "🔴 Critical",
	model.ImportanceHigh:     "🟠 High",
	model.ImportanceMedium:   "🟡 Medium",
	model.ImportanceLow:      "⚪ Low",
}

func categoryLabel(c model.Category) string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return categoryLabels[model.CategoryOpinion]
}

func importanceLabel(i model.Importance) string {
	if label, ok := importanceLabels[i]; ok {
		return label
	}
	return importanceLabels[model.ImportanceMedium]
}

func languageLabel(lang string) string {
	if lang == "en" {
		return "🇺🇸 English"
	}
	return "🇰🇷 Korean"
}

func richText(s string) []map[string]any {
	return []map[string]any{{"text": map[string]any{"content": s}}}
}

func selectOf(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func multiSelect(names []string, limit, width int) map[string]any {
	if len(names) > limit {
		names = names[:limit]
	}
	opts := make([]map[string]any, 0, len(names))
	for _, n := range names {
		opts = append(opts, map[string]any{"name": util.Truncate(n, width)})
	}
	return map[string]any{"multi_select": opts}
}

func date(start string) map[string]any {
	return map[string]any{"date": map[string]any{"start": start}}
}

func block(kind string, content map[string]any) map[string]any {
	return map[string]any{"object": "block", "type": kind, kind: content}
}

func textBlock(kind, s string) map[string]any {
	return block(kind, map[string]any{"rich_text": richText(s)})
}

func articleProperties(a model.Article, now time.Time) map[string]any {
	props := map[string]any{
		"이름":         map[string]any{"title": richText(util.Truncate(a.Title, 100))},
		"URL":        map[string]any{"url": a.URL},
		"Source":     selectOf(a.Source),
		"Category":   selectOf(categoryLabel(a.Category)),
		"Importance": selectOf(importanceLabel(a.Importance)),
		"Tags":       multiSelect(a.Tags, 5, 100),
		"Summary":    map[string]any{"rich_text": richText(util.Truncate(a.Summary, maxRichText))},
		"Archived":   date(now.UTC().Format(time.RFC3339)),
		"Status":     selectOf("📥 Inbox"),
		"Language":   selectOf(languageLabel(a.Language)),
	}
	if a.PublishedAt != nil {
		props["Published"] = date(a.PublishedAt.UTC().Format("2006-01-02"))
	}
	return props
}

func articleBlocks(a model.Article) []map[string]any {
	summary := a.Summary
	if summary == "" {
		summary = "No summary available."
	}

	blocks := []map[string]any{
		textBlock("heading_2", "📝 Summary"),
		textBlock("paragraph", util.Truncate(summary, maxRichText)),
	}

	if len(a.KeyPoints) > 0 {
		blocks = append(blocks, textBlock("heading_2", "🎯 Key Points"))
		for _, p := range a.KeyPoints {
			blocks = append(blocks, textBlock("bulleted_list_item", util.Truncate(p, maxRichText)))
		}
	}

	return append(blocks,
		textBlock("heading_2", "🔗 Original Article"),
		block("bookmark", map[string]any{"url": a.URL}),
		block("divider", map[string]any{}),
		textBlock("heading_2", "📝 My Notes"),
		textBlock("paragraph", ""),
	)
}

func postProperties(p model.Post, now time.Time) map[string]any {
	category := p.Category
	if category == "" {
		category = "General"
	}

	props := map[string]any{
		"Title":        map[string]any{"title": richText(util.Truncate(p.Title, 100))},
		"Post Body":    map[string]any{"rich_text": richText(util.Truncate(p.Body, maxRichText))},
		"Source Title": map[string]any{"rich_text": richText(util.Truncate(p.SourceTitle, maxRichText))},
		"Category":     selectOf(category),
		"Hashtags":     multiSelect(p.Hashtags, 10, 100),
		"Relevance":    map[string]any{"number": p.RelevanceScore},
		"Status":       selectOf("📝 Draft"),
		"Created":      date(now.UTC().Format(time.RFC3339)),
	}
	// Notion rejects an empty url property
	if p.SourceURL != "" {
		props["Source URL"] = map[string]any{"url": p.SourceURL}
	}
	return props
}

func postBlocks(p model.Post) []map[string]any {
	var blocks []map[string]any

	for _, para := range strings.Split(p.Body, "\n") {
		para = strings.TrimSpace(para)
		for _, chunk := range chunkRunes(para, maxRichText) {
			blocks = append(blocks, textBlock("paragraph", chunk))
		}
	}

	blocks = append(blocks, block("divider", map[string]any{}))

	if p.SourceURL != "" {
		blocks = append(blocks,
			textBlock("heading_3", "💬 Source link for the first comment"),
			block("callout", map[string]any{
				"icon":      map[string]any{"emoji": "📎"},
				"rich_text": richText(p.SourceURL),
			}),
		)
	}
	return blocks
}

// chunkRunes splits s into pieces of at most n runes; empty input yields none
func chunkRunes(s string, n int) []string {
	runes := []rune(s)
	var out []string
	for len(runes) > 0 {
		end := min(n, len(runes))
		out = append(out, string(runes[:end]))
		runes = runes[end:]
	}
	return out
}
