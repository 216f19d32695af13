package generator

import (
	"fmt"
	"strings"

	"github.com/ppiankov/curator/internal/model"
)

// buildSystemPrompt renders the persona, structure and style rules once per generator
func buildSystemPrompt(cfg model.GenerationConfig) string {
	p := cfg.Profile
	var b strings.Builder

	b.WriteString("You are an expert LinkedIn post writer. Write posts about news and trends from the point of view of the author profile below.\n\n")

	b.WriteString("## Author profile\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Name)
	fmt.Fprintf(&b, "- Role: %s\n", p.Role)
	fmt.Fprintf(&b, "- Experience: %s\n", p.Experience)
	b.WriteString("- Career highlights:\n")
	for _, h := range p.CareerHighlights {
		fmt.Fprintf(&b, "  - %s\n", h)
	}
	b.WriteString("- Expertise:\n")
	for _, e := range p.Expertise {
		fmt.Fprintf(&b, "  - %s\n", e)
	}
	fmt.Fprintf(&b, "- Branding goal: %s\n\n", p.BrandingGoal)

	b.WriteString("## Tone\n")
	b.WriteString(p.Tone + "\n\n")

	b.WriteString("## Post structure\n")
	for _, s := range cfg.PostStructure {
		fmt.Fprintf(&b, "  - %s: %s\n", s.Section, s.Guide)
	}
	b.WriteString("\n")

	b.WriteString("## Constraints\n")
	for i, rule := range fixedRules(cfg.Language, cfg.MaxLength) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}

	if len(cfg.WritingRules) > 0 {
		b.WriteString("\n## Writing rules\n")
		for _, r := range cfg.WritingRules {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
	}

	b.WriteString(`
## Output format
Always answer in exactly this format:

[TITLE]
Post title
[/TITLE]

[BODY]
Post body
[/BODY]

[HASHTAGS]
#tag1 #tag2 #tag3
[/HASHTAGS]

[CATEGORY]
Category name
[/CATEGORY]`)

	return b.String()
}

func fixedRules(language string, maxLength int) []string {
	return []string{
		fmt.Sprintf("Write in %s (technical terms may be given in English alongside).", language),
		fmt.Sprintf("Keep the body within %d characters, hashtags excluded.", maxLength),
		"Use line breaks generously for readability.",
		"Use emojis only as accents, never heavily.",
		"The title summarizes the core of the post in 15 characters or fewer.",
		"Use 5-7 hashtags, placed on the last line.",
		"Mention the source by name only (for example 'according to TechCrunch'). Never put a URL in the body.",
		"When referring to personal experience, stay natural and omit company names and specific numbers.",
		"End with a short reflection or outlook. No call-to-action questions inviting comments.",
		"Always finish the body with the line '📎 Source in the first comment'.",
	}
}

// buildUserPrompt renders the news facts and relevance judgment for one article
func buildUserPrompt(a model.Article) string {
	summary := a.Summary
	if summary == "" {
		summary = a.Excerpt
	}
	score := "N/A"
	if a.RelevanceScore != nil {
		score = fmt.Sprintf("%d", *a.RelevanceScore)
	}
	reason := a.RelevanceReason
	if reason == "" {
		reason = "N/A"
	}

	var b strings.Builder
	b.WriteString("Write a LinkedIn post based on the news below.\n\n")
	b.WriteString("## News\n")
	fmt.Fprintf(&b, "- Title: %s\n", a.Title)
	fmt.Fprintf(&b, "- Summary: %s\n", summary)
	fmt.Fprintf(&b, "- Category: %s\n", a.Category)
	fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(a.Tags, ", "))
	fmt.Fprintf(&b, "- Source: %s\n", a.Source)
	fmt.Fprintf(&b, "- URL: %s\n\n", a.URL)
	b.WriteString("## Relevance assessment\n")
	fmt.Fprintf(&b, "- Score: %s/10\n", score)
	fmt.Fprintf(&b, "- Reason: %s\n", reason)
	fmt.Fprintf(&b, "- Matched keywords: %s\n\n", strings.Join(a.MatchedKeywords, ", "))
	b.WriteString("Extract the key insight of this news and connect it to the author's hands-on experience, written from a practitioner's point of view.")
	return b.String()
}
