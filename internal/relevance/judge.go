package relevance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/curator/internal/model"
)

// Judgment is the remote model's verdict on one article
type Judgment struct {
	Score  int
	Reason string
}

type rawJudgment struct {
	Score  json.RawMessage `json:"score"`
	Reason string          `json:"reason"`
}

// DecodeJudgment parses a `{"score": N, "reason": "..."}` reply, optionally
// wrapped in a fenced code block. Score may be a number or a numeric string
// and is clamped to 0-10.
func DecodeJudgment(text string) (Judgment, error) {
	body := unwrapFence(strings.TrimSpace(text))
	if body == "" {
		return Judgment{}, fmt.Errorf("empty judgment")
	}

	var raw rawJudgment
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return Judgment{}, fmt.Errorf("decode judgment: %w", err)
	}
	if len(raw.Score) == 0 {
		return Judgment{}, fmt.Errorf("decode judgment: missing score")
	}

	score, err := parseScore(raw.Score)
	if err != nil {
		return Judgment{}, err
	}

	return Judgment{Score: clamp(score, 0, 10), Reason: strings.TrimSpace(raw.Reason)}, nil
}

// unwrapFence strips ``` fences and an optional json language tag
func unwrapFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	inner := strings.TrimPrefix(text, "```")
	if end := strings.Index(inner, "```"); end >= 0 {
		inner = inner[:end]
	}
	inner = strings.TrimSpace(inner)
	if len(inner) >= 4 && strings.EqualFold(inner[:4], "json") {
		inner = inner[4:]
	}
	return strings.TrimSpace(inner)
}

func parseScore(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		raw = []byte(strings.TrimSpace(asString))
	}

	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("decode judgment: score %s is not numeric", raw)
	}
	return int(f), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// buildPrompt renders the rating request for one stage-1 survivor
func buildPrompt(audience string, a model.Article) string {
	summary := a.Summary
	if summary == "" {
		summary = a.Excerpt
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rate whether the following news article offers insight worth a LinkedIn post for %s.\n\n", audience)
	fmt.Fprintf(&b, "Title: %s\n", a.Title)
	fmt.Fprintf(&b, "Summary: %s\n", summary)
	fmt.Fprintf(&b, "Category: %s\n", a.Category)
	fmt.Fprintf(&b, "Tags: %s\n", strings.Join(a.Tags, ", "))
	fmt.Fprintf(&b, "Matched keywords: %s\n\n", strings.Join(a.MatchedKeywords, ", "))
	b.WriteString("Score it from 0 to 10 and give a one-line reason.\n")
	b.WriteString("Reply with this JSON object only:\n")
	b.WriteString(`{"score": 8, "reason": "Directly tied to the CRM automation trend"}`)
	return b.String()
}
