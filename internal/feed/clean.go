package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanText strips markup, decodes entities and collapses whitespace
func CleanText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	text := s
	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			doc.Find("script, style, noscript").Remove()
			text = doc.Text()
		}
	}

	return strings.Join(strings.Fields(text), " ")
}
