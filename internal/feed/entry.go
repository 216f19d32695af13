package feed

import (
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/ppiankov/curator/internal/model"
	"github.com/ppiankov/curator/internal/util"
)

const maxExcerptRunes = 500

// dateLayouts cover timestamps gofeed could not parse on its own
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// toArticle normalizes one feed entry. ok is false for entries without a link
// and for entries dated before cutoff.
func toArticle(item *gofeed.Item, src model.FeedSource, cutoff time.Time) (model.Article, bool) {
	if item == nil {
		return model.Article{}, false
	}

	link := strings.TrimSpace(item.Link)
	if link == "" && len(item.Links) > 0 {
		link = strings.TrimSpace(item.Links[0])
	}
	if link == "" {
		return model.Article{}, false
	}

	published := itemTime(item)
	if published != nil && published.Before(cutoff) {
		return model.Article{}, false
	}

	excerpt := CleanText(item.Description)
	if excerpt == "" {
		excerpt = CleanText(item.Content)
	}

	language := src.Language
	if language == "" {
		language = "en"
	}
	priority := src.Priority
	if priority == "" {
		priority = "medium"
	}

	return model.Article{
		ID:          model.ArticleID(link),
		Title:       CleanText(item.Title),
		Excerpt:     util.Truncate(excerpt, maxExcerptRunes),
		URL:         link,
		Source:      src.Name,
		Author:      itemAuthor(item),
		ImageURL:    itemImage(item),
		Language:    language,
		PublishedAt: published,
		Priority:    priority,
	}, true
}

// itemTime returns the entry timestamp in UTC, or nil when none parses
func itemTime(item *gofeed.Item) *time.Time {
	for _, t := range []*time.Time{item.PublishedParsed, item.UpdatedParsed} {
		if t != nil && !t.IsZero() {
			utc := t.UTC()
			return &utc
		}
	}

	for _, raw := range []string{item.Published, item.Updated} {
		if t, ok := parseDate(raw); ok {
			return &t
		}
	}
	return nil
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func itemAuthor(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}

// itemImage prefers media:content, then media:thumbnail, then an image
// enclosure, then the entry image
func itemImage(item *gofeed.Item) string {
	if media, ok := item.Extensions["media"]; ok {
		if u := mediaURL(media, "content"); u != "" {
			return u
		}
		if u := mediaURL(media, "thumbnail"); u != "" {
			return u
		}
		for _, group := range media["group"] {
			if u := mediaURL(group.Children, "content"); u != "" {
				return u
			}
			if u := mediaURL(group.Children, "thumbnail"); u != "" {
				return u
			}
		}
	}

	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" && strings.HasPrefix(strings.ToLower(enc.Type), "image") {
			return enc.URL
		}
	}

	if item.Image != nil {
		return item.Image.URL
	}
	return ""
}

func mediaURL(media map[string][]ext.Extension, name string) string {
	for _, e := range media[name] {
		if u := e.Attrs["url"]; u != "" {
			return u
		}
	}
	return ""
}
