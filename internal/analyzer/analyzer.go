package analyzer

import (
	"math"
	"slices"
	"strings"

	"github.com/ppiankov/curator/internal/model"
	"github.com/ppiankov/curator/internal/util"
)

const (
	baselineScore  = 5.0
	keywordShare   = 0.7
	sourceShare    = 0.3
	maxScore       = 10.0
	maxTags        = 5
	summaryRunes   = 200
	summaryEllipse = "..."
)

// Analyzer scores, classifies and tags articles. It does no I/O.
type Analyzer struct {
	lex        Lexicon
	categories []loweredRule
	tagVocab   []string
}

type loweredRule struct {
	category model.Category
	keywords []string
}

// New creates an Analyzer over lex
func New(lex Lexicon) *Analyzer {
	a := &Analyzer{lex: lex}
	a.lex.Importance = make([]WeightedKeyword, len(lex.Importance))
	for i, kw := range lex.Importance {
		a.lex.Importance[i] = WeightedKeyword{Keyword: strings.ToLower(kw.Keyword), Weight: kw.Weight}
	}
	for _, rule := range lex.Categories {
		lr := loweredRule{category: rule.Category}
		for _, kw := range rule.Keywords {
			lr.keywords = append(lr.keywords, strings.ToLower(kw))
		}
		a.categories = append(a.categories, lr)
	}
	a.tagVocab = slices.Concat(lex.Organizations, lex.Models, lex.Technologies)
	return a
}

// Analyze returns enriched copies of articles, stable-sorted by importance descending
func (a *Analyzer) Analyze(articles []model.Article) []model.Article {
	out := make([]model.Article, len(articles))
	for i, article := range articles {
		out[i] = a.analyzeOne(article)
	}

	slices.SortStableFunc(out, func(x, y model.Article) int {
		switch {
		case x.ImportanceScore > y.ImportanceScore:
			return -1
		case x.ImportanceScore < y.ImportanceScore:
			return 1
		default:
			return 0
		}
	})
	return out
}

func (a *Analyzer) analyzeOne(in model.Article) model.Article {
	out := in.Clone()
	text := strings.ToLower(in.Title + " " + in.Excerpt)

	out.ImportanceScore = a.Score(text, in.Source)
	out.Importance = Label(out.ImportanceScore)
	out.Category = a.Categorize(text)
	out.Tags = a.Tags(text)
	out.Summary = summarize(in.Excerpt)
	out.KeyPoints = []string{}
	return out
}

// Score computes the blended importance score for lowercased text, clamped
// to [0,10] and rounded to one decimal
func (a *Analyzer) Score(text, source string) float64 {
	score := baselineScore
	for _, kw := range a.lex.Importance {
		if strings.Contains(text, kw.Keyword) {
			score += kw.Weight
		}
	}

	credibility, ok := a.lex.Credibility[source]
	if !ok {
		credibility = a.lex.DefaultCredibility
	}

	score = score*keywordShare + credibility*sourceShare
	score = math.Max(0, math.Min(maxScore, score))
	return math.Round(score*10) / 10
}

// Label maps a score to its importance label
func Label(score float64) model.Importance {
	switch {
	case score >= 8.5:
		return model.ImportanceCritical
	case score >= 7.0:
		return model.ImportanceHigh
	case score >= 5.0:
		return model.ImportanceMedium
	default:
		return model.ImportanceLow
	}
}

// Categorize picks the category with the most keyword hits. Ties go to the
// category listed first; no hits at all yields the default category.
func (a *Analyzer) Categorize(text string) model.Category {
	best := a.lex.DefaultCategory
	bestCount := 0
	for _, rule := range a.categories {
		count := 0
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = rule.category, count
		}
	}
	return best
}

// Tags returns up to five vocabulary terms present in text: organizations
// first, then models, then technologies
func (a *Analyzer) Tags(text string) []string {
	tags := []string{}
	for _, term := range a.tagVocab {
		if len(tags) == maxTags {
			break
		}
		if strings.Contains(text, strings.ToLower(term)) && !slices.Contains(tags, term) {
			tags = append(tags, term)
		}
	}
	return tags
}

func summarize(excerpt string) string {
	if excerpt == "" {
		return ""
	}
	return util.Truncate(excerpt, summaryRunes) + summaryEllipse
}
