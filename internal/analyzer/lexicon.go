package analyzer

import "github.com/ppiankov/curator/internal/model"

// WeightedKeyword adds Weight to the importance score when Keyword appears
type WeightedKeyword struct {
	Keyword string
	Weight  float64
}

// CategoryRule lists the keywords that vote for one category
type CategoryRule struct {
	Category model.Category
	Keywords []string
}

// Lexicon is the immutable vocabulary the analyzer scores with.
// Categories are evaluated in slice order; the first one wins a tie.
type Lexicon struct {
	Importance         []WeightedKeyword
	Categories         []CategoryRule
	Credibility        map[string]float64
	DefaultCredibility float64
	DefaultCategory    model.Category
	Organizations      []string
	Models             []string
	Technologies       []string
}

// DefaultLexicon returns the built-in English and Korean vocabulary
func DefaultLexicon() Lexicon {
	return Lexicon{
		Importance: []WeightedKeyword{
			{"launch", 2.0}, {"release", 2.0}, {"announce", 1.8}, {"introduce", 1.8},
			{"unveil", 2.0}, {"debut", 1.8}, {"new", 1.2},
			{"gpt-5", 3.0}, {"gpt-4", 2.0}, {"claude", 2.5}, {"gemini", 2.5},
			{"llama", 2.0}, {"mistral", 2.0},
			{"openai", 2.0}, {"anthropic", 2.0}, {"google", 1.8}, {"meta", 1.8},
			{"microsoft", 1.8}, {"deepmind", 2.0},
			{"breakthrough", 2.5}, {"funding", 1.8}, {"acquisition", 2.0},
			{"partnership", 1.5}, {"regulation", 2.0}, {"ban", 2.0},
			{"출시", 2.0}, {"발표", 1.8}, {"공개", 1.8}, {"혁신", 2.5}, {"규제", 2.0},
		},
		Categories: []CategoryRule{
			{model.CategoryResearch, []string{"paper", "study", "research", "arxiv", "experiment", "benchmark", "논문", "연구"}},
			{model.CategoryProduct, []string{"launch", "release", "update", "beta", "version", "api", "출시", "업데이트"}},
			{model.CategoryBusiness, []string{"funding", "acquisition", "ipo", "startup", "investment", "valuation", "투자", "인수"}},
			{model.CategoryPolicy, []string{"regulation", "law", "government", "policy", "ban", "legislation", "규제", "정책"}},
			{model.CategoryOpenSource, []string{"github", "open source", "mit license", "apache", "release", "오픈소스"}},
			{model.CategoryTutorial, []string{"how to", "guide", "tutorial", "course", "learn", "가이드", "튜토리얼"}},
			{model.CategoryOpinion, []string{"opinion", "analysis", "perspective", "think", "believe", "의견", "분석"}},
		},
		Credibility: map[string]float64{
			"MIT Technology Review": 10,
			"Nature":                10,
			"Science":               10,
			"TechCrunch":            9,
			"TechCrunch AI":         9,
			"OpenAI Blog":           9,
			"Anthropic News":        9,
			"Google AI Blog":        9,
			"The Verge":             8,
			"The Verge AI":          8,
			"Wired":                 8,
			"Wired AI":              8,
			"VentureBeat":           8,
			"VentureBeat AI":        8,
			"Ars Technica":          8,
			"AI 타임스":                7,
			"전자신문":                  7,
			"전자신문 AI":               7,
			"Hacker News":           7,
			"Reddit":                6,
		},
		DefaultCredibility: 5,
		DefaultCategory:    model.CategoryOpinion,
		Organizations:      []string{"OpenAI", "Anthropic", "Google", "Meta", "Microsoft", "DeepMind", "Nvidia"},
		Models:             []string{"GPT", "Claude", "Gemini", "Llama", "Mistral", "DALL-E", "Midjourney", "Stable Diffusion"},
		Technologies:       []string{"LLM", "RAG", "Fine-tuning", "Vision", "Multimodal", "Agents", "API"},
	}
}

// WithCredibility returns a copy of l with extra or overriding source ratings
func (l Lexicon) WithCredibility(overrides map[string]float64) Lexicon {
	if len(overrides) == 0 {
		return l
	}
	merged := make(map[string]float64, len(l.Credibility)+len(overrides))
	for k, v := range l.Credibility {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	l.Credibility = merged
	return l
}
