package relevance

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/curator/internal/llm"
	"github.com/ppiankov/curator/internal/model"
)

// scriptedProvider answers by article title
type scriptedProvider struct {
	replies map[string]string
	errs    map[string]error
	calls   int
}

func (p *scriptedProvider) Name() string                       { return "scripted" }
func (p *scriptedProvider) IsAvailable(ctx context.Context) bool { return true }
func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.calls++
	for title, err := range p.errs {
		if strings.Contains(req.Prompt, "Title: "+title+"\n") {
			return nil, err
		}
	}
	for title, reply := range p.replies {
		if strings.Contains(req.Prompt, "Title: "+title+"\n") {
			return &llm.CompletionResponse{Text: reply}, nil
		}
	}
	return nil, errors.New("unexpected prompt")
}

func testConfig() model.RelevanceConfig {
	return model.RelevanceConfig{
		Keywords:           []string{"CRM", "sales", "automation", "pipeline"},
		Threshold:          7,
		MinFallbackMatches: 2,
		MaxTokens:          100,
	}
}

func TestKeywordStage(t *testing.T) {
	f := New(testConfig(), nil, nil)

	in := []model.Article{
		{Title: "One match", Excerpt: "sales"},
		{Title: "No match", Excerpt: "weather"},
		{Title: "Three matches", Excerpt: "crm sales automation"},
		{Title: "Tag match", Tags: []string{"Pipeline"}},
		{Title: "Summary match", Summary: "CRM and Sales"},
	}

	out := f.KeywordStage(in)

	wantOrder := []string{"Three matches", "Summary match", "One match", "Tag match"}
	if len(out) != len(wantOrder) {
		t.Fatalf("got %d articles, want %d", len(out), len(wantOrder))
	}
	for i, w := range wantOrder {
		if out[i].Title != w {
			t.Errorf("out[%d] = %q, want %q", i, out[i].Title, w)
		}
		if out[i].KeywordMatchCount < 1 || out[i].KeywordMatchCount != len(out[i].MatchedKeywords) {
			t.Errorf("%q: count %d, matched %v", out[i].Title, out[i].KeywordMatchCount, out[i].MatchedKeywords)
		}
	}
	if in[0].MatchedKeywords != nil {
		t.Error("input must not be modified")
	}
}

func TestFilter_ThresholdAndOrder(t *testing.T) {
	provider := &scriptedProvider{replies: map[string]string{
		"A": `{"score": 7, "reason": "ok"}`,
		"B": "```json\n{\"score\": 9, \"reason\": \"great\"}\n```",
		"C": `{"score": 6, "reason": "meh"}`,
	}}
	f := New(testConfig(), provider, nil)

	res := f.Filter(context.Background(), []model.Article{
		{Title: "A", Excerpt: "sales"},
		{Title: "B", Excerpt: "sales"},
		{Title: "C", Excerpt: "sales"},
	})

	if res.Input != 3 || len(res.Stage1) != 3 {
		t.Fatalf("Input = %d, Stage1 = %d", res.Input, len(res.Stage1))
	}
	if len(res.Output) != 2 || res.Output[0].Title != "B" || res.Output[1].Title != "A" {
		t.Fatalf("unexpected output: %+v", res.Output)
	}
	if res.Output[0].Relevance() != 9 || res.Output[0].RelevanceReason != "great" {
		t.Errorf("B judgment = %d %q", res.Output[0].Relevance(), res.Output[0].RelevanceReason)
	}
	if res.Fallbacks != 0 {
		t.Errorf("Fallbacks = %d", res.Fallbacks)
	}
}

func TestFilter_FallbackSafetyNet(t *testing.T) {
	provider := &scriptedProvider{
		errs: map[string]error{
			"Two matches": errors.New("connection reset"),
			"One match":   errors.New("connection reset"),
		},
		replies: map[string]string{"Garbage": "not json at all"},
	}
	f := New(testConfig(), provider, nil)

	res := f.Filter(context.Background(), []model.Article{
		{Title: "Two matches", Excerpt: "crm sales"},
		{Title: "One match", Excerpt: "sales"},
		{Title: "Garbage", Excerpt: "crm pipeline"},
	})

	if len(res.Output) != 2 {
		t.Fatalf("expected 2 survivors, got %d: %+v", len(res.Output), res.Output)
	}
	for _, a := range res.Output {
		if a.Title == "One match" {
			t.Error("single-match article must not survive a failed evaluation")
		}
		if a.Relevance() != 5 {
			t.Errorf("%q score = %d, want 5", a.Title, a.Relevance())
		}
		if a.RelevanceReason != "evaluation failed (stage-1 keyword matches: 2)" {
			t.Errorf("%q reason = %q", a.Title, a.RelevanceReason)
		}
	}
	if res.Fallbacks != 2 {
		t.Errorf("Fallbacks = %d, want 2", res.Fallbacks)
	}
}

func TestFilter_QuotaSkipsRemainingCalls(t *testing.T) {
	quota := &llm.APIError{Provider: "scripted", StatusCode: 402, Message: "payment required"}
	provider := &scriptedProvider{errs: map[string]error{"First": quota, "Second": quota}}
	f := New(testConfig(), provider, nil)

	res := f.Filter(context.Background(), []model.Article{
		{Title: "First", Excerpt: "crm sales"},
		{Title: "Second", Excerpt: "crm sales"},
	})

	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls)
	}
	if len(res.Output) != 2 || res.Fallbacks != 2 {
		t.Errorf("Output = %d, Fallbacks = %d", len(res.Output), res.Fallbacks)
	}
}

func TestFilter_NoStage1Matches(t *testing.T) {
	provider := &scriptedProvider{}
	res := New(testConfig(), provider, nil).Filter(context.Background(), []model.Article{{Title: "weather"}})

	if len(res.Stage1) != 0 || len(res.Output) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
	if provider.calls != 0 {
		t.Error("provider must not be called without stage-1 survivors")
	}
}

func TestKeywordStage_EmptyConfigUsesDefaults(t *testing.T) {
	for name, keywords := range map[string][]string{
		"nil":   nil,
		"empty": {},
		"blank": {" ", ""},
	} {
		t.Run(name, func(t *testing.T) {
			f := New(model.RelevanceConfig{Keywords: keywords}, nil, nil)

			out := f.KeywordStage([]model.Article{
				{Title: "OpenAI launches new LLM for machine learning"},
				{Title: "Local weather report"},
			})

			if len(out) != 1 {
				t.Fatalf("got %d articles, want 1", len(out))
			}
			if out[0].KeywordMatchCount < 2 {
				t.Errorf("expected default vocabulary matches, got %v", out[0].MatchedKeywords)
			}
		})
	}
}
