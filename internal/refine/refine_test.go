package refine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/llm/llmtest"
	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/util"
)

func newRefiner(p *llmtest.Scripted) *Refiner {
	return New(p, WithLogger(logging.Discard()))
}

func TestRefineUsesModel(t *testing.T) {
	q := domain.NewQuery("dentists austin")
	p := llmtest.Texts(`Refined query: "family dental practice Austin TX contact"`)

	results := []domain.SearchResult{{Title: "Top 10 Dentists - Yelp"}, {Title: "Acme Dental"}}
	as := []domain.RelevanceAssessment{
		{IsRelevant: false, Confidence: 0.8, Reason: "directory listing"},
		{IsRelevant: true, Confidence: 0.9, Reason: "clinic"},
	}

	got := newRefiner(p).Refine(context.Background(), q, results, as)
	assert.Equal(t, "family dental practice Austin TX contact", got.Text)
	assert.Equal(t, q.Intent, got.Intent)

	prompt := p.LastPrompt()
	assert.Contains(t, prompt, "directory listing")
	assert.Contains(t, prompt, "Top 10 Dentists - Yelp")
	assert.NotContains(t, prompt, "clinic")
}

func TestRefineNeverReturnsInput(t *testing.T) {
	tests := []struct {
		name  string
		reply llmtest.Reply
	}{
		{"same text", llmtest.Reply{Text: "dentists austin"}},
		{"same text different case", llmtest.Reply{Text: `"Dentists  Austin"`}},
		{"empty", llmtest.Reply{Text: "\n\n"}},
		{"model error", llmtest.Reply{Err: errors.New("rate limited")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := domain.NewQuery("dentists austin")
			got := newRefiner(llmtest.New(tt.reply)).Refine(context.Background(), q, nil, nil)
			assert.False(t, util.SameText(got.Text, q.Text))
			assert.Equal(t, "dentists austin company contact information", got.Text)
			assert.Equal(t, q.Intent, got.Intent)
		})
	}
}

func TestFallbackRotates(t *testing.T) {
	assert.Equal(t, "x company contact information", Fallback("x"))
	assert.Equal(t, "x company contact information official website", Fallback("x company contact information"))
	for _, in := range []string{"", "a", "a official website", "a company contact information"} {
		assert.False(t, util.SameText(in, Fallback(in)), in)
	}
}

func TestRefineChainStaysDistinct(t *testing.T) {
	q := domain.NewQuery("plumbers denver")
	r := newRefiner(llmtest.New(llmtest.Reply{Err: errors.New("down")}, llmtest.Reply{Err: errors.New("down")}))

	q1 := r.Refine(context.Background(), q, nil, nil)
	q2 := r.Refine(context.Background(), q1, nil, nil)
	assert.NotEqual(t, q.Text, q1.Text)
	assert.NotEqual(t, q1.Text, q2.Text)
	assert.Equal(t, "plumbers denver", q2.Intent)
}
