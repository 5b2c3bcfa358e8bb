package relevance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/llm/llmtest"
	"leadgen-engine/internal/logging"
)

func results(n int) []domain.SearchResult {
	out := make([]domain.SearchResult, n)
	for i := range out {
		out[i] = domain.SearchResult{Title: "r", URL: "https://r.test", Position: i + 1}
	}
	return out
}

func newEval(p *llmtest.Scripted) *Evaluator {
	return NewEvaluator(p, WithLogger(logging.Discard()))
}

func TestAssessValid(t *testing.T) {
	p := llmtest.Texts("```json\n{\"is_relevant\": true, \"confidence\": 0.9, \"reason\": \"dental clinic\"}\n```")
	got := newEval(p).Assess(context.Background(), "Acme Dental", "dentists in austin")

	assert.Equal(t, domain.RelevanceAssessment{IsRelevant: true, Confidence: 0.9, Reason: "dental clinic"}, got)
	assert.Contains(t, p.LastPrompt(), `"dentists in austin"`)
}

func TestAssessFailsClosed(t *testing.T) {
	tests := []struct {
		name  string
		reply llmtest.Reply
	}{
		{"model error", llmtest.Reply{Err: errors.New("timeout")}},
		{"not json", llmtest.Reply{Text: "yes, very relevant"}},
		{"string decision", llmtest.Reply{Text: `{"is_relevant": "true", "confidence": 0.9, "reason": "x"}`}},
		{"missing confidence", llmtest.Reply{Text: `{"is_relevant": true, "reason": "x"}`}},
		{"confidence above one", llmtest.Reply{Text: `{"is_relevant": true, "confidence": 85, "reason": "x"}`}},
		{"negative confidence", llmtest.Reply{Text: `{"is_relevant": true, "confidence": -0.1}`}},
		{"string confidence", llmtest.Reply{Text: `{"is_relevant": true, "confidence": "high"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newEval(llmtest.New(tt.reply)).Assess(context.Background(), "c", "q")
			assert.False(t, got.IsRelevant)
			assert.Zero(t, got.Confidence)
			assert.NotEmpty(t, got.Reason)
		})
	}
}

func TestAssessDefaultsMissingReason(t *testing.T) {
	got := newEval(llmtest.Texts(`{"is_relevant": false, "confidence": 0.3}`)).Assess(context.Background(), "c", "q")
	assert.False(t, got.IsRelevant)
	assert.Equal(t, 0.3, got.Confidence)
	assert.Equal(t, defaultReason, got.Reason)
}

func TestAssessBatch(t *testing.T) {
	p := llmtest.Texts(`Here you go:
[
  {"index": 1, "is_relevant": false, "confidence": 0.2, "reason": "directory"},
  {"index": 0, "is_relevant": true, "confidence": 0.95, "reason": "clinic"},
  {"index": 2, "is_relevant": true, "confidence": 1.7, "reason": "overconfident"},
  {"index": 7, "is_relevant": true, "confidence": 0.9, "reason": "out of range"}
]`)
	got := newEval(p).AssessBatch(context.Background(), results(4), "dentists")
	require.Len(t, got, 4)

	assert.Equal(t, domain.RelevanceAssessment{IsRelevant: true, Confidence: 0.95, Reason: "clinic"}, got[0])
	assert.Equal(t, domain.RelevanceAssessment{IsRelevant: false, Confidence: 0.2, Reason: "directory"}, got[1])
	assert.False(t, got[2].IsRelevant)
	assert.Zero(t, got[2].Confidence)
	assert.False(t, got[3].IsRelevant)
	assert.Contains(t, got[3].Reason, "missing")

	for _, a := range got {
		assert.True(t, a.Valid())
	}
	assert.Equal(t, 1, p.CallCount())
}

func TestAssessBatchDuplicateIndex(t *testing.T) {
	p := llmtest.Texts(`[
  {"index": 0, "is_relevant": true, "confidence": 0.9, "reason": "a"},
  {"index": 0, "is_relevant": false, "confidence": 0.1, "reason": "b"}
]`)
	got := newEval(p).AssessBatch(context.Background(), results(1), "q")
	assert.False(t, got[0].IsRelevant)
	assert.Zero(t, got[0].Confidence)
}

func TestAssessBatchWholeFailure(t *testing.T) {
	for _, reply := range []llmtest.Reply{{Err: errors.New("down")}, {Text: "I cannot help with that"}} {
		got := newEval(llmtest.New(reply)).AssessBatch(context.Background(), results(3), "q")
		require.Len(t, got, 3)
		for _, a := range got {
			assert.False(t, a.IsRelevant)
			assert.Zero(t, a.Confidence)
		}
	}
}

func TestAssessBatchEmpty(t *testing.T) {
	p := llmtest.New()
	assert.Empty(t, newEval(p).AssessBatch(context.Background(), nil, "q"))
	assert.Zero(t, p.CallCount())
}

func TestAggregate(t *testing.T) {
	assert.Zero(t, Aggregate(nil))
	as := []domain.RelevanceAssessment{{IsRelevant: true}, {IsRelevant: false}, {IsRelevant: true}, {IsRelevant: false}}
	assert.Equal(t, 0.5, Aggregate(as))
}
