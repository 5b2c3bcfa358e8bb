// Package relevance asks the reasoning collaborator whether search results
// match the user's intent. Any answer that can't be validated is treated as
// "not relevant, confidence 0".
package relevance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/llm"
	"leadgen-engine/internal/logging"
)

const defaultReason = "no reason given"

type Evaluator struct {
	provider llm.Provider
	log      *slog.Logger
}

type Option func(*Evaluator)

func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.log = l
		}
	}
}

func NewEvaluator(p llm.Provider, opts ...Option) *Evaluator {
	e := &Evaluator{provider: p, log: logging.New("relevance")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// verdict mirrors one model answer before validation. Fields are untyped so
// a wrong type is detected instead of silently zeroed.
type verdict struct {
	Index      any `json:"index"`
	IsRelevant any `json:"is_relevant"`
	Confidence any `json:"confidence"`
	Reason     any `json:"reason"`
}

// validate turns a raw verdict into an assessment, or reports why it can't.
func (v verdict) validate() (domain.RelevanceAssessment, error) {
	rel, ok := v.IsRelevant.(bool)
	if !ok {
		return domain.RelevanceAssessment{}, fmt.Errorf("is_relevant is %T, want bool", v.IsRelevant)
	}
	conf, ok := v.Confidence.(float64)
	if !ok {
		return domain.RelevanceAssessment{}, fmt.Errorf("confidence is %T, want number", v.Confidence)
	}
	if math.IsNaN(conf) || conf < 0 || conf > 1 {
		return domain.RelevanceAssessment{}, fmt.Errorf("confidence %v out of [0,1]", conf)
	}
	reason, _ := v.Reason.(string)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultReason
	}
	return domain.RelevanceAssessment{IsRelevant: rel, Confidence: conf, Reason: reason}, nil
}

// Assess judges one candidate. It never fails: collaborator errors and
// malformed answers come back fail-closed.
func (e *Evaluator) Assess(ctx context.Context, candidate, intent string) domain.RelevanceAssessment {
	out, err := e.provider.Generate(ctx, []llm.Message{
		llm.System(systemPrompt),
		llm.User(singlePrompt(intent, candidate)),
	}, llm.WithTemperature(0.1))
	if err != nil {
		e.log.Warn("relevance: model call failed", "err", err)
		return domain.FailClosed("evaluation failed: model unavailable")
	}

	var v verdict
	raw, err := llm.ExtractJSON(out, '{')
	if err == nil {
		err = json.Unmarshal([]byte(raw), &v)
	}
	if err != nil {
		e.log.Warn("relevance: unparseable answer", "err", err)
		return domain.FailClosed("evaluation failed: malformed response")
	}
	a, err := v.validate()
	if err != nil {
		e.log.Warn("relevance: invalid answer", "err", err)
		return domain.FailClosed("evaluation failed: " + err.Error())
	}
	return a
}

// AssessBatch judges all results in one model call. The returned slice is
// parallel to results; entries the model skipped, duplicated or got wrong
// are fail-closed individually.
func (e *Evaluator) AssessBatch(ctx context.Context, results []domain.SearchResult, intent string) []domain.RelevanceAssessment {
	out := make([]domain.RelevanceAssessment, len(results))
	if len(results) == 0 {
		return out
	}
	failAll := func(reason string) []domain.RelevanceAssessment {
		for i := range out {
			out[i] = domain.FailClosed(reason)
		}
		return out
	}

	text, err := e.provider.Generate(ctx, []llm.Message{
		llm.System(systemPrompt),
		llm.User(batchPrompt(intent, results)),
	}, llm.WithTemperature(0.1))
	if err != nil {
		e.log.Warn("relevance: model call failed", "err", err, "results", len(results))
		return failAll("evaluation failed: model unavailable")
	}

	verdicts, err := llm.DecodeJSON[[]verdict](text, '[')
	if err != nil {
		e.log.Warn("relevance: unparseable batch answer", "err", err)
		return failAll("evaluation failed: malformed response")
	}

	filled := make([]bool, len(results))
	for _, v := range verdicts {
		idx, ok := index(v.Index, len(results))
		if !ok {
			e.log.Debug("relevance: dropping entry with bad index", "index", v.Index)
			continue
		}
		if filled[idx] {
			// conflicting answers for one result; trust neither
			out[idx] = domain.FailClosed("evaluation failed: duplicate entry")
			continue
		}
		filled[idx] = true
		a, err := v.validate()
		if err != nil {
			e.log.Debug("relevance: invalid entry", "index", idx, "err", err)
			out[idx] = domain.FailClosed("evaluation failed: " + err.Error())
			continue
		}
		out[idx] = a
	}
	for i, ok := range filled {
		if !ok {
			out[i] = domain.FailClosed("evaluation failed: missing from response")
		}
	}
	return out
}

func index(v any, n int) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	i := int(f)
	return i, i >= 0 && i < n
}

// Aggregate is the share of assessments marked relevant, 0 for none.
func Aggregate(as []domain.RelevanceAssessment) float64 {
	if len(as) == 0 {
		return 0
	}
	n := 0
	for _, a := range as {
		if a.IsRelevant {
			n++
		}
	}
	return float64(n) / float64(len(as))
}
