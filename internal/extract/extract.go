// Package extract turns page text into lead fields. The model path runs
// first; deterministic pattern matching fills whatever it left null.
package extract

import (
	"context"
	"log/slog"
	"strings"

	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/llm"
	"leadgen-engine/internal/logging"
)

type Extractor struct {
	provider llm.Provider
	log      *slog.Logger
}

type Option func(*Extractor)

func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.log = l
		}
	}
}

func New(p llm.Provider, opts ...Option) *Extractor {
	e := &Extractor{provider: p, log: logging.New("extract")}
	for _, o := range opts {
		o(e)
	}
	return e
}

type Result struct {
	Fields  Partial
	Origins Origins
}

// Extract never fails. A page with no text yields no fields and costs no
// model call.
func (e *Extractor) Extract(ctx context.Context, page domain.RawPage) Result {
	if !page.OK() || strings.TrimSpace(page.Text) == "" {
		return Result{Fields: Partial{}, Origins: Origins{}}
	}

	primary, err := e.primary(ctx, page)
	if err != nil {
		e.log.Warn("extract: model path failed, using fallback only", "url", page.URL, "err", err)
	}
	fallback := Fallback(page)

	fields, origins := Merge(primary, fallback)
	e.log.Debug("extract: done", "url", page.URL,
		"model_fields", len(primary), "fallback_fields", len(fields)-len(primary))
	return Result{Fields: fields, Origins: origins}
}
