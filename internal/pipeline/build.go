package pipeline

import (
	"fmt"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/events"
	"leadgen-engine/internal/extract"
	"leadgen-engine/internal/fetch"
	"leadgen-engine/internal/llm"
	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/refine"
	"leadgen-engine/internal/relevance"
	"leadgen-engine/internal/search"
)

// FromConfig wires the production collaborators selected by cfg. Missing
// credentials fail here, before any network call.
func FromConfig(cfg config.Config, creds config.Credentials, n events.Notifier) (*Orchestrator, error) {
	if err := creds.Check(cfg); err != nil {
		return nil, err
	}

	s, err := search.New(cfg, creds.SearchKey)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	p, err := llm.NewProvider(llm.Config{
		Provider:  cfg.LLM.Provider,
		Model:     cfg.LLM.Model,
		BaseURL:   cfg.LLM.BaseURL,
		APIKey:    creds.LLMKey,
		Timeout:   cfg.LLMTimeout(),
		MaxTokens: cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}

	// validate the driver now rather than at the first candidate
	if _, err := fetch.NewOpener(cfg); err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	return New(Deps{
		Searcher:  s,
		Evaluator: relevance.NewEvaluator(p, relevance.WithLogger(logging.New("relevance"))),
		Refiner:   refine.New(p, refine.WithLogger(logging.New("refine"))),
		Extractor: extract.New(p, extract.WithLogger(logging.New("extract"))),
		NewFetcher: func() (Fetcher, error) {
			f, err := fetch.FromConfig(cfg, fetch.WithLogger(logging.New("fetch")))
			if err != nil {
				return nil, err
			}
			return f, nil
		},
		Notifier: n,
		Logger:   logging.New("pipeline"),
	}, OptionsFromConfig(cfg))
}
