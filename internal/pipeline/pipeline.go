// Package pipeline runs one lead acquisition: search, judge, refine while
// the batch is poor and budget remains, then fetch and extract the
// relevant candidates in order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/events"
	"leadgen-engine/internal/extract"
	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/relevance"
	"leadgen-engine/internal/util"
)

type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]domain.SearchResult, error)
}

type Evaluator interface {
	AssessBatch(ctx context.Context, results []domain.SearchResult, intent string) []domain.RelevanceAssessment
}

type Refiner interface {
	Refine(ctx context.Context, q domain.Query, results []domain.SearchResult, as []domain.RelevanceAssessment) domain.Query
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) domain.RawPage
	Close() error
}

type Extractor interface {
	Extract(ctx context.Context, page domain.RawPage) extract.Result
}

type Options struct {
	Threshold         float64
	MaxRetries        int
	ResultsMultiplier int
	FetchDelay        time.Duration
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Threshold:         cfg.Pipeline.RelevanceThreshold,
		MaxRetries:        cfg.Pipeline.MaxRetries,
		ResultsMultiplier: cfg.Pipeline.ResultsMultiplier,
		FetchDelay:        cfg.FetchDelay(),
	}
}

type Deps struct {
	Searcher  Searcher
	Evaluator Evaluator
	Refiner   Refiner
	Extractor Extractor
	// NewFetcher gives each run its own browser session.
	NewFetcher func() (Fetcher, error)
	Notifier   events.Notifier
	Logger     *slog.Logger
	Now        func() time.Time
}

type Orchestrator struct {
	d    Deps
	opts Options
}

func New(d Deps, opts Options) (*Orchestrator, error) {
	if d.Searcher == nil || d.Evaluator == nil || d.Refiner == nil || d.Extractor == nil || d.NewFetcher == nil {
		return nil, errors.New("pipeline: searcher, evaluator, refiner, extractor and fetcher are required")
	}
	if opts.MaxRetries < 1 {
		return nil, fmt.Errorf("pipeline: max retries must be >= 1, got %d", opts.MaxRetries)
	}
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, fmt.Errorf("pipeline: threshold must be within [0,1], got %v", opts.Threshold)
	}
	if opts.ResultsMultiplier < 1 {
		opts.ResultsMultiplier = 1
	}
	if d.Notifier == nil {
		d.Notifier = events.Nop{}
	}
	if d.Logger == nil {
		d.Logger = logging.New("pipeline")
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Orchestrator{d: d, opts: opts}, nil
}

// Report describes how a run went. Leads is nil unless the run reached
// StateDone.
type Report struct {
	Query      string
	FinalQuery string
	Attempts   int
	State      State
	Leads      *domain.LeadSet
}

// Run acquires up to target leads for query. A short LeadSet is a normal
// outcome; an *ExhaustedError (ErrAcquisitionExhausted) means nothing
// relevant turned up at all.
func (o *Orchestrator) Run(ctx context.Context, query string, target int) (*domain.LeadSet, error) {
	rep, err := o.Acquire(ctx, query, target)
	return rep.Leads, err
}

// Acquire is Run with the attempt bookkeeping exposed.
func (o *Orchestrator) Acquire(ctx context.Context, query string, target int) (Report, error) {
	q := domain.NewQuery(query)
	rep := Report{Query: q.Text, FinalQuery: q.Text}
	if target < 1 {
		return rep, fmt.Errorf("target count must be >= 1, got %d", target)
	}
	if q.Text == "" {
		return rep, errors.New("query is empty")
	}

	log := o.d.Logger.With("intent", q.Intent)
	o.d.Notifier.Emit(events.RunStarted, events.Attempt{Query: q.Text})

	st := &run{state: StateSearching, query: q, target: target}
	report := func(set *domain.LeadSet) Report {
		rep.FinalQuery, rep.Attempts, rep.State, rep.Leads = st.query.Text, st.attempt, st.state, set
		return rep
	}
	for {
		if err := ctx.Err(); err != nil {
			o.finish(st, 0, err)
			return report(nil), err
		}

		switch st.state {
		case StateSearching:
			o.search(ctx, st, log)

		case StateEvaluating:
			o.evaluate(ctx, st, log)

		case StateRefining:
			prev := st.query
			st.query = o.d.Refiner.Refine(ctx, st.query, st.results, st.assessments)
			log.Info("query refined", "attempt", st.attempt, "from", prev.Text, "to", st.query.Text)
			o.d.Notifier.Emit(events.QueryRefined, events.Refinement{Attempt: st.attempt, From: prev.Text, To: st.query.Text})
			st.state = StateSearching

		case StateExtracting:
			set, err := o.extractAll(ctx, st, log)
			if err != nil {
				o.finish(st, set.Len(), err)
				return report(nil), err
			}
			st.state = StateDone
			log.Info("run finished", "attempts", st.attempt, "leads", set.Len(), "target", target)
			o.finish(st, set.Len(), nil)
			return report(set), nil

		case StateExhausted:
			err := &ExhaustedError{Attempts: st.attempt, LastQuery: st.query.Text, Cause: st.lastErr}
			log.Warn("run exhausted", "attempts", st.attempt, "query", st.query.Text)
			o.finish(st, 0, err)
			return report(nil), err

		default:
			return report(nil), fmt.Errorf("pipeline: unexpected state %s", st.state)
		}
	}
}

func (o *Orchestrator) search(ctx context.Context, st *run, log *slog.Logger) {
	st.attempt++
	n := st.target * o.opts.ResultsMultiplier
	log.Info("search attempt", "attempt", st.attempt, "of", o.opts.MaxRetries, "query", st.query.Text, "n", n)
	o.d.Notifier.Emit(events.AttemptStarted, events.Attempt{Attempt: st.attempt, Query: st.query.Text})

	results, err := o.d.Searcher.Search(ctx, st.query.Text, n)
	if err != nil {
		st.lastErr = err
		log.Warn("search failed", "attempt", st.attempt, "query", st.query.Text, "err", err)
		o.d.Notifier.Emit(events.AttemptFailed, events.AttemptError{Attempt: st.attempt, Query: st.query.Text, Error: err.Error()})
		if st.attempt < o.opts.MaxRetries {
			// same query again; the failure says nothing about its quality
			return
		}
		st.results, st.assessments = st.held, st.heldAssess
		st.state = extractOrExhaust(st)
		return
	}

	st.lastErr = nil
	st.results = results
	st.state = StateEvaluating
}

func (o *Orchestrator) evaluate(ctx context.Context, st *run, log *slog.Logger) {
	st.assessments = o.d.Evaluator.AssessBatch(ctx, st.results, st.query.Intent)
	st.aggregate = relevance.Aggregate(st.assessments)
	if len(st.results) > 0 {
		st.held, st.heldAssess = st.results, st.assessments
	}

	relevant := relevantCount(st.assessments)
	log.Info("attempt evaluated",
		"attempt", st.attempt, "query", st.query.Text,
		"results", len(st.results), "relevant", relevant,
		"aggregate", st.aggregate, "threshold", o.opts.Threshold)
	o.d.Notifier.Emit(events.AttemptEvaluated, events.Evaluation{
		Attempt: st.attempt, Query: st.query.Text,
		Results: len(st.results), Relevant: relevant,
		Aggregate: st.aggregate, Threshold: o.opts.Threshold,
	})

	switch {
	case len(st.results) > 0 && st.aggregate >= o.opts.Threshold:
		st.state = extractOrExhaust(st)
	case st.attempt < o.opts.MaxRetries:
		st.state = StateRefining
	default:
		// an empty final batch does not displace an earlier one
		st.results, st.assessments = st.held, st.heldAssess
		st.state = extractOrExhaust(st)
	}
}

func extractOrExhaust(st *run) State {
	if relevantCount(st.assessments) == 0 {
		return StateExhausted
	}
	return StateExtracting
}

// extractAll walks the relevant results in order. Every fetch waits out the
// fetch delay, counted from the end of the previous one, and a fetch that
// has started is allowed to finish even if ctx is cancelled.
func (o *Orchestrator) extractAll(ctx context.Context, st *run, log *slog.Logger) (*domain.LeadSet, error) {
	set := domain.NewLeadSet()
	fetcher, err := o.d.NewFetcher()
	if err != nil {
		return set, fmt.Errorf("fetcher: %w", err)
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			log.Warn("fetcher close failed", "err", err)
		}
	}()

	pacer := util.NewPacer(o.opts.FetchDelay)
	seen := map[string]bool{}

	for i, r := range st.results {
		if set.Len() >= st.target {
			break
		}
		if i >= len(st.assessments) || !st.assessments[i].IsRelevant {
			continue
		}
		key := util.CanonicalizeURL(r.URL)
		if seen[key] {
			continue
		}
		seen[key] = true

		if err := pacer.Wait(ctx); err != nil {
			return set, err
		}

		page := fetcher.Fetch(context.WithoutCancel(ctx), r.URL)
		pacer.Done()
		if !page.OK() {
			log.Info("candidate skipped", "url", r.URL, "status", page.Status, "reason", page.Reason)
			o.d.Notifier.Emit(events.CandidateSkipped, events.Candidate{URL: r.URL, Status: string(page.Status), Reason: page.Reason})
			continue
		}

		res := o.d.Extractor.Extract(ctx, page)
		rec := domain.LeadRecord{
			Relevance:     st.assessments[i],
			SourceURL:     r.URL,
			SearchTitle:   r.Title,
			SearchSnippet: r.Snippet,
			ScrapedAt:     o.d.Now().UTC(),
		}
		res.Fields.Apply(&rec)
		if rec.Website == "" {
			rec.Website = r.URL
		}
		set.Append(rec)

		log.Info("lead extracted", "url", r.URL, "company", rec.CompanyName, "fields", len(res.Fields), "count", set.Len())
		o.d.Notifier.Emit(events.LeadExtracted, events.Lead{URL: r.URL, CompanyName: rec.CompanyName, Fields: len(res.Fields), Count: set.Len()})
	}
	return set, nil
}

func (o *Orchestrator) finish(st *run, leads int, err error) {
	f := events.Finished{Query: st.query.Text, Leads: leads, Attempts: st.attempt, State: st.state.String()}
	if err != nil {
		f.Error = err.Error()
	}
	o.d.Notifier.Emit(events.RunFinished, f)
}
