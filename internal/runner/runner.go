// Package runner executes one acquisition end to end and records it in the
// run history.
package runner

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/events"
	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/pipeline"
	"leadgen-engine/internal/secrets"
	"leadgen-engine/internal/store"
)

// Acquirer performs the acquisition itself. Tests swap in a fake.
type Acquirer func(ctx context.Context, cfg config.Config, query string, target int, n events.Notifier) (pipeline.Report, error)

// Acquire resolves credentials and runs a freshly wired pipeline, so every
// run gets its own browser session.
func Acquire(ctx context.Context, cfg config.Config, query string, target int, n events.Notifier) (pipeline.Report, error) {
	creds, err := secrets.Resolve(cfg)
	if err != nil {
		return pipeline.Report{Query: query}, err
	}
	o, err := pipeline.FromConfig(cfg, creds, n)
	if err != nil {
		return pipeline.Report{Query: query}, err
	}
	return o.Acquire(ctx, query, target)
}

type Request struct {
	ID     string // generated when empty
	Query  string
	Target int
}

type Outcome struct {
	Run   store.Run
	Leads *domain.LeadSet
}

type Runner struct {
	DB      *sql.DB // nil disables history
	Acquire Acquirer
	Now     func() time.Time
	Log     *slog.Logger
}

func New(db *sql.DB, acquire Acquirer) *Runner {
	if acquire == nil {
		acquire = Acquire
	}
	return &Runner{DB: db, Acquire: acquire, Now: time.Now, Log: logging.New("runner")}
}

// Run executes req. The returned error is the acquisition's; a failure to
// record history is only logged.
func (r *Runner) Run(ctx context.Context, cfg config.Config, req Request, n events.Notifier) (Outcome, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if n == nil {
		n = events.Nop{}
	}

	started := r.Now().UTC()
	rep, err := r.Acquire(ctx, cfg, req.Query, req.Target, n)

	run := store.Run{
		ID:          req.ID,
		Query:       req.Query,
		FinalQuery:  rep.FinalQuery,
		TargetCount: req.Target,
		Status:      statusOf(err),
		Attempts:    rep.Attempts,
		Leads:       rep.Leads.Len(),
		StartedAt:   started,
		FinishedAt:  r.Now().UTC(),
	}
	if err != nil {
		run.Error = err.Error()
	}

	if r.DB != nil {
		// history is written even if the caller has gone away
		if serr := store.SaveRun(context.WithoutCancel(ctx), r.DB, run, rep.Leads); serr != nil {
			r.Log.Warn("save run failed", "run_id", run.ID, "err", serr)
		}
	}

	r.Log.Info("run recorded", "run_id", run.ID, "status", run.Status, "attempts", run.Attempts, "leads", run.Leads)
	return Outcome{Run: run, Leads: rep.Leads}, err
}

func statusOf(err error) store.RunStatus {
	switch {
	case err == nil:
		return store.RunDone
	case errors.Is(err, pipeline.ErrAcquisitionExhausted):
		return store.RunExhausted
	default:
		return store.RunFailed
	}
}
