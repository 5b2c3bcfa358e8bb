package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/events"
	"leadgen-engine/internal/export"
	"leadgen-engine/internal/runner"
	"leadgen-engine/internal/store"
)

type RunsHandler struct {
	DB        *sql.DB
	CfgVal    *atomic.Value // config.Config
	RunStatus *atomic.Value // httpapi.RunStatus
	Hub       *events.Hub
	Runner    *runner.Runner
	NewID     func() string
	BaseCtx   context.Context
}

func (h RunsHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.RunStatus.Load().(RunStatus)
	writeJSON(w, st)
}

// ErrAlreadyRunning is returned by Trigger while a run is in flight.
var ErrAlreadyRunning = errors.New("already running")

var errInvalidRun = errors.New("invalid run")

func NewRunsHandler(d Deps) RunsHandler {
	d = WithDefaults(d)
	return RunsHandler{
		DB:        d.DB,
		CfgVal:    d.CfgVal,
		RunStatus: d.RunStatus,
		Hub:       d.Hub,
		Runner:    d.Runner,
		NewID:     d.NewID,
		BaseCtx:   d.BaseCtx,
	}
}

// Start kicks off one acquisition in the background. Only one run may be
// in flight per server.
func (h RunsHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRunReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidJSON, "invalid json")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidRequest, "query is required")
		return
	}
	if req.TargetCount < 0 {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidRequest, "target_count must be >= 1")
		return
	}

	id, err := h.Trigger(req.Query, req.TargetCount)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true, "run_id": id})
}

// Trigger claims the run slot and starts query in the background. A
// target of 0 means pipeline.target_count.
func (h RunsHandler) Trigger(query string, target int) (string, error) {
	cfg := h.CfgVal.Load().(config.Config)
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("%w: query is required", errInvalidRun)
	}
	if target == 0 {
		target = cfg.Pipeline.TargetCount
	}
	if target < 1 {
		return "", fmt.Errorf("%w: target_count must be >= 1", errInvalidRun)
	}

	st := h.RunStatus.Load().(RunStatus)
	if st.Running {
		return "", ErrAlreadyRunning
	}

	id := h.NewID()
	next := st
	next.RunID = id
	next.Query = query
	next.LastRunAt = time.Now().UTC().Format(time.RFC3339)
	next.Running = true
	next.LastError = ""
	next.LastLeads = 0
	if !h.RunStatus.CompareAndSwap(st, next) {
		return "", ErrAlreadyRunning
	}

	go func() {
		out, err := h.Runner.Run(h.BaseCtx, cfg, runner.Request{ID: id, Query: query, Target: target}, events.NewEmitter(h.Hub, id))

		now := time.Now().UTC().Format(time.RFC3339)
		done := h.RunStatus.Load().(RunStatus)
		done.Running = false
		done.LastRunAt = now
		done.LastLeads = out.Leads.Len()
		if err != nil {
			done.LastError = err.Error()
		} else {
			done.LastError = ""
			done.LastOkAt = now
		}
		h.RunStatus.Store(done)
	}()
	return id, nil
}

// WaitIdle blocks until no run is in flight or ctx ends.
func (h RunsHandler) WaitIdle(ctx context.Context, poll time.Duration) error {
	t := time.NewTicker(poll)
	defer t.Stop()
	for h.RunStatus.Load().(RunStatus).Running {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

func (h RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns(r.Context(), h.DB, queryInt(r, "limit", 50))
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, CodeDB, err.Error())
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, runs)
}

func (h RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := store.GetRun(r.Context(), h.DB, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	set, err := store.GetLeads(r.Context(), h.DB, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"run":     run,
		"leads":   export.Rows(set),
		"summary": export.Summarize(set),
	})
}

func (h RunsHandler) LeadsCSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	set, err := store.GetLeads(r.Context(), h.DB, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="leads_`+id+`.csv"`)
	_ = export.WriteCSV(w, set)
}
