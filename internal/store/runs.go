package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leadgen-engine/internal/domain"
)

var ErrNotFound = errors.New("not found")

type RunStatus string

const (
	RunDone      RunStatus = "done"
	RunExhausted RunStatus = "exhausted"
	RunFailed    RunStatus = "failed"
)

// Run is one finished pipeline invocation.
type Run struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	FinalQuery  string    `json:"finalQuery,omitempty"`
	TargetCount int       `json:"targetCount"`
	Status      RunStatus `json:"status"`
	Attempts    int       `json:"attempts"`
	Leads       int       `json:"leads"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}

// SaveRun records a run and its leads in one transaction. set may be nil
// for a run that produced nothing.
func SaveRun(ctx context.Context, db *sql.DB, r Run, set *domain.LeadSet) error {
	if r.ID == "" {
		return errors.New("save run: empty id")
	}
	r.Leads = set.Len()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO runs(id, query, final_query, target_count, status, attempts, leads, error, started_at, finished_at)
VALUES(?,?,?,?,?,?,?,?,?,?);`,
		r.ID, r.Query, r.FinalQuery, r.TargetCount, string(r.Status), r.Attempts, r.Leads, r.Error,
		r.StartedAt.UTC().Format(time.RFC3339), r.FinishedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if set != nil {
		for i, rec := range set.Records() {
			b, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("encode lead %d: %w", i, err)
			}
			if _, err := tx.ExecContext(ctx, `
INSERT INTO leads(run_id, position, company_name, website, record)
VALUES(?,?,?,?,?);`,
				r.ID, i, rec.CompanyName, rec.Website, string(b),
			); err != nil {
				return fmt.Errorf("insert lead %d: %w", i, err)
			}
		}
	}

	return tx.Commit()
}

const runColumns = `id, query, final_query, target_count, status, attempts, leads, error, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var r Run
	var status, started, finished string
	if err := s.Scan(&r.ID, &r.Query, &r.FinalQuery, &r.TargetCount, &status,
		&r.Attempts, &r.Leads, &r.Error, &started, &finished); err != nil {
		return Run{}, err
	}
	r.Status = RunStatus(status)
	r.StartedAt, _ = time.Parse(time.RFC3339, started)
	r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	return r, nil
}

// ListRuns returns the most recent runs first.
func ListRuns(ctx context.Context, db *sql.DB, limit int) ([]Run, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, `
SELECT `+runColumns+`
FROM runs
ORDER BY started_at DESC, rowid DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func GetRun(ctx context.Context, db *sql.DB, id string) (Run, error) {
	r, err := scanRun(db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?;`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return r, err
}

// GetLeads rebuilds the LeadSet of a run in its original order.
func GetLeads(ctx context.Context, db *sql.DB, runID string) (*domain.LeadSet, error) {
	if _, err := GetRun(ctx, db, runID); err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
SELECT record
FROM leads
WHERE run_id = ?
ORDER BY position ASC;`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := domain.NewLeadSet()
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var rec domain.LeadRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode lead of run %s: %w", runID, err)
		}
		set.Append(rec)
	}
	return set, rows.Err()
}

// CleanupOldRuns deletes runs (and their leads) started before cutoff.
func CleanupOldRuns(ctx context.Context, db *sql.DB, cutoff time.Time) (deleted int64, err error) {
	res, err := db.ExecContext(ctx, `
DELETE FROM runs
WHERE started_at < ?;`, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("cleanup old runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
