package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen-engine/internal/domain"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "leadgen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func leads() *domain.LeadSet {
	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	set := domain.NewLeadSet()
	set.Append(domain.LeadRecord{
		CompanyName: "Acme Dental",
		Email:       "hi@acmedental.com",
		Website:     "https://acmedental.com",
		Relevance:   domain.RelevanceAssessment{IsRelevant: true, Confidence: 0.9, Reason: "dental clinic"},
		SourceURL:   "https://acmedental.com",
		SearchTitle: "Acme Dental | Austin",
		ScrapedAt:   at,
	})
	set.Append(domain.LeadRecord{
		Website:   "https://b.test",
		Relevance: domain.RelevanceAssessment{IsRelevant: true, Confidence: 0.7, Reason: "clinic"},
		SourceURL: "https://b.test",
		ScrapedAt: at,
	})
	return set
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTest(t)
	require.NoError(t, Migrate(db.Pool))

	var v int
	require.NoError(t, db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, schemaVersion, v)
}

func TestSaveAndGetLeads(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	start := time.Date(2026, 5, 6, 7, 0, 0, 0, time.UTC)

	set := leads()
	run := Run{
		ID: "r1", Query: "dentists in austin", FinalQuery: "dentists in austin official website",
		TargetCount: 5, Status: RunDone, Attempts: 2,
		StartedAt: start, FinishedAt: start.Add(time.Minute),
	}
	require.NoError(t, SaveRun(ctx, db.Pool, run, set))

	got, err := GetRun(ctx, db.Pool, "r1")
	require.NoError(t, err)
	run.Leads = 2
	if diff := cmp.Diff(run, got); diff != "" {
		t.Fatalf("run mismatch (-want +got):\n%s", diff)
	}

	back, err := GetLeads(ctx, db.Pool, "r1")
	require.NoError(t, err)
	if diff := cmp.Diff(set.Records(), back.Records()); diff != "" {
		t.Fatalf("leads mismatch (-want +got):\n%s", diff)
	}
}

func TestGetMissingRun(t *testing.T) {
	db := openTest(t)
	_, err := GetRun(context.Background(), db.Pool, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = GetLeads(context.Background(), db.Pool, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRunWithoutLeads(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, SaveRun(ctx, db.Pool, Run{
		ID: "x", Query: "q", TargetCount: 3, Status: RunExhausted, Attempts: 3,
		Error: "acquisition exhausted", StartedAt: now, FinishedAt: now,
	}, nil))

	set, err := GetLeads(ctx, db.Pool, "x")
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())

	assert.Error(t, SaveRun(ctx, db.Pool, Run{Query: "no id"}, nil))
}

func TestListRunsNewestFirst(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		at := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, SaveRun(ctx, db.Pool, Run{ID: id, Query: id, TargetCount: 1, Status: RunDone, StartedAt: at, FinishedAt: at}, nil))
	}

	runs, err := ListRuns(ctx, db.Pool, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
}

func TestCleanupOldRuns(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, SaveRun(ctx, db.Pool, Run{ID: "old", Query: "q", TargetCount: 1, Status: RunDone, StartedAt: old, FinishedAt: old}, leads()))
	require.NoError(t, SaveRun(ctx, db.Pool, Run{ID: "new", Query: "q", TargetCount: 1, Status: RunDone, StartedAt: recent, FinishedAt: recent}, nil))

	n, err := CleanupOldRuns(ctx, db.Pool, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var orphans int
	require.NoError(t, db.Pool.QueryRow(`SELECT COUNT(*) FROM leads WHERE run_id = 'old';`).Scan(&orphans))
	assert.Zero(t, orphans)
}
