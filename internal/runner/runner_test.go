package runner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/events"
	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/pipeline"
	"leadgen-engine/internal/store"
)

func openDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "leadgen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func fixedAcquirer(rep pipeline.Report, err error) Acquirer {
	return func(_ context.Context, _ config.Config, query string, _ int, n events.Notifier) (pipeline.Report, error) {
		n.Emit(events.RunStarted, events.Attempt{Query: query})
		return rep, err
	}
}

func TestRunRecordsSuccess(t *testing.T) {
	db := openDB(t)
	set := domain.NewLeadSet()
	set.Append(domain.LeadRecord{CompanyName: "Acme", Website: "https://acme.test"})

	r := New(db.Pool, fixedAcquirer(pipeline.Report{FinalQuery: "acme v2", Attempts: 2, State: pipeline.StateDone, Leads: set}, nil))
	r.Log = logging.Discard()

	out, err := r.Run(context.Background(), config.Default(), Request{Query: "acme", Target: 3}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out.Run.ID)
	assert.Equal(t, store.RunDone, out.Run.Status)
	assert.Equal(t, 1, out.Run.Leads)

	saved, err := store.GetRun(context.Background(), db.Pool, out.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme v2", saved.FinalQuery)
	assert.Equal(t, 2, saved.Attempts)

	leads, err := store.GetLeads(context.Background(), db.Pool, out.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", leads.Records()[0].CompanyName)
}

func TestRunRecordsExhaustion(t *testing.T) {
	db := openDB(t)
	exhausted := &pipeline.ExhaustedError{Attempts: 3, LastQuery: "q v3"}
	r := New(db.Pool, fixedAcquirer(pipeline.Report{FinalQuery: "q v3", Attempts: 3, State: pipeline.StateExhausted}, exhausted))
	r.Log = logging.Discard()

	out, err := r.Run(context.Background(), config.Default(), Request{ID: "fixed", Query: "q", Target: 3}, nil)
	assert.ErrorIs(t, err, pipeline.ErrAcquisitionExhausted)
	assert.Equal(t, "fixed", out.Run.ID)
	assert.Nil(t, out.Leads)

	saved, err := store.GetRun(context.Background(), db.Pool, "fixed")
	require.NoError(t, err)
	assert.Equal(t, store.RunExhausted, saved.Status)
	assert.Contains(t, saved.Error, "acquisition exhausted")
}

func TestRunWithoutHistory(t *testing.T) {
	r := New(nil, fixedAcquirer(pipeline.Report{}, errors.New("boom")))
	r.Log = logging.Discard()

	out, err := r.Run(context.Background(), config.Default(), Request{Query: "q", Target: 1}, nil)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, store.RunFailed, out.Run.Status)
}
