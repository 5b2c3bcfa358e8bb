package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/events"
	"leadgen-engine/internal/httpapi"
	"leadgen-engine/internal/pipeline"
	"leadgen-engine/internal/runner"
)

func TestReadQueries(t *testing.T) {
	in := "dentists in austin\n\n# skipped\n  plumbers in denver  \n"
	got, err := readQueries(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"dentists in austin", "plumbers in denver"}, got)
}

func TestBatchFilename(t *testing.T) {
	assert.Equal(t, "leads_01_dentists-in-austin.csv", batchFilename(0, "Dentists in Austin!"))
	assert.Equal(t, "leads_12_query.csv", batchFilename(11, "???"))
	long := batchFilename(2, strings.Repeat("ab ", 30))
	assert.LessOrEqual(t, len(long), len("leads_03_.csv")+40)
}

func TestIsolateProfiles(t *testing.T) {
	cfg := config.Default()
	cfg.Fetch.ProfileDir = "/tmp/profile"

	assert.Equal(t, "/tmp/profile", isolate(cfg, 3, 1).Fetch.ProfileDir)
	assert.NotEqual(t, isolate(cfg, 0, 2).Fetch.ProfileDir, isolate(cfg, 1, 2).Fetch.ProfileDir)

	cfg.Fetch.ProfileDir = ""
	assert.Empty(t, isolate(cfg, 1, 4).Fetch.ProfileDir)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "exhausted", label(&pipeline.ExhaustedError{Attempts: 3}))
	assert.Equal(t, "credentials", label(fmt.Errorf("%w: llm", config.ErrMissingCredentials)))
	assert.Equal(t, "error", label(errors.New("boom")))
}

func TestSecretAccount(t *testing.T) {
	assert.Equal(t, "search", secretAccount("Serper"))
	assert.Equal(t, "llm", secretAccount("groq"))
	assert.Equal(t, "imap", secretAccount("imap"))
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"run", "batch", "serve", "config", "secrets", "history"} {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}

func TestScheduledPassRunsQueriesInTurn(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	acquire := func(_ context.Context, _ config.Config, query string, _ int, _ events.Notifier) (pipeline.Report, error) {
		mu.Lock()
		seen = append(seen, query)
		mu.Unlock()
		if query == "bad" {
			return pipeline.Report{}, errors.New("boom")
		}
		return pipeline.Report{}, nil
	}

	var cfgVal atomic.Value
	cfgVal.Store(config.Default())
	rh := httpapi.NewRunsHandler(httpapi.Deps{CfgVal: &cfgVal, Runner: runner.New(nil, acquire)})

	err := scheduledPass(rh, []string{"a", "bad", "c"})(context.Background())
	assert.EqualError(t, err, "1 of 3 scheduled queries failed")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "bad", "c"}, seen)
}
