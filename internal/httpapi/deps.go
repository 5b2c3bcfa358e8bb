package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/events"
	"leadgen-engine/internal/runner"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// Atomic stores
	CfgVal    *atomic.Value // stores config.Config
	RunStatus *atomic.Value // stores httpapi.RunStatus

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Runner executes acquisitions (inject for testability)
	Runner *runner.Runner

	// NewID names a run before it starts; defaults to uuid.
	NewID func() string

	// BaseCtx outlives requests; runs stop when it is cancelled.
	BaseCtx context.Context

	SetSecret func(account, value string) error
}
