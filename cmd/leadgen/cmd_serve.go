package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/events"
	"leadgen-engine/internal/httpapi"
	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/runner"
	"leadgen-engine/internal/scheduler"
)

var serveFlags struct {
	addr     string
	schedule string
	every    time.Duration
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API: start runs, stream progress, download leads",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.addr, "addr", "", "listen address (default 127.0.0.1:<app.port>)")
	f.StringVar(&serveFlags.schedule, "schedule", "", "file of queries to run on a timer (one per line)")
	f.DurationVar(&serveFlags.every, "every", 24*time.Hour, "interval between scheduled passes")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	log := logging.New("serve")

	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(a.cfg)
	loadCfg := func() (config.Config, error) {
		return loadConfig(a.cfgPath)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	deps := httpapi.WithDefaults(httpapi.Deps{
		DB:          db.Pool,
		Hub:         events.NewHub(),
		CfgVal:      &cfgVal,
		UserCfgPath: a.cfgPath,
		LoadCfg:     loadCfg,
		Runner:      runner.New(db.Pool, nil),
		BaseCtx:     ctx,
	})
	r := httpapi.NewRouter(deps)

	if serveFlags.schedule != "" {
		queries, err := readQueriesFile(serveFlags.schedule)
		if err != nil {
			return err
		}
		go scheduler.Every(ctx, serveFlags.every, "scheduled-queries", scheduledPass(httpapi.NewRunsHandler(deps), queries))
		log.Info("scheduled queries", "count", len(queries), "every", serveFlags.every.String())
	}

	addr := serveFlags.addr
	if addr == "" {
		addr = fmt.Sprintf("127.0.0.1:%d", a.cfg.App.Port)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	token := os.Getenv("LEADGEN_SHUTDOWN_TOKEN")
	if token == "" {
		if token, err = httpapi.RandomToken(16); err != nil {
			return err
		}
	}
	r.Post("/shutdown", httpapi.ShutdownHandler(token, cancel))

	go func() {
		<-ctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		_ = srv.Shutdown(sctx)
	}()

	log.Info("api listening", "addr", "http://"+ln.Addr().String(), "db", a.dbPath())
	fmt.Fprintf(cmd.OutOrStdout(), "shutdown token: %s\n", token)

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// scheduledPass runs each query in turn through the same single-run slot
// the API uses, waiting out any run already in flight.
func scheduledPass(rh httpapi.RunsHandler, queries []string) scheduler.Task {
	return func(ctx context.Context) error {
		var failed int
		for _, q := range queries {
			for {
				if err := rh.WaitIdle(ctx, time.Second); err != nil {
					return err
				}
				if _, err := rh.Trigger(q, 0); err == nil {
					break
				} else if !errors.Is(err, httpapi.ErrAlreadyRunning) {
					return err
				}
			}
			if err := rh.WaitIdle(ctx, time.Second); err != nil {
				return err
			}
			if st := rh.RunStatus.Load().(httpapi.RunStatus); st.LastError != "" {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d scheduled queries failed", failed, len(queries))
		}
		return nil
	}
}
