// Package scheduler repeats a task on a fixed interval until its context
// ends.
package scheduler

import (
	"context"
	"time"

	"leadgen-engine/internal/logging"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then once per interval. Ticks that fire
// while the task is still running are dropped, so runs never overlap.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	log := logging.New("scheduler").With("task", name)

	t := time.NewTicker(interval)
	defer t.Stop()

	runOnce := func() {
		start := time.Now()
		if err := task(ctx); err != nil {
			log.Warn("task failed", "err", err, "dur_ms", time.Since(start).Milliseconds())
			return
		}
		log.Info("task done", "dur_ms", time.Since(start).Milliseconds())
	}

	runOnce()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			runOnce()
		}
	}
}
