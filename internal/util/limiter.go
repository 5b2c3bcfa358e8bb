package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a fixed pause before each paced call, counted from the end
// of the previous one (or from NewPacer for the first). Callers bracket the
// call with Wait and Done. Not safe for concurrent use.
type Pacer struct {
	every time.Duration
	lim   *rate.Limiter
}

func NewPacer(every time.Duration) *Pacer {
	p := &Pacer{every: every}
	p.Done()
	return p
}

func (p *Pacer) Wait(ctx context.Context) error {
	return p.lim.Wait(ctx)
}

// Done re-arms the pacer: the next Wait returns no sooner than the delay
// from now, however long the paced call took.
func (p *Pacer) Done() {
	if p.every <= 0 {
		p.lim = rate.NewLimiter(rate.Inf, 1)
		return
	}
	p.lim = rate.NewLimiter(rate.Every(p.every), 1)
	p.lim.AllowN(time.Now(), 1)
}
