package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/logging"
)

// Fetcher owns one browser session, opened on the first Fetch and released
// by Close. Not safe for concurrent Fetch calls.
type Fetcher struct {
	open         Opener
	renderWait   time.Duration
	pageTimeout  time.Duration
	retryBackoff time.Duration
	maxChars     int
	log          *slog.Logger
	sleep        func(context.Context, time.Duration) error

	mu      sync.Mutex
	browser Browser
	openErr error
}

type Option func(*Fetcher)

func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}

// WithSleep replaces the retry backoff sleep; tests use it to stay fast.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(f *Fetcher) {
		if fn != nil {
			f.sleep = fn
		}
	}
}

func WithTimings(renderWait, pageTimeout, retryBackoff time.Duration) Option {
	return func(f *Fetcher) {
		f.renderWait = renderWait
		f.pageTimeout = pageTimeout
		f.retryBackoff = retryBackoff
	}
}

func WithMaxChars(n int) Option {
	return func(f *Fetcher) { f.maxChars = n }
}

func New(open Opener, opts ...Option) *Fetcher {
	f := &Fetcher{
		open:         open,
		renderWait:   5 * time.Second,
		pageTimeout:  30 * time.Second,
		retryBackoff: 2 * time.Second,
		maxChars:     8000,
		log:          logging.New("fetch"),
		sleep:        sleepCtx,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// FromConfig wires a Fetcher to the driver and timings in cfg.
func FromConfig(cfg config.Config, opts ...Option) (*Fetcher, error) {
	open, err := NewOpener(cfg)
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithTimings(cfg.RenderWait(), cfg.PageTimeout(), cfg.RetryBackoff()),
		WithMaxChars(cfg.Fetch.MaxTextChars),
	}
	return New(open, append(base, opts...)...), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Fetcher) session(ctx context.Context) (Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.browser != nil || f.openErr != nil {
		return f.browser, f.openErr
	}
	b, err := f.open(ctx)
	if err != nil {
		f.openErr = fmt.Errorf("open browser: %w", err)
		return nil, f.openErr
	}
	f.browser = b
	return b, nil
}

// Close releases the browser session, if one was opened.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.browser == nil {
		return nil
	}
	err := f.browser.Close()
	f.browser = nil
	return err
}

// Fetch never returns an error: every outcome is a RawPage with a status.
// Blocked pages are not retried; transient failures are retried once after
// the backoff.
func (f *Fetcher) Fetch(ctx context.Context, url string) domain.RawPage {
	page := domain.RawPage{URL: url, Status: domain.FetchFailed}

	b, err := f.session(ctx)
	if err != nil {
		page.Reason = err.Error()
		f.log.Warn("fetch: no browser", "url", url, "err", err)
		return page
	}

	for attempt := 1; attempt <= 2; attempt++ {
		snap, err := f.render(ctx, b, url)
		v := verdictOK
		if err == nil {
			v = classifyStatus(snap.StatusCode)
		}

		switch {
		case ctx.Err() != nil:
			page.Reason = ctx.Err().Error()
			return page

		case err == nil && v == verdictBlocked:
			page.Status = domain.FetchBlocked
			page.Reason = fmt.Sprintf("http status %d", snap.StatusCode)
			f.log.Info("fetch: blocked", "url", url, "status", snap.StatusCode)
			return page

		case err == nil && v == verdictFailed:
			page.Reason = fmt.Sprintf("http status %d", snap.StatusCode)
			f.log.Info("fetch: failed", "url", url, "status", snap.StatusCode)
			return page

		case err == nil && v == verdictOK:
			text := CleanHTML(snap.HTML, f.maxChars)
			if looksBlocked(snap.HTML, text) {
				page.Status = domain.FetchBlocked
				page.Reason = "bot challenge"
				f.log.Info("fetch: blocked by challenge page", "url", url)
				return page
			}
			page.Status = domain.FetchOK
			page.Text = text
			page.Reason = ""
			f.log.Debug("fetch: ok", "url", url, "status", snap.StatusCode, "chars", len(text), "attempt", attempt)
			return page
		}

		// transient
		if err != nil {
			page.Reason = err.Error()
		} else {
			page.Reason = fmt.Sprintf("http status %d", snap.StatusCode)
		}
		if attempt == 2 {
			break
		}
		f.log.Info("fetch: transient failure, retrying", "url", url, "reason", page.Reason, "backoff", f.retryBackoff)
		if err := f.sleep(ctx, f.retryBackoff); err != nil {
			page.Reason = err.Error()
			return page
		}
	}

	f.log.Warn("fetch: failed", "url", url, "reason", page.Reason)
	return page
}

func (f *Fetcher) render(ctx context.Context, b Browser, url string) (Snapshot, error) {
	if f.pageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.pageTimeout)
		defer cancel()
	}
	return b.Render(ctx, url, f.renderWait)
}
