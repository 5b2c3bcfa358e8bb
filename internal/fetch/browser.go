// Package fetch turns a URL into a RawPage: render, wait, snapshot,
// classify, clean.
package fetch

import (
	"context"
	"fmt"
	"time"

	"leadgen-engine/internal/config"
)

// Snapshot is the rendered document as the browser saw it. StatusCode is 0
// when the driver could not tell.
type Snapshot struct {
	HTML       string
	StatusCode int
}

// Browser is the automation collaborator. One Browser is one isolated
// session; it must not be shared between concurrent runs.
type Browser interface {
	Render(ctx context.Context, url string, wait time.Duration) (Snapshot, error)
	Close() error
}

// Opener starts a browser session on demand.
type Opener func(ctx context.Context) (Browser, error)

type BrowserOptions struct {
	Headless   bool
	UserAgent  string
	ProfileDir string
}

func browserOptions(cfg config.Config) BrowserOptions {
	return BrowserOptions{
		Headless:   cfg.Fetch.Headless,
		UserAgent:  cfg.Fetch.UserAgent,
		ProfileDir: cfg.Fetch.ProfileDir,
	}
}

// NewOpener returns an Opener for the driver cfg selects. Profile
// directories are locked for the lifetime of the session.
func NewOpener(cfg config.Config) (Opener, error) {
	o := browserOptions(cfg)

	var start func(context.Context, BrowserOptions) (Browser, error)
	switch cfg.Fetch.Driver {
	case "chromedp":
		start = func(ctx context.Context, o BrowserOptions) (Browser, error) { return NewChromedp(ctx, o) }
	case "rod":
		start = func(ctx context.Context, o BrowserOptions) (Browser, error) { return NewRod(ctx, o) }
	case "http":
		return func(context.Context) (Browser, error) {
			return NewHTTP(WithUserAgent(o.UserAgent)), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown fetch driver %q", cfg.Fetch.Driver)
	}

	return func(ctx context.Context) (Browser, error) {
		lock, err := lockProfile(o.ProfileDir)
		if err != nil {
			return nil, err
		}
		b, err := start(ctx, o)
		if err != nil {
			lock.release()
			return nil, err
		}
		return &lockedBrowser{Browser: b, lock: lock}, nil
	}, nil
}

type lockedBrowser struct {
	Browser
	lock *profileLock
}

func (b *lockedBrowser) Close() error {
	err := b.Browser.Close()
	b.lock.release()
	return err
}

// statusScript reads the main document's HTTP status from the Navigation
// Timing API. Older browsers report 0.
const statusScript = `(() => {
	const e = performance.getEntriesByType('navigation')[0];
	return e && e.responseStatus ? e.responseStatus : 0;
})()`
