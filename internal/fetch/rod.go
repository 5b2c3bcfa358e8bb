package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Rod drives Chrome through go-rod with the stealth evasions applied to
// every page. Use it for sites that fingerprint headless browsers.
type Rod struct {
	lnch      *launcher.Launcher
	browser   *rod.Browser
	userAgent string
	keepData  bool
}

func NewRod(ctx context.Context, o BrowserOptions) (*Rod, error) {
	l := launcher.New().
		Context(ctx).
		Headless(o.Headless).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage")
	if o.ProfileDir != "" {
		l = l.UserDataDir(o.ProfileDir)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	return &Rod{lnch: l, browser: b, userAgent: o.UserAgent, keepData: o.ProfileDir != ""}, nil
}

func (r *Rod) Render(ctx context.Context, url string, wait time.Duration) (Snapshot, error) {
	page, err := stealth.Page(r.browser)
	if err != nil {
		return Snapshot{}, fmt.Errorf("browser: create tab: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx)
	if r.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.userAgent}); err != nil {
			return Snapshot{}, fmt.Errorf("browser: user agent: %w", err)
		}
	}
	if err := page.Navigate(url); err != nil {
		return Snapshot{}, fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return Snapshot{}, fmt.Errorf("browser: wait load %s: %w", url, err)
	}

	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}

	var status int
	if res, err := page.Eval(`() => ` + statusScript); err == nil {
		status = res.Value.Int()
	}
	html, err := page.HTML()
	if err != nil {
		return Snapshot{}, fmt.Errorf("browser: get DOM: %w", err)
	}
	return Snapshot{HTML: html, StatusCode: status}, nil
}

func (r *Rod) Close() error {
	err := r.browser.Close()
	if r.keepData {
		r.lnch.Kill()
	} else {
		r.lnch.Cleanup()
	}
	return err
}
