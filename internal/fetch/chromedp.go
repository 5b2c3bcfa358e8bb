package fetch

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Chromedp drives a local Chrome through the DevTools protocol. Each Render
// opens a fresh tab in the same browser.
type Chromedp struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

func NewChromedp(ctx context.Context, o BrowserOptions) (*Chromedp, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
	)
	if o.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(o.UserAgent))
	}
	if o.ProfileDir != "" {
		opts = append(opts, chromedp.UserDataDir(o.ProfileDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// First Run starts the browser; stop it if ctx ends first.
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}
	return &Chromedp{allocCancel: allocCancel, browserCtx: browserCtx, browserCancel: browserCancel}, nil
}

func (c *Chromedp) Render(ctx context.Context, url string, wait time.Duration) (Snapshot, error) {
	tabCtx, cancel := chromedp.NewContext(c.browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	// The first document response is the page itself; later ones are frames.
	var docStatus atomic.Int64
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			docStatus.CompareAndSwap(0, int64(e.Response.Status))
		}
	})

	var (
		html   string
		status int
	)
	err := chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.Sleep(wait),
		chromedp.Evaluate(statusScript, &status),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if ctx.Err() != nil {
		return Snapshot{}, ctx.Err()
	}
	if err != nil {
		return Snapshot{}, err
	}
	if s := int(docStatus.Load()); s != 0 {
		status = s
	}
	return Snapshot{HTML: html, StatusCode: status}, nil
}

func (c *Chromedp) Close() error {
	c.browserCancel()
	c.allocCancel()
	return nil
}
