package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"leadgen-engine/internal/config"
)

const maxBody = 10 << 20

// HTTP is the no-JavaScript driver: one GET per page. It is enough for
// static sites and is what the tests run against.
type HTTP struct {
	client *http.Client
	ua     string
}

type HTTPOption func(*HTTP)

func WithClient(c *http.Client) HTTPOption {
	return func(h *HTTP) {
		if c != nil {
			h.client = c
		}
	}
}

func WithUserAgent(ua string) HTTPOption {
	return func(h *HTTP) {
		if ua != "" {
			h.ua = ua
		}
	}
}

func NewHTTP(opts ...HTTPOption) *HTTP {
	h := &HTTP{
		client: &http.Client{Timeout: 30 * time.Second},
		ua:     config.DefaultUserAgent,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Render ignores wait: there is nothing to execute.
func (h *HTTP) Render(ctx context.Context, url string, _ time.Duration) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch: new request: %w", err)
	}
	req.Header.Set("User-Agent", h.ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := h.client.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch: do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch: read body: %w", err)
	}
	return Snapshot{HTML: string(body), StatusCode: resp.StatusCode}, nil
}

func (h *HTTP) Close() error { return nil }
