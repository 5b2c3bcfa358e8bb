package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/util"
)

// ErrSearchUnavailable covers every way a search attempt can fail: transport
// errors, non-2xx answers, malformed payloads.
var ErrSearchUnavailable = errors.New("search unavailable")

// Searcher is the web search collaborator.
type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]domain.SearchResult, error)
}

func unavailable(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrSearchUnavailable, provider, err)
}

// New builds the searcher named by cfg.Search.Provider.
func New(cfg config.Config, apiKey string) (Searcher, error) {
	hc := &http.Client{Timeout: cfg.SearchTimeout()}
	if hc.Timeout <= 0 {
		hc.Timeout = 30 * time.Second
	}
	switch cfg.Search.Provider {
	case "serper":
		return NewSerper(apiKey, WithEndpoint(cfg.Search.Endpoint), WithClient(hc)), nil
	case "duckduckgo":
		return NewDuckDuckGo(WithClient(hc), WithUserAgent(cfg.Fetch.UserAgent)), nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Search.Provider)
	}
}

// tidy drops results without a usable URL, collapses duplicates by
// canonical URL, renumbers positions and caps the batch at n.
func tidy(in []domain.SearchResult, n int) []domain.SearchResult {
	seen := map[string]bool{}
	out := make([]domain.SearchResult, 0, len(in))
	for _, r := range in {
		r.URL = util.CanonicalizeURL(r.URL)
		if !util.IsWebURL(r.URL) || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		r.Title = util.CleanText(r.Title)
		r.Snippet = util.CleanText(r.Snippet)
		r.Position = len(out) + 1
		out = append(out, r)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

type options struct {
	client    *http.Client
	endpoint  string
	userAgent string
}

type Option func(*options)

func WithClient(hc *http.Client) Option {
	return func(o *options) {
		if hc != nil {
			o.client = hc
		}
	}
}

func WithEndpoint(u string) Option {
	return func(o *options) {
		if u != "" {
			o.endpoint = u
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

func buildOptions(endpoint string, opts []Option) options {
	o := options{
		client:    &http.Client{Timeout: 30 * time.Second},
		endpoint:  endpoint,
		userAgent: config.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
