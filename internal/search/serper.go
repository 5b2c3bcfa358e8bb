package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"leadgen-engine/internal/domain"
)

const defaultSerperEndpoint = "https://google.serper.dev/search"

// Serper queries Google through serper.dev.
type Serper struct {
	apiKey string
	opts   options
}

func NewSerper(apiKey string, opts ...Option) *Serper {
	return &Serper{apiKey: apiKey, opts: buildOptions(defaultSerperEndpoint, opts)}
}

type serperResponse struct {
	Organic []struct {
		Title    string `json:"title"`
		Snippet  string `json:"snippet"`
		Link     string `json:"link"`
		Position int    `json:"position"`
	} `json:"organic"`
}

func (s *Serper) Search(ctx context.Context, query string, n int) ([]domain.SearchResult, error) {
	if s.apiKey == "" {
		return nil, unavailable("serper", fmt.Errorf("no API key"))
	}
	body, err := json.Marshal(map[string]any{
		"q":    query,
		"num":  n,
		"type": "search",
	})
	if err != nil {
		return nil, unavailable("serper", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, unavailable("serper", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.opts.client.Do(req)
	if err != nil {
		return nil, unavailable("serper", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, unavailable("serper", fmt.Errorf("status %s", resp.Status))
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, unavailable("serper", fmt.Errorf("decode: %w", err))
	}

	results := make([]domain.SearchResult, 0, len(parsed.Organic))
	for _, o := range parsed.Organic {
		results = append(results, domain.SearchResult{
			Title:   o.Title,
			Snippet: o.Snippet,
			URL:     o.Link,
		})
	}
	return tidy(results, n), nil
}
