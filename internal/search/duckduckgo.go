package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadgen-engine/internal/domain"
)

const defaultDDGEndpoint = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the HTML results page. It needs no API key.
type DuckDuckGo struct {
	opts options
}

func NewDuckDuckGo(opts ...Option) *DuckDuckGo {
	return &DuckDuckGo{opts: buildOptions(defaultDDGEndpoint, opts)}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, n int) ([]domain.SearchResult, error) {
	u := d.opts.endpoint + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, unavailable("duckduckgo", err)
	}
	req.Header.Set("User-Agent", d.opts.userAgent)

	resp, err := d.opts.client.Do(req)
	if err != nil {
		return nil, unavailable("duckduckgo", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, unavailable("duckduckgo", fmt.Errorf("status %s", resp.Status))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, unavailable("duckduckgo", err)
	}

	var results []domain.SearchResult

	// DDG HTML results: <div class="result"><a class="result__a" href="...">
	doc.Find(".result").Each(func(_ int, res *goquery.Selection) {
		if res.HasClass("result--ad") {
			return
		}
		a := res.Find("a.result__a").First()
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		results = append(results, domain.SearchResult{
			Title:   a.Text(),
			Snippet: res.Find(".result__snippet").First().Text(),
			URL:     decodeDDGRedirect(href),
		})
	})

	return tidy(results, n), nil
}

func decodeDDGRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	// DDG sometimes uses /l/?uddg=<urlencoded>
	if uddg := u.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	return href
}
