package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/domain"
)

func TestSerperSearch(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"organic":[
			{"title":"Acme Dental","snippet":"Family dentistry","link":"https://acme.test/?utm_source=g"},
			{"title":"Acme Dental dup","snippet":"again","link":"https://acme.test/"},
			{"title":"No link","snippet":"x","link":""},
			{"title":"Bright Smiles","snippet":"Austin  dentist","link":"https://bright.test/about"}
		]}`))
	}))
	defer server.Close()

	s := NewSerper("secret", WithEndpoint(server.URL))
	got, err := s.Search(context.Background(), "dentists austin", 10)
	require.NoError(t, err)

	assert.Equal(t, "dentists austin", body["q"])
	assert.Equal(t, float64(10), body["num"])
	assert.Equal(t, "search", body["type"])

	want := []domain.SearchResult{
		{Title: "Acme Dental", Snippet: "Family dentistry", URL: "https://acme.test", Position: 1},
		{Title: "Bright Smiles", Snippet: "Austin dentist", URL: "https://bright.test/about", Position: 2},
	}
	assert.Equal(t, want, got)
}

func TestSerperCapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"organic":[
			{"title":"a","link":"https://a.test"},
			{"title":"b","link":"https://b.test"},
			{"title":"c","link":"https://c.test"}
		]}`))
	}))
	defer server.Close()

	got, err := NewSerper("k", WithEndpoint(server.URL)).Search(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSerperUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) }},
		{"malformed", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"organic":`)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := NewSerper("k", WithEndpoint(server.URL)).Search(context.Background(), "q", 5)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSearchUnavailable))
		})
	}

	_, err := NewSerper("").Search(context.Background(), "q", 5)
	assert.True(t, errors.Is(err, ErrSearchUnavailable))
}

func TestSerperTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := NewSerper("k", WithEndpoint(server.URL)).Search(context.Background(), "q", 5)
	assert.True(t, errors.Is(err, ErrSearchUnavailable))
}

const ddgPage = `<html><body>
<div class="result results_links result--ad">
  <a class="result__a" href="https://ads.test/">Sponsored</a>
</div>
<div class="result results_links">
  <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Facme.test%2Fcontact&rut=abc">Acme <b>Dental</b></a></h2>
  <a class="result__snippet">Family dentistry in Austin.</a>
</div>
<div class="result results_links">
  <a class="result__a" href="https://bright.test/">Bright Smiles</a>
  <a class="result__snippet">Cosmetic dentist.</a>
</div>
</body></html>`

func TestDuckDuckGoSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dentists austin", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(ddgPage))
	}))
	defer server.Close()

	got, err := NewDuckDuckGo(WithEndpoint(server.URL)).Search(context.Background(), "dentists austin", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Acme Dental", got[0].Title)
	assert.Equal(t, "https://acme.test/contact", got[0].URL)
	assert.Equal(t, "Family dentistry in Austin.", got[0].Snippet)
	assert.Equal(t, "https://bright.test", got[1].URL)
}

func TestDuckDuckGoUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewDuckDuckGo(WithEndpoint(server.URL)).Search(context.Background(), "q", 5)
	assert.True(t, errors.Is(err, ErrSearchUnavailable))
}

func TestNew(t *testing.T) {
	cfg := config.Default()
	s, err := New(cfg, "k")
	require.NoError(t, err)
	assert.IsType(t, &Serper{}, s)

	cfg.Search.Provider = "duckduckgo"
	s, err = New(cfg, "")
	require.NoError(t, err)
	assert.IsType(t, &DuckDuckGo{}, s)

	cfg.Search.Provider = "bing"
	_, err = New(cfg, "")
	assert.Error(t, err)
}
