package domain

import "strings"

// Query is a search string plus the user's original intent. Refinement
// replaces Text; Intent stays fixed for the whole run.
type Query struct {
	Text   string
	Intent string
}

func NewQuery(text string) Query {
	text = strings.TrimSpace(text)
	return Query{Text: text, Intent: text}
}

// Refined returns a query with new search text and the same intent.
func (q Query) Refined(text string) Query {
	return Query{Text: strings.TrimSpace(text), Intent: q.Intent}
}

type SearchResult struct {
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// CandidateText is what the relevance evaluator sees for one result.
func (r SearchResult) CandidateText() string {
	var b strings.Builder
	b.WriteString("Title: ")
	b.WriteString(r.Title)
	b.WriteString("\nSnippet: ")
	b.WriteString(r.Snippet)
	b.WriteString("\nURL: ")
	b.WriteString(r.URL)
	return b.String()
}
