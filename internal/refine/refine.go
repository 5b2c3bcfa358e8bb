// Package refine rewrites a search query after a disappointing attempt.
package refine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/llm"
	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/util"
)

// Suffixes appended, in order, when the model gives nothing usable.
var fallbackSuffixes = []string{
	"company contact information",
	"official website",
	"business email phone",
	"companies list contact",
}

const lowConfidence = 0.5

type Refiner struct {
	provider llm.Provider
	log      *slog.Logger
}

type Option func(*Refiner)

func WithLogger(l *slog.Logger) Option {
	return func(r *Refiner) {
		if l != nil {
			r.log = l
		}
	}
}

func New(p llm.Provider, opts ...Option) *Refiner {
	r := &Refiner{provider: p, log: logging.New("refine")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refine returns a new query whose text differs from q.Text. Intent is
// carried over unchanged. It never fails.
func (r *Refiner) Refine(ctx context.Context, q domain.Query, results []domain.SearchResult, as []domain.RelevanceAssessment) domain.Query {
	out, err := r.provider.Generate(ctx, []llm.Message{
		llm.System("You improve web search queries for finding companies and their contact details. Reply with the query only."),
		llm.User(prompt(q, results, as)),
	}, llm.WithTemperature(0.3), llm.WithMaxTokens(100))
	if err != nil {
		r.log.Warn("refine: model call failed, using fallback", "err", err)
		return q.Refined(Fallback(q.Text))
	}

	text := clean(out)
	if text == "" || util.SameText(text, q.Text) {
		r.log.Info("refine: model returned nothing new, using fallback", "query", q.Text)
		return q.Refined(Fallback(q.Text))
	}
	return q.Refined(text)
}

// Fallback deterministically derives a query different from text.
func Fallback(text string) string {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)
	for _, s := range fallbackSuffixes {
		if strings.HasSuffix(lower, s) {
			continue
		}
		cand := strings.TrimSpace(text + " " + s)
		if !util.SameText(cand, text) {
			return cand
		}
	}
	return strings.TrimSpace(text + " " + fallbackSuffixes[0])
}

func prompt(q domain.Query, results []domain.SearchResult, as []domain.RelevanceAssessment) string {
	var hints []string
	for i, a := range as {
		if a.IsRelevant && a.Confidence >= lowConfidence {
			continue
		}
		h := a.Reason
		if i < len(results) && results[i].Title != "" {
			h = fmt.Sprintf("%q: %s", results[i].Title, a.Reason)
		}
		hints = append(hints, "- "+h)
		if len(hints) == 8 {
			break
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Original goal: %q\n", q.Intent)
	fmt.Fprintf(&b, "Last query: %q\n\n", q.Text)
	if len(hints) > 0 {
		b.WriteString("These results were judged poor matches:\n")
		b.WriteString(strings.Join(hints, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString("Write one improved search query that finds businesses matching the goal and pages with their contact information. ")
	b.WriteString("It must be different from the last query. Return only the query text.")
	return b.String()
}

// clean keeps the first non-empty line and strips labels and quotes the
// model tends to add.
func clean(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		for _, p := range []string{"Improved query:", "Refined query:", "Query:"} {
			if len(line) >= len(p) && strings.EqualFold(line[:len(p)], p) {
				line = strings.TrimSpace(line[len(p):])
			}
		}
		return util.CleanText(strings.Trim(line, `"'`+"`"))
	}
	return ""
}
