package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/llm"
	"leadgen-engine/internal/util"
)

const extractSystem = "You extract company information from web page text. Answer with one JSON object only."

func extractPrompt(page domain.RawPage) string {
	var keys []string
	for _, f := range domain.Schema {
		keys = append(keys, fmt.Sprintf("  %q: string or null", f))
	}
	return fmt.Sprintf(`Extract the following fields about the company described on this page.
Use null for anything the page does not state. Do not guess.

{
%s
}

Lists (emails, services, technologies, social links) go in one comma-separated string.

URL: %s
Page text:
%s`, strings.Join(keys, ",\n"), page.URL, page.Text)
}

// primary asks the model for the schema. Any failure yields an empty
// Partial so the fallback can take over.
func (e *Extractor) primary(ctx context.Context, page domain.RawPage) (Partial, error) {
	out, err := e.provider.Generate(ctx, []llm.Message{
		llm.System(extractSystem),
		llm.User(extractPrompt(page)),
	}, llm.WithTemperature(0.1))
	if err != nil {
		return Partial{}, fmt.Errorf("model call: %w", err)
	}

	raw, err := llm.DecodeJSON[map[string]any](out, '{')
	if err != nil {
		return Partial{}, fmt.Errorf("decode: %w", err)
	}
	return normalize(raw), nil
}

// normalize keeps known fields and flattens every value to a string.
func normalize(raw map[string]any) Partial {
	p := Partial{}
	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(k))
		if !domain.IsField(key) {
			continue
		}
		p.set(domain.Field(key), sanitize(flatten(v)))
	}
	return p
}

func flatten(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return ""
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		var parts []string
		for _, x := range t {
			if s := sanitize(flatten(x)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(util.Dedupe(parts), ", ")
	case map[string]any:
		var parts []string
		for k, x := range t {
			if s := sanitize(flatten(x)); s != "" {
				parts = append(parts, k+": "+s)
			}
		}
		sort.Strings(parts)
		return strings.Join(parts, ", ")
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
