package relevance

import (
	"fmt"
	"strings"

	"leadgen-engine/internal/domain"
)

const systemPrompt = "You evaluate web search results for B2B lead generation. Answer with JSON only."

func batchPrompt(intent string, results []domain.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search intent: %q\n\n", intent)
	b.WriteString("Decide for each result below whether it points to a company or business that matches the intent ")
	b.WriteString("and is likely to have contact information on its site. Directories, news articles, job boards ")
	b.WriteString("and social media posts are not relevant.\n\n")
	for i, r := range results {
		fmt.Fprintf(&b, "Result %d:\n%s\n\n", i, r.CandidateText())
	}
	b.WriteString(`Return a JSON array with exactly one object per result:
[{"index": 0, "is_relevant": true, "confidence": 0.85, "reason": "short explanation"}]
"index" is the result number, "is_relevant" a boolean, "confidence" a number between 0 and 1.`)
	return b.String()
}

func singlePrompt(intent, candidate string) string {
	return fmt.Sprintf(`Search intent: %q

Candidate:
%s

Is this candidate a company or business matching the intent, likely to have contact information on its site?
Return one JSON object: {"is_relevant": true, "confidence": 0.85, "reason": "short explanation"}
"is_relevant" is a boolean and "confidence" a number between 0 and 1.`, intent, candidate)
}
