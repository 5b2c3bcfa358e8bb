package extract

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"leadgen-engine/internal/util"
)

var strict = bluemonday.StrictPolicy()

// Values the model uses to say "I don't know".
var placeholders = map[string]bool{}

func init() {
	for _, p := range []string{
		"", "n/a", "na", "none", "null", "nil", "unknown", "-", "--",
		"not available", "not specified", "not provided", "not found",
		"not mentioned", "no information", "information not available",
	} {
		placeholders[p] = true
	}
}

const maxFieldChars = 500

// sanitize strips markup from a model-returned value, collapses whitespace
// and maps placeholders to null ("").
func sanitize(v string) string {
	v = html.UnescapeString(strict.Sanitize(v))
	v = util.CleanText(v)
	v = strings.Trim(v, `"'`)
	if placeholders[strings.ToLower(strings.TrimRight(v, "."))] {
		return ""
	}
	return util.Truncate(v, maxFieldChars)
}
