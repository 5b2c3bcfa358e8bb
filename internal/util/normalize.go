package util

import (
	"strings"
	"unicode/utf8"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// Truncate cuts s to at most max runes. max <= 0 means no limit.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// Excerpt is Truncate plus a trailing ellipsis when anything was cut.
func Excerpt(s string, max int) string {
	t := Truncate(s, max)
	if len(t) < len(s) {
		return strings.TrimSpace(t) + "..."
	}
	return t
}

// SameText compares two strings ignoring case, quoting and spacing.
func SameText(a, b string) bool {
	norm := func(s string) string {
		s = strings.Trim(CleanText(s), `"'`+"`")
		return strings.ToLower(CleanText(s))
	}
	return norm(a) == norm(b)
}

// Dedupe drops blanks and case-insensitive repeats, keeping first order.
func Dedupe(xs []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		k := strings.ToLower(x)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, x)
	}
	return out
}
