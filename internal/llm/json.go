package llm

import (
	"encoding/json"
	"strings"
)

// CleanJSON strips markdown code fences and surrounding whitespace.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// ExtractJSON returns the first balanced JSON value opened by open ('{' or
// '['), skipping any prose the model wrapped around it.
func ExtractJSON(s string, open byte) (string, error) {
	s = CleanJSON(s)
	var closing byte = '}'
	if open == '[' {
		closing = ']'
	}

	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", ErrNoJSON
	}
	depth := 0
	inStr, esc := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSON
}

// DecodeJSON extracts and unmarshals the first JSON value of the kind T
// expects.
func DecodeJSON[T any](s string, open byte) (T, error) {
	var v T
	raw, err := ExtractJSON(s, open)
	if err != nil {
		return v, err
	}
	err = json.Unmarshal([]byte(raw), &v)
	return v, err
}
