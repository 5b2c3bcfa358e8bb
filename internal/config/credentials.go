package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredentials means a collaborator the configuration selects has
// no API key. It is fatal at startup.
var ErrMissingCredentials = errors.New("missing credentials")

type Credentials struct {
	SearchKey string
	LLMKey    string
}

// Check reports which keys cfg needs but c lacks.
func (c Credentials) Check(cfg Config) error {
	var missing []string
	if cfg.Search.Provider == "serper" && strings.TrimSpace(c.SearchKey) == "" {
		missing = append(missing, "search (SERPER_API_KEY)")
	}
	if strings.TrimSpace(c.LLMKey) == "" {
		missing = append(missing, "llm (LLM_API_KEY)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}
