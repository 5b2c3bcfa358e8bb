package llm

import (
	"errors"
	"fmt"
)

type ErrUnsupportedProvider struct {
	Provider string
}

func (e ErrUnsupportedProvider) Error() string {
	return fmt.Sprintf("unsupported LLM provider: %s", e.Provider)
}

// ErrNoJSON is returned when a response holds no parseable JSON value.
var ErrNoJSON = errors.New("no JSON found in model response")
