// Package llmtest provides a scripted llm.Provider for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"leadgen-engine/internal/llm"
)

// Reply is one scripted answer.
type Reply struct {
	Text string
	Err  error
}

// Scripted returns its replies in order and records every conversation it
// was sent. Once the script runs out it fails.
type Scripted struct {
	mu      sync.Mutex
	replies []Reply
	Calls   [][]llm.Message
}

func New(replies ...Reply) *Scripted {
	return &Scripted{replies: replies}
}

// Texts is shorthand for a script of successful replies.
func Texts(texts ...string) *Scripted {
	rs := make([]Reply, len(texts))
	for i, t := range texts {
		rs[i] = Reply{Text: t}
	}
	return New(rs...)
}

func (s *Scripted) Generate(ctx context.Context, messages []llm.Message, _ ...llm.Option) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, messages)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(s.replies) == 0 {
		return "", errors.New("llmtest: script exhausted")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.Text, r.Err
}

func (s *Scripted) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

// LastPrompt is the final message of the most recent call.
func (s *Scripted) LastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Calls) == 0 {
		return ""
	}
	msgs := s.Calls[len(s.Calls)-1]
	return msgs[len(msgs)-1].Content
}
