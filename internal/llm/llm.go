package llm

import (
	"context"
	"time"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func System(content string) Message { return Message{Role: "system", Content: content} }
func User(content string) Message   { return Message{Role: "user", Content: content} }

// Provider is the reasoning collaborator: send a conversation, get text back.
type Provider interface {
	Generate(ctx context.Context, messages []Message, opts ...Option) (string, error)
}

type callOptions struct {
	temperature *float64
	maxTokens   int
}

type Option func(*callOptions)

func WithTemperature(t float64) Option {
	return func(o *callOptions) { o.temperature = &t }
}

func WithMaxTokens(n int) Option {
	return func(o *callOptions) { o.maxTokens = n }
}

type Config struct {
	Provider  string
	Model     string
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	MaxTokens int
}

func NewProvider(cfg Config) (Provider, error) {
	oc := OpenAIConfig{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		Timeout:   cfg.Timeout,
		MaxTokens: cfg.MaxTokens,
	}
	switch cfg.Provider {
	case "groq":
		oc.BaseURL = defaultIfEmpty(cfg.BaseURL, "https://api.groq.com/openai/v1")
	case "openai":
		oc.BaseURL = cfg.BaseURL
	case "openrouter":
		oc.BaseURL = defaultIfEmpty(cfg.BaseURL, "https://openrouter.ai/api/v1")
	default:
		return nil, ErrUnsupportedProvider{Provider: cfg.Provider}
	}
	return NewOpenAIProvider(oc), nil
}

func defaultIfEmpty(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
