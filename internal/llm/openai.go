package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type OpenAIConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int
}

// OpenAIProvider talks to any OpenAI-compatible /chat/completions endpoint
// (OpenAI, Groq, OpenRouter).
type OpenAIProvider struct {
	apiKey    string
	model     string
	baseURL   string
	maxTokens int
	client    *http.Client
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 35 * time.Second
	}
	return &OpenAIProvider{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		baseURL:   strings.TrimRight(baseURL, "/"),
		maxTokens: cfg.MaxTokens,
		client:    &http.Client{Timeout: timeout},
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	if p.apiKey == "" {
		return "", errors.New("missing API key for remote provider")
	}
	if p.model == "" {
		return "", errors.New("missing model for remote provider")
	}

	o := callOptions{maxTokens: p.maxTokens}
	for _, opt := range opts {
		opt(&o)
	}

	payload := map[string]any{
		"model":    p.model,
		"messages": messages,
	}
	if o.temperature != nil {
		payload["temperature"] = *o.temperature
	}
	if o.maxTokens > 0 {
		payload["max_tokens"] = o.maxTokens
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("LLM request failed: %s %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("LLM response had no choices")
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("LLM response was empty")
	}
	return content, nil
}
