package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Pipeline struct {
		RelevanceThreshold float64 `yaml:"relevance_threshold" json:"relevance_threshold"`
		MaxRetries         int     `yaml:"max_retries" json:"max_retries"`
		TargetCount        int     `yaml:"target_count" json:"target_count"`
		FetchDelaySeconds  float64 `yaml:"fetch_delay_seconds" json:"fetch_delay_seconds"`
		ResultsMultiplier  int     `yaml:"results_multiplier" json:"results_multiplier"`
	} `yaml:"pipeline" json:"pipeline"`

	Search struct {
		Provider       string `yaml:"provider" json:"provider"` // serper/duckduckgo
		Endpoint       string `yaml:"endpoint" json:"endpoint"`
		TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	} `yaml:"search" json:"search"`

	LLM struct {
		Provider       string `yaml:"provider" json:"provider"` // groq/openai/openrouter
		BaseURL        string `yaml:"base_url" json:"base_url"`
		Model          string `yaml:"model" json:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
		MaxTokens      int    `yaml:"max_tokens" json:"max_tokens"`
	} `yaml:"llm" json:"llm"`

	Fetch struct {
		Driver              string  `yaml:"driver" json:"driver"` // chromedp/rod/http
		RenderWaitSeconds   float64 `yaml:"render_wait_seconds" json:"render_wait_seconds"`
		PageTimeoutSeconds  int     `yaml:"page_timeout_seconds" json:"page_timeout_seconds"`
		RetryBackoffSeconds float64 `yaml:"retry_backoff_seconds" json:"retry_backoff_seconds"`
		MaxTextChars        int     `yaml:"max_text_chars" json:"max_text_chars"`
		UserAgent           string  `yaml:"user_agent" json:"user_agent"`
		Headless            bool    `yaml:"headless" json:"headless"`
		ProfileDir          string  `yaml:"profile_dir" json:"profile_dir"`
	} `yaml:"fetch" json:"fetch"`

	Logging struct {
		Level  string `yaml:"level" json:"level"`
		Format string `yaml:"format" json:"format"`
	} `yaml:"logging" json:"logging"`
}

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func Default() Config {
	var cfg Config
	cfg.App.Port = 38471

	cfg.Pipeline.RelevanceThreshold = 0.60
	cfg.Pipeline.MaxRetries = 3
	cfg.Pipeline.TargetCount = 5
	cfg.Pipeline.FetchDelaySeconds = 2.0
	cfg.Pipeline.ResultsMultiplier = 2

	cfg.Search.Provider = "serper"
	cfg.Search.Endpoint = "https://google.serper.dev/search"
	cfg.Search.TimeoutSeconds = 30

	cfg.LLM.Provider = "groq"
	cfg.LLM.Model = "llama3-8b-8192"
	cfg.LLM.TimeoutSeconds = 60
	cfg.LLM.MaxTokens = 1000

	cfg.Fetch.Driver = "chromedp"
	cfg.Fetch.RenderWaitSeconds = 5
	cfg.Fetch.PageTimeoutSeconds = 30
	cfg.Fetch.RetryBackoffSeconds = 2
	cfg.Fetch.MaxTextChars = 8000
	cfg.Fetch.UserAgent = DefaultUserAgent
	cfg.Fetch.Headless = true

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	return cfg
}

// Load reads a YAML file on top of Default, so omitted keys keep their
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (c Config) FetchDelay() time.Duration   { return seconds(c.Pipeline.FetchDelaySeconds) }
func (c Config) RenderWait() time.Duration   { return seconds(c.Fetch.RenderWaitSeconds) }
func (c Config) RetryBackoff() time.Duration { return seconds(c.Fetch.RetryBackoffSeconds) }
func (c Config) PageTimeout() time.Duration {
	return time.Duration(c.Fetch.PageTimeoutSeconds) * time.Second
}
func (c Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}
func (c Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}
