package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err folds the errors into one error value, or nil.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return fmt.Errorf("config validation failed:\n- %s", strings.Join(v.Errors, "\n- "))
}

var (
	searchProviders = []string{"serper", "duckduckgo"}
	llmProviders    = []string{"groq", "openai", "openrouter"}
	fetchDrivers    = []string{"chromedp", "rod", "http"}
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// NormalizeAndValidate returns a normalized copy plus everything wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.Search.Provider = strings.ToLower(strings.TrimSpace(out.Search.Provider))
	out.LLM.Provider = strings.ToLower(strings.TrimSpace(out.LLM.Provider))
	out.Fetch.Driver = strings.ToLower(strings.TrimSpace(out.Fetch.Driver))
	out.Logging.Format = strings.ToLower(strings.TrimSpace(out.Logging.Format))
	if out.Pipeline.ResultsMultiplier <= 0 {
		out.Pipeline.ResultsMultiplier = 1
	}
	if strings.TrimSpace(out.Fetch.UserAgent) == "" {
		out.Fetch.UserAgent = DefaultUserAgent
	}

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	// pipeline
	if t := out.Pipeline.RelevanceThreshold; t < 0 || t > 1 {
		res.addErr("pipeline.relevance_threshold must be within [0,1], got %v", t)
	}
	if out.Pipeline.MaxRetries < 1 {
		res.addErr("pipeline.max_retries must be >= 1")
	} else if out.Pipeline.MaxRetries > 10 {
		res.addWarn("pipeline.max_retries is high (%d); every attempt costs a search and a model call.", out.Pipeline.MaxRetries)
	}
	if out.Pipeline.TargetCount < 1 {
		res.addErr("pipeline.target_count must be >= 1")
	}
	if out.Pipeline.FetchDelaySeconds < 0 {
		res.addErr("pipeline.fetch_delay_seconds must be >= 0")
	} else if out.Pipeline.FetchDelaySeconds < 1 {
		res.addWarn("pipeline.fetch_delay_seconds is very low (%v) and may get pages blocked.", out.Pipeline.FetchDelaySeconds)
	}

	// collaborators
	if !oneOf(out.Search.Provider, searchProviders) {
		res.addErr("search.provider must be one of %s", strings.Join(searchProviders, ", "))
	}
	if out.Search.TimeoutSeconds <= 0 {
		res.addErr("search.timeout_seconds must be > 0")
	}
	if !oneOf(out.LLM.Provider, llmProviders) {
		res.addErr("llm.provider must be one of %s", strings.Join(llmProviders, ", "))
	}
	if strings.TrimSpace(out.LLM.Model) == "" {
		res.addErr("llm.model is required")
	}
	if out.LLM.TimeoutSeconds <= 0 {
		res.addErr("llm.timeout_seconds must be > 0")
	}

	// fetch
	if !oneOf(out.Fetch.Driver, fetchDrivers) {
		res.addErr("fetch.driver must be one of %s", strings.Join(fetchDrivers, ", "))
	}
	if out.Fetch.PageTimeoutSeconds <= 0 {
		res.addErr("fetch.page_timeout_seconds must be > 0")
	}
	if out.Fetch.RenderWaitSeconds < 0 || out.Fetch.RetryBackoffSeconds < 0 {
		res.addErr("fetch.render_wait_seconds and fetch.retry_backoff_seconds must be >= 0")
	}
	if out.Fetch.MaxTextChars <= 0 {
		res.addErr("fetch.max_text_chars must be > 0")
	}
	if out.Fetch.Driver == "http" {
		res.addWarn("fetch.driver=http does not execute JavaScript; client-rendered sites will come back thin.")
	}
	if out.Fetch.ProfileDir != "" && out.Fetch.Driver == "http" {
		res.addWarn("fetch.profile_dir is ignored by the http driver.")
	}

	if out.Logging.Format != "" && out.Logging.Format != "text" && out.Logging.Format != "json" {
		res.addErr("logging.format must be text or json")
	}

	return out, res
}
