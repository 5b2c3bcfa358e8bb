package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from envFile into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadDotEnv(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	err := godotenv.Load(envFile)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// OverlayEnv applies LEADGEN_* environment overrides to cfg.
func OverlayEnv(cfg *Config) error {
	var errs []string

	float := func(key string, dst *float64) {
		v, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %q is not a number", key, v))
			return
		}
		*dst = f
	}
	integer := func(key string, dst *int) {
		v, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %q is not an integer", key, v))
			return
		}
		*dst = n
	}
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	float("LEADGEN_RELEVANCE_THRESHOLD", &cfg.Pipeline.RelevanceThreshold)
	integer("LEADGEN_MAX_RETRIES", &cfg.Pipeline.MaxRetries)
	integer("LEADGEN_TARGET_COUNT", &cfg.Pipeline.TargetCount)
	float("LEADGEN_FETCH_DELAY_SECONDS", &cfg.Pipeline.FetchDelaySeconds)
	str("LEADGEN_SEARCH_PROVIDER", &cfg.Search.Provider)
	str("LEADGEN_LLM_PROVIDER", &cfg.LLM.Provider)
	str("LEADGEN_LLM_BASE_URL", &cfg.LLM.BaseURL)
	str("LEADGEN_LLM_MODEL", &cfg.LLM.Model)
	str("LEADGEN_FETCH_DRIVER", &cfg.Fetch.Driver)
	str("LEADGEN_LOG_LEVEL", &cfg.Logging.Level)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment overrides:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
