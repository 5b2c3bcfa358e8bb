package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// EnsureUserConfig returns <dataDir>/config.yml, creating it on first run.
// The new file is a copy of defaultPath when given, otherwise the built-in
// defaults.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if defaultPath == "" {
		cfg := Default()
		cfg.App.DataDir = dataDir
		return userPath, SaveAtomic(userPath, cfg)
	}

	// Copy defaultPath -> userPath
	src, err := os.Open(defaultPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(userPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return userPath, nil
}
