package main

import (
	"fmt"
	"os"
	"path/filepath"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/store"
)

// app is what every subcommand starts from: the resolved data dir and the
// effective configuration.
type app struct {
	dataDir string
	cfgPath string
	cfg     config.Config
}

func loadApp() (*app, error) {
	dataDir := rootFlags.dataDir
	if dataDir == "" {
		dataDir = os.Getenv("LEADGEN_DATA_DIR")
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}

	if err := config.LoadDotEnv(filepath.Join(dataDir, ".env")); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfgPath := rootFlags.configPath
	if cfgPath == "" {
		p, err := config.EnsureUserConfig(dataDir, "")
		if err != nil {
			return nil, fmt.Errorf("config bootstrap failed: %w", err)
		}
		cfgPath = p
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = dataDir
	}

	level := cfg.Logging.Level
	if rootFlags.logLevel != "" {
		level = rootFlags.logLevel
	}
	format := cfg.Logging.Format
	if rootFlags.logFormat != "" {
		format = rootFlags.logFormat
	}
	logging.Init(logging.ParseLevel(level), format)

	return &app{dataDir: dataDir, cfgPath: cfgPath, cfg: cfg}, nil
}

// loadConfig reads path, applies LEADGEN_* overrides and validates.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := config.OverlayEnv(&cfg); err != nil {
		return config.Config{}, err
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		logging.New("config").Warn(w)
	}
	if err := vr.Err(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (a *app) dbPath() string {
	return filepath.Join(a.dataDir, "leadgen.db")
}

func (a *app) openDB() (*store.DB, error) {
	db, err := store.Open(a.dbPath())
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	return db, nil
}
