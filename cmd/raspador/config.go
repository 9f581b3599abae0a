package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"raspador-backend/lib/configutil"
	"raspador-backend/lib/keywords"
	"raspador-backend/lib/telemetry"
)

type RadarConfig struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

type Config struct {
	Verbose       bool     `json:"verbose"`
	StartDate     string   `json:"start_date"`
	Subjects      []string `json:"subjects"`
	Origin        string   `json:"origin"`
	MaxConcurrent int      `json:"max_concurrent"`

	// Keywords is the ordered matcher policy. Leave empty to run in
	// catch-all mode where every assembled record is kept.
	Keywords []keywords.MatcherConfig `json:"keywords"`

	Database string      `json:"database"`
	FeedDir  string      `json:"feed_dir"`
	Radar    RadarConfig `json:"radar"`
}

func loadConfig() (Config, error) {
	cfg, err := configutil.ReadConfig[Config](configPath)
	if errors.Is(err, os.ErrNotExist) {
		// runnable without a config file, catch-all mode with defaults
		err = nil
	}
	if err != nil {
		return Config{}, err
	}

	if cfg.StartDate == "" {
		cfg.StartDate = "2000-11-07"
	}
	if cfg.Database == "" {
		cfg.Database = filepath.Join("data", "raspador.db")
	}
	if cfg.FeedDir == "" {
		cfg.FeedDir = "data"
	}
	return cfg, nil
}

// setupTelemetry wires slog and, when a telemetry.json5 exists anywhere
// up the tree, the OTLP exporters. Running without one is fine, spans
// just go nowhere.
func setupTelemetry(ctx context.Context, cfg Config) func() {
	telemetry.InitSlog(cfg.Verbose)

	tel, err := telemetry.SetupFromEnv(ctx, "raspador")
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("no telemetry.json5 found, tracing disabled")
		return func() {}
	}
	if err != nil {
		slog.Error("failed to setup telemetry", "err", err)
		return func() {}
	}
	return func() {
		err := tel.Shutdown(ctx)
		if err != nil {
			slog.Error("failed to shutdown telemetry", "err", err)
		}
	}
}
