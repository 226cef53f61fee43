package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Runner   RunnerConfig
	Ops      OpsConfig
	Analyzer AnalyzerConfig
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds outcome persistence settings. When Driver is
// empty the in-memory store is used.
type DatabaseConfig struct {
	Driver string // "postgres" or "sqlite3"
	URL    string
}

// RunnerConfig holds engine-level timing defaults.
type RunnerConfig struct {
	// InterTrialDelay is the fixed pause between scored trials. It is a
	// deployment parameter, not configurable per study.
	InterTrialDelay time.Duration
	// MaxNotifyWorkers bounds concurrent outcome notifications per run.
	MaxNotifyWorkers int64
}

// OpsConfig holds the operational sidecar settings.
type OpsConfig struct {
	Port    string
	Enabled bool
}

// AnalyzerConfig holds the quality-score thresholds that deployments
// may tune. Zero values mean "use the analyzer defaults".
type AnalyzerConfig struct {
	PlausibleRTMin float64
	PlausibleRTMax float64
	MinSampleSize  int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:    envOr("PORT", "8080"),
			GinMode: envOr("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			Driver: os.Getenv("DATABASE_DRIVER"),
			URL:    os.Getenv("DATABASE_URL"),
		},
		Runner: RunnerConfig{
			InterTrialDelay:  500 * time.Millisecond,
			MaxNotifyWorkers: 4,
		},
		Ops: OpsConfig{
			Port:    envOr("OPS_PORT", "8081"),
			Enabled: envOr("OPS_ENABLED", "true") == "true",
		},
	}

	if ms := os.Getenv("INTER_TRIAL_DELAY_MS"); ms != "" {
		v, err := strconv.Atoi(ms)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid INTER_TRIAL_DELAY_MS %q", ms)
		}
		cfg.Runner.InterTrialDelay = time.Duration(v) * time.Millisecond
	}
	if n := os.Getenv("MAX_NOTIFY_WORKERS"); n != "" {
		v, err := strconv.ParseInt(n, 10, 64)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("invalid MAX_NOTIFY_WORKERS %q", n)
		}
		cfg.Runner.MaxNotifyWorkers = v
	}
	if v := os.Getenv("PLAUSIBLE_RT_MIN_MS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("invalid PLAUSIBLE_RT_MIN_MS %q", v)
		}
		cfg.Analyzer.PlausibleRTMin = f
	}
	if v := os.Getenv("PLAUSIBLE_RT_MAX_MS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("invalid PLAUSIBLE_RT_MAX_MS %q", v)
		}
		cfg.Analyzer.PlausibleRTMax = f
	}
	if v := os.Getenv("MIN_SAMPLE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid MIN_SAMPLE_SIZE %q", v)
		}
		cfg.Analyzer.MinSampleSize = n
	}
	if cfg.Database.Driver != "" && cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when DATABASE_DRIVER is set")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
