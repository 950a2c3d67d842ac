// Package config loads lapsync settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/ukaji3/lapsync-go/internal/logging"
	"github.com/ukaji3/lapsync-go/pkg/lapsync"
)

// Environment variable names.
const (
	EnvPaceMinutesColumn = "LAPSYNC_PACE_MIN_COLUMN"
	EnvPaceSecondsColumn = "LAPSYNC_PACE_SEC_COLUMN"
	EnvLapsRegion        = "LAPSYNC_LAPS_REGION"
	EnvDurationsRegion   = "LAPSYNC_DURATIONS_REGION"
	EnvOnDataError       = "LAPSYNC_ON_DATA_ERROR"
	EnvLogLevel          = "LAPSYNC_LOG_LEVEL"
	EnvAddr              = "LAPSYNC_ADDR"
)

// DefaultAddr is the listen address of the edit server.
const DefaultAddr = ":8080"

// Config represents the complete application configuration
type Config struct {
	Sync     lapsync.Config
	LogLevel logging.Level
	Addr     string
}

// LoadDotEnv loads variables from the given .env files (default ".env").
// A missing file is not an error.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	sync := lapsync.DefaultConfig()

	var err error
	if sync.PaceMinutesColumn, err = getEnvIntOrDefault(EnvPaceMinutesColumn, sync.PaceMinutesColumn); err != nil {
		return nil, err
	}
	if sync.PaceSecondsColumn, err = getEnvIntOrDefault(EnvPaceSecondsColumn, sync.PaceSecondsColumn); err != nil {
		return nil, err
	}
	sync.LapsRegionName = getEnvOrDefault(EnvLapsRegion, sync.LapsRegionName)
	sync.DurationsRegionName = getEnvOrDefault(EnvDurationsRegion, sync.DurationsRegionName)
	if policy := os.Getenv(EnvOnDataError); policy != "" {
		if sync.OnDataError, err = lapsync.ParsePolicy(policy); err != nil {
			return nil, err
		}
	}

	level := logging.LevelInfo
	if raw := os.Getenv(EnvLogLevel); raw != "" {
		var ok bool
		if level, ok = logging.ParseLevel(raw); !ok {
			return nil, fmt.Errorf("%w: %s=%q", lapsync.ErrInvalidConfig, EnvLogLevel, raw)
		}
	}

	cfg := &Config{
		Sync:     sync,
		LogLevel: level,
		Addr:     getEnvOrDefault(EnvAddr, DefaultAddr),
	}
	if err := cfg.Sync.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", lapsync.ErrInvalidConfig, key, value)
	}
	return n, nil
}
