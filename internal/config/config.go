// Package config handles application configuration and environment loading.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Config holds runtime configuration for the planning tools.
type Config struct {
	DefinitionsDir string // directory of declarative feature-view YAML files
	PostgresEnvVar string // env var name carrying the PostgreSQL connection URL
	LogLevel       string // log level: debug, info, warn, error (default "info")
	Env            string // environment: "development" (default) or "production"

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables. Everything
// is optional; unset values fall back to defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		DefinitionsDir: os.Getenv("PLUMAGE_DEFINITIONS_DIR"),
		PostgresEnvVar: os.Getenv("PLUMAGE_PSQL_ENV_VAR"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		Env:            os.Getenv("ENV"),
	}

	// Defaults
	if cfg.DefinitionsDir == "" {
		cfg.DefinitionsDir = "features"
	}
	if cfg.PostgresEnvVar == "" {
		cfg.PostgresEnvVar = "PSQL_URL"
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return nil, fmt.Errorf("unsupported LOG_LEVEL %q", cfg.LogLevel)
	}

	if cfg.IsProduction() && strings.EqualFold(cfg.LogLevel, "debug") {
		cfg.Warnings = append(cfg.Warnings, "debug logging enabled in production")
	}
	return cfg, nil
}
