package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("PLUMAGE_DEFINITIONS_DIR", "")
	t.Setenv("PLUMAGE_PSQL_ENV_VAR", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ENV", "")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "features", cfg.DefinitionsDir)
	assert.Equal(t, "PSQL_URL", cfg.PostgresEnvVar)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.Warnings)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PLUMAGE_DEFINITIONS_DIR", "/etc/plumage/views")
	t.Setenv("PLUMAGE_PSQL_ENV_VAR", "WAREHOUSE_URL")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ENV", "production")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/etc/plumage/views", cfg.DefinitionsDir)
	assert.Equal(t, "WAREHOUSE_URL", cfg.PostgresEnvVar)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.True(t, cfg.IsProduction())
	assert.Len(t, cfg.Warnings, 1)
}

func TestLoadFromEnvRejectsBadLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestSlogLevelMapping(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for level, want := range cases {
		cfg := &Config{LogLevel: level}
		assert.Equal(t, want, cfg.SlogLevel(), "level %q", level)
	}
}
