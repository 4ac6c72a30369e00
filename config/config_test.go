package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromYAMLKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9090\"\ndatabase:\n  driver: sqlite\n  database: dev.db\n"), 0o644))

	cfg := loadFromYAML(path)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "dev.db", cfg.Database.Database)
	assert.Equal(t, 280, cfg.Content.MaxTweetLength)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpireTime)
}

func TestLoadFromYAMLMissingFile(t *testing.T) {
	cfg := loadFromYAML(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, getDefaultConfig(), cfg)
}

func TestEnvOverridesYAML(t *testing.T) {
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("JWT_EXPIRE_TIME", "2h")

	cfg := getDefaultConfig()
	overrideWithEnvVars(cfg)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
}
