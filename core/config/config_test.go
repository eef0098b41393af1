package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Empty(t, cfg.Server.ApiKey)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "card-catalog.db", cfg.Database.Path)
	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, "catalog-artifacts", cfg.Storage.Bucket)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "ck_pricelist_cache.json", cfg.Sources.BuylistCacheFile)
	assert.Equal(t, 12, cfg.Sources.BuylistCacheMaxAgeHours)
	assert.Equal(t, 60, cfg.Sources.TimeoutSeconds)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_PATH", "/tmp/replica.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SOURCES_TIMEOUT_SECONDS", "5")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "/tmp/replica.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Sources.TimeoutSeconds)
}
