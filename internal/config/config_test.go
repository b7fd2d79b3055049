package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_DRIVER", "STEAM_KEY", "QUERY_STALE_TIME", "QUERY_REFETCH_INTERVAL", "LOG_LEVEL", "STEAM_RESPONSE_CACHE_SIZE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 60*time.Second, cfg.Query.StaleTime)
	assert.Equal(t, 60*time.Second, cfg.Query.RefetchInterval)
	assert.Equal(t, 0, cfg.Query.Retry)
	assert.Equal(t, "76561198177613149", cfg.Steam.UserID)
	assert.Equal(t, 1024, cfg.Steam.ResponseCacheSize)
	assert.False(t, cfg.HasSteam())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/games.db")
	t.Setenv("STEAM_KEY", "abc")
	t.Setenv("QUERY_STALE_TIME", "5s")
	t.Setenv("QUERY_REFETCH_INTERVAL", "30s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/games.db", cfg.SQLitePath)
	assert.Equal(t, 5*time.Second, cfg.Query.StaleTime)
	assert.Equal(t, 30*time.Second, cfg.Query.RefetchInterval)
	assert.True(t, cfg.HasSteam())
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("QUERY_STALE_TIME", "soon")

	_, err := Load()
	require.ErrorContains(t, err, "parse env")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StoreDriver: DriverMemory,
			LogLevel:    "info",
			Steam:       SteamConfig{Concurrency: 4},
		}
	}
	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.StoreDriver = DriverPostgres
	require.ErrorContains(t, cfg.Validate(), "DATABASE_URL")
	cfg.DatabaseURL = "postgres://localhost/games"
	require.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.StoreDriver = "mongo"
	require.ErrorContains(t, cfg.Validate(), "unknown STORE_DRIVER")

	cfg = valid()
	cfg.LogLevel = "loud"
	require.ErrorContains(t, cfg.Validate(), "LOG_LEVEL")

	cfg = valid()
	cfg.Query.Retry = -1
	require.ErrorContains(t, cfg.Validate(), "QUERY_RETRY")
}

func TestLoadClient(t *testing.T) {
	t.Setenv("GAMEPICKER_SERVER", "http://games.local:8080")
	t.Setenv("QUERY_REFETCH_INTERVAL", "10s")

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://games.local:8080", cfg.Server)
	assert.Equal(t, 10*time.Second, cfg.Query.RefetchInterval)
}
