// Package config handles application configuration from environment variables
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the server configuration.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	BaseURL  string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"gamepicker.db"`

	Steam SteamConfig
	Query QueryConfig

	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"12h"`
}

// SteamConfig holds Steam Web API settings. Steam is disabled without a key.
type SteamConfig struct {
	Key               string        `env:"STEAM_KEY"`
	UserID            string        `env:"STEAM_USER_ID" envDefault:"76561198177613149"`
	APIURL            string        `env:"STEAM_API_URL" envDefault:"https://api.steampowered.com"`
	StoreURL          string        `env:"STEAM_STORE_URL" envDefault:"https://store.steampowered.com"`
	Timeout           time.Duration `env:"STEAM_TIMEOUT" envDefault:"10s"`
	DetailsCacheSize  int           `env:"STEAM_DETAILS_CACHE_SIZE" envDefault:"512"`
	ResponseCacheSize int           `env:"STEAM_RESPONSE_CACHE_SIZE" envDefault:"1024"`
	Concurrency       int           `env:"STEAM_CONCURRENCY" envDefault:"8"`
}

// QueryConfig is the fetch policy of the games query.
type QueryConfig struct {
	StaleTime       time.Duration `env:"QUERY_STALE_TIME" envDefault:"60s"`
	RefetchInterval time.Duration `env:"QUERY_REFETCH_INTERVAL" envDefault:"60s"`
	Retry           int           `env:"QUERY_RETRY" envDefault:"0"`
}

// ClientConfig holds the CLI configuration.
type ClientConfig struct {
	Server   string `env:"GAMEPICKER_SERVER" envDefault:"http://localhost:8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`
	Query    QueryConfig

	// CacheDir holds the persisted session snapshot. Empty means the user
	// cache directory.
	CacheDir    string        `env:"GAMEPICKER_CACHE_DIR"`
	CacheMaxAge time.Duration `env:"GAMEPICKER_CACHE_MAX_AGE" envDefault:"24h"`
}

// Load reads the server configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient reads the CLI configuration from the environment.
func LoadClient() (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if _, err := url.Parse(cfg.Server); err != nil {
		return nil, fmt.Errorf("invalid GAMEPICKER_SERVER: %w", err)
	}
	if err := cfg.Query.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HasSteam returns true if a Steam API key is configured
func (c *Config) HasSteam() bool {
	return c.Steam.Key != ""
}

// Validate checks the store driver settings and the query policy.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORE_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want memory, postgres or sqlite)", c.StoreDriver)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if c.Steam.Concurrency < 1 {
		return fmt.Errorf("STEAM_CONCURRENCY must be at least 1, got %d", c.Steam.Concurrency)
	}
	return c.Query.Validate()
}

// Validate rejects negative durations and retry counts.
func (q QueryConfig) Validate() error {
	if q.StaleTime < 0 {
		return fmt.Errorf("QUERY_STALE_TIME must not be negative, got %s", q.StaleTime)
	}
	if q.RefetchInterval < 0 {
		return fmt.Errorf("QUERY_REFETCH_INTERVAL must not be negative, got %s", q.RefetchInterval)
	}
	if q.Retry < 0 {
		return fmt.Errorf("QUERY_RETRY must not be negative, got %d", q.Retry)
	}
	return nil
}
