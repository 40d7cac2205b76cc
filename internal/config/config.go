// Package config loads service settings from defaults and the process environment.
package config

import (
	"errors"
	"fmt"
	"package-tracking-service/internal/platform/db"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Port          int           `koanf:"port"`
	DBDriver      string        `koanf:"db_driver"`
	DatabaseURL   string        `koanf:"database_url"`
	DBPath        string        `koanf:"db_path"`
	RedisURL      string        `koanf:"redis_url"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`
	ListMaxLimit  int           `koanf:"list_max_limit"`
	SessionSecret string        `koanf:"session_secret"`
	LogLevel      string        `koanf:"log_level"`
	LogFormat     string        `koanf:"log_format"`
	SeedPath      string        `koanf:"seed_path"`
}

// Settings read when the matching environment variable is unset.
var defaults = map[string]any{
	"port":           8000,
	"db_driver":      db.DriverSQLite,
	"database_url":   "",
	"db_path":        "data/app.db",
	"redis_url":      "",
	"cache_ttl":      "10m",
	"list_max_limit": 100,
	"session_secret": "package-tracking-dev-secret",
	"log_level":      "info",
	"log_format":     "json",
	"seed_path":      "data/seeds/packages.json",
}

// Load merges defaults with environment variables (PORT, DB_DRIVER, ...) and validates the result.
// Callers load any .env file before calling Load.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("load config: defaults: %w", err)
	}

	// PORT -> port; unknown and empty variables are ignored.
	if err := k.Load(env.ProviderWithValue("", ".", func(name, value string) (string, any) {
		key := strings.ToLower(name)
		if _, ok := defaults[key]; !ok || strings.TrimSpace(value) == "" {
			return "", nil
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("load config: env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: decode: %w", err)
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	switch c.DBDriver {
	case db.DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_DRIVER=postgres"))
		}
	case db.DriverSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			errs = append(errs, errors.New("DB_PATH is required when DB_DRIVER=sqlite"))
		}
	case db.DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres, sqlite or memory, got %q", c.DBDriver))
	}

	if c.ListMaxLimit < 1 {
		errs = append(errs, fmt.Errorf("LIST_MAX_LIMIT must be positive, got %d", c.ListMaxLimit))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL))
	}

	return errors.Join(errs...)
}

// DSN returns the connection string for the configured SQL driver.
func (c *Config) DSN() string {
	if c.DBDriver == db.DriverPostgres {
		return c.DatabaseURL
	}
	return c.DBPath
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
