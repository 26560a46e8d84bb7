// Package config loads runtime settings from the environment (and .env).
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env            string   `env:"APP_ENV" envDefault:"development"`
	Port           string   `env:"PORT" envDefault:"8080"`
	CollectionPath string   `env:"COLLECTION_CSV" envDefault:"./data/collection.csv"`
	CORSOrigins    []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`

	Database Database
	Cache    Cache
	Catalog  Catalog
	Snapshot Snapshot
}

type Database struct {
	Driver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DSN    string `env:"DB_DSN" envDefault:"./data/mtg_prices.sqlite"`
}

type Cache struct {
	Backend    string        `env:"CACHE_BACKEND" envDefault:"file"`
	Dir        string        `env:"CACHE_DIR" envDefault:"./data/cache/scryfall"`
	TTL        time.Duration `env:"CACHE_TTL" envDefault:"12h"`
	MemorySize int           `env:"CACHE_MEMORY_SIZE" envDefault:"4096"`
	RedisURL   string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
}

type Catalog struct {
	BaseURL           string        `env:"SCRYFALL_BASE_URL" envDefault:"https://api.scryfall.com"`
	Timeout           time.Duration `env:"SCRYFALL_TIMEOUT" envDefault:"20s"`
	RequestsPerSecond float64       `env:"SCRYFALL_RPS" envDefault:"10"`
	FetchConcurrency  int           `env:"FETCH_CONCURRENCY" envDefault:"1"`
}

type Snapshot struct {
	Hour          int           `env:"SNAPSHOT_HOUR" envDefault:"23"`
	CheckInterval time.Duration `env:"SNAPSHOT_CHECK_INTERVAL" envDefault:"15m"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (sqlite, postgres)", c.Database.Driver)
	}
	switch c.Cache.Backend {
	case "file", "memory", "redis":
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q (file, memory, redis)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative, got %s", c.Cache.TTL)
	}
	if c.Cache.Backend == "memory" && c.Cache.MemorySize <= 0 {
		return fmt.Errorf("CACHE_MEMORY_SIZE must be positive, got %d", c.Cache.MemorySize)
	}
	if c.Catalog.RequestsPerSecond <= 0 {
		return fmt.Errorf("SCRYFALL_RPS must be positive, got %v", c.Catalog.RequestsPerSecond)
	}
	if c.Catalog.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", c.Catalog.FetchConcurrency)
	}
	if c.Snapshot.Hour < 0 || c.Snapshot.Hour > 23 {
		return fmt.Errorf("SNAPSHOT_HOUR must be 0-23, got %d", c.Snapshot.Hour)
	}
	return nil
}
