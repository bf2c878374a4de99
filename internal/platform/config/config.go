// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	App    AppConfig    `envPrefix:"APP_"`
	Engine EngineConfig `envPrefix:"ENGINE_"`
	Cache  CacheConfig  `envPrefix:"CACHE_"`
	DB     DBConfig     `envPrefix:"DB_"`
	Warm   WarmConfig   `envPrefix:"WARM_"`
}

// AppConfig represents the HTTP server configuration.
type AppConfig struct {
	Name     string `env:"NAME" envDefault:"candle-gateway"`
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// EngineConfig represents the backtest engine API configuration.
type EngineConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:3030"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// CacheConfig selects and configures the session cache backend.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend   string `env:"BACKEND" envDefault:"memory"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
}

// DBConfig represents the candle archive database configuration.
type DBConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver        string `env:"DRIVER" envDefault:"sqlite"`
	DSN           string `env:"DSN" envDefault:"candles.db"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
}

// WarmConfig describes the query set the warm command resolves up front.
type WarmConfig struct {
	Exchange  string   `env:"EXCHANGE" envDefault:"binance"`
	Intervals []string `env:"INTERVALS" envSeparator:"," envDefault:"1d"`
	Symbols   []string `env:"SYMBOLS" envSeparator:"," envDefault:"eth-btc,ltc-btc"`
	Start     string   `env:"START" envDefault:"2021-01-01"`
	End       string   `env:"END" envDefault:"2021-02-01"`
	// RateLimit is the number of engine requests allowed per minute.
	RateLimit int `env:"RATE_LIMIT" envDefault:"55"`
}

// Load loads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
