// Package config loads the product-admin configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/redis/go-redis/v9"
)

// Config holds all configuration for product-admin.
type Config struct {
	// Products API
	APIURL         string        `env:"PRODUCTS_API_URL" envDefault:"http://localhost:3000"`
	UserAgent      string        `env:"USER_AGENT" envDefault:"product-admin/0.1.0"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	MaxAttempts    int           `env:"MAX_ATTEMPTS" envDefault:"3"`

	// HTTP server
	Port int `env:"PORT" envDefault:"8080"`

	// Redis backs the shared quota gate; empty disables it.
	// Either a redis:// URL or a plain host:port.
	RedisURL string `env:"REDIS_URL" envDefault:""`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// Parse reads environment variables without validating them.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Load reads and validates configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("PRODUCTS_API_URL is required")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("PRODUCTS_API_URL must be an http(s) URL: %q", c.APIURL)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("USER_AGENT is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Port)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive: %s", c.RequestTimeout)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("MAX_ATTEMPTS must be at least 1: %d", c.MaxAttempts)
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// RedisEnabled reports whether a Redis server is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

// RedisOptions converts RedisURL into client options.
func (c *Config) RedisOptions() (*redis.Options, error) {
	if !c.RedisEnabled() {
		return nil, fmt.Errorf("redis is not configured")
	}
	if strings.Contains(c.RedisURL, "://") {
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: c.RedisURL}, nil
}
