package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/bsalter/interactions-client/internal/models"
	"github.com/bsalter/interactions-client/internal/policy"
)

// Config is the top-level application configuration.
type Config struct {
	API   APIConfig   `yaml:"api" validate:"required"`
	Auth  AuthConfig  `yaml:"auth"`
	Cache CacheConfig `yaml:"cache"`
	Retry RetryConfig `yaml:"retry"`
	Diag  DiagConfig  `yaml:"diag"`

	// Production strips error details from classified results.
	Production bool `yaml:"production"`
}

// APIConfig locates the backend.
type APIConfig struct {
	BaseURL        string `yaml:"base_url" validate:"required,url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gte=0"`
}

// Timeout returns the request timeout.
func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AuthConfig configures the identity provider.
type AuthConfig struct {
	Domain   string `yaml:"domain"`
	ClientID string `yaml:"client_id"`
	UserID   string `yaml:"user_id"`
}

// CacheConfig configures the cache tiers and policy.
type CacheConfig struct {
	// Enabled defaults to true when omitted.
	Enabled       *bool        `yaml:"enabled"`
	MemorySizeMB  int          `yaml:"memory_size_mb" validate:"gte=0"`
	ExcludedPaths []string     `yaml:"excluded_paths"`
	Redis         *RedisConfig `yaml:"redis"`

	// TTLSeconds overrides per-category TTLs.
	TTLSeconds map[models.CacheCategory]int `yaml:"ttl_seconds"`
}

// RedisConfig configures the durable tier. Absent means memory-only.
type RedisConfig struct {
	URL                   string `yaml:"url" validate:"required"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds" validate:"gte=0"`
	ReadTimeoutSeconds    int    `yaml:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds   int    `yaml:"write_timeout_seconds" validate:"gte=0"`
	PoolSize              int    `yaml:"pool_size" validate:"gte=0"`
}

// ConnectTimeout returns the dial timeout.
func (c *RedisConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// ReadTimeout returns the read timeout.
func (c *RedisConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout.
func (c *RedisConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// RetryConfig configures the retry layer.
type RetryConfig struct {
	Endpoints        []string `yaml:"endpoints"`
	Statuses         []int    `yaml:"statuses"`
	MaxAttempts      int      `yaml:"max_attempts" validate:"gte=0,lte=10"`
	BaseDelaySeconds int      `yaml:"base_delay_seconds" validate:"gte=0"`
}

// DiagConfig configures the diagnostics HTTP server. Empty Addr disables it.
type DiagConfig struct {
	Addr string `yaml:"addr"`
}

// LoadConfig loads configuration from file path, applies defaults and
// validates the result.
func LoadConfig(configPath string, logger *zap.Logger) (*Config, error) {
	logger.Info("Loading configuration", zap.String("path", configPath))

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var config Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode YAML config: %w", err)
	}

	config.applyDefaults()

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = 30
	}
	if c.Cache.Enabled == nil {
		enabled := true
		c.Cache.Enabled = &enabled
	}
	if c.Cache.MemorySizeMB == 0 {
		c.Cache.MemorySizeMB = 32
	}
	if c.Cache.Redis != nil {
		if c.Cache.Redis.ConnectTimeoutSeconds == 0 {
			c.Cache.Redis.ConnectTimeoutSeconds = 5
		}
		if c.Cache.Redis.ReadTimeoutSeconds == 0 {
			c.Cache.Redis.ReadTimeoutSeconds = 2
		}
		if c.Cache.Redis.WriteTimeoutSeconds == 0 {
			c.Cache.Redis.WriteTimeoutSeconds = 2
		}
		if c.Cache.Redis.PoolSize == 0 {
			c.Cache.Redis.PoolSize = 10
		}
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelaySeconds == 0 {
		c.Retry.BaseDelaySeconds = 1
	}
}

// CachePolicy builds the cache policy from configuration.
func (c *Config) CachePolicy() *policy.CachePolicy {
	p := policy.NewCachePolicy()
	p.Enabled = *c.Cache.Enabled
	if len(c.Cache.ExcludedPaths) > 0 {
		p.ExcludedPaths = c.Cache.ExcludedPaths
	}
	for category, seconds := range c.Cache.TTLSeconds {
		p.TTLs[category] = time.Duration(seconds) * time.Second
	}
	return p
}

// RetryPolicy builds the retry policy from configuration.
func (c *Config) RetryPolicy() *policy.RetryPolicy {
	p := policy.NewRetryPolicy()
	if len(c.Retry.Endpoints) > 0 {
		p.Endpoints = c.Retry.Endpoints
	}
	if len(c.Retry.Statuses) > 0 {
		p.Statuses = c.Retry.Statuses
	}
	p.MaxAttempts = c.Retry.MaxAttempts
	p.BaseDelay = time.Duration(c.Retry.BaseDelaySeconds) * time.Second
	return p
}
