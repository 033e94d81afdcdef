// Package config loads the application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration validation errors.
var (
	ErrMissingAPIKey     = errors.New("render.api_key is required")
	ErrInvalidTimeout    = errors.New("render.timeout_sec must be at least 1")
	ErrInvalidMaxResults = errors.New("pipeline.max_results must be at least 1")
	ErrInvalidDelay      = errors.New("pipeline.request_delay_ms must be non-negative")
	ErrInvalidLogLevel   = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config is the complete application configuration.
type Config struct {
	Render   RenderConfig   `mapstructure:"render"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Store    StoreConfig    `mapstructure:"store"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// RenderConfig holds the rendering service settings.
type RenderConfig struct {
	APIKey       string `mapstructure:"api_key"`
	Endpoint     string `mapstructure:"endpoint"`
	TimeoutSec   int    `mapstructure:"timeout_sec"`
	PremiumProxy bool   `mapstructure:"premium_proxy"`
	CountryCode  string `mapstructure:"country_code"`
	RenderJS     bool   `mapstructure:"render_js"`
}

// PipelineConfig holds discovery and enrichment settings.
type PipelineConfig struct {
	Region         string `mapstructure:"region"`
	MaxResults     int    `mapstructure:"max_results"`
	RequestDelayMs int    `mapstructure:"request_delay_ms"`
}

// StoreConfig holds the history database settings.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads the configuration file at path and applies RADAR_-prefixed
// environment overrides (e.g. RADAR_RENDER_API_KEY).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("render.api_key", "")
	v.SetDefault("render.endpoint", "")
	v.SetDefault("render.timeout_sec", 45)
	v.SetDefault("render.premium_proxy", false)
	v.SetDefault("render.country_code", "cl")
	v.SetDefault("render.render_js", true)
	v.SetDefault("pipeline.region", "all")
	v.SetDefault("pipeline.max_results", 15)
	v.SetDefault("pipeline.request_delay_ms", 500)
	v.SetDefault("store.path", "radar.db")
	v.SetDefault("logging.level", "info")

	v.SetEnvPrefix("RADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Render.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.Render.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}
	if c.Pipeline.MaxResults < 1 {
		return ErrInvalidMaxResults
	}
	if c.Pipeline.RequestDelayMs < 0 {
		return ErrInvalidDelay
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	return nil
}

// Timeout returns the rendering service request timeout.
func (c *RenderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// RequestDelay returns the politeness pause between article fetches.
func (c *PipelineConfig) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMs) * time.Millisecond
}
