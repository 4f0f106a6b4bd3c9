// Package config loads slidegen settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/cpunion/slidegen/pkg/llm"
	"github.com/cpunion/slidegen/pkg/logging"
)

// Config holds the environment driven configuration shared by the commands.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"slidegen"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"console"`

	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	GoogleModel  string `env:"GOOGLE_MODEL" envDefault:"gemini-2.5-flash"`

	Temperature     float32       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	MaxOutputTokens int           `env:"LLM_MAX_OUTPUT_TOKENS" envDefault:"8192"`
	RequestTimeout  time.Duration `env:"LLM_REQUEST_TIMEOUT" envDefault:"30s"`
	RetryAttempts   int           `env:"LLM_RETRY_ATTEMPTS" envDefault:"3"`
	RetryBaseDelay  time.Duration `env:"LLM_RETRY_BASE_DELAY" envDefault:"1s"`

	AssetConcurrency  int `env:"ASSET_CONCURRENCY" envDefault:"4"`
	MaxAssetsPerSlide int `env:"MAX_ASSETS_PER_SLIDE" envDefault:"3"`

	TaskHistoryLimit int    `env:"TASK_HISTORY_LIMIT" envDefault:"1000"`
	TaskArchiveDir   string `env:"TASK_ARCHIVE_DIR"`

	OutputDir string `env:"OUTPUT_DIR" envDefault:"./decks"`
	HTTPPort  int    `env:"HTTP_PORT" envDefault:"8080"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if cfg.RetryAttempts < 1 {
		return nil, fmt.Errorf("LLM_RETRY_ATTEMPTS must be at least 1, got %d", cfg.RetryAttempts)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("LLM_REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return nil, fmt.Errorf("LLM_TEMPERATURE must be within [0, 2], got %g", cfg.Temperature)
	}

	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 8192
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = time.Second
	}
	if cfg.AssetConcurrency <= 0 {
		cfg.AssetConcurrency = 4
	}
	if cfg.AssetConcurrency > 32 {
		cfg.AssetConcurrency = 32
	}
	if cfg.MaxAssetsPerSlide <= 0 {
		cfg.MaxAssetsPerSlide = 3
	}
	if cfg.TaskHistoryLimit < 0 {
		cfg.TaskHistoryLimit = 1000
	}
	if cfg.HTTPPort <= 0 {
		cfg.HTTPPort = 8080
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		cfg.OutputDir = "./decks"
	}
	return cfg, nil
}

// RequireAPIKey reports whether live generation is possible.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.GoogleAPIKey) == "" {
		return errors.New("GOOGLE_API_KEY is required for generation (set it in the environment or a .env file)")
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:   c.LogLevel,
		Format:  logging.ParseFormat(c.LogFormat),
		Service: c.ServiceName,
	}
}

// Gemini returns the model backend configuration.
func (c *Config) Gemini() llm.GeminiConfig {
	return llm.GeminiConfig{APIKey: c.GoogleAPIKey, Model: c.GoogleModel}
}

// Client returns the gateway client configuration.
func (c *Config) Client() llm.ClientConfig {
	return llm.ClientConfig{
		Timeout:         c.RequestTimeout,
		Temperature:     c.Temperature,
		MaxOutputTokens: c.MaxOutputTokens,
	}
}

// Retry returns the boundary retry configuration.
func (c *Config) Retry() llm.RetryConfig {
	r := llm.DefaultRetryConfig()
	r.MaxAttempts = c.RetryAttempts
	r.BaseDelay = c.RetryBaseDelay
	return r
}
