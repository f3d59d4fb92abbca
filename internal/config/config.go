package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

var (
	ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN is required")
	ErrMissingDB    = errors.New("DATABASE_URL is required")
)

type Config struct {
	Telegram   TelegramConfig
	Database   DatabaseConfig
	Perplexity PerplexityConfig
	Log        LogConfig
	Metrics    MetricsConfig
	RateLimit  RateLimitConfig
	History    HistoryConfig
}

type TelegramConfig struct {
	Token string
	Debug bool
}

type DatabaseConfig struct {
	URL string
}

// PerplexityConfig carries the external search settings. The API key is
// deliberately not validated: when missing, the remote service rejects the
// request and the rejection surfaces as a failure result, same as the
// original service behaved.
type PerplexityConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	HealthTimeout time.Duration
}

type LogConfig struct {
	Level string
}

type MetricsConfig struct {
	Addr string
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

type HistoryConfig struct {
	ListLimit int
}

func Load() (*Config, error) {
	cfg := &Config{
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
			Debug: getEnvOrDefault("TELEGRAM_DEBUG", "") == "true",
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Perplexity: PerplexityConfig{
			APIKey:        os.Getenv("PERPLEXITY_API_KEY"),
			BaseURL:       getEnvOrDefault("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
			Model:         getEnvOrDefault("PERPLEXITY_MODEL", "pplx-70b-online"),
			Timeout:       time.Duration(getEnvIntOrDefault("SEARCH_TIMEOUT_SEC", 30)) * time.Second,
			HealthTimeout: time.Duration(getEnvIntOrDefault("HEALTH_TIMEOUT_SEC", 5)) * time.Second,
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Addr: getEnvOrDefault("METRICS_ADDR", ":9090"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", 10),
		},
		History: HistoryConfig{
			ListLimit: getEnvIntOrDefault("HISTORY_LIMIT", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	if c.Database.URL == "" {
		return ErrMissingDB
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
