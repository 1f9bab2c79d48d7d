package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderNone      = "none"

	BackendFile  = "file"
	BackendRedis = "redis"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel    slog.Level

	LLMProvider     string        `env:"LLM_PROVIDER" envDefault:"anthropic"`
	ModelName       string        `env:"MODEL_NAME"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL"`
	GenTimeout      time.Duration `env:"GENERATION_TIMEOUT" envDefault:"60s"`
	Temperature     float64       `env:"TEMPERATURE" envDefault:"0"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"file"`
	DataFile       string `env:"DATA_FILE" envDefault:"data/stories.json"`
	RedisURL       string `env:"REDIS_URL" envDefault:"localhost:6379"`
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the chosen provider and backend are usable.
func (c *Config) Validate() error {
	var errs []error
	switch c.LLMProvider {
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic"))
		}
	case ProviderOpenAI:
		// OpenAI-compatible hosts behind OPENAI_BASE_URL may not need a key
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when LLM_PROVIDER=openai"))
		}
	case ProviderNone:
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM_PROVIDER %q (supported: anthropic, openai, none)", c.LLMProvider))
	}

	switch c.StorageBackend {
	case BackendFile:
		if c.DataFile == "" {
			errs = append(errs, errors.New("DATA_FILE is required when STORAGE_BACKEND=file"))
		}
	case BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when STORAGE_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_BACKEND %q (supported: file, redis)", c.StorageBackend))
	}

	if c.GenTimeout <= 0 {
		errs = append(errs, errors.New("GENERATION_TIMEOUT must be positive"))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, errors.New("TEMPERATURE must be between 0 and 2"))
	}
	return errors.Join(errs...)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
