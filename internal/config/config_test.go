package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "k")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, ProviderAnthropic, cfg.LLMProvider)
	assert.Equal(t, 60*time.Second, cfg.GenTimeout)
	assert.Equal(t, BackendFile, cfg.StorageBackend)
	assert.Equal(t, "data/stories.json", cfg.DataFile)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk")
	t.Setenv("GENERATION_TIMEOUT", "5s")
	t.Setenv("TEMPERATURE", "0.3")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, 5*time.Second, cfg.GenTimeout)
	assert.InDelta(t, 0.3, cfg.Temperature, 1e-9)
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "k")
	t.Setenv("GENERATION_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LLMProvider:     ProviderAnthropic,
			AnthropicAPIKey: "k",
			StorageBackend:  BackendFile,
			DataFile:        "stories.json",
			GenTimeout:      time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing anthropic key", func(c *Config) { c.AnthropicAPIKey = "" }, "ANTHROPIC_API_KEY"},
		{"openai without key", func(c *Config) { c.LLMProvider = ProviderOpenAI }, "OPENAI_API_KEY"},
		{"openai compatible host", func(c *Config) {
			c.LLMProvider = ProviderOpenAI
			c.OpenAIBaseURL = "http://localhost:11434/v1"
		}, ""},
		{"no provider", func(c *Config) { c.LLMProvider = ProviderNone; c.AnthropicAPIKey = "" }, ""},
		{"unknown provider", func(c *Config) { c.LLMProvider = "venice" }, "unsupported LLM_PROVIDER"},
		{"unknown backend", func(c *Config) { c.StorageBackend = "s3" }, "unsupported STORAGE_BACKEND"},
		{"redis without url", func(c *Config) { c.StorageBackend = BackendRedis }, "REDIS_URL"},
		{"zero timeout", func(c *Config) { c.GenTimeout = 0 }, "GENERATION_TIMEOUT"},
		{"hot temperature", func(c *Config) { c.Temperature = 3 }, "TEMPERATURE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("loud"))
}
