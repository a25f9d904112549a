// Package config loads runtime settings from the environment with sane
// defaults for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BindAddr        string
	ShutdownTimeout time.Duration

	MetricsNamespace string
	AllowAnyOrigin   bool

	OpenAIAPIKey          string
	RealtimeBaseURL       string
	RealtimeModel         string
	TranscriptionModel    string
	TranscriptionLanguage string
	Temperature           float64
	MaxResponseTokens     int

	UpstreamConnectTimeout time.Duration
	DefaultAgentID         string
}

// Load reads configuration from the environment. Every field has a default;
// only values that fail to parse or violate a bound return an error.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8000"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "switchboard"),

		OpenAIAPIKey:          strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		RealtimeBaseURL:       envOrDefault("OPENAI_REALTIME_URL", "wss://api.openai.com/v1/realtime"),
		RealtimeModel:         envOrDefault("OPENAI_REALTIME_MODEL", "gpt-4o-realtime-preview"),
		TranscriptionModel:    envOrDefault("OPENAI_TRANSCRIPTION_MODEL", "gpt-4o-transcribe"),
		TranscriptionLanguage: envOrDefault("OPENAI_TRANSCRIPTION_LANGUAGE", "en"),

		DefaultAgentID: envOrDefault("DEFAULT_AGENT_ID", "general_assistant"),
	}

	var err error
	if cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", true); err != nil {
		return Config{}, err
	}
	if cfg.Temperature, err = floatFromEnv("OPENAI_TEMPERATURE", 0.8); err != nil {
		return Config{}, err
	}
	if cfg.MaxResponseTokens, err = intFromEnv("OPENAI_MAX_RESPONSE_TOKENS", 4096); err != nil {
		return Config{}, err
	}
	if cfg.UpstreamConnectTimeout, err = durationFromEnv("UPSTREAM_CONNECT_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	if cfg.BindAddr == "" {
		return Config{}, fmt.Errorf("APP_BIND_ADDR must not be empty")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return Config{}, fmt.Errorf("OPENAI_TEMPERATURE %v out of range [0, 2]", cfg.Temperature)
	}
	if cfg.MaxResponseTokens <= 0 {
		return Config{}, fmt.Errorf("OPENAI_MAX_RESPONSE_TOKENS must be positive, got %d", cfg.MaxResponseTokens)
	}
	if cfg.UpstreamConnectTimeout < time.Second {
		return Config{}, fmt.Errorf("UPSTREAM_CONNECT_TIMEOUT %v is below 1s", cfg.UpstreamConnectTimeout)
	}
	if cfg.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be positive, got %v", cfg.ShutdownTimeout)
	}
	if strings.TrimSpace(cfg.DefaultAgentID) == "" {
		return Config{}, fmt.Errorf("DEFAULT_AGENT_ID must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
