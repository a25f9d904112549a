package config

import (
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so ambient shell state cannot
// leak into the assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_BIND_ADDR", "APP_SHUTDOWN_TIMEOUT", "APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN", "OPENAI_API_KEY", "OPENAI_REALTIME_URL",
		"OPENAI_REALTIME_MODEL", "OPENAI_TRANSCRIPTION_MODEL",
		"OPENAI_TRANSCRIPTION_LANGUAGE", "OPENAI_TEMPERATURE",
		"OPENAI_MAX_RESPONSE_TOKENS", "UPSTREAM_CONNECT_TIMEOUT",
		"DEFAULT_AGENT_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8000" {
		t.Errorf("BindAddr = %q, want :8000", cfg.BindAddr)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 15s", cfg.ShutdownTimeout)
	}
	if cfg.MetricsNamespace != "switchboard" {
		t.Errorf("MetricsNamespace = %q", cfg.MetricsNamespace)
	}
	if !cfg.AllowAnyOrigin {
		t.Errorf("AllowAnyOrigin = false, want true by default")
	}
	if cfg.RealtimeBaseURL != "wss://api.openai.com/v1/realtime" {
		t.Errorf("RealtimeBaseURL = %q", cfg.RealtimeBaseURL)
	}
	if cfg.RealtimeModel != "gpt-4o-realtime-preview" {
		t.Errorf("RealtimeModel = %q", cfg.RealtimeModel)
	}
	if cfg.TranscriptionModel != "gpt-4o-transcribe" || cfg.TranscriptionLanguage != "en" {
		t.Errorf("transcription config = %q/%q", cfg.TranscriptionModel, cfg.TranscriptionLanguage)
	}
	if cfg.Temperature != 0.8 {
		t.Errorf("Temperature = %v, want 0.8", cfg.Temperature)
	}
	if cfg.MaxResponseTokens != 4096 {
		t.Errorf("MaxResponseTokens = %d, want 4096", cfg.MaxResponseTokens)
	}
	if cfg.UpstreamConnectTimeout != 10*time.Second {
		t.Errorf("UpstreamConnectTimeout = %v, want 10s", cfg.UpstreamConnectTimeout)
	}
	if cfg.DefaultAgentID != "general_assistant" {
		t.Errorf("DefaultAgentID = %q", cfg.DefaultAgentID)
	}
	if cfg.OpenAIAPIKey != "" {
		t.Errorf("OpenAIAPIKey = %q, want empty", cfg.OpenAIAPIKey)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_BIND_ADDR", "127.0.0.1:9100")
	t.Setenv("APP_SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("APP_ALLOW_ANY_ORIGIN", "false")
	t.Setenv("OPENAI_API_KEY", "  sk-test  ")
	t.Setenv("OPENAI_TEMPERATURE", "1.2")
	t.Setenv("OPENAI_MAX_RESPONSE_TOKENS", "1024")
	t.Setenv("UPSTREAM_CONNECT_TIMEOUT", "5s")
	t.Setenv("DEFAULT_AGENT_ID", "technical_expert")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != "127.0.0.1:9100" {
		t.Errorf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
	if cfg.AllowAnyOrigin {
		t.Errorf("AllowAnyOrigin = true, want false")
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Errorf("OpenAIAPIKey = %q, want trimmed value", cfg.OpenAIAPIKey)
	}
	if cfg.Temperature != 1.2 {
		t.Errorf("Temperature = %v", cfg.Temperature)
	}
	if cfg.MaxResponseTokens != 1024 {
		t.Errorf("MaxResponseTokens = %d", cfg.MaxResponseTokens)
	}
	if cfg.UpstreamConnectTimeout != 5*time.Second {
		t.Errorf("UpstreamConnectTimeout = %v", cfg.UpstreamConnectTimeout)
	}
	if cfg.DefaultAgentID != "technical_expert" {
		t.Errorf("DefaultAgentID = %q", cfg.DefaultAgentID)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"malformed duration", "APP_SHUTDOWN_TIMEOUT", "soon"},
		{"malformed bool", "APP_ALLOW_ANY_ORIGIN", "maybe"},
		{"malformed float", "OPENAI_TEMPERATURE", "warm"},
		{"temperature above range", "OPENAI_TEMPERATURE", "2.5"},
		{"negative temperature", "OPENAI_TEMPERATURE", "-0.1"},
		{"malformed int", "OPENAI_MAX_RESPONSE_TOKENS", "many"},
		{"non-positive tokens", "OPENAI_MAX_RESPONSE_TOKENS", "0"},
		{"connect timeout too small", "UPSTREAM_CONNECT_TIMEOUT", "100ms"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() with %s=%q should fail", tc.key, tc.value)
			}
		})
	}
}
