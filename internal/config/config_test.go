package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_BIND_ADDR", "APP_METRICS_NAMESPACE", "APP_ALLOW_ANY_ORIGIN",
		"APP_FLUSH_INTERVAL", "APP_EVENT_BUFFER", "APP_SHUTDOWN_TIMEOUT",
		"APP_IMAGE_DIR", "BACKEND_PROVIDER", "OPENAI_API_KEY",
		"OPENAI_COMPLETION_MODEL", "OPENAI_TTS_MODEL", "OPENAI_TTS_VOICE",
		"OPENAI_TRANSCRIPTION_MODEL", "OPENAI_IMAGE_MODEL", "OPENAI_IMAGE_SIZE",
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
	if cfg.BindAddr != ":8080" {
		t.Errorf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.FlushInterval != 5*time.Millisecond {
		t.Errorf("FlushInterval = %v", cfg.FlushInterval)
	}
	if cfg.EventBuffer != 256 {
		t.Errorf("EventBuffer = %d", cfg.EventBuffer)
	}
	if cfg.BackendProvider != "auto" {
		t.Errorf("BackendProvider = %q", cfg.BackendProvider)
	}
	if cfg.OpenAICompletionModel != "gpt-4o" {
		t.Errorf("OpenAICompletionModel = %q", cfg.OpenAICompletionModel)
	}
	if cfg.ImageDir != "static/temp/images" {
		t.Errorf("ImageDir = %q", cfg.ImageDir)
	}
	if cfg.AllowAnyOrigin {
		t.Errorf("AllowAnyOrigin should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_BIND_ADDR", "127.0.0.1:9999")
	t.Setenv("APP_FLUSH_INTERVAL", "20ms")
	t.Setenv("APP_EVENT_BUFFER", "32")
	t.Setenv("APP_ALLOW_ANY_ORIGIN", "true")
	t.Setenv("BACKEND_PROVIDER", "mock")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != "127.0.0.1:9999" {
		t.Errorf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.FlushInterval != 20*time.Millisecond {
		t.Errorf("FlushInterval = %v", cfg.FlushInterval)
	}
	if cfg.EventBuffer != 32 {
		t.Errorf("EventBuffer = %d", cfg.EventBuffer)
	}
	if !cfg.AllowAnyOrigin {
		t.Errorf("AllowAnyOrigin not applied")
	}
	if cfg.BackendProvider != "mock" {
		t.Errorf("BackendProvider = %q", cfg.BackendProvider)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad duration", "APP_FLUSH_INTERVAL", "fast"},
		{"zero flush interval", "APP_FLUSH_INTERVAL", "0s"},
		{"negative buffer", "APP_EVENT_BUFFER", "-1"},
		{"non-numeric buffer", "APP_EVENT_BUFFER", "many"},
		{"bad bool", "APP_ALLOW_ANY_ORIGIN", "maybe"},
		{"unknown provider", "BACKEND_PROVIDER", "aws"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() accepted %s=%q", tc.key, tc.value)
			}
		})
	}
}
