package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the chat server.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	AllowAnyOrigin   bool

	// FlushInterval is the minimum spacing between token-flush events.
	FlushInterval time.Duration
	// EventBuffer is the subscriber queue depth; events beyond it are dropped.
	EventBuffer int

	BackendProvider string

	OpenAIAPIKey             string
	OpenAICompletionModel    string
	OpenAITTSModel           string
	OpenAITTSVoice           string
	OpenAITranscriptionModel string
	OpenAIImageModel         string
	OpenAIImageSize          string
	ImageDir                 string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:                 envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:         envOrDefault("APP_METRICS_NAMESPACE", "rigchat"),
		AllowAnyOrigin:           false,
		FlushInterval:            5 * time.Millisecond,
		EventBuffer:              256,
		BackendProvider:          envOrDefault("BACKEND_PROVIDER", "auto"),
		OpenAIAPIKey:             strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAICompletionModel:    envOrDefault("OPENAI_COMPLETION_MODEL", "gpt-4o"),
		OpenAITTSModel:           envOrDefault("OPENAI_TTS_MODEL", "tts-1"),
		OpenAITTSVoice:           envOrDefault("OPENAI_TTS_VOICE", "alloy"),
		OpenAITranscriptionModel: envOrDefault("OPENAI_TRANSCRIPTION_MODEL", "whisper-1"),
		OpenAIImageModel:         envOrDefault("OPENAI_IMAGE_MODEL", "dall-e-2"),
		OpenAIImageSize:          envOrDefault("OPENAI_IMAGE_SIZE", "256x256"),
		ImageDir:                 envOrDefault("APP_IMAGE_DIR", "static/temp/images"),
		ShutdownTimeout:          15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.FlushInterval, err = durationFromEnv("APP_FLUSH_INTERVAL", cfg.FlushInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.EventBuffer, err = intFromEnv("APP_EVENT_BUFFER", cfg.EventBuffer)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.FlushInterval <= 0 {
		return Config{}, fmt.Errorf("APP_FLUSH_INTERVAL must be positive")
	}
	if cfg.EventBuffer <= 0 {
		return Config{}, fmt.Errorf("APP_EVENT_BUFFER must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.BackendProvider)) {
	case "auto", "openai", "mock":
	default:
		return Config{}, fmt.Errorf("invalid BACKEND_PROVIDER: %q (expected auto|openai|mock)", cfg.BackendProvider)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
