package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the Salty voice daemon.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	TTSProvider string

	ElevenLabsAPIKey  string
	ElevenLabsBaseURL string
	ElevenLabsVoiceID string
	ElevenLabsModelID string

	EspeakCLI   string
	EspeakVoice string

	SynthesisTimeout time.Duration
	CacheCapacity    int

	AssetsDir     string
	PlayerCommand string

	HistoryLimit int
	DatabaseURL  string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:          envOrDefault("VOICE_BIND_ADDR", ":8001"),
		MetricsNamespace:  envOrDefault("VOICE_METRICS_NAMESPACE", "saltyvoice"),
		AllowAnyOrigin:    false,
		TTSProvider:       envOrDefault("TTS_PROVIDER", "auto"),
		ElevenLabsBaseURL: envOrDefault("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io"),
		ElevenLabsVoiceID: trimmedEnv("ELEVENLABS_VOICE_ID"),
		// Salty's voice was tuned against the monolingual model.
		ElevenLabsModelID: envOrDefault("ELEVENLABS_MODEL_ID", "eleven_monolingual_v1"),
		ElevenLabsAPIKey:  trimmedEnv("ELEVENLABS_API_KEY"),
		EspeakCLI:         envOrDefault("ESPEAK_CLI", "espeak-ng"),
		// Scottish English reads closest to a pirate parrot out of the box.
		EspeakVoice:      envOrDefault("ESPEAK_VOICE", "en-sc"),
		SynthesisTimeout: 8 * time.Second,
		CacheCapacity:    50,
		AssetsDir: envOrDefault("VOICE_ASSETS_DIR", "audio"),
		// ffplay decodes both the MP3 the cloud provider returns and the WAV
		// the offline and mock providers emit; mpg123 handles MPEG only.
		PlayerCommand: envOrDefault("VOICE_PLAYER_CMD", "ffplay"),
		HistoryLimit:     100,
		DatabaseURL:      trimmedEnv("DATABASE_URL"),
		ShutdownTimeout:  15 * time.Second,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("VOICE_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SynthesisTimeout, err = durationFromEnv("VOICE_SYNTHESIS_TIMEOUT", cfg.SynthesisTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.CacheCapacity, err = intFromEnv("VOICE_CACHE_CAPACITY", cfg.CacheCapacity)
	if err != nil {
		return Config{}, err
	}
	cfg.HistoryLimit, err = intFromEnv("VOICE_HISTORY_LIMIT", cfg.HistoryLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("VOICE_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.CacheCapacity <= 0 {
		return Config{}, fmt.Errorf("VOICE_CACHE_CAPACITY must be positive")
	}
	if cfg.SynthesisTimeout < time.Second {
		return Config{}, fmt.Errorf("VOICE_SYNTHESIS_TIMEOUT must be at least 1s")
	}
	if cfg.HistoryLimit <= 0 {
		return Config{}, fmt.Errorf("VOICE_HISTORY_LIMIT must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.TTSProvider)) {
	case "auto", "elevenlabs", "local", "mock":
	default:
		return Config{}, fmt.Errorf("invalid TTS_PROVIDER: %q (expected auto|elevenlabs|local|mock)", cfg.TTSProvider)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
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
	v := trimmedEnv(key)
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
	v := strings.ToLower(trimmedEnv(key))
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
