// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/codewriterrussian/voc-selftest/internal/backend"
	"github.com/codewriterrussian/voc-selftest/internal/speech"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string
	SessionTTL  time.Duration
	LogLevel    slog.Level
	DevMode     bool
	Store       StoreConfig
	Speech      SpeechConfig
}

// StoreConfig selects where the question document lives.
type StoreConfig struct {
	Backend     string
	File        string
	JSONBinURL  string
	BinID       string
	APIKey      string
	DatabaseURL string
	Timeout     time.Duration
}

// SpeechConfig controls the text-to-speech side channel.
type SpeechConfig struct {
	Mode   string // browser, command or off
	Engine string
	Player string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/quiz.db"),
		SessionTTL:  getEnvDuration("SESSION_TTL", 24*time.Hour),
		LogLevel:    parseLevel(getEnv("LOG_LEVEL", "info")),
		DevMode:     getEnvBool("DEV_MODE", false),
		Store: StoreConfig{
			Backend:     strings.ToLower(getEnv("STORE_BACKEND", backend.KindJSONBin)),
			File:        getEnv("QUESTIONS_FILE", "questions.json"),
			JSONBinURL:  getEnv("JSONBIN_URL", backend.DefaultJSONBinURL),
			BinID:       getEnv("JSONBIN_BIN_ID", ""),
			APIKey:      getEnv("JSONBIN_API_KEY", ""),
			DatabaseURL: getEnv("DATABASE_URL", ""),
			Timeout:     getEnvDuration("BACKEND_TIMEOUT", backend.DefaultTimeout),
		},
		Speech: SpeechConfig{
			Mode:   strings.ToLower(getEnv("SPEECH_MODE", speech.ModeBrowser)),
			Engine: getEnv("TTS_ENGINE", "edge-tts"),
			Player: getEnv("TTS_PLAYER", "ffplay"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if err := c.BackendConfig().Validate(); err != nil {
		return fmt.Errorf("STORE_BACKEND=%s: %w", c.Store.Backend, err)
	}
	switch c.Speech.Mode {
	case speech.ModeBrowser, speech.ModeCommand, speech.ModeOff:
	default:
		return fmt.Errorf("SPEECH_MODE must be one of browser, command, off")
	}
	return nil
}

// BackendConfig returns the question document backend settings.
func (c *Config) BackendConfig() backend.Config {
	return backend.Config{
		Kind:        c.Store.Backend,
		FilePath:    c.Store.File,
		JSONBinURL:  c.Store.JSONBinURL,
		BinID:       c.Store.BinID,
		APIKey:      c.Store.APIKey,
		DatabaseURL: c.Store.DatabaseURL,
		Timeout:     c.Store.Timeout,
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.DevMode ||
		c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("90s", "24h") or a plain number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n := getEnvInt(key, -1); n >= 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
