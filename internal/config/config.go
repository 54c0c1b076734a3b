package config

import (
	"ctchen222/Tic-Tac-Toe-AI/internal/validator"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds everything the server reads from the environment.
type Config struct {
	HTTPAddr     string        `validate:"required"`
	SessionStore string        `validate:"required,oneof=redis memory"`
	RedisAddr    string        `validate:"required_if=SessionStore redis"`
	SessionTTL   time.Duration `validate:"gt=0"`
	SQLitePath   string        `validate:"required"`
	JWTSecret    string        `validate:"required,min=16"`
	TokenTTL     time.Duration `validate:"gt=0"`
	OTLPEndpoint string
	LogLevel     string `validate:"oneof=debug info warn error"`
}

// Load reads the configuration from environment variables, falling back to defaults.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		SessionStore: getEnv("SESSION_STORE", "redis"),
		RedisAddr:    getEnv("REDIS_CONNSTRING", "localhost:6379"),
		SQLitePath:   getEnv("SQLITE_PATH", "./master.db"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		LogLevel:     strings.ToLower(getEnv("LOG_LEVEL", "debug")),
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 72*time.Hour); err != nil {
		return nil, err
	}

	if err := validator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// SlogLevel converts LogLevel for the slog handlers.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return d, nil
}
