package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Logs    LogConfig
	HTTP    HTTPConfig
	Engine  EngineConfig
	Session SessionConfig
}

type LogConfig struct {
	Style string // "json" or "console"
	Level string
}

type HTTPConfig struct {
	Addr         string
	AllowOrigins string
}

type EngineConfig struct {
	DefaultDepth  int
	MaxDepth      int
	SearchTimeout time.Duration
	Evaluator     string
	Quiescence    int // capture-only plies past the search depth
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

func LoadConfig() (*Config, error) {
	defaultDepth, err := getInt("ENGINE_DEFAULT_DEPTH", 3)
	if err != nil {
		return nil, err
	}
	maxDepth, err := getInt("ENGINE_MAX_DEPTH", 5)
	if err != nil {
		return nil, err
	}
	quiescence, err := getInt("ENGINE_QUIESCENCE", 0)
	if err != nil {
		return nil, err
	}
	searchTimeout, err := getDuration("ENGINE_SEARCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	ttl, err := getDuration("SESSION_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	sweep, err := getDuration("SESSION_SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}

	if maxDepth < 1 {
		return nil, fmt.Errorf("ENGINE_MAX_DEPTH must be at least 1, got %d", maxDepth)
	}
	if defaultDepth < 1 || defaultDepth > maxDepth {
		return nil, fmt.Errorf("ENGINE_DEFAULT_DEPTH must be within [1, %d], got %d", maxDepth, defaultDepth)
	}

	if quiescence < 0 {
		return nil, fmt.Errorf("ENGINE_QUIESCENCE must not be negative, got %d", quiescence)
	}

	addr := getString("PORT", ":8000")
	if addr[0] != ':' {
		addr = ":" + addr
	}

	cfg := &Config{
		Logs: LogConfig{
			Style: getString("LOG_STYLE", "json"),
			Level: getString("LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Addr:         addr,
			AllowOrigins: getString("CORS_ALLOW_ORIGINS", "*"),
		},
		Engine: EngineConfig{
			DefaultDepth:  defaultDepth,
			MaxDepth:      maxDepth,
			SearchTimeout: searchTimeout,
			Evaluator:     getString("ENGINE_EVAL", "material"),
			Quiescence:    quiescence,
		},
		Session: SessionConfig{
			TTL:           ttl,
			SweepInterval: sweep,
		},
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("error converting string to int: %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("error parsing duration: %s: %w", key, err)
	}
	return d, nil
}
