// README: Config loader with env defaults for HTTP, providers, circuit breaking, and dedup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrMissingCredential marks a required provider key that was not supplied.
// main distinguishes it from plain bad configuration for the exit code.
var ErrMissingCredential = errors.New("required credential missing")

type Config struct {
	HTTP struct {
		Addr string
	}
	Request struct {
		DeadlineMS int
	}
	Geocoding struct {
		Key string
	}
	Traffic struct {
		Key string // optional; empty disables the live-traffic provider
	}
	LLM struct {
		Key         string
		Model       string
		MaxTokens   int
		Temperature float64
	}
	Circuit struct {
		OpenAfter int
		ResetMS   int
	}
	Dedup struct {
		Capacity  int
		TTLHours  int
		RedisAddr string // optional; empty keeps the in-process LRU
	}
	Log struct {
		Level string
	}
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = ":" + envOrDefault("PORT", "8080")
	cfg.Request.DeadlineMS = envOrDefaultInt("REQUEST_DEADLINE_MS", 2000)

	cfg.Geocoding.Key = os.Getenv("GEOCODING_KEY")
	cfg.Traffic.Key = os.Getenv("TRAFFIC_KEY")
	cfg.LLM.Key = os.Getenv("LLM_KEY")
	cfg.LLM.Model = envOrDefault("LLM_MODEL", "gemini-2.0-flash")
	cfg.LLM.MaxTokens = envOrDefaultInt("LLM_MAX_TOKENS", 1024)
	cfg.LLM.Temperature = envOrDefaultFloat("LLM_TEMPERATURE", 0.1)

	cfg.Circuit.OpenAfter = envOrDefaultInt("CIRCUIT_OPEN_AFTER", 5)
	cfg.Circuit.ResetMS = envOrDefaultInt("CIRCUIT_RESET_MS", 30000)

	cfg.Dedup.Capacity = envOrDefaultInt("DEDUP_CAPACITY", 50000)
	cfg.Dedup.TTLHours = envOrDefaultInt("DEDUP_TTL_HOURS", 24)
	cfg.Dedup.RedisAddr = os.Getenv("DEDUP_REDIS_ADDR")

	cfg.Log.Level = envOrDefault("LOG_LEVEL", "info")

	if cfg.Geocoding.Key == "" {
		return cfg, fmt.Errorf("GEOCODING_KEY: %w", ErrMissingCredential)
	}
	if cfg.LLM.Key == "" {
		return cfg, fmt.Errorf("LLM_KEY: %w", ErrMissingCredential)
	}
	if cfg.Request.DeadlineMS <= 0 {
		return cfg, fmt.Errorf("REQUEST_DEADLINE_MS must be positive")
	}
	if cfg.Dedup.Capacity <= 0 {
		return cfg, fmt.Errorf("DEDUP_CAPACITY must be positive")
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}
