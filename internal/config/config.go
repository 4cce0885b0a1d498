// Package config reads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config holds the server settings
type Config struct {
	Port            int
	StorageType     string
	RedisURL        string
	DictionaryPath  string
	DevMode         bool
	LogLevel        slog.Level
	GameRetention   time.Duration
	CleanupInterval time.Duration
}

// Default returns the settings used when nothing is configured
func Default() Config {
	return Config{
		Port:            8080,
		StorageType:     StorageMemory,
		DictionaryPath:  "data/words.txt",
		LogLevel:        slog.LevelInfo,
		GameRetention:   24 * time.Hour,
		CleanupInterval: 10 * time.Minute,
	}
}

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Load reads the settings from the environment on top of Default
func Load() (Config, error) {
	cfg := Default()

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return cfg, fmt.Errorf("invalid PORT %q", raw)
		}
		cfg.Port = port
	}

	if raw := os.Getenv("STORAGE_TYPE"); raw != "" {
		switch strings.ToLower(raw) {
		case StorageMemory:
			cfg.StorageType = StorageMemory
		case StorageRedis:
			cfg.StorageType = StorageRedis
		default:
			return cfg, fmt.Errorf("invalid STORAGE_TYPE %q: must be memory or redis", raw)
		}
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")
	if cfg.StorageType == StorageRedis && cfg.RedisURL == "" {
		return cfg, errors.New("REDIS_URL required when STORAGE_TYPE=redis")
	}

	if raw := os.Getenv("DICTIONARY_PATH"); raw != "" {
		cfg.DictionaryPath = raw
	}

	if raw := os.Getenv("DEV_MODE"); raw != "" {
		dev, err := strconv.ParseBool(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid DEV_MODE %q", raw)
		}
		cfg.DevMode = dev
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return cfg, fmt.Errorf("invalid LOG_LEVEL %q", raw)
		}
	}

	var err error
	if cfg.GameRetention, err = durationEnv("GAME_RETENTION", cfg.GameRetention); err != nil {
		return cfg, err
	}
	if cfg.CleanupInterval, err = durationEnv("CLEANUP_INTERVAL", cfg.CleanupInterval); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback, fmt.Errorf("invalid %s %q", key, raw)
	}
	return d, nil
}
