package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kapu/randomuser-swipe-go/internal/constants"
)

const (
	StoreBackendMemory   = "memory"
	StoreBackendFile     = "file"
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
)

type Config struct {
	Directory DirectoryConfig
	Store     StoreConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Card      CardConfig
	Remote    RemoteConfig
	Logging   LoggingConfig
}

type DirectoryConfig struct {
	BaseURL          string
	Timeout          time.Duration
	BreakerThreshold int
	BreakerReset     time.Duration
}

type StoreConfig struct {
	Backend  string
	FilePath string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type CardConfig struct {
	Width             float64
	ThresholdFraction float64
	ExitDuration      time.Duration
	SettleDuration    time.Duration
}

type RemoteConfig struct {
	WSURL string
}

type LoggingConfig struct {
	Level string
	File  string
}

// Load reads .env (if present) and the process environment, then validates.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Directory: DirectoryConfig{
			BaseURL:          getEnv("DIRECTORY_BASE_URL", constants.APIConfig.DirectoryBaseURL),
			Timeout:          time.Duration(getEnvInt("DIRECTORY_TIMEOUT_SECONDS", int(constants.APIConfig.DirectoryTimeout/time.Second))) * time.Second,
			BreakerThreshold: getEnvInt("DIRECTORY_BREAKER_THRESHOLD", constants.CircuitBreakerConfig.FailureThreshold),
			BreakerReset:     time.Duration(getEnvInt("DIRECTORY_BREAKER_RESET_SECONDS", int(constants.CircuitBreakerConfig.ResetTimeout/time.Second))) * time.Second,
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(getEnv("STORE_BACKEND", StoreBackendFile)),
			FilePath: getEnv("STORE_FILE", "data/last_profile.json"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "swiper"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "swiper"),
		},
		Card: CardConfig{
			Width:             getEnvFloat("CARD_WIDTH", constants.GestureConfig.CardWidth),
			ThresholdFraction: getEnvFloat("SWIPE_THRESHOLD_FRACTION", constants.GestureConfig.ThresholdFraction),
			ExitDuration:      time.Duration(getEnvInt("EXIT_ANIMATION_MS", int(constants.GestureConfig.ExitDuration/time.Millisecond))) * time.Millisecond,
			SettleDuration:    time.Duration(getEnvInt("SETTLE_ANIMATION_MS", int(constants.GestureConfig.SettleDuration/time.Millisecond))) * time.Millisecond,
		},
		Remote: RemoteConfig{
			WSURL: getEnv("REMOTE_WS_URL", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "logs/swiper.log"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks ranges and the store backend name.
func (c *Config) Validate() error {
	if c.Directory.BaseURL == "" {
		return fmt.Errorf("DIRECTORY_BASE_URL is required")
	}
	if c.Directory.Timeout <= 0 {
		return fmt.Errorf("DIRECTORY_TIMEOUT_SECONDS must be positive")
	}
	if c.Directory.BreakerThreshold < 0 {
		return fmt.Errorf("DIRECTORY_BREAKER_THRESHOLD must not be negative")
	}

	switch c.Store.Backend {
	case StoreBackendMemory, StoreBackendRedis, StoreBackendPostgres:
	case StoreBackendFile:
		if c.Store.FilePath == "" {
			return fmt.Errorf("STORE_FILE is required for the file backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Card.Width <= 0 {
		return fmt.Errorf("CARD_WIDTH must be positive")
	}
	if c.Card.ThresholdFraction <= 0 || c.Card.ThresholdFraction >= 1 {
		return fmt.Errorf("SWIPE_THRESHOLD_FRACTION must be between 0 and 1")
	}
	if c.Card.ExitDuration < 0 || c.Card.SettleDuration < 0 {
		return fmt.Errorf("animation durations must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
