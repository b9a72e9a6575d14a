package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"todo_webapp/internal/logger"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	AppPort     string
	AppVersion  string
	DatabaseURL string
	Store       string // postgres | memory

	LogLevel string
	LogJSON  bool

	// Redis backs the API rate limiter; empty address disables it
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit  int
	APIRateWindow time.Duration

	CORSOrigins []string // empty: echo any Origin
}

// Load reads .env (if present) and the environment, exiting on bad config.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppPort:       envOr("APP_PORT", "8080"),
		AppVersion:    envOr("APP_VERSION", "dev"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Store:         strings.ToLower(envOr("STORE", StorePostgres)),
		LogLevel:      strings.ToLower(envOr("LOG_LEVEL", "info")),
		LogJSON:       os.Getenv("LOG_JSON") == "true",
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		APIRateLimit:  120,
		APIRateWindow: time.Minute,
	}

	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is not set")
		}
	case StoreMemory:
	default:
		return nil, errors.New("STORE must be postgres or memory")
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RedisDB = n
		}
	}
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.APIRateLimit = n
		}
	}
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.APIRateWindow = time.Duration(n) * time.Second
		}
	}

	// comma separated, like ADMIN_TELEGRAM_IDS used to be
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
