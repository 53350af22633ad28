package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the simulator.
type Config struct {
	Port string

	// Quotes
	UseMockQuotes bool
	QuoteTimeout  time.Duration

	// Engine
	TickInterval   time.Duration
	InitialBalance float64
	AssetsFile     string

	// Database
	DBPath string

	// Auth
	JWTSecret string

	// Localization
	Language string // "en" or "zh"
}

// Load reads environment variables (optionally via .env) into Config.
func Load() (*Config, error) {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		UseMockQuotes:  getEnv("USE_MOCK_QUOTES", "true") == "true",
		QuoteTimeout:   time.Duration(getEnvInt("QUOTE_TIMEOUT_SEC", 30)) * time.Second,
		TickInterval:   time.Duration(getEnvInt("TICK_INTERVAL_SEC", 60)) * time.Second,
		InitialBalance: getEnvFloat("INITIAL_BALANCE", 10000.0),
		AssetsFile:     getEnv("ASSETS_FILE", "./assets.yaml"),
		DBPath:         getEnv("DB_PATH", "./data/papertrade.db"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret"),
		Language:       getEnv("LANGUAGE", "en"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
