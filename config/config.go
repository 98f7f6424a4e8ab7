package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"tradingjournal/internal/adapters/logger"
)

// Config holds all application configuration.
type Config struct {
	// HTTP server
	ListenAddr  string
	CORSOrigins []string

	// Auth
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	cfg.ListenAddr = getEnv("LISTEN_ADDR", ":8000")

	originsStr := getEnv("CORS_ORIGINS", "*")
	for _, o := range strings.Split(originsStr, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	if len(cfg.CORSOrigins) == 0 {
		errs = append(errs, "CORS_ORIGINS must not be empty")
	}

	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	if cfg.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET must be set")
	}

	ttlMinutes, err := getEnvAsIntRequired("TOKEN_TTL_MINUTES", 60*24)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TOKEN_TTL_MINUTES: %v", err))
	} else if ttlMinutes <= 0 {
		errs = append(errs, "TOKEN_TTL_MINUTES must be positive")
	}
	cfg.TokenTTL = time.Duration(ttlMinutes) * time.Minute

	cfg.BcryptCost, err = getEnvAsIntRequired("BCRYPT_COST", bcrypt.DefaultCost)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid BCRYPT_COST: %v", err))
	} else if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Sprintf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}

	cfg.DBPath = getEnv("DB_PATH", "./data/trading_journal.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
