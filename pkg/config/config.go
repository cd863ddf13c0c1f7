package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Imports  ImportsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ImportsConfig carries statement-import defaults applied when a caller
// doesn't specify them explicitly.
type ImportsConfig struct {
	DefaultCurrency  string
	DayFirstLocale   bool // true when the account locale reads 02/03 as March 2nd
	DuplicateWindow  int  // days either side of a transaction to search
	DetectDuplicates bool
}

// Load reads configuration from the environment, with a .env file as a
// fallback source when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "splitledger-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Imports: ImportsConfig{
			DefaultCurrency:  getEnv("IMPORT_DEFAULT_CURRENCY", "EUR"),
			DayFirstLocale:   getEnvAsBool("IMPORT_DAY_FIRST_LOCALE", true),
			DuplicateWindow:  getEnvAsInt("IMPORT_DUPLICATE_WINDOW_DAYS", 3),
			DetectDuplicates: getEnvAsBool("IMPORT_DETECT_DUPLICATES", true),
		},
	}

	if cfg.Imports.DuplicateWindow < 0 {
		return nil, fmt.Errorf("IMPORT_DUPLICATE_WINDOW_DAYS must be >= 0, got %d", cfg.Imports.DuplicateWindow)
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
