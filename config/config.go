package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP server configuration
	Port string

	// Default annual interest rate for newly provisioned accounts,
	// e.g. "0.02" for 2%. Existing accounts keep their own rate.
	DefaultAnnualRate decimal.Decimal

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// Local development convenience; missing .env is not an error
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Port:              os.Getenv("SERVER_PORT"),
		DefaultAnnualRate: decimal.NewFromFloat(0.02),
		Environment:       os.Getenv("ENVIRONMENT"),
	}

	if config.Port == "" {
		config.Port = "8080"
	}

	if rate := os.Getenv("DEFAULT_ANNUAL_RATE"); rate != "" {
		parsed, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("invalid DEFAULT_ANNUAL_RATE %q: %w", rate, err)
		}
		config.DefaultAnnualRate = parsed
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
