package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Ledger   LedgerConfig
	Auth     AuthConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LedgerConfig holds ledger-specific defaults applied to new records and
// the schedule for the earnings maturation job.
type LedgerConfig struct {
	DefaultCurrency        string
	DefaultPayoutThreshold float64
	MaturationSchedule     string
}

// AuthConfig holds credentials for the internal (machine-to-machine)
// endpoints: earnings ingestion and payout processing callbacks.
type AuthConfig struct {
	APIKey    string
	FernetKey string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	threshold, err := strconv.ParseFloat(getEnv("PAYOUT_THRESHOLD", "50"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PAYOUT_THRESHOLD: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/royalty_ledger.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: strings.Split(
				getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost"),
				",",
			),
		},
		Ledger: LedgerConfig{
			DefaultCurrency:        getEnv("DEFAULT_CURRENCY", "USD"),
			DefaultPayoutThreshold: threshold,
			// First day of the month at 02:00; pending platform earnings for
			// matured records become available.
			MaturationSchedule: getEnv("MATURATION_SCHEDULE", "0 2 1 * *"),
		},
		Auth: AuthConfig{
			APIKey:    getEnv("INTERNAL_API_KEY", ""),
			FernetKey: getEnv("FERNET_KEY", ""),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
