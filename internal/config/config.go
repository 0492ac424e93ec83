package config

import (
	"os"
	"strconv"
	"time"

	"chdash/internal/errors"
)

// DefaultSourceURL is the cleaned Framingham dataset the dashboard reads when
// DATA_SOURCE_URL is not set.
const DefaultSourceURL = "https://raw.githubusercontent.com/ChristelleKh/MSBA382-IndividualProject/main/framingham_cleaned.csv"

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Auth     AuthConfig
	Server   ServerConfig
	Admin    AdminConfig
	Database DatabaseConfig
	LogLevel string
}

// DataConfig holds dataset loading settings
type DataConfig struct {
	SourceURL    string
	CacheTTL     time.Duration // 0 keeps entries for the process lifetime
	FetchTimeout time.Duration
}

// AuthConfig holds access gate settings
type AuthConfig struct {
	Passphrase string
	SessionTTL time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// AdminConfig holds the ops router settings
type AdminConfig struct {
	Port    string
	Enabled bool
}

// DatabaseConfig holds the optional Postgres connection
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a database was configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data: DataConfig{
			SourceURL:    getEnvOrDefault("DATA_SOURCE_URL", DefaultSourceURL),
			CacheTTL:     getEnvDurationOrDefault("DATA_CACHE_TTL", 0),
			FetchTimeout: getEnvDurationOrDefault("DATA_FETCH_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			Passphrase: os.Getenv("DASHBOARD_PASSPHRASE"),
			SessionTTL: getEnvDurationOrDefault("SESSION_TTL", 12*time.Hour),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Admin: AdminConfig{
			Port:    getEnvOrDefault("ADMIN_PORT", "8081"),
			Enabled: getEnvBoolOrDefault("ADMIN_ENABLED", false),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Data.SourceURL == "" {
		return errors.ConfigInvalid("DATA_SOURCE_URL must not be empty")
	}
	if config.Data.CacheTTL < 0 {
		return errors.ConfigInvalid("DATA_CACHE_TTL cannot be negative")
	}
	if config.Data.FetchTimeout <= 0 {
		return errors.ConfigInvalid("DATA_FETCH_TIMEOUT must be positive")
	}
	if config.Auth.Passphrase == "" {
		return errors.ConfigInvalid("DASHBOARD_PASSPHRASE is required")
	}
	if config.Auth.SessionTTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be positive")
	}
	if config.Admin.Enabled && config.Admin.Port == config.Server.Port {
		return errors.ConfigInvalid("ADMIN_PORT must differ from PORT")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
