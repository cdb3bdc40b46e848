package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Storage
	DataBackend   string
	SQLiteDBPath  string
	DataDirectory string

	// Dues
	DefaultCategory string

	// Credentials
	AdminUsername     string
	AdminPassword     string
	TreasurerUsername string
	TreasurerPassword string

	// Reports
	RecapCacheTTL time.Duration

	// Google Sheets publishing (optional)
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Logging
	LogLevel  string
	LogFormat string
}

// Backends lists the accepted DATA_BACKEND values.
var Backends = []string{"sqlite", "file", "memory"}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:   getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/warga.db"),
		DataDirectory: getEnv("DATA_DIRECTORY", "./data"),

		DefaultCategory: strings.ToUpper(getEnv("DEFAULT_CATEGORY", "C")),

		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", "password"),
		TreasurerUsername: getEnv("TREASURER_USERNAME", "bendahara"),
		TreasurerPassword: getEnv("TREASURER_PASSWORD", "password"),

		RecapCacheTTL: getEnvDuration("RECAP_CACHE_TTL", 5*time.Minute),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns all problems at once
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(Backends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	case "file":
		if c.DataDirectory == "" {
			errors = append(errors, "data directory cannot be empty when using file backend")
		}
	}

	switch c.DefaultCategory {
	case "A", "B", "C", "D":
	default:
		errors = append(errors, fmt.Sprintf("invalid default category '%s': must be one of A, B, C, D", c.DefaultCategory))
	}

	if c.AdminUsername == "" || c.AdminPassword == "" {
		errors = append(errors, "admin username and password cannot be empty")
	}
	if c.TreasurerUsername == "" || c.TreasurerPassword == "" {
		errors = append(errors, "treasurer username and password cannot be empty")
	}
	if c.AdminUsername != "" && strings.EqualFold(c.AdminUsername, c.TreasurerUsername) {
		errors = append(errors, "admin and treasurer usernames must differ")
	}

	if c.RecapCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid recap cache TTL %v: must not be negative", c.RecapCacheTTL))
	} else if c.RecapCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid recap cache TTL %v: must be at most 24 hours", c.RecapCacheTTL))
	}

	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// SheetsEnabled reports whether report publishing to Google Sheets is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != "" && (c.GoogleServiceAccountJSON != "" || c.GoogleServiceAccountFile != "")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
