package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"prodhub/internal/core"
)

type Config struct {
	// Storage
	DataBackend   string
	SQLiteDBPath  string
	DataDirectory string

	// Tracker
	MonthlyBudget string
	Timezone      string
	ExportDir     string

	// Logging
	LogLevel string

	// AMQP change notifications (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export mirror (optional)
	GoogleSpreadsheetID      string
	GoogleTasksSheetName     string
	GoogleExpensesSheetName  string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Worker
	ExportInterval time.Duration

	// Local HTTP API
	HTTPAddr           string
	RateLimitPerMinute int
}

func Load() *Config {
	return &Config{
		DataBackend:   getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/prodhub.db"),
		DataDirectory: getEnv("DATA_DIRECTORY", "data"),

		MonthlyBudget: getEnv("MONTHLY_BUDGET", "2000"),
		Timezone:      getEnv("TIMEZONE", "Local"),
		ExportDir:     getEnv("EXPORT_DIR", "."),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "prodhub"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_changes"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleTasksSheetName:     getEnv("GOOGLE_TASKS_SHEET_NAME", "Tasks"),
		GoogleExpensesSheetName:  getEnv("GOOGLE_EXPENSES_SHEET_NAME", "Expenses"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),

		ExportInterval: getEnvDuration("EXPORT_INTERVAL", 5*time.Minute),

		HTTPAddr:           getEnv("HTTP_ADDR", "127.0.0.1:8080"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{"sqlite", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}

	if _, err := c.Budget(); err != nil {
		errors = append(errors, err.Error())
	}

	if _, err := c.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if c.ExportDir != "" {
		if info, err := os.Stat(c.ExportDir); err == nil && !info.IsDir() {
			errors = append(errors, fmt.Sprintf("export directory '%s' is not a directory", c.ExportDir))
		}
	}

	if _, err := c.SlogLevel(); err != nil {
		errors = append(errors, err.Error())
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" {
		if c.GoogleTasksSheetName == "" || c.GoogleExpensesSheetName == "" {
			errors = append(errors, "Google sheet names cannot be empty when a spreadsheet ID is provided")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for the sheets export")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.ExportInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid export interval %v: must be at least 1 second", c.ExportInterval))
	} else if c.ExportInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid export interval %v: must be at most 24 hours", c.ExportInterval))
	}

	if _, port, err := net.SplitHostPort(c.HTTPAddr); err != nil {
		errors = append(errors, fmt.Sprintf("invalid HTTP address '%s': %v", c.HTTPAddr, err))
	} else if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		errors = append(errors, fmt.Sprintf("invalid HTTP port '%s': must be between 0 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Budget parses MonthlyBudget as a positive amount.
func (c *Config) Budget() (core.Money, error) {
	m, err := core.ParseAmount(c.MonthlyBudget)
	if err != nil {
		return core.Money{}, fmt.Errorf("invalid monthly budget '%s': must be a positive amount", c.MonthlyBudget)
	}
	return m, nil
}

// Location resolves Timezone; "Local" and blank map to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	raw := strings.TrimSpace(c.LogLevel)
	if raw == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel)
	}
	return level, nil
}

// SheetsEnabled reports whether the spreadsheet export mirror is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// EnsureDataDir creates the parent directory of the SQLite database.
func (c *Config) EnsureDataDir() error {
	if c.DataBackend != "sqlite" {
		return nil
	}
	dir := filepath.Dir(c.SQLiteDBPath)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create SQLite database directory '%s': %w", dir, err)
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
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
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
