package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Record source
	DataSource string
	DataFile   string
	DataSheet  string

	// Database
	SQLiteDBPath  string
	PostgresDSN   string
	PostgresTable string

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Aggregation
	PercentageBasis string
	MinSelected     int
	TopCourses      int
	TopUniversities int

	// View cache
	ViewCacheSize int
	ViewCacheTTL  time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

var (
	validSources    = []string{"file", "sqlite", "postgres", "sheets", "memory"}
	validBases      = []string{"table", "filtered"}
	validLogFormats = []string{"text", "json"}
)

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataSource: getEnv("DATA_SOURCE", "file"),
		DataFile:   getEnv("DATA_FILE", "alumni_records_csv.csv"),
		DataSheet:  getEnv("DATA_SHEET", ""),

		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/alumni.db"),
		PostgresDSN:   getEnv("POSTGRES_DSN", ""),
		PostgresTable: getEnv("POSTGRES_TABLE", "alumni_records"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Alumni"),

		PercentageBasis: getEnv("PERCENTAGE_BASIS", "table"),
		MinSelected:     getEnvInt("MIN_SELECTED", 3),
		TopCourses:      getEnvInt("TOP_COURSES", 5),
		TopUniversities: getEnvInt("TOP_UNIVERSITIES", 3),

		ViewCacheSize: getEnvInt("VIEW_CACHE_SIZE", 128),
		ViewCacheTTL:  getEnvDuration("VIEW_CACHE_TTL", 10*time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !oneOf(c.DataSource, validSources) {
		errors = append(errors, fmt.Sprintf("invalid data source '%s': must be one of %v", c.DataSource, validSources))
	}

	switch c.DataSource {
	case "file":
		if c.DataFile == "" {
			errors = append(errors, "data file path cannot be empty when using file source")
		} else {
			ext := strings.ToLower(filepath.Ext(c.DataFile))
			if ext != ".csv" && ext != ".xlsx" && ext != ".xlsm" {
				errors = append(errors, fmt.Sprintf("unsupported data file extension '%s': must be .csv or .xlsx", ext))
			}
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite source")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			errors = append(errors, "POSTGRES_DSN is required when using postgres source")
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets source")
		}
	}

	if !oneOf(c.PercentageBasis, validBases) {
		errors = append(errors, fmt.Sprintf("invalid percentage basis '%s': must be one of %v", c.PercentageBasis, validBases))
	}
	if c.MinSelected < 0 {
		errors = append(errors, fmt.Sprintf("invalid min selected %d: must not be negative", c.MinSelected))
	}
	if c.TopCourses < 1 || c.TopUniversities < 1 {
		errors = append(errors, fmt.Sprintf("invalid top sizes (%d, %d): must be at least 1", c.TopCourses, c.TopUniversities))
	}

	if c.ViewCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid view cache size %d: must be at least 1", c.ViewCacheSize))
	} else if c.ViewCacheSize > 100000 {
		errors = append(errors, fmt.Sprintf("invalid view cache size %d: must be at most 100000", c.ViewCacheSize))
	}
	if c.ViewCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid view cache TTL %v: must be at least 1 second", c.ViewCacheTTL))
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}
	if !oneOf(c.LogFormat, validLogFormats) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validLogFormats))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ParseLevel maps a LOG_LEVEL value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be one of [debug info warn error]", s)
	}
	return level, nil
}

func oneOf(v string, valid []string) bool {
	for _, s := range valid {
		if v == s {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
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
