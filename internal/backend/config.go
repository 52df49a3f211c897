package backend

import (
	"fmt"

	"alumni/internal/config"
)

// FromAppConfig converts the application config to source config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	sourceType := SourceType(appConfig.DataSource)
	if !sourceType.IsValid() {
		return Config{}, fmt.Errorf("invalid data source in config: %s", appConfig.DataSource)
	}

	return Config{
		Type: sourceType,

		DataFile:  appConfig.DataFile,
		DataSheet: appConfig.DataSheet,

		SQLiteDBPath:  appConfig.SQLiteDBPath,
		PostgresDSN:   appConfig.PostgresDSN,
		PostgresTable: appConfig.PostgresTable,

		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleSheetName:     appConfig.GoogleSheetName,
	}, nil
}

// Validate validates the source configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid data source: %s", c.Type)
	}

	switch c.Type {
	case FileSource:
		if c.DataFile == "" {
			return fmt.Errorf("data file path is required for file source")
		}
	case SQLiteSource:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite source")
		}
	case PostgresSource:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres DSN is required for postgres source")
		}
	case SheetsSource:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets source")
		}
	case MemorySource:
		// Demo data needs nothing
	}

	return nil
}

// SourceTypes returns all valid source type strings
func SourceTypes() []string {
	types := []SourceType{FileSource, SQLiteSource, PostgresSource, SheetsSource, MemorySource}
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
