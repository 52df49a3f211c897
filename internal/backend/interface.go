package backend

import (
	"context"

	"alumni/internal/sources"
)

// CleanupFunc releases resources held by a source
type CleanupFunc func() error

// Pinger is implemented by sources with a live connection worth probing
type Pinger interface {
	Ping(ctx context.Context) error
}

// Result is an opened record source plus its optional cleanup
type Result struct {
	Reader  sources.RecordReader
	Origin  string
	Cleanup CleanupFunc
}

// Close runs the cleanup function, if any
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Ping probes the source when it supports it
func (r *Result) Ping(ctx context.Context) error {
	if p, ok := r.Reader.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Factory opens record sources based on configuration
type Factory interface {
	Open(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for source creation
type Config struct {
	Type SourceType

	// File specific
	DataFile  string
	DataSheet string

	// SQL specific
	SQLiteDBPath  string
	PostgresDSN   string
	PostgresTable string

	// Google Sheets specific
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

// SourceType names where the alumni table is loaded from
type SourceType string

const (
	FileSource     SourceType = "file"
	SQLiteSource   SourceType = "sqlite"
	PostgresSource SourceType = "postgres"
	SheetsSource   SourceType = "sheets"
	MemorySource   SourceType = "memory"
)

// String implements fmt.Stringer
func (st SourceType) String() string {
	return string(st)
}

// IsValid returns true if the source type is known
func (st SourceType) IsValid() bool {
	switch st {
	case FileSource, SQLiteSource, PostgresSource, SheetsSource, MemorySource:
		return true
	default:
		return false
	}
}
