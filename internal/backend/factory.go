package backend

import (
	"context"
	"fmt"

	"alumni/internal/log"
	"alumni/internal/sources"
	"alumni/internal/sources/file"
	gsheet "alumni/internal/sources/google"
	"alumni/internal/sources/memory"
	"alumni/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new source factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// Open implements Factory.Open
func (f *DefaultFactory) Open(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		reader  sources.RecordReader
		cleanup CleanupFunc
	)

	switch config.Type {
	case FileSource:
		reader = file.New(config.DataFile, config.DataSheet, f.logger)

	case SQLiteSource:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		reader, cleanup = repo, repo.Close

	case PostgresSource:
		repo, err := storage.NewPostgresRepository(ctx, config.PostgresDSN, config.PostgresTable, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		reader, cleanup = repo, repo.Close

	case SheetsSource:
		cli, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID: config.GoogleSpreadsheetID,
			SheetName:     config.GoogleSheetName,
			Logger:        f.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		reader = cli

	case MemorySource:
		reader = memory.Demo()

	default:
		return nil, fmt.Errorf("unsupported data source: %s", config.Type)
	}

	origin := sources.Describe(reader)
	f.logger.InfoContext(ctx, "Initialized record source", "type", config.Type, log.FieldSource, origin)

	return &Result{Reader: reader, Origin: origin, Cleanup: cleanup}, nil
}
