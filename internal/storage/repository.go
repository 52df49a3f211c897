package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"alumni/internal/core"
	"alumni/internal/log"
	"alumni/internal/sources"
)

// DefaultTable is the table created by the embedded SQLite migrations.
const DefaultTable = "alumni_records"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Repository reads alumni records from a SQL table. It never writes.
type Repository struct {
	db      *sqlx.DB
	driver  string
	table   string
	orderBy string
	origin  string
	logger  *log.Logger
}

var (
	_ sources.RecordReader = (*Repository)(nil)
	_ sources.Describer    = (*Repository)(nil)
)

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies the embedded migrations.
func NewSQLiteRepository(dbPath string, logger *log.Logger) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:      db,
		driver:  "sqlite",
		table:   DefaultTable,
		orderBy: "id",
		origin:  "sqlite:" + dbPath,
		logger:  storageLogger(logger),
	}, nil
}

// NewPostgresRepository connects to an existing table holding batch, course
// and university columns. The schema is owned elsewhere; no migrations run.
func NewPostgresRepository(ctx context.Context, dsn, table string, logger *log.Logger) (*Repository, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &Repository{
		db:     db,
		driver: "postgres",
		table:  table,
		origin: "postgres:" + table,
		logger: storageLogger(logger),
	}, nil
}

func storageLogger(logger *log.Logger) *log.Logger {
	if logger == nil {
		logger = log.Discard()
	}
	return logger.WithComponent(log.ComponentStorage)
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Describe implements sources.Describer
func (r *Repository) Describe() string {
	return r.origin
}

// Ping checks the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ReadRecords implements sources.RecordReader
func (r *Repository) ReadRecords(ctx context.Context) ([]core.AlumniRecord, error) {
	start := time.Now()

	var rows []core.AlumniRecord
	if err := r.db.SelectContext(ctx, &rows, r.selectQuery()); err != nil {
		return nil, fmt.Errorf("select %s: %w", r.table, err)
	}

	records := make([]core.AlumniRecord, len(rows))
	for i, row := range rows {
		records[i] = core.NewRecord(row.Batch, row.Course, row.University)
	}

	r.logger.InfoContext(ctx, "Records loaded from database",
		"driver", r.driver,
		"table", r.table,
		log.FieldRecords, len(records),
		log.FieldDuration, time.Since(start).Milliseconds())
	return records, nil
}

func (r *Repository) selectQuery() string {
	q := "SELECT COALESCE(CAST(batch AS TEXT), '') AS batch, " +
		"COALESCE(course, '') AS course, " +
		"COALESCE(university, '') AS university " +
		"FROM " + r.table
	if r.orderBy != "" {
		q += " ORDER BY " + r.orderBy
	}
	return q
}
