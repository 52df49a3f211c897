package storage

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumni/internal/core"
	"alumni/internal/log"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "alumni.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepositoryReadRecords(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rows := []struct {
		batch      any
		course     any
		university any
	}{
		{2020, "BSIT", "UST"},
		{"2021", " BSN ", "UP"},
		{"2019.0", "BSA", nil},
		{nil, "BSCS", "DLSU"},
	}
	for _, r := range rows {
		_, err := repo.db.ExecContext(ctx,
			"INSERT INTO alumni_records (batch, course, university) VALUES (?, ?, ?)",
			r.batch, r.course, r.university)
		require.NoError(t, err)
	}

	records, err := repo.ReadRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.AlumniRecord{
		{Batch: "2020", Course: "BSIT", University: "UST"},
		{Batch: "2021", Course: "BSN", University: "UP"},
		{Batch: "2019", Course: "BSA", University: ""},
		{Batch: "", Course: "BSCS", University: "DLSU"},
	}, records)

	require.NoError(t, repo.Ping(ctx))
	assert.Contains(t, repo.Describe(), "sqlite:")
}

func TestSQLiteRepositoryLogsAsStorage(t *testing.T) {
	var buf bytes.Buffer
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "alumni.db"), log.New(log.Config{Output: &buf}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	_, err = repo.ReadRecords(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "component=storage")
	assert.Contains(t, buf.String(), "records=0")
}

func TestSQLiteRepositoryEmptyTable(t *testing.T) {
	repo := newTestRepo(t)

	records, err := repo.ReadRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alumni.db")
	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path))
}

func TestNewPostgresRepositoryRejectsBadTableName(t *testing.T) {
	_, err := NewPostgresRepository(context.Background(), "postgres://localhost/none", "alumni; DROP TABLE x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")
}

func TestSelectQuery(t *testing.T) {
	r := &Repository{table: "public.alumni"}
	assert.NotContains(t, r.selectQuery(), "ORDER BY")

	r.orderBy = "id"
	assert.Contains(t, r.selectQuery(), "FROM public.alumni ORDER BY id")
}
