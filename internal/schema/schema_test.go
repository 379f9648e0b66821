package schema

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/lmkadmin/internal/mockstorage"
	"github.com/patric-chuzhbe/lmkadmin/internal/models"
)

func TestRunCountsOutcomes(t *testing.T) {
	db := &mockstorage.StorageMock{}
	db.On("ExecInTransaction", mock.Anything, "CREATE TABLE a (id int)").Return(nil).Once()
	db.On("ExecInTransaction", mock.Anything, "CREATE TABLE b (id int)").
		Return(&pgconn.PgError{Code: "42P07", Message: `relation "b" already exists`}).Once()
	db.On("ExecInTransaction", mock.Anything, "CREAT TABLE c").
		Return(&pgconn.PgError{Code: "42601", Message: `syntax error at or near "CREAT"`}).Once()
	db.On("ExecInTransaction", mock.Anything, "CREATE INDEX d ON a (id)").Return(nil).Once()

	summary, err := NewInitializer(db).Run(context.Background(), []string{
		"CREATE TABLE a (id int)",
		"CREATE TABLE b (id int)",
		"CREAT TABLE c",
		"CREATE INDEX d ON a (id)",
	})
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 3, summary.Executed)
	assert.Equal(t, 1, summary.Tolerated)
	assert.Equal(t, 1, summary.Failed)
	assert.False(t, summary.Succeeded())

	require.Len(t, summary.Results, 4)
	assert.Equal(t, models.StatementExecuted, summary.Results[0].Outcome)
	assert.Equal(t, models.StatementTolerated, summary.Results[1].Outcome)
	assert.Equal(t, models.StatementFailed, summary.Results[2].Outcome)
	assert.Error(t, summary.Results[2].Err)
	assert.Equal(t, 3, summary.Results[2].Index)
	assert.Equal(t, models.StatementExecuted, summary.Results[3].Outcome)

	db.AssertExpectations(t)
}

func TestRunTwiceReportsOnlyToleratedFailures(t *testing.T) {
	script, err := Load("")
	require.NoError(t, err)
	statements := Split(script)

	applied := map[string]bool{}
	db := &mockstorage.StorageMock{
		OnExecInTransaction: func(_ context.Context, statement string) error {
			if applied[statement] {
				return &pgconn.PgError{Code: "42710", Message: "already exists"}
			}
			applied[statement] = true
			return nil
		},
	}
	initializer := NewInitializer(db)

	first, err := initializer.Run(context.Background(), statements)
	require.NoError(t, err)
	assert.Equal(t, len(statements), first.Executed)
	assert.Zero(t, first.Tolerated)
	assert.True(t, first.Succeeded())

	second, err := initializer.Run(context.Background(), statements)
	require.NoError(t, err)
	assert.Equal(t, len(statements), second.Executed)
	assert.Equal(t, len(statements), second.Tolerated)
	assert.True(t, second.Succeeded())
}

func TestRunStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	db := &mockstorage.StorageMock{
		OnExecInTransaction: func(context.Context, string) error {
			calls++
			cancel()
			return nil
		},
	}

	summary, err := NewInitializer(db).Run(ctx, []string{"SELECT 1", "SELECT 2", "SELECT 3"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, summary.Executed)
	assert.Equal(t, 3, summary.Total)
}

func TestRunWithoutStatements(t *testing.T) {
	db := &mockstorage.StorageMock{}

	summary, err := NewInitializer(db).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, summary.Succeeded())
	assert.Zero(t, summary.Total)
	db.AssertNotCalled(t, "ExecInTransaction", mock.Anything, mock.Anything)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT 1;"), 0o644))

	script, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;", script)

	_, err = Load(filepath.Join(dir, "missing.sql"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "SELECT 1", preview("SELECT 1"))

	long := "CREATE TABLE public.profiles (id UUID PRIMARY KEY, full_name TEXT, location JSONB)"
	assert.Equal(t, long[:60]+"...", preview(long))
}
