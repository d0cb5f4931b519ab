package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestActivityMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_activity_entries.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no activity migration file found")

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS activity_entries",
		"CHECK (outcome IN ('success', 'failure'))",
		"idx_activity_entries_created_at",
		"DROP TABLE IF EXISTS activity_entries",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	versions, err := ValidateDir("migrations")
	require.NoError(t, err)
	assert.Contains(t, versions, "20260301120000")
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "create-things.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	_, err := ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid migration filename")
}

func TestCreateSQLMigrationThenValidate(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	path, err := CreateSQLMigration(dir, "Add Activity Index!", now)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "20260302100000_add_activity_index.sql"), path)

	_, err = CreateSQLMigration(dir, "Add Activity Index!", now)
	require.Error(t, err, "second create with same timestamp should fail")

	versions, err := ValidateDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"20260302100000"}, versions)
}

func TestRunAppliesMigrationsOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	ctx := context.Background()
	require.NoError(t, Run(ctx, sqlDB, "sqlite", "migrations", "up"))
	assert.True(t, conn.Migrator().HasTable("activity_entries"))

	require.NoError(t, Run(ctx, sqlDB, "sqlite", "migrations", "down"))
	assert.False(t, conn.Migrator().HasTable("activity_entries"))
}

func TestGooseDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", GooseDialect("sqlite"))
	assert.Equal(t, "postgres", GooseDialect("postgres"))
	assert.Equal(t, "postgres", GooseDialect(""))
}
