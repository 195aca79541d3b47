package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSection(t *testing.T) {
	content := `
-- +migrate Up
CREATE TABLE crop_reviews (id int);
CREATE INDEX idx_crop_reviews_crop ON crop_reviews (crop_id);

-- +migrate Down
DROP TABLE crop_reviews;
`
	t.Run("Up", func(t *testing.T) {
		up := section(content, "Up")
		assert.Contains(t, up, "CREATE TABLE crop_reviews")
		assert.Contains(t, up, "CREATE INDEX")
		assert.NotContains(t, up, "DROP TABLE")
		assert.NotContains(t, up, "-- +migrate")
	})

	t.Run("Down", func(t *testing.T) {
		down := section(content, "Down")
		assert.Contains(t, down, "DROP TABLE crop_reviews")
		assert.NotContains(t, down, "CREATE TABLE")
	})

	t.Run("Missing section", func(t *testing.T) {
		assert.Empty(t, section("-- +migrate Up\nSELECT 1;", "Down"))
	})
}

func writeMigration(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMigrateUp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	first := writeMigration(t, dir, "0001_users.sql", "-- +migrate Up\nCREATE TABLE users (id int);\n-- +migrate Down\nDROP TABLE users;")
	second := writeMigration(t, dir, "0002_posts.sql", "-- +migrate Up\nCREATE TABLE crop_posts (id int);")

	mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
		WithArgs("0001_users.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
		WithArgs("0002_posts.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE crop_posts").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs("0002_posts.sql").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, migrateUp(context.Background(), db, []string{first, second}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_RollsBackFailedFile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	file := writeMigration(t, t.TempDir(), "0001_bad.sql", "-- +migrate Up\nCREATE TABLE broken (;")

	mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE broken").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = migrateUp(context.Background(), db, []string{file})
	assert.ErrorContains(t, err, "0001_bad.sql")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateDown(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	first := writeMigration(t, dir, "0001_users.sql", "-- +migrate Up\nCREATE TABLE users (id int);\n-- +migrate Down\nDROP TABLE users;")
	second := writeMigration(t, dir, "0002_posts.sql", "-- +migrate Up\nCREATE TABLE crop_posts (id int);\n-- +migrate Down\nDROP TABLE crop_posts;")

	mock.ExpectQuery("SELECT version FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0002_posts.sql"))
	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE crop_posts").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM schema_migrations").
		WithArgs("0002_posts.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, migrateDown(context.Background(), db, []string{first, second}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateDown_NothingApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT version FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version"}))

	require.NoError(t, migrateDown(context.Background(), db, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_UnknownMode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = run(context.Background(), db, "sideways", t.TempDir())
	assert.ErrorContains(t, err, "unknown mode")
}

func TestRun_ShippedMigrations(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "migrations", "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		content, err := os.ReadFile(f)
		require.NoError(t, err)
		assert.NotEmpty(t, section(string(content), "Up"), f)
		assert.NotEmpty(t, section(string(content), "Down"), f)
	}
}
