package postgres

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockMigrator(t *testing.T) (*Migrator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m, err := NewMigrator(sqlx.NewDb(db, "postgres"))
	require.NoError(t, err)
	return m, mock
}

func TestEmbeddedMigrationsLoaded(t *testing.T) {
	m, _ := newMockMigrator(t)

	require.Len(t, m.migrations, 2)
	assert.Equal(t, "create orders", m.migrations[1].Name)
	assert.Equal(t, "create operators", m.migrations[2].Name)
	assert.Contains(t, m.migrations[1].SQL, "UNIQUE (tx_signature)")
	assert.Len(t, m.migrations[1].Checksum, 64)
}

func TestMigrateAppliesOnlyPending(t *testing.T) {
	m, mock := newMockMigrator(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS migrations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT id, name, applied_at, checksum FROM migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "applied_at", "checksum"}).
			AddRow(1, "create orders", time.Now(), m.migrations[1].Checksum))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS operators`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO migrations`).
		WithArgs(2, "create operators", "Администраторы бота", m.migrations[2].Checksum).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, m.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateRejectsChangedMigration(t *testing.T) {
	m, mock := newMockMigrator(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS migrations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT id, name, applied_at, checksum FROM migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "applied_at", "checksum"}).
			AddRow(1, "create orders", time.Now(), "stale"))

	err := m.Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestMigrateRollsBackFailedMigration(t *testing.T) {
	m, mock := newMockMigrator(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS migrations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT id, name, applied_at, checksum FROM migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "applied_at", "checksum"}))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS orders`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := m.Migrate(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadMigrationsValidatesNames(t *testing.T) {
	m := &Migrator{migrations: make(map[int]*Migration)}
	err := m.LoadMigrations(fstest.MapFS{"sql/create.sql": {Data: []byte("SELECT 1")}}, "sql")
	assert.Error(t, err)

	m = &Migrator{migrations: make(map[int]*Migration)}
	err = m.LoadMigrations(fstest.MapFS{
		"sql/001_a.sql": {Data: []byte("SELECT 1")},
		"sql/01_b.sql":  {Data: []byte("SELECT 2")},
	}, "sql")
	assert.Error(t, err, "повторяющийся номер")
}
