// internal/infrastructure/persistence/postgres/migrator.go
package postgres

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"solboost-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrator применяет SQL-миграции по порядку номеров
type Migrator struct {
	db         *sqlx.DB
	migrations map[int]*Migration
}

// Migration одна миграция
type Migration struct {
	ID          int
	Name        string
	Description string
	SQL         string
	Checksum    string
}

// MigrationRecord запись о примененной миграции
type MigrationRecord struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	AppliedAt time.Time `db:"applied_at"`
	Checksum  string    `db:"checksum"`
}

// MigrationStatus статус миграции для логов
type MigrationStatus struct {
	ID        int
	Name      string
	Applied   bool
	AppliedAt time.Time
}

// NewMigrator создает мигратор со встроенными миграциями
func NewMigrator(db *sqlx.DB) (*Migrator, error) {
	m := &Migrator{db: db, migrations: make(map[int]*Migration)}
	if err := m.LoadMigrations(embeddedMigrations, "migrations"); err != nil {
		return nil, err
	}
	return m, nil
}

// Init создает таблицу миграций
func (m *Migrator) Init(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		checksum VARCHAR(64) NOT NULL,
		applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`

	if _, err := m.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// LoadMigrations читает файлы вида 001_name.sql из каталога dir
func (m *Migrator) LoadMigrations(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		id, name, err := parseMigrationFilename(entry.Name())
		if err != nil {
			return err
		}
		if _, dup := m.migrations[id]; dup {
			return fmt.Errorf("duplicate migration id %d", id)
		}

		content, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		m.migrations[id] = &Migration{
			ID:          id,
			Name:        name,
			Description: extractDescription(string(content)),
			SQL:         string(content),
			Checksum:    calculateChecksum(string(content)),
		}
	}

	logger.Debug("📂 Загружено миграций: %d", len(m.migrations))
	return nil
}

// Migrate применяет все непройденные миграции
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.Init(ctx); err != nil {
		return err
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	appliedCount := 0
	for _, id := range m.sortedIDs() {
		migration := m.migrations[id]

		if record, ok := applied[id]; ok {
			if record.Checksum != migration.Checksum {
				return fmt.Errorf("checksum mismatch for migration %d: %s", id, migration.Name)
			}
			continue
		}

		if err := m.applyMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %s: %w", id, migration.Name, err)
		}
		appliedCount++
	}

	if appliedCount > 0 {
		logger.Info("✅ Применено новых миграций: %d", appliedCount)
	} else {
		logger.Info("✅ Схема базы данных актуальна")
	}
	return nil
}

// Status показывает, какие миграции применены
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, id := range m.sortedIDs() {
		status := MigrationStatus{ID: id, Name: m.migrations[id].Name}
		if record, ok := applied[id]; ok {
			status.Applied = true
			status.AppliedAt = record.AppliedAt
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (m *Migrator) sortedIDs() []int {
	ids := make([]int, 0, len(m.migrations))
	for id := range m.migrations {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (m *Migrator) getAppliedMigrations(ctx context.Context) (map[int]*MigrationRecord, error) {
	query := `SELECT id, name, applied_at, checksum FROM migrations ORDER BY id`

	rows, err := m.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]*MigrationRecord)
	for rows.Next() {
		var (
			record    MigrationRecord
			appliedAt sql.NullTime
		)
		if err := rows.Scan(&record.ID, &record.Name, &appliedAt, &record.Checksum); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		if appliedAt.Valid {
			record.AppliedAt = appliedAt.Time
		}
		applied[record.ID] = &record
	}
	return applied, rows.Err()
}

func (m *Migrator) applyMigration(ctx context.Context, migration *Migration) error {
	logger.Info("📤 Применяем миграцию %03d: %s", migration.ID, migration.Name)

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	query := `INSERT INTO migrations (id, name, description, checksum) VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, query, migration.ID, migration.Name, migration.Description, migration.Checksum); err != nil {
		return fmt.Errorf("failed to save migration record: %w", err)
	}

	return tx.Commit()
}

func parseMigrationFilename(filename string) (int, string, error) {
	base := strings.TrimSuffix(filename, ".sql")

	parts := strings.SplitN(base, "_", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("invalid migration filename format: %s (expected: 001_name.sql)", filename)
	}

	var id int
	if _, err := fmt.Sscanf(parts[0], "%d", &id); err != nil || id <= 0 {
		return 0, "", fmt.Errorf("invalid migration ID in filename: %s", filename)
	}

	return id, strings.ReplaceAll(parts[1], "_", " "), nil
}

func extractDescription(sql string) string {
	for _, line := range strings.Split(sql, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-- Description:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "-- Description:"))
		}
	}
	return ""
}

func calculateChecksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
