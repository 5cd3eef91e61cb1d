// internal/infrastructure/persistence/postgres/database/service.go
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"solboost-bot/internal/infrastructure/config"
	"solboost-bot/internal/infrastructure/persistence/postgres"
	"solboost-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DatabaseService сервис подключения к PostgreSQL
type DatabaseService struct {
	config *config.Config
	db     *sqlx.DB
	mu     sync.RWMutex
	state  ServiceState
	open   func(driver, dsn string) (*sqlx.DB, error)
}

// ServiceState состояние сервиса
type ServiceState string

const (
	StateStopped  ServiceState = "stopped"
	StateStarting ServiceState = "starting"
	StateRunning  ServiceState = "running"
	StateStopping ServiceState = "stopping"
	StateError    ServiceState = "error"
)

// NewDatabaseService создает сервис базы данных
func NewDatabaseService(cfg *config.Config) *DatabaseService {
	return &DatabaseService{
		config: cfg,
		state:  StateStopped,
		open:   sqlx.Open,
	}
}

// Start подключается к базе и применяет миграции, если они включены
func (ds *DatabaseService) Start(ctx context.Context) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.state == StateRunning {
		return fmt.Errorf("database service already running")
	}

	logger.Info("🔄 Starting database service...")
	ds.state = StateStarting

	dbConfig := ds.config.Database
	logger.Info("📡 Connecting to PostgreSQL: %s:%d/%s", dbConfig.Host, dbConfig.Port, dbConfig.Name)

	db, err := ds.open("postgres", ds.config.GetPostgresDSN())
	if err != nil {
		ds.state = StateError
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.MaxConnLifetime)
	db.SetConnMaxIdleTime(dbConfig.MaxConnIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		ds.state = StateError
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if dbConfig.EnableAutoMigrate {
		if err := ds.runMigrations(ctx, db); err != nil {
			db.Close()
			ds.state = StateError
			return err
		}
	}

	ds.db = db
	ds.state = StateRunning

	logger.Info("✅ Successfully connected to PostgreSQL")
	logger.Info("   • Pool: %d/%d connections", dbConfig.MaxIdleConns, dbConfig.MaxOpenConns)
	return nil
}

// Stop закрывает пул соединений
func (ds *DatabaseService) Stop() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.state != StateRunning {
		return fmt.Errorf("database service is not running")
	}

	logger.Info("🛑 Stopping database service...")
	ds.state = StateStopping

	if err := ds.db.Close(); err != nil {
		ds.state = StateError
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	ds.db = nil
	ds.state = StateStopped
	logger.Info("✅ Database service stopped")
	return nil
}

func (ds *DatabaseService) runMigrations(ctx context.Context, db *sqlx.DB) error {
	logger.Info("🔄 Running database migrations...")

	migrator, err := postgres.NewMigrator(db)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	statuses, err := migrator.Status(ctx)
	if err != nil {
		logger.Warn("⚠️ Failed to get migration status: %v", err)
		return nil
	}
	for _, status := range statuses {
		icon := "⏳"
		if status.Applied {
			icon = "✅"
		}
		logger.Info("   %s %03d: %s", icon, status.ID, status.Name)
	}
	return nil
}

// GetDB возвращает пул соединений
func (ds *DatabaseService) GetDB() *sqlx.DB {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.db
}

// State возвращает состояние сервиса
func (ds *DatabaseService) State() ServiceState {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.state
}

// HealthCheck проверяет соединение с базой
func (ds *DatabaseService) HealthCheck(ctx context.Context) error {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if ds.state != StateRunning || ds.db == nil {
		return fmt.Errorf("database service is not running")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := ds.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// GetStats статистика пула соединений
func (ds *DatabaseService) GetStats() map[string]interface{} {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	stats := map[string]interface{}{
		"state":     ds.state,
		"connected": ds.db != nil,
	}

	if ds.db != nil {
		dbStats := ds.db.Stats()
		stats["open_connections"] = dbStats.OpenConnections
		stats["in_use"] = dbStats.InUse
		stats["idle"] = dbStats.Idle
		stats["wait_count"] = dbStats.WaitCount
		stats["wait_duration"] = dbStats.WaitDuration.String()
	}
	return stats
}

// Name имя сервиса
func (ds *DatabaseService) Name() string {
	return "PostgreSQL"
}
