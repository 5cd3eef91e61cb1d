// internal/infrastructure/persistence/in_memory_storage/factory/factory.go
package storage_factory

import (
	"fmt"
	"sync"
	"time"

	storage "solboost-bot/internal/infrastructure/persistence/in_memory_storage"
	"solboost-bot/pkg/logger"

	"github.com/go-co-op/gocron"
)

// StorageFactory создает in-memory хранилища и управляет их фоновой очисткой
type StorageFactory struct {
	sessions  *storage.SessionStore
	orders    *storage.OrderLedger
	config    *StorageFactoryConfig
	scheduler *gocron.Scheduler
	mu        sync.Mutex
	running   bool
}

// StorageFactoryConfig конфигурация фабрики хранилищ
type StorageFactoryConfig struct {
	DefaultStorageConfig *storage.StorageConfig

	EnableCleanupRoutine bool
}

// StorageDependencies зависимости для фабрики хранилищ
type StorageDependencies struct {
	Config *StorageFactoryConfig
}

// NewStorageFactory создает новую фабрику хранилищ
func NewStorageFactory(deps StorageDependencies) (*StorageFactory, error) {
	logger.Info("🏗️  Создание фабрики in-memory хранилищ...")

	config := deps.Config
	if config == nil {
		config = &StorageFactoryConfig{
			DefaultStorageConfig: &storage.StorageConfig{
				SessionTTL:      24 * time.Hour,
				CleanupInterval: 5 * time.Minute,
			},
			EnableCleanupRoutine: true,
		}
	}

	if config.DefaultStorageConfig == nil {
		return nil, fmt.Errorf("конфигурация хранилища по умолчанию не может быть nil")
	}
	if config.EnableCleanupRoutine && config.DefaultStorageConfig.CleanupInterval <= 0 {
		return nil, fmt.Errorf("интервал очистки должен быть положительным")
	}

	factory := &StorageFactory{
		sessions:  storage.NewSessionStore(*config.DefaultStorageConfig),
		orders:    storage.NewOrderLedger(),
		config:    config,
		scheduler: gocron.NewScheduler(time.UTC),
	}

	logger.Info("✅ Фабрика in-memory хранилищ создана (TTL сессий: %v)", config.DefaultStorageConfig.SessionTTL)
	return factory, nil
}

// SessionStore хранилище сессий
func (sf *StorageFactory) SessionStore() *storage.SessionStore {
	return sf.sessions
}

// OrderLedger журнал заказов
func (sf *StorageFactory) OrderLedger() *storage.OrderLedger {
	return sf.orders
}

// Start запускает фоновую очистку истекших сессий
func (sf *StorageFactory) Start() error {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	if sf.running {
		return fmt.Errorf("фабрика хранилищ уже запущена")
	}
	if !sf.config.EnableCleanupRoutine {
		return nil
	}

	interval := sf.config.DefaultStorageConfig.CleanupInterval
	_, err := sf.scheduler.Every(interval).Do(sf.cleanup)
	if err != nil {
		return fmt.Errorf("не удалось запланировать очистку сессий: %w", err)
	}
	sf.scheduler.StartAsync()
	sf.running = true

	logger.Info("🚀 Фоновая очистка сессий запущена (каждые %v)", interval)
	return nil
}

// Stop останавливает фоновые задачи фабрики
func (sf *StorageFactory) Stop() {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	if !sf.running {
		return
	}
	sf.scheduler.Stop()
	sf.scheduler.Clear()
	sf.running = false
	logger.Info("🛑 Фоновая очистка сессий остановлена")
}

// IsRunning запущена ли очистка
func (sf *StorageFactory) IsRunning() bool {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.running
}

func (sf *StorageFactory) cleanup() {
	if removed := sf.sessions.CleanExpired(); removed > 0 {
		logger.Debug("🧹 Удалено истекших сессий: %d", removed)
	}
}
