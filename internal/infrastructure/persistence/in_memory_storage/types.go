// internal/infrastructure/persistence/in_memory_storage/types.go
package storage

import (
	"time"
)

// StorageConfig настройки in-memory хранилищ
type StorageConfig struct {
	SessionTTL      time.Duration // 0 - без истечения
	CleanupInterval time.Duration
	MaxSessions     int // 0 - без ограничения
}

// StorageStats статистика хранилища сессий
type StorageStats struct {
	ActiveSessions int           `json:"active_sessions"`
	Evicted        int64         `json:"evicted"`
	LastCleanup    time.Time     `json:"last_cleanup"`
	SessionTTL     time.Duration `json:"session_ttl"`
	StorageType    string        `json:"storage_type"`
}

// Ошибки хранилища
var (
	ErrNilSession = StorageError{"session is nil"}
)

// StorageError ошибка хранилища
type StorageError struct {
	Message string
}

func (e StorageError) Error() string {
	return e.Message
}
