// internal/infrastructure/persistence/in_memory_storage/session_store.go
package storage

import (
	"context"
	"sync"
	"time"

	"solboost-bot/internal/core/domain/session"
	"solboost-bot/pkg/logger"
)

type sessionEntry struct {
	session   *session.Session
	expiresAt time.Time
}

// SessionStore хранит сессии в памяти процесса с истечением по TTL.
// Наружу отдаются только копии.
type SessionStore struct {
	mu      sync.RWMutex
	items   map[int64]sessionEntry
	config  StorageConfig
	evicted int64
	lastRun time.Time
	now     func() time.Time
}

// NewSessionStore создает хранилище сессий
func NewSessionStore(config StorageConfig) *SessionStore {
	return &SessionStore{
		items:  make(map[int64]sessionEntry),
		config: config,
		now:    time.Now,
	}
}

func (s *SessionStore) Get(_ context.Context, chatID int64) (*session.Session, error) {
	s.mu.RLock()
	entry, ok := s.items[chatID]
	s.mu.RUnlock()

	if !ok || s.expired(entry) {
		return nil, nil
	}
	return entry.session.Clone(), nil
}

func (s *SessionStore) Save(_ context.Context, sess *session.Session) error {
	if sess == nil {
		return ErrNilSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[sess.ChatID]; !exists && s.config.MaxSessions > 0 && len(s.items) >= s.config.MaxSessions {
		s.evictOldest()
	}

	now := s.now()
	stored := sess.Clone()
	stored.UpdatedAt = now

	entry := sessionEntry{session: stored}
	if s.config.SessionTTL > 0 {
		entry.expiresAt = now.Add(s.config.SessionTTL)
	}
	s.items[sess.ChatID] = entry
	return nil
}

func (s *SessionStore) Delete(_ context.Context, chatID int64) error {
	s.mu.Lock()
	delete(s.items, chatID)
	s.mu.Unlock()
	return nil
}

// CleanExpired удаляет истекшие сессии, возвращает число удаленных
func (s *SessionStore) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for chatID, entry := range s.items {
		if s.expired(entry) {
			delete(s.items, chatID)
			removed++
		}
	}
	s.evicted += int64(removed)
	s.lastRun = s.now()
	return removed
}

// Len количество хранимых сессий, включая еще не вычищенные истекшие
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// GetStats статистика хранилища
func (s *SessionStore) GetStats() StorageStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StorageStats{
		ActiveSessions: len(s.items),
		Evicted:        s.evicted,
		LastCleanup:    s.lastRun,
		SessionTTL:     s.config.SessionTTL,
		StorageType:    "memory",
	}
}

// evictOldest освобождает место под новую сессию: сначала истекшая,
// иначе дольше всех не обновлявшаяся. Вызывается под s.mu.
func (s *SessionStore) evictOldest() {
	var (
		victim int64
		oldest time.Time
		found  bool
	)
	for chatID, entry := range s.items {
		if s.expired(entry) {
			victim, found = chatID, true
			break
		}
		if !found || entry.session.UpdatedAt.Before(oldest) {
			victim, oldest, found = chatID, entry.session.UpdatedAt, true
		}
	}
	if !found {
		return
	}
	delete(s.items, victim)
	s.evicted++
	logger.Debug("🧹 Хранилище сессий заполнено, вытеснена сессия чата %d", victim)
}

func (s *SessionStore) expired(entry sessionEntry) bool {
	return !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt)
}
