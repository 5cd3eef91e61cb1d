// internal/infrastructure/cache/redis/session_store.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"solboost-bot/internal/core/domain/session"

	"github.com/go-redis/redis/v8"
)

// SessionStore хранит сессии диалога в Redis с TTL.
// Истечение сессии делегировано самому Redis.
type SessionStore struct {
	client     *redis.Client
	prefix     string
	sessionTTL time.Duration
}

// NewSessionStore создает хранилище. Пустой prefix не добавляется к ключам.
func NewSessionStore(client *redis.Client, prefix string, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:     client,
		prefix:     prefix + "session:",
		sessionTTL: ttl,
	}
}

func (s *SessionStore) key(chatID int64) string {
	return fmt.Sprintf("%s%d", s.prefix, chatID)
}

// Get загружает сессию. Отсутствующий или истекший ключ дает nil, nil.
func (s *SessionStore) Get(ctx context.Context, chatID int64) (*session.Session, error) {
	data, err := s.client.Get(ctx, s.key(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %d: %w", chatID, err)
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session %d: %w", chatID, err)
	}
	return &sess, nil
}

// Save сохраняет сессию и обновляет TTL
func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return fmt.Errorf("session is nil")
	}

	stored := sess.Clone()
	stored.UpdatedAt = time.Now()

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode session %d: %w", sess.ChatID, err)
	}

	if err := s.client.Set(ctx, s.key(sess.ChatID), data, s.sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session %d: %w", sess.ChatID, err)
	}
	return nil
}

// Delete удаляет сессию
func (s *SessionStore) Delete(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, s.key(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", chatID, err)
	}
	return nil
}

// TTL время жизни сессии
func (s *SessionStore) TTL() time.Duration {
	return s.sessionTTL
}
