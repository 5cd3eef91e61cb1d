// internal/core/domain/operators/roster.go
package operators

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"solboost-bot/internal/core/domain/checkout"
	"solboost-bot/pkg/logger"
)

// Store постоянное хранилище списка админов
type Store interface {
	Load(ctx context.Context) ([]int64, error)
	Add(ctx context.Context, userID int64) error
	Remove(ctx context.Context, userID int64) error
}

// Roster список админов в памяти поверх Store.
// Изменения сначала пишутся в хранилище, потом в память.
type Roster struct {
	mu    sync.RWMutex
	store Store
	ids   map[int64]struct{}
}

var _ checkout.OperatorRoster = (*Roster)(nil)

// NewRoster загружает админов. Пустой список заполняется initial.
func NewRoster(ctx context.Context, store Store, initial []int64) (*Roster, error) {
	ids, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки списка админов: %w", err)
	}

	r := &Roster{store: store, ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		r.ids[id] = struct{}{}
	}

	if len(r.ids) == 0 && len(initial) > 0 {
		logger.Info("👑 Список админов пуст, добавляем начальных: %v", initial)
		for _, id := range initial {
			if _, err := r.Add(ctx, id); err != nil {
				return nil, err
			}
		}
	}

	logger.Info("👑 Загружено админов: %d", len(r.ids))
	return r, nil
}

func (r *Roster) IsOperator(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ids[userID]
	return ok
}

// Add возвращает false, если пользователь уже админ
func (r *Roster) Add(ctx context.Context, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ids[userID]; ok {
		return false, nil
	}
	if err := r.store.Add(ctx, userID); err != nil {
		return false, fmt.Errorf("ошибка сохранения админа %d: %w", userID, err)
	}
	r.ids[userID] = struct{}{}
	return true, nil
}

// Remove возвращает false, если пользователя нет в списке
func (r *Roster) Remove(ctx context.Context, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ids[userID]; !ok {
		return false, nil
	}
	if err := r.store.Remove(ctx, userID); err != nil {
		return false, fmt.Errorf("ошибка удаления админа %d: %w", userID, err)
	}
	delete(r.ids, userID)
	return true, nil
}

// List идентификаторы по возрастанию
func (r *Roster) List() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]int64, 0, len(r.ids))
	for id := range r.ids {
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
