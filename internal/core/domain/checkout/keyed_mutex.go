// internal/core/domain/checkout/keyed_mutex.go
package checkout

import "sync"

// keyedMutex сериализует события одного чата. Записи удаляются, когда их никто не держит.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[int64]*keyedEntry)}
}

// Lock блокирует чат и возвращает функцию разблокировки
func (k *keyedMutex) Lock(chatID int64) func() {
	k.mu.Lock()
	entry, ok := k.locks[chatID]
	if !ok {
		entry = &keyedEntry{}
		k.locks[chatID] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, chatID)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
