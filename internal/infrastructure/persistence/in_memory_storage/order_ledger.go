// internal/infrastructure/persistence/in_memory_storage/order_ledger.go
package storage

import (
	"context"
	"sync"

	"solboost-bot/internal/core/domain/orders"
)

// OrderLedger журнал заказов в памяти, используется когда БД отключена
type OrderLedger struct {
	mu          sync.RWMutex
	bySignature map[string]*orders.Order
}

func NewOrderLedger() *OrderLedger {
	return &OrderLedger{bySignature: make(map[string]*orders.Order)}
}

func (l *OrderLedger) IsSignatureUsed(_ context.Context, signature string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.bySignature[signature]
	return ok, nil
}

func (l *OrderLedger) Record(_ context.Context, order *orders.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.bySignature[order.TxSignature]; ok {
		return orders.ErrDuplicateSignature
	}
	copied := *order
	l.bySignature[order.TxSignature] = &copied
	return nil
}

// Count количество записанных заказов
func (l *OrderLedger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.bySignature)
}
