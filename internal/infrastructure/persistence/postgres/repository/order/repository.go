// internal/infrastructure/persistence/postgres/repository/order/repository.go
package order

import (
	"context"
	"errors"
	"fmt"

	"solboost-bot/internal/core/domain/orders"
	"solboost-bot/internal/infrastructure/persistence/postgres/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation код ошибки PostgreSQL при нарушении UNIQUE
const uniqueViolation = "23505"

// OrderRepository журнал заказов в PostgreSQL
type OrderRepository struct {
	db *sqlx.DB
}

var _ orders.Ledger = (*OrderRepository)(nil)

// NewOrderRepository создает репозиторий заказов
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// IsSignatureUsed проверяет, засчитана ли подпись какому-либо заказу
func (r *OrderRepository) IsSignatureUsed(ctx context.Context, signature string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM orders WHERE tx_signature = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, signature); err != nil {
		return false, fmt.Errorf("ошибка проверки подписи: %w", err)
	}
	return exists, nil
}

// Record сохраняет оплаченный заказ. Повтор подписи - orders.ErrDuplicateSignature.
func (r *OrderRepository) Record(ctx context.Context, order *orders.Order) error {
	query := `
	INSERT INTO orders (
		id, chat_id, user_id, username,
		tier_id, tier_name, duration_hours,
		price_sol, lamports,
		contract_address, wallet, tx_signature,
		status, created_at
	) VALUES (
		:id, :chat_id, :user_id, :username,
		:tier_id, :tier_name, :duration_hours,
		:price_sol, :lamports,
		:contract_address, :wallet, :tx_signature,
		:status, :created_at
	)`

	if _, err := r.db.NamedExecContext(ctx, query, models.OrderFromDomain(order)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return orders.ErrDuplicateSignature
		}
		return fmt.Errorf("ошибка сохранения заказа %s: %w", order.ID, err)
	}
	return nil
}
