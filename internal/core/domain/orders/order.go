// internal/core/domain/orders/order.go
package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Статусы заказа
const (
	StatusPaid = "paid"
)

// ErrDuplicateSignature транзакция уже засчитана другому заказу
var ErrDuplicateSignature = errors.New("транзакция уже использована для другого заказа")

// Order оплаченный заказ
type Order struct {
	ID              uuid.UUID
	ChatID          int64
	UserID          int64
	Username        string
	TierID          string
	TierName        string
	DurationHours   *int
	PriceSOL        decimal.Decimal
	Lamports        uint64
	ContractAddress string
	Wallet          string
	TxSignature     string
	Status          string
	CreatedAt       time.Time
}

// NewPaidOrder создает заказ с новым идентификатором
func NewPaidOrder() *Order {
	return &Order{
		ID:        uuid.New(),
		Status:    StatusPaid,
		CreatedAt: time.Now(),
	}
}

// Ledger журнал оплаченных заказов. Одна подпись - один заказ.
type Ledger interface {
	IsSignatureUsed(ctx context.Context, signature string) (bool, error)
	// Record возвращает ErrDuplicateSignature, если подпись уже записана
	Record(ctx context.Context, order *Order) error
}
