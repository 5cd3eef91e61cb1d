// internal/infrastructure/persistence/postgres/models/order.go
package models

import (
	"database/sql"
	"math"
	"time"

	"solboost-bot/internal/core/domain/orders"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order строка таблицы orders
type Order struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	ChatID          int64           `db:"chat_id" json:"chat_id"`
	UserID          int64           `db:"user_id" json:"user_id"`
	Username        string          `db:"username" json:"username"`
	TierID          string          `db:"tier_id" json:"tier_id"`
	TierName        string          `db:"tier_name" json:"tier_name"`
	DurationHours   sql.NullInt32   `db:"duration_hours" json:"duration_hours"` // NULL для индивидуального тарифа
	PriceSOL        decimal.Decimal `db:"price_sol" json:"price_sol"`
	Lamports        int64           `db:"lamports" json:"lamports"`
	ContractAddress string          `db:"contract_address" json:"contract_address"`
	Wallet          string          `db:"wallet" json:"wallet"`
	TxSignature     string          `db:"tx_signature" json:"tx_signature"`
	Status          string          `db:"status" json:"status"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// OrderFromDomain переводит доменный заказ в строку таблицы
func OrderFromDomain(o *orders.Order) *Order {
	row := &Order{
		ID:              o.ID,
		ChatID:          o.ChatID,
		UserID:          o.UserID,
		Username:        o.Username,
		TierID:          o.TierID,
		TierName:        o.TierName,
		PriceSOL:        o.PriceSOL,
		ContractAddress: o.ContractAddress,
		Wallet:          o.Wallet,
		TxSignature:     o.TxSignature,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
	}
	if o.DurationHours != nil {
		row.DurationHours = sql.NullInt32{Int32: int32(*o.DurationHours), Valid: true}
	}
	// BIGINT знаковый
	if o.Lamports > math.MaxInt64 {
		row.Lamports = math.MaxInt64
	} else {
		row.Lamports = int64(o.Lamports)
	}
	return row
}

// ToDomain переводит строку таблицы в доменный заказ
func (r *Order) ToDomain() *orders.Order {
	o := &orders.Order{
		ID:              r.ID,
		ChatID:          r.ChatID,
		UserID:          r.UserID,
		Username:        r.Username,
		TierID:          r.TierID,
		TierName:        r.TierName,
		PriceSOL:        r.PriceSOL,
		Lamports:        uint64(r.Lamports),
		ContractAddress: r.ContractAddress,
		Wallet:          r.Wallet,
		TxSignature:     r.TxSignature,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
	}
	if r.DurationHours.Valid {
		hours := int(r.DurationHours.Int32)
		o.DurationHours = &hours
	}
	return o
}
