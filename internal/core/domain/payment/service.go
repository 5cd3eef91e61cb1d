// internal/core/domain/payment/service.go
package payment

import (
	"context"
	"errors"
	"fmt"

	"solboost-bot/internal/core/domain/orders"
	"solboost-bot/pkg/logger"

	"github.com/shopspring/decimal"
)

// ErrSignatureUsed подпись уже засчитана другому заказу
var ErrSignatureUsed = errors.New("signature already used for another order")

// PaymentService проверяет платеж и фиксирует оплаченный заказ
type PaymentService struct {
	verifier *Verifier
	orders   orders.Ledger
}

// Dependencies зависимости сервиса платежей
type Dependencies struct {
	Ledger  LedgerClient
	Orders  orders.Ledger
	Metrics MetricsRecorder
}

// ProcessPaymentRequest данные заказа на момент проверки
type ProcessPaymentRequest struct {
	ChatID          int64
	UserID          int64
	Username        string
	TierID          string
	TierName        string
	DurationHours   *int
	Price           decimal.Decimal
	Wallet          string
	ContractAddress string
	Signature       string
}

// PaymentResult итог обработки. Order заполнен только при подтвержденном платеже.
type PaymentResult struct {
	Verification Result
	Order        *orders.Order
}

// NewPaymentService создает сервис платежей
func NewPaymentService(deps Dependencies) (*PaymentService, error) {
	if deps.Ledger == nil {
		return nil, fmt.Errorf("LedgerClient обязателен")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("журнал заказов обязателен")
	}

	return &PaymentService{
		verifier: NewVerifier(deps.Ledger, deps.Metrics),
		orders:   deps.Orders,
	}, nil
}

// ProcessPayment проверяет транзакцию и записывает заказ.
// Ошибка возвращается только для повторной подписи и сбоев журнала до проверки.
func (s *PaymentService) ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (*PaymentResult, error) {
	// Проверяем, не использована ли уже транзакция
	used, err := s.orders.IsSignatureUsed(ctx, req.Signature)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки подписи в журнале: %w", err)
	}
	if used {
		logger.Warn("⚠️ Подпись уже использована: %s", req.Signature)
		return nil, ErrSignatureUsed
	}

	lamports, err := ToBaseUnits(req.Price)
	if err != nil {
		return nil, fmt.Errorf("ошибка пересчета цены: %w", err)
	}

	verification := s.verifier.Verify(ctx, VerificationRequest{
		Signature:       req.Signature,
		ExpectedAddress: req.Wallet,
		MinimumLamports: lamports,
	})
	logger.Payment(req.ChatID, req.Signature, string(verification.Status))

	result := &PaymentResult{Verification: verification}
	if !verification.IsPaid() {
		return result, nil
	}

	order := orders.NewPaidOrder()
	order.ChatID = req.ChatID
	order.UserID = req.UserID
	order.Username = req.Username
	order.TierID = req.TierID
	order.TierName = req.TierName
	order.DurationHours = req.DurationHours
	order.PriceSOL = req.Price
	order.Lamports = verification.Lamports
	order.ContractAddress = req.ContractAddress
	order.Wallet = req.Wallet
	order.TxSignature = req.Signature

	if err := s.orders.Record(ctx, order); err != nil {
		if errors.Is(err, orders.ErrDuplicateSignature) {
			// параллельная отправка той же подписи успела раньше
			logger.Warn("⚠️ Подпись %s записана параллельным заказом", req.Signature)
			return nil, ErrSignatureUsed
		}
		// платеж подтвержден в блокчейне, пользователя не блокируем
		logger.Error("❌ Не удалось сохранить заказ %s: %v", order.ID, err)
	} else {
		logger.Info("💾 Заказ %s сохранен: %s, %s SOL", order.ID, order.TierName, order.PriceSOL.StringFixed(2))
	}

	result.Order = order
	return result, nil
}
