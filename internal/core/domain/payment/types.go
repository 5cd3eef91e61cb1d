// internal/core/domain/payment/types.go
package payment

import (
	"context"
	"errors"
	"time"
)

const (
	// SystemProgramID программа нативных переводов SOL
	SystemProgramID = "11111111111111111111111111111111"

	// LamportsPerSOL базовых единиц в одном SOL
	LamportsPerSOL = 1_000_000_000

	// Минимальная длина данных инструкции перевода: 4 байта дискриминанта + u64 сумма
	transferDataLen = 12
)

// ErrTransactionNotFound транзакция не найдена в блокчейне
var ErrTransactionNotFound = errors.New("transaction not found")

// Status итог проверки платежа
type Status string

const (
	StatusPaid         Status = "paid"
	StatusNotFound     Status = "not_found"
	StatusInsufficient Status = "insufficient"
	StatusUnparseable  Status = "unparseable"
	StatusError        Status = "error"
)

// VerificationRequest что ожидаем увидеть в транзакции
type VerificationRequest struct {
	Signature       string
	ExpectedAddress string
	MinimumLamports uint64
}

// Result результат проверки
type Result struct {
	Status    Status
	Signature string

	// Заполняются только для StatusPaid
	Lamports         uint64
	InstructionIndex int

	// Причина для StatusError и StatusUnparseable
	Err      error
	Duration time.Duration
}

// IsPaid платеж подтвержден
func (r Result) IsPaid() bool {
	return r.Status == StatusPaid
}

// Instruction скомпилированная инструкция транзакции.
// Индексы указывают в таблицу AccountKeys.
type Instruction struct {
	ProgramIDIndex int
	Accounts       []int
	Data           []byte
}

// TransactionRecord подтвержденная транзакция в том виде, в каком ее видит проверка
type TransactionRecord struct {
	Signature    string
	Slot         uint64
	AccountKeys  []string
	Instructions []Instruction

	// Транзакция выполнилась с ошибкой
	Failed bool
}

// LedgerClient источник транзакций. Отсутствующая транзакция - ErrTransactionNotFound.
type LedgerClient interface {
	FetchTransaction(ctx context.Context, signature string) (*TransactionRecord, error)
}

// MetricsRecorder учет результатов проверок
type MetricsRecorder interface {
	ObserveVerification(status string, duration time.Duration)
}
