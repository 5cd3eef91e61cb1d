// internal/core/domain/payment/verifier.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solboost-bot/pkg/logger"

	bin "github.com/gagliardetto/binary"
)

// Verifier проверяет, что транзакция содержит достаточный перевод SOL на ожидаемый адрес.
// Одна подпись - одна попытка: повторов и таймаутов здесь нет.
type Verifier struct {
	ledger  LedgerClient
	metrics MetricsRecorder
	now     func() time.Time
}

// NewVerifier создает проверяющего. metrics может быть nil.
func NewVerifier(ledger LedgerClient, metrics MetricsRecorder) *Verifier {
	return &Verifier{
		ledger:  ledger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Verify загружает транзакцию и ищет подходящую инструкцию перевода
func (v *Verifier) Verify(ctx context.Context, req VerificationRequest) Result {
	started := v.now()
	result := v.verify(ctx, req)
	result.Signature = req.Signature
	result.Duration = v.now().Sub(started)

	if v.metrics != nil {
		v.metrics.ObserveVerification(string(result.Status), result.Duration)
	}
	return result
}

func (v *Verifier) verify(ctx context.Context, req VerificationRequest) Result {
	tx, err := v.ledger.FetchTransaction(ctx, req.Signature)
	if errors.Is(err, ErrTransactionNotFound) {
		logger.Info("🔎 Транзакция не найдена: %s", req.Signature)
		return Result{Status: StatusNotFound}
	}
	if err != nil {
		logger.Warn("⚠️ Ошибка загрузки транзакции %s: %v", req.Signature, err)
		return Result{Status: StatusError, Err: err}
	}
	if tx == nil {
		return Result{Status: StatusNotFound}
	}

	if tx.Failed {
		logger.Warn("⚠️ Транзакция %s выполнена с ошибкой, перевод не засчитывается", req.Signature)
		return Result{Status: StatusInsufficient}
	}

	for i, ins := range tx.Instructions {
		programID, err := accountAt(tx.AccountKeys, ins.ProgramIDIndex)
		if err != nil {
			return Result{Status: StatusUnparseable, Err: fmt.Errorf("инструкция %d: %w", i, err)}
		}
		if programID != SystemProgramID {
			// токены и прочие программы не разбираем
			continue
		}

		if len(ins.Accounts) < 2 {
			logger.Warn("⚠️ Инструкция %d: недостаточно аккаунтов (%d), пропускаем", i, len(ins.Accounts))
			continue
		}
		if len(ins.Data) < transferDataLen {
			logger.Debug("Инструкция %d: данные короче %d байт, пропускаем", i, transferDataLen)
			continue
		}

		amount, err := decodeTransferAmount(ins.Data)
		if err != nil {
			return Result{Status: StatusUnparseable, Err: fmt.Errorf("инструкция %d: %w", i, err)}
		}

		destination, err := accountAt(tx.AccountKeys, ins.Accounts[1])
		if err != nil {
			return Result{Status: StatusUnparseable, Err: fmt.Errorf("инструкция %d: %w", i, err)}
		}

		logger.Debug("Инструкция %d: перевод %d лампортов на %s", i, amount, destination)

		if destination != req.ExpectedAddress {
			continue
		}
		if amount >= req.MinimumLamports {
			logger.Info("✅ Платеж найден в инструкции %d: %d лампортов (ожидалось %d)", i, amount, req.MinimumLamports)
			return Result{Status: StatusPaid, Lamports: amount, InstructionIndex: i}
		}

		// адрес совпал, но суммы мало: следующая инструкция может подойти
		logger.Info("⚠️ Инструкция %d: недостаточная сумма %d < %d", i, amount, req.MinimumLamports)
	}

	return Result{Status: StatusInsufficient}
}

// decodeTransferAmount читает u64 LE сумму после 4-байтного дискриминанта
func decodeTransferAmount(data []byte) (uint64, error) {
	dec := bin.NewBinDecoder(data)
	if err := dec.SkipBytes(4); err != nil {
		return 0, fmt.Errorf("дискриминант: %w", err)
	}
	amount, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return 0, fmt.Errorf("сумма перевода: %w", err)
	}
	return amount, nil
}

func accountAt(keys []string, index int) (string, error) {
	if index < 0 || index >= len(keys) {
		return "", fmt.Errorf("индекс аккаунта %d вне таблицы ключей (%d)", index, len(keys))
	}
	return keys[index], nil
}
