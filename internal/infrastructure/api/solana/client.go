// internal/infrastructure/api/solana/client.go
package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solboost-bot/internal/core/domain/payment"
	"solboost-bot/pkg/logger"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Client загружает подтвержденные транзакции через Solana JSON-RPC
type Client struct {
	rpc        *rpc.Client
	endpoint   string
	commitment rpc.CommitmentType
	timeout    time.Duration
}

var _ payment.LedgerClient = (*Client)(nil)

// Config настройки RPC клиента
type Config struct {
	RPCURL     string
	Commitment string
	Timeout    time.Duration
}

// NewClient создает клиента для указанного RPC узла
func NewClient(cfg Config) *Client {
	commitment := rpc.CommitmentConfirmed
	if cfg.Commitment != "" {
		commitment = rpc.CommitmentType(cfg.Commitment)
	}

	return &Client{
		rpc:        rpc.New(cfg.RPCURL),
		endpoint:   cfg.RPCURL,
		commitment: commitment,
		timeout:    cfg.Timeout,
	}
}

// FetchTransaction загружает транзакцию по подписи.
// Если узел ее не знает, возвращается payment.ErrTransactionNotFound.
func (c *Client) FetchTransaction(ctx context.Context, signature string) (*payment.TransactionRecord, error) {
	sig, err := solanago.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("некорректная подпись: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	maxVersion := uint64(0)
	out, err := c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solanago.EncodingBase64,
		Commitment:                     c.commitment,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, payment.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getTransaction %s: %w", c.endpoint, err)
	}
	if out.Transaction == nil {
		return nil, payment.ErrTransactionNotFound
	}

	tx, err := out.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("не удалось декодировать транзакцию: %w", err)
	}
	if tx == nil {
		return nil, payment.ErrTransactionNotFound
	}

	record := convertTransaction(tx, out.Meta)
	record.Signature = signature
	record.Slot = out.Slot

	logger.Debug("📦 Транзакция %s: слот %d, инструкций %d", signature, out.Slot, len(record.Instructions))
	return record, nil
}

// Health проверяет доступность RPC узла
func (c *Client) Health(ctx context.Context) error {
	status, err := c.rpc.GetHealth(ctx)
	if err != nil {
		return fmt.Errorf("solana rpc health: %w", err)
	}
	if status != rpc.HealthOk {
		return fmt.Errorf("solana rpc status: %s", status)
	}
	return nil
}

// convertTransaction строит таблицу ключей: статические ключи сообщения,
// затем загруженные через lookup-таблицы writable и readonly адреса.
func convertTransaction(tx *solanago.Transaction, meta *rpc.TransactionMeta) *payment.TransactionRecord {
	keys := make([]string, 0, len(tx.Message.AccountKeys))
	for _, key := range tx.Message.AccountKeys {
		keys = append(keys, key.String())
	}

	record := &payment.TransactionRecord{}
	if meta != nil {
		for _, key := range meta.LoadedAddresses.Writable {
			keys = append(keys, key.String())
		}
		for _, key := range meta.LoadedAddresses.ReadOnly {
			keys = append(keys, key.String())
		}
		record.Failed = meta.Err != nil
	}
	record.AccountKeys = keys

	record.Instructions = make([]payment.Instruction, 0, len(tx.Message.Instructions))
	for _, ins := range tx.Message.Instructions {
		accounts := make([]int, len(ins.Accounts))
		for i, idx := range ins.Accounts {
			accounts[i] = int(idx)
		}
		record.Instructions = append(record.Instructions, payment.Instruction{
			ProgramIDIndex: int(ins.ProgramIDIndex),
			Accounts:       accounts,
			Data:           []byte(ins.Data),
		})
	}
	return record
}
