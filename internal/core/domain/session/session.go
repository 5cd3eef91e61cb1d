// internal/core/domain/session/session.go
package session

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Stage этап диалога оформления заказа
type Stage string

const (
	StageSelectingService            Stage = "selecting_service"
	StageSelectingDuration           Stage = "selecting_duration"
	StageCustomizingService          Stage = "customizing_service"
	StageWaitingForCA                Stage = "waiting_for_ca"
	StageAwaitingPaymentConfirmation Stage = "awaiting_payment_confirmation"
	StageAwaitingTxSignature         Stage = "awaiting_tx_signature"
	StageCompleted                   Stage = "completed"
)

// Session состояние диалога одного чата
type Session struct {
	ChatID             int64            `json:"chat_id"`
	Stage              Stage            `json:"stage"`
	TierID             string           `json:"tier_id,omitempty"`
	Duration           *int             `json:"duration,omitempty"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	DestinationAddress string           `json:"destination_address,omitempty"`
	ContractAddress    string           `json:"contract_address,omitempty"`
	TxSignature        string           `json:"tx_signature,omitempty"`

	// Сообщения бота, которые нужно удалить при сбросе
	PendingMessageIDs []int `json:"pending_message_ids,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// New создает пустую сессию на этапе выбора услуги
func New(chatID int64) *Session {
	return &Session{
		ChatID:    chatID,
		Stage:     StageSelectingService,
		UpdatedAt: time.Now(),
	}
}

// ResetSelection возвращает к выбору услуги и забывает все выбранные значения.
// Список сообщений для очистки сохраняется.
func (s *Session) ResetSelection() {
	pending := s.PendingMessageIDs
	*s = Session{
		ChatID:            s.ChatID,
		Stage:             StageSelectingService,
		PendingMessageIDs: pending,
		UpdatedAt:         time.Now(),
	}
}

// TrackMessage запоминает сообщение бота для последующего удаления
func (s *Session) TrackMessage(messageID int) {
	if messageID == 0 {
		return
	}
	s.PendingMessageIDs = append(s.PendingMessageIDs, messageID)
}

// TakePendingMessages возвращает и очищает список сообщений
func (s *Session) TakePendingMessages() []int {
	ids := s.PendingMessageIDs
	s.PendingMessageIDs = nil
	return ids
}

// Clone глубокая копия
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Duration != nil {
		d := *s.Duration
		c.Duration = &d
	}
	if s.Price != nil {
		p := *s.Price
		c.Price = &p
	}
	c.PendingMessageIDs = append([]int(nil), s.PendingMessageIDs...)
	return &c
}

// Store хранилище сессий. Get возвращает nil, nil если сессии нет или она истекла.
type Store interface {
	Get(ctx context.Context, chatID int64) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, chatID int64) error
}
