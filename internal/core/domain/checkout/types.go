// internal/core/domain/checkout/types.go
package checkout

import (
	"context"
	"fmt"
	"strings"

	"solboost-bot/internal/core/domain/payment"

	"github.com/shopspring/decimal"
)

// Sender автор входящего события
type Sender struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// DisplayName @username или имя и фамилия
func (s Sender) DisplayName() string {
	if s.Username != "" {
		return "@" + s.Username
	}
	name := strings.TrimSpace(s.FirstName + " " + s.LastName)
	if name == "" {
		return fmt.Sprintf("user %d", s.ID)
	}
	return name
}

// Button кнопка inline-клавиатуры: либо Data (callback), либо URL
type Button struct {
	Text string
	Data string
	URL  string
}

// Keyboard строки кнопок
type Keyboard struct {
	Rows [][]Button
}

// OutgoingMessage сообщение бота. Текст в разметке Markdown.
type OutgoingMessage struct {
	Text       string
	Keyboard   *Keyboard
	ForceReply bool
}

// Messenger транспорт сообщений (Telegram)
type Messenger interface {
	// Send возвращает id отправленного сообщения
	Send(ctx context.Context, chatID int64, msg OutgoingMessage) (int, error)
	Delete(ctx context.Context, chatID int64, messageID int) error
}

// PaymentProcessor проверка платежа и запись заказа
type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, req payment.ProcessPaymentRequest) (*payment.PaymentResult, error)
}

// Purchase подтвержденная покупка для уведомления админов
type Purchase struct {
	Buyer           Sender
	OrderID         string
	TierName        string
	DurationHours   *int
	ContractAddress string
	Price           decimal.Decimal
	Signature       string
}

// Notifier рассылка админам. Реализация не должна блокировать вызывающего.
type Notifier interface {
	NotifyNewUser(ctx context.Context, user Sender)
	NotifyPurchase(ctx context.Context, purchase Purchase)
}

// OperatorRoster список админов
type OperatorRoster interface {
	IsOperator(userID int64) bool
	Add(ctx context.Context, userID int64) (added bool, err error)
	Remove(ctx context.Context, userID int64) (removed bool, err error)
	List() []int64
}

// MetricsRecorder учет переходов между этапами
type MetricsRecorder interface {
	ObserveTransition(from, to string)
	ObserveEvent(kind string)
}

// Callback-данные служебных кнопок
const (
	CallbackBack        = "back"
	CallbackPaid        = "paid"
	CallbackHelp        = "help"
	CallbackMonthlySub  = "monthly_sub"
	CallbackPartnership = "partnership"
)

// Виды событий для метрик
const (
	EventRestart   = "restart"
	EventSelection = "selection"
	EventText      = "text"
	EventCommand   = "command"
)
