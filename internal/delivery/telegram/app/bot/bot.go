// internal/delivery/telegram/app/bot/bot.go
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"solboost-bot/internal/core/domain/checkout"
	"solboost-bot/internal/delivery/telegram/app/bot/message_sender"
	"solboost-bot/internal/delivery/telegram/app/bot/middlewares"
	telegram_http "solboost-bot/internal/delivery/telegram/app/http_client"
	"solboost-bot/pkg/logger"

	"github.com/google/uuid"
)

// Checkout сценарий заказа, которому бот передает события
type Checkout interface {
	Start(ctx context.Context, chatID int64, sender checkout.Sender) error
	Help(ctx context.Context, chatID int64) error
	HandleSelection(ctx context.Context, chatID int64, sender checkout.Sender, data string) error
	HandleText(ctx context.Context, chatID int64, sender checkout.Sender, text string) error
	HandleAdminCommand(ctx context.Context, chatID int64, sender checkout.Sender, command, args string) error
}

// DropRecorder учет отброшенных событий
type DropRecorder interface {
	ObserveDropped(reason string)
}

// TelegramBot разбирает обновления Telegram и передает их в сценарий заказа
type TelegramBot struct {
	checkout Checkout
	sender   *message_sender.MessageSender
	limiter  *middlewares.ChatRateLimiter
	metrics  DropRecorder

	dispatcher *Dispatcher
}

// Dependencies зависимости для TelegramBot
type Dependencies struct {
	Checkout Checkout
	Sender   *message_sender.MessageSender
	Limiter  *middlewares.ChatRateLimiter
	Metrics  DropRecorder

	// Workers число чатов, обрабатываемых одновременно
	Workers int
	// HandlerTimeout ограничение на обработку одного обновления
	HandlerTimeout time.Duration
}

// NewTelegramBot создает бота
func NewTelegramBot(deps Dependencies) (*TelegramBot, error) {
	if deps.Checkout == nil {
		return nil, fmt.Errorf("сценарий заказа не указан")
	}
	if deps.Sender == nil {
		return nil, fmt.Errorf("MessageSender не указан")
	}

	b := &TelegramBot{
		checkout: deps.Checkout,
		sender:   deps.Sender,
		limiter:  deps.Limiter,
		metrics:  deps.Metrics,
	}

	dispatcher, err := NewDispatcher(deps.Workers, deps.HandlerTimeout, func(ctx context.Context, update telegram_http.Update) {
		if err := b.HandleUpdate(ctx, update); err != nil {
			logger.Error("❌ Ошибка обработки обновления %d: %v", update.UpdateID, err)
		}
	})
	if err != nil {
		return nil, err
	}
	b.dispatcher = dispatcher
	return b, nil
}

// Enqueue ставит обновление в очередь его чата
func (b *TelegramBot) Enqueue(update telegram_http.Update) {
	chatID, ok := chatOf(update)
	if !ok {
		return
	}
	b.dispatcher.Submit(chatID, update)
}

// Close дожидается обработки поставленных обновлений
func (b *TelegramBot) Close(timeout time.Duration) {
	b.dispatcher.Close(timeout)
}

// HandleUpdate обрабатывает одно обновление синхронно.
// Ошибки, о которых пользователю уже ответили, не возвращаются.
func (b *TelegramBot) HandleUpdate(ctx context.Context, update telegram_http.Update) error {
	chatID, ok := chatOf(update)
	if !ok {
		return nil
	}

	traceID := uuid.NewString()
	allowed, err := b.limiter.Allow(ctx, chatID)
	if err != nil {
		logger.Warn("⚠️ [%s] Ошибка лимитера для чата %d: %v", traceID, chatID, err)
	} else if !allowed {
		logger.Warn("🚫 [%s] Превышен лимит событий чата %d, обновление %d отброшено", traceID, chatID, update.UpdateID)
		if b.metrics != nil {
			b.metrics.ObserveDropped("rate_limit")
		}
		return nil
	}

	switch {
	case update.CallbackQuery != nil:
		err = b.handleCallback(ctx, traceID, chatID, update.CallbackQuery)
	case update.Message != nil:
		err = b.handleMessage(ctx, traceID, chatID, update.Message)
	}

	if err != nil && checkout.IsUserFacing(err) {
		logger.Debug("🔍 [%s] Чат %d: %v", traceID, chatID, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("[%s] %w", traceID, err)
	}
	return nil
}

func (b *TelegramBot) handleCallback(ctx context.Context, traceID string, chatID int64, cb *telegram_http.CallbackQuery) error {
	logger.Debug("🔘 [%s] Callback %q от %d в чате %d", traceID, cb.Data, cb.From.ID, chatID)

	if err := b.sender.AnswerCallback(ctx, cb.ID, ""); err != nil {
		logger.Warn("⚠️ [%s] Не удалось ответить на callback: %v", traceID, err)
	}
	if cb.Data == "" {
		return nil
	}
	return b.checkout.HandleSelection(ctx, chatID, senderOf(&cb.From), cb.Data)
}

func (b *TelegramBot) handleMessage(ctx context.Context, traceID string, chatID int64, msg *telegram_http.Message) error {
	if msg.From == nil || msg.From.IsBot || msg.Text == "" {
		return nil
	}
	sender := senderOf(msg.From)

	command, args, isCommand := parseCommand(msg.Text)
	if !isCommand {
		logger.Debug("💬 [%s] Текст от %d в чате %d", traceID, sender.ID, chatID)
		return b.checkout.HandleText(ctx, chatID, sender, msg.Text)
	}

	logger.Info("⌨️ [%s] Команда /%s от %s (%d)", traceID, command, sender.DisplayName(), sender.ID)
	switch {
	case command == "start":
		return b.checkout.Start(ctx, chatID, sender)
	case command == "help":
		return b.checkout.Help(ctx, chatID)
	case checkout.IsAdminCommand(command):
		return b.checkout.HandleAdminCommand(ctx, chatID, sender, command, args)
	default:
		return b.checkout.HandleText(ctx, chatID, sender, msg.Text)
	}
}

// RegisterCommands устанавливает меню команд в Telegram
func (b *TelegramBot) RegisterCommands(ctx context.Context) error {
	logger.Info("Установка меню команд в Telegram API")
	return b.sender.SetMyCommands(ctx, []telegram_http.BotCommand{
		{Command: "start", Description: "Open the main menu"},
		{Command: "help", Description: "How the bot works"},
	})
}

// parseCommand разбирает "/cmd@bot args" на имя команды и аргументы
func parseCommand(text string) (command, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, rest, _ := strings.Cut(text[1:], " ")
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

func senderOf(u *telegram_http.User) checkout.Sender {
	return checkout.Sender{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// chatOf чат, к которому относится обновление
func chatOf(update telegram_http.Update) (int64, bool) {
	switch {
	case update.CallbackQuery != nil:
		if update.CallbackQuery.Message != nil {
			return update.CallbackQuery.Message.Chat.ID, true
		}
		return update.CallbackQuery.From.ID, true
	case update.Message != nil:
		return update.Message.Chat.ID, true
	}
	return 0, false
}
