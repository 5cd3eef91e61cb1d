// internal/delivery/telegram/app/bot/message_sender/sender.go
package message_sender

import (
	"context"
	"encoding/json"
	"fmt"

	"solboost-bot/internal/core/domain/checkout"
	telegram_http "solboost-bot/internal/delivery/telegram/app/http_client"
	"solboost-bot/pkg/logger"
)

// MessageSender отправляет сообщения бота через Bot API
type MessageSender struct {
	client *telegram_http.TelegramClient
}

var _ checkout.Messenger = (*MessageSender)(nil)

// NewMessageSender создает отправителя поверх клиента Telegram
func NewMessageSender(client *telegram_http.TelegramClient) *MessageSender {
	return &MessageSender{client: client}
}

// Send отправляет сообщение в Markdown и возвращает его message_id
func (ms *MessageSender) Send(ctx context.Context, chatID int64, msg checkout.OutgoingMessage) (int, error) {
	request := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     msg.Text,
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	}
	if markup := replyMarkup(msg); markup != nil {
		request["reply_markup"] = markup
	}

	result, err := ms.client.Call(ctx, "sendMessage", request)
	if err != nil {
		logger.Warn("❌ Ошибка отправки сообщения в чат %d: %v", chatID, err)
		return 0, err
	}

	var sent struct {
		MessageID int `json:"message_id"`
	}
	if err := json.Unmarshal(result, &sent); err != nil {
		return 0, fmt.Errorf("failed to parse sendMessage result: %w", err)
	}
	return sent.MessageID, nil
}

// Delete удаляет сообщение бота
func (ms *MessageSender) Delete(ctx context.Context, chatID int64, messageID int) error {
	request := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	_, err := ms.client.Call(ctx, "deleteMessage", request)
	return err
}

// AnswerCallback снимает "часики" с нажатой кнопки
func (ms *MessageSender) AnswerCallback(ctx context.Context, callbackID, text string) error {
	request := map[string]interface{}{
		"callback_query_id": callbackID,
	}
	if text != "" {
		request["text"] = text
	}
	_, err := ms.client.Call(ctx, "answerCallbackQuery", request)
	return err
}

// SetMyCommands устанавливает меню команд
func (ms *MessageSender) SetMyCommands(ctx context.Context, commands []telegram_http.BotCommand) error {
	_, err := ms.client.Call(ctx, "setMyCommands", map[string]interface{}{"commands": commands})
	return err
}
