// internal/delivery/telegram/app/bot/message_sender/markup.go
package message_sender

import (
	"solboost-bot/internal/core/domain/checkout"
	telegram_http "solboost-bot/internal/delivery/telegram/app/http_client"
)

// replyMarkup переводит клавиатуру сообщения в формат Bot API.
// Клавиатура важнее force_reply, если заданы обе.
func replyMarkup(msg checkout.OutgoingMessage) interface{} {
	if msg.Keyboard != nil && len(msg.Keyboard.Rows) > 0 {
		return inlineKeyboard(msg.Keyboard)
	}
	if msg.ForceReply {
		return telegram_http.ForceReply{ForceReply: true}
	}
	return nil
}

func inlineKeyboard(kb *checkout.Keyboard) telegram_http.InlineKeyboardMarkup {
	rows := make([][]telegram_http.InlineKeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]telegram_http.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, telegram_http.InlineKeyboardButton{
				Text:         b.Text,
				CallbackData: b.Data,
				URL:          b.URL,
			})
		}
		rows = append(rows, buttons)
	}
	return telegram_http.InlineKeyboardMarkup{InlineKeyboard: rows}
}
