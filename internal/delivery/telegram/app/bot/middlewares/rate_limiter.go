// internal/delivery/telegram/app/bot/middlewares/rate_limiter.go
package middlewares

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// ChatRateLimiter ограничивает частоту входящих событий одного чата.
// Формат лимита ulule/limiter: "20-M", "5-S", "1000-H".
type ChatRateLimiter struct {
	limiter *limiter.Limiter
}

// NewChatRateLimiter создает лимитер. Пустой формат - без ограничений.
func NewChatRateLimiter(formatted string) (*ChatRateLimiter, error) {
	if formatted == "" {
		return &ChatRateLimiter{}, nil
	}

	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("некорректный лимит %q: %w", formatted, err)
	}
	return &ChatRateLimiter{limiter: limiter.New(memory.NewStore(), rate)}, nil
}

// Allow учитывает событие чата и сообщает, укладывается ли оно в лимит
func (l *ChatRateLimiter) Allow(ctx context.Context, chatID int64) (bool, error) {
	if l == nil || l.limiter == nil {
		return true, nil
	}

	lctx, err := l.limiter.Get(ctx, "chat:"+strconv.FormatInt(chatID, 10))
	if err != nil {
		return false, err
	}
	return !lctx.Reached, nil
}
