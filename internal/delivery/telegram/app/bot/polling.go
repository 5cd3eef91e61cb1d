// internal/delivery/telegram/app/bot/polling.go
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	telegram_http "solboost-bot/internal/delivery/telegram/app/http_client"
	"solboost-bot/pkg/logger"
)

// PollingClient получает обновления через getUpdates
type PollingClient struct {
	bot     *TelegramBot
	client  *telegram_http.PollingClient
	timeout int
	retry   time.Duration
	offset  int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewPollingClient создает polling. timeout - секунды long polling.
func NewPollingClient(bot *TelegramBot, client *telegram_http.PollingClient, timeout int, retry time.Duration) *PollingClient {
	if retry <= 0 {
		retry = 5 * time.Second
	}
	return &PollingClient{
		bot:     bot,
		client:  client,
		timeout: timeout,
		retry:   retry,
	}
}

// Start запускает цикл получения обновлений
func (p *PollingClient) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("polling уже запущен")
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	p.running = true

	go p.pollLoop(ctx)
	logger.Info("🔄 Polling запущен (timeout %d сек)", p.timeout)
	return nil
}

// Stop останавливает цикл и дожидается его выхода
func (p *PollingClient) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.cancel()
	done := p.done
	p.running = false
	p.mu.Unlock()

	<-done
	logger.Info("🛑 Polling остановлен")
}

// IsRunning работает ли цикл
func (p *PollingClient) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *PollingClient) pollLoop(ctx context.Context) {
	defer close(p.done)

	for {
		if ctx.Err() != nil {
			return
		}

		updates, err := p.client.GetUpdates(ctx, p.offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("⚠️ Ошибка получения обновлений: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.retry):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= p.offset {
				p.offset = update.UpdateID + 1
			}
			p.bot.Enqueue(update)
		}
	}
}
