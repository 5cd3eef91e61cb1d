// internal/delivery/telegram/app/bot/dispatcher.go
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	telegram_http "solboost-bot/internal/delivery/telegram/app/http_client"
	"solboost-bot/pkg/logger"

	"github.com/panjf2000/ants/v2"
)

// Dispatcher обрабатывает обновления разных чатов параллельно,
// а обновления одного чата строго в порядке поступления.
type Dispatcher struct {
	pool    *ants.Pool
	handle  func(ctx context.Context, update telegram_http.Update)
	timeout time.Duration

	mu      sync.Mutex
	pending map[int64][]telegram_http.Update
	wg      sync.WaitGroup
}

// NewDispatcher создает пул из workers воркеров
func NewDispatcher(workers int, timeout time.Duration, handle func(ctx context.Context, update telegram_http.Update)) (*Dispatcher, error) {
	if workers <= 0 {
		workers = 16
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p interface{}) {
		logger.Error("🔥 Паника при обработке обновления: %v", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пула обработчиков: %w", err)
	}

	return &Dispatcher{
		pool:    pool,
		handle:  handle,
		timeout: timeout,
		pending: make(map[int64][]telegram_http.Update),
	}, nil
}

// Submit добавляет обновление в очередь чата. Если очередь чата уже
// обрабатывается, обновление подхватит тот же воркер.
func (d *Dispatcher) Submit(chatID int64, update telegram_http.Update) {
	d.mu.Lock()
	queue, active := d.pending[chatID]
	d.pending[chatID] = append(queue, update)
	d.mu.Unlock()

	if active {
		return
	}

	d.wg.Add(1)
	if err := d.pool.Submit(func() {
		defer d.wg.Done()
		d.drain(chatID)
	}); err != nil {
		d.wg.Done()
		d.mu.Lock()
		delete(d.pending, chatID)
		d.mu.Unlock()
		logger.Warn("⚠️ Обновление чата %d не принято в обработку: %v", chatID, err)
	}
}

func (d *Dispatcher) drain(chatID int64) {
	for {
		d.mu.Lock()
		queue := d.pending[chatID]
		if len(queue) == 0 {
			delete(d.pending, chatID)
			d.mu.Unlock()
			return
		}
		update := queue[0]
		d.pending[chatID] = queue[1:]
		d.mu.Unlock()

		d.run(update)
	}
}

// run обрабатывает одно обновление. Паника не должна останавливать очередь чата.
func (d *Dispatcher) run(update telegram_http.Update) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("🔥 Паника при обработке обновления %d: %v", update.UpdateID, p)
		}
	}()

	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	d.handle(ctx, update)
}

// Close ждет завершения обработки и освобождает пул
func (d *Dispatcher) Close(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warn("⚠️ Не все обновления обработаны до остановки")
	}
	d.pool.Release()
}
