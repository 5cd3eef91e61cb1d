// internal/core/domain/operators/notifier.go
package operators

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"solboost-bot/internal/core/domain/checkout"
	"solboost-bot/pkg/logger"

	"github.com/panjf2000/ants/v2"
)

type delivery struct {
	chatID int64
	text   string
}

// Notifier рассылает уведомления всем админам через пул воркеров.
// Вызывающий не ждет доставки, ошибка одного получателя не влияет на остальных.
type Notifier struct {
	roster    checkout.OperatorRoster
	messenger checkout.Messenger
	pool      *ants.PoolWithFunc
	timeout   time.Duration
	wg        sync.WaitGroup
}

var _ checkout.Notifier = (*Notifier)(nil)

// NewNotifier создает пул из size воркеров. Пул не блокирует вызывающего:
// если все воркеры заняты, уведомление отбрасывается с предупреждением.
func NewNotifier(roster checkout.OperatorRoster, messenger checkout.Messenger, size int, timeout time.Duration) (*Notifier, error) {
	if size <= 0 {
		size = 1
	}
	n := &Notifier{roster: roster, messenger: messenger, timeout: timeout}

	pool, err := ants.NewPoolWithFunc(size, func(i interface{}) {
		defer n.wg.Done()
		n.deliver(i.(delivery))
	}, ants.WithNonblocking(true), ants.WithPanicHandler(func(p interface{}) {
		logger.Error("🔥 Паника при отправке уведомления: %v", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пула уведомлений: %w", err)
	}
	n.pool = pool
	return n, nil
}

func (n *Notifier) NotifyNewUser(_ context.Context, user checkout.Sender) {
	n.broadcast(checkout.NewUserNotificationText(user))
}

func (n *Notifier) NotifyPurchase(_ context.Context, purchase checkout.Purchase) {
	logger.Info("📦 Покупка %s от %s, уведомляем админов", purchase.TierName, purchase.Buyer.DisplayName())
	n.broadcast(checkout.PurchaseNotificationText(purchase))
}

// Close ждет отправки поставленных уведомлений
func (n *Notifier) Close(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warn("⚠️ Не все уведомления админам отправлены до остановки")
	}
	n.pool.Release()
}

func (n *Notifier) broadcast(text string) {
	for _, id := range n.roster.List() {
		n.wg.Add(1)
		err := n.pool.Invoke(delivery{chatID: id, text: text})
		switch {
		case err == nil:
		case errors.Is(err, ants.ErrPoolOverload):
			n.wg.Done()
			logger.Warn("⚠️ Пул уведомлений перегружен, админ %d не уведомлен", id)
		default:
			n.wg.Done()
			logger.Warn("⚠️ Уведомление админу %d не поставлено в очередь: %v", id, err)
		}
	}
}

func (n *Notifier) deliver(d delivery) {
	ctx := context.Background()
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	if _, err := n.messenger.Send(ctx, d.chatID, checkout.OutgoingMessage{Text: d.text}); err != nil {
		logger.Warn("⚠️ Не удалось уведомить админа %d: %v", d.chatID, err)
	}
}
