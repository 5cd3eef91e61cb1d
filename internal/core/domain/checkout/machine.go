// internal/core/domain/checkout/machine.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"solboost-bot/internal/core/domain/catalog"
	"solboost-bot/internal/core/domain/payment"
	"solboost-bot/internal/core/domain/session"
	"solboost-bot/internal/core/domain/validation"
	"solboost-bot/pkg/logger"
)

// Machine - конечный автомат оформления заказа.
// События одного чата выполняются строго последовательно, разных чатов - параллельно.
type Machine struct {
	catalog   *catalog.Catalog
	sessions  session.Store
	messenger Messenger
	payments  PaymentProcessor
	notifier  Notifier
	roster    OperatorRoster
	metrics   MetricsRecorder
	locks     *keyedMutex
}

// Dependencies зависимости автомата
type Dependencies struct {
	Catalog   *catalog.Catalog
	Sessions  session.Store
	Messenger Messenger
	Payments  PaymentProcessor
	Notifier  Notifier
	Roster    OperatorRoster
	Metrics   MetricsRecorder
}

// NewMachine проверяет зависимости и создает автомат
func NewMachine(deps Dependencies) (*Machine, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("каталог не указан")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("хранилище сессий не указано")
	}
	if deps.Messenger == nil {
		return nil, fmt.Errorf("мессенджер не указан")
	}
	if deps.Payments == nil {
		return nil, fmt.Errorf("платежный сервис не указан")
	}
	if deps.Roster == nil {
		return nil, fmt.Errorf("список админов не указан")
	}

	m := &Machine{
		catalog:   deps.Catalog,
		sessions:  deps.Sessions,
		messenger: deps.Messenger,
		payments:  deps.Payments,
		notifier:  deps.Notifier,
		roster:    deps.Roster,
		metrics:   deps.Metrics,
		locks:     newKeyedMutex(),
	}
	if m.notifier == nil {
		m.notifier = nopNotifier{}
	}
	if m.metrics == nil {
		m.metrics = nopMetrics{}
	}
	return m, nil
}

// Start обрабатывает /start: уведомляет админов, чистит старые сообщения и показывает главное меню
func (m *Machine) Start(ctx context.Context, chatID int64, sender Sender) error {
	unlock := m.locks.Lock(chatID)
	defer unlock()

	m.metrics.ObserveEvent(EventRestart)
	m.notifier.NotifyNewUser(ctx, sender)

	s, err := m.load(ctx, chatID)
	if err != nil {
		return err
	}
	from := s.Stage
	m.deletePending(ctx, s)

	fresh := session.New(chatID)
	if err := m.showMainMenu(ctx, fresh); err != nil {
		return err
	}
	return m.save(ctx, fresh, from)
}

// Help отправляет справку с кнопкой возврата. Этап не меняется.
func (m *Machine) Help(ctx context.Context, chatID int64) error {
	unlock := m.locks.Lock(chatID)
	defer unlock()

	m.metrics.ObserveEvent(EventCommand)

	s, err := m.load(ctx, chatID)
	if err != nil {
		return err
	}
	return m.showInfo(ctx, s, HelpText())
}

// HandleSelection обрабатывает нажатие inline-кнопки с данными data
func (m *Machine) HandleSelection(ctx context.Context, chatID int64, sender Sender, data string) error {
	unlock := m.locks.Lock(chatID)
	defer unlock()

	m.metrics.ObserveEvent(EventSelection)

	s, err := m.load(ctx, chatID)
	if err != nil {
		return err
	}

	switch data {
	case CallbackBack:
		return m.back(ctx, s)
	case CallbackHelp:
		return m.showInfo(ctx, s, HelpText())
	case CallbackMonthlySub:
		return m.showInfo(ctx, s, subscriptionText())
	case CallbackPartnership:
		return m.showInfo(ctx, s, partnershipText())
	case CallbackPaid:
		return m.confirmPaid(ctx, s)
	}

	switch s.Stage {
	case session.StageSelectingService:
		return m.selectTier(ctx, s, data)
	case session.StageSelectingDuration:
		return m.selectDuration(ctx, s, data)
	case session.StageCompleted:
		return m.reply(ctx, s.ChatID, Messages.SelectServiceFirst, ErrValidation)
	default:
		logger.Debug("🔘 Чат %d: кнопка %q не относится к этапу %s", chatID, data, s.Stage)
		return m.reply(ctx, s.ChatID, Messages.UseMenu, ErrValidation)
	}
}

// HandleText обрабатывает произвольный текст пользователя
func (m *Machine) HandleText(ctx context.Context, chatID int64, sender Sender, text string) error {
	unlock := m.locks.Lock(chatID)
	defer unlock()

	m.metrics.ObserveEvent(EventText)

	s, err := m.load(ctx, chatID)
	if err != nil {
		return err
	}

	switch s.Stage {
	case session.StageWaitingForCA:
		return m.acceptContractAddress(ctx, s, strings.TrimSpace(text))
	case session.StageAwaitingPaymentConfirmation:
		return m.reply(ctx, s.ChatID, Messages.PressPaid, nil)
	case session.StageAwaitingTxSignature:
		return m.verifySignature(ctx, s, sender, text)
	case session.StageCompleted:
		return m.reply(ctx, s.ChatID, Messages.SelectServiceFirst, nil)
	default:
		return m.reply(ctx, s.ChatID, Messages.UseMenu, nil)
	}
}

// Snapshot копия текущей сессии чата (nil если ее нет)
func (m *Machine) Snapshot(ctx context.Context, chatID int64) (*session.Session, error) {
	unlock := m.locks.Lock(chatID)
	defer unlock()

	return m.sessions.Get(ctx, chatID)
}

func (m *Machine) back(ctx context.Context, s *session.Session) error {
	from := s.Stage
	m.deletePending(ctx, s)
	s.ResetSelection()

	if err := m.showMainMenu(ctx, s); err != nil {
		return err
	}
	return m.save(ctx, s, from)
}

func (m *Machine) selectTier(ctx context.Context, s *session.Session, tierID string) error {
	tier, ok := m.catalog.Tier(tierID)
	if !ok {
		logger.Warn("⚠️ Чат %d: неизвестный тариф %q", s.ChatID, tierID)
		return m.reply(ctx, s.ChatID, Messages.InvalidService, ErrValidation)
	}

	from := s.Stage
	s.TierID = tier.ID

	switch tier.Mode() {
	case catalog.ModeCustom:
		s.Stage = session.StageCustomizingService
		if _, err := m.send(ctx, s, OutgoingMessage{Text: customTierText(tier), Keyboard: contactKeyboard()}); err != nil {
			return err
		}
	case catalog.ModeFixed:
		if err := m.choosePlan(ctx, s, tier, *tier.FixedDuration); err != nil {
			return err
		}
	default:
		s.Stage = session.StageSelectingDuration
		if _, err := m.send(ctx, s, OutgoingMessage{Text: durationMenuText(tier), Keyboard: durationKeyboard(tier)}); err != nil {
			return err
		}
	}

	return m.save(ctx, s, from)
}

func (m *Machine) selectDuration(ctx context.Context, s *session.Session, data string) error {
	tier, ok := m.catalog.Tier(s.TierID)
	if !ok {
		// каталог сменился между событиями
		return m.reply(ctx, s.ChatID, Messages.InvalidService, ErrValidation)
	}

	hours, err := strconv.Atoi(data)
	if err != nil || !tier.AllowsDuration(hours) {
		return m.reply(ctx, s.ChatID, Messages.InvalidDuration, ErrValidation)
	}

	from := s.Stage
	if err := m.choosePlan(ctx, s, tier, hours); err != nil {
		return err
	}
	return m.save(ctx, s, from)
}

// choosePlan фиксирует длительность и цену, переводит к вводу CA
func (m *Machine) choosePlan(ctx context.Context, s *session.Session, tier *catalog.ServiceTier, hours int) error {
	price, ok := catalog.PriceFor(tier, hours)
	if !ok {
		return m.reply(ctx, s.ChatID, Messages.InvalidService, ErrValidation)
	}
	// к оплате ровно та сумма, что показана пользователю
	price = price.Round(2)

	s.Duration = &hours
	s.Price = &price
	s.DestinationAddress = tier.Wallet
	s.Stage = session.StageWaitingForCA

	text := tierSummaryText(tier, hours, catalog.FormatPrice(price))
	_, err := m.send(ctx, s, OutgoingMessage{Text: text, Keyboard: backKeyboard(ButtonTexts.Back)})
	return err
}

func (m *Machine) acceptContractAddress(ctx context.Context, s *session.Session, ca string) error {
	if !validation.IsValidAddress(ca) {
		return m.reply(ctx, s.ChatID, Messages.InvalidCA, ErrValidation)
	}

	from := s.Stage
	s.ContractAddress = ca
	s.Stage = session.StageAwaitingPaymentConfirmation

	price := ""
	if s.Price != nil {
		price = catalog.FormatPrice(*s.Price)
	}
	msg := OutgoingMessage{
		Text:     paymentInstructionsText(ca, price, s.DestinationAddress),
		Keyboard: paymentKeyboard(),
	}
	if _, err := m.send(ctx, s, msg); err != nil {
		return err
	}
	return m.save(ctx, s, from)
}

func (m *Machine) confirmPaid(ctx context.Context, s *session.Session) error {
	if s.Stage != session.StageAwaitingPaymentConfirmation {
		return m.reply(ctx, s.ChatID, Messages.SelectServiceFirst, ErrValidation)
	}

	from := s.Stage
	s.Stage = session.StageAwaitingTxSignature
	if _, err := m.send(ctx, s, OutgoingMessage{Text: Messages.AskSignature, ForceReply: true}); err != nil {
		return err
	}
	return m.save(ctx, s, from)
}

func (m *Machine) verifySignature(ctx context.Context, s *session.Session, sender Sender, text string) error {
	signature, ok := validation.ExtractSignature(text)
	if !ok {
		return m.reply(ctx, s.ChatID, Messages.InvalidURL, ErrValidation)
	}
	if !validation.IsValidSignature(signature) {
		return m.reply(ctx, s.ChatID, Messages.InvalidSignature, ErrValidation)
	}

	tier, ok := m.catalog.Tier(s.TierID)
	if !ok || s.Price == nil {
		return m.reply(ctx, s.ChatID, Messages.SelectServiceFirst, ErrValidation)
	}

	if _, err := m.send(ctx, s, OutgoingMessage{Text: Messages.Verifying}); err != nil {
		return err
	}

	res, err := m.payments.ProcessPayment(ctx, payment.ProcessPaymentRequest{
		ChatID:          s.ChatID,
		UserID:          sender.ID,
		Username:        sender.Username,
		TierID:          tier.ID,
		TierName:        tier.Name,
		DurationHours:   s.Duration,
		Price:           *s.Price,
		Wallet:          s.DestinationAddress,
		ContractAddress: s.ContractAddress,
		Signature:       signature,
	})
	if err != nil {
		if errors.Is(err, payment.ErrSignatureUsed) {
			return m.failVerification(ctx, s, Messages.AlreadyUsed, ErrAlreadyUsed)
		}
		logger.Error("❌ Чат %d: ошибка обработки платежа: %v", s.ChatID, err)
		return m.failVerification(ctx, s, Messages.VerificationError, ErrTransient)
	}

	switch res.Verification.Status {
	case payment.StatusPaid:
	case payment.StatusNotFound:
		return m.failVerification(ctx, s, Messages.NotFound, ErrNotFound)
	case payment.StatusInsufficient:
		return m.failVerification(ctx, s, Messages.VerificationFailed, ErrInsufficientPayment)
	default:
		return m.failVerification(ctx, s, Messages.VerificationError, ErrTransient)
	}

	from := s.Stage
	m.deletePending(ctx, s)
	s.TxSignature = signature
	s.Stage = session.StageCompleted

	msg := OutgoingMessage{Text: Messages.PaymentConfirmed, Keyboard: backKeyboard(ButtonTexts.BackToMain)}
	if _, err := m.send(ctx, s, msg); err != nil {
		logger.Warn("⚠️ Чат %d: не удалось отправить подтверждение оплаты: %v", s.ChatID, err)
	}
	saveErr := m.save(ctx, s, from)
	if saveErr != nil {
		logger.Error("❌ Чат %d: оплата %s подтверждена, но сессия не сохранена: %v", s.ChatID, signature, saveErr)
	}

	purchase := Purchase{
		Buyer:           sender,
		TierName:        tier.Name,
		DurationHours:   s.Duration,
		ContractAddress: s.ContractAddress,
		Price:           *s.Price,
		Signature:       signature,
	}
	if res.Order != nil {
		purchase.OrderID = res.Order.ID.String()
	}
	m.notifier.NotifyPurchase(ctx, purchase)
	return saveErr
}

// failVerification сообщает об ошибке проверки. Этап остается прежним,
// сохраняется только список сообщений для очистки.
func (m *Machine) failVerification(ctx context.Context, s *session.Session, text string, cause error) error {
	if err := m.save(ctx, s, s.Stage); err != nil {
		logger.Warn("⚠️ Чат %d: не удалось сохранить сессию: %v", s.ChatID, err)
	}
	return m.reply(ctx, s.ChatID, text, cause)
}

func (m *Machine) showMainMenu(ctx context.Context, s *session.Session) error {
	_, err := m.send(ctx, s, OutgoingMessage{Text: mainMenuText(), Keyboard: mainMenuKeyboard(m.catalog)})
	return err
}

// showInfo справочный экран с кнопкой возврата
func (m *Machine) showInfo(ctx context.Context, s *session.Session, text string) error {
	if _, err := m.send(ctx, s, OutgoingMessage{Text: text, Keyboard: backKeyboard(ButtonTexts.Back)}); err != nil {
		return err
	}
	return m.save(ctx, s, s.Stage)
}

// load возвращает сессию чата или новую на этапе выбора услуги
func (m *Machine) load(ctx context.Context, chatID int64) (*session.Session, error) {
	s, err := m.sessions.Get(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения сессии %d: %w", chatID, err)
	}
	if s == nil {
		return session.New(chatID), nil
	}
	return s, nil
}

func (m *Machine) save(ctx context.Context, s *session.Session, from session.Stage) error {
	if err := m.sessions.Save(ctx, s); err != nil {
		return fmt.Errorf("ошибка сохранения сессии %d: %w", s.ChatID, err)
	}
	if from != s.Stage {
		logger.Debug("🔀 Чат %d: %s → %s", s.ChatID, from, s.Stage)
		m.metrics.ObserveTransition(string(from), string(s.Stage))
	}
	return nil
}

// send отправляет сообщение и запоминает его для последующей очистки
func (m *Machine) send(ctx context.Context, s *session.Session, msg OutgoingMessage) (int, error) {
	id, err := m.messenger.Send(ctx, s.ChatID, msg)
	if err != nil {
		return 0, fmt.Errorf("ошибка отправки сообщения в чат %d: %w", s.ChatID, err)
	}
	s.TrackMessage(id)
	return id, nil
}

// reply отправляет ответ без изменения сессии и возвращает cause
func (m *Machine) reply(ctx context.Context, chatID int64, text string, cause error) error {
	if _, err := m.messenger.Send(ctx, chatID, OutgoingMessage{Text: text}); err != nil {
		logger.Warn("⚠️ Чат %d: не удалось отправить ответ: %v", chatID, err)
	}
	return cause
}

func (m *Machine) deletePending(ctx context.Context, s *session.Session) {
	for _, id := range s.TakePendingMessages() {
		if err := m.messenger.Delete(ctx, s.ChatID, id); err != nil {
			logger.Debug("🗑️ Чат %d: не удалось удалить сообщение %d: %v", s.ChatID, id, err)
		}
	}
}

type nopNotifier struct{}

func (nopNotifier) NotifyNewUser(context.Context, Sender) {}
func (nopNotifier) NotifyPurchase(context.Context, Purchase) {}

type nopMetrics struct{}

func (nopMetrics) ObserveTransition(string, string) {}
func (nopMetrics) ObserveEvent(string) {}
