package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"solboost-bot/internal/core/domain/catalog"
	"solboost-bot/internal/core/domain/orders"
	"solboost-bot/internal/core/domain/payment"
	"solboost-bot/internal/core/domain/session"
	storage "solboost-bot/internal/infrastructure/persistence/in_memory_storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testChat     int64 = 42
	testCA             = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	testSignature      = "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW"
)

var testSender = Sender{ID: 7, Username: "alice"}

type sentMessage struct {
	ChatID int64
	ID     int
	Msg    OutgoingMessage
}

type fakeMessenger struct {
	mu      sync.Mutex
	nextID  int
	sent    []sentMessage
	deleted []int
	sendErr error
}

func (f *fakeMessenger) Send(_ context.Context, chatID int64, msg OutgoingMessage) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, sentMessage{ChatID: chatID, ID: f.nextID, Msg: msg})
	return f.nextID, nil
}

func (f *fakeMessenger) Delete(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeMessenger) last() OutgoingMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return OutgoingMessage{}
	}
	return f.sent[len(f.sent)-1].Msg
}

func (f *fakeMessenger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakePayments struct {
	mu      sync.Mutex
	status  payment.Status
	err     error
	calls   []payment.ProcessPaymentRequest
	started chan struct{}
	release chan struct{}
	active  int32
	overlap int32
}

func (f *fakePayments) ProcessPayment(_ context.Context, req payment.ProcessPaymentRequest) (*payment.PaymentResult, error) {
	if atomic.AddInt32(&f.active, 1) > 1 {
		atomic.StoreInt32(&f.overlap, 1)
	}
	defer atomic.AddInt32(&f.active, -1)

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}

	f.mu.Lock()
	f.calls = append(f.calls, req)
	status, err := f.status, f.err
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	res := &payment.PaymentResult{Verification: payment.Result{Status: status, Signature: req.Signature}}
	if status == payment.StatusPaid {
		order := orders.NewPaidOrder()
		order.TxSignature = req.Signature
		res.Order = order
	}
	return res, nil
}

func (f *fakePayments) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeNotifier struct {
	mu        sync.Mutex
	newUsers  []Sender
	purchases []Purchase
}

func (f *fakeNotifier) NotifyNewUser(_ context.Context, user Sender) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.newUsers = append(f.newUsers, user)
}

func (f *fakeNotifier) NotifyPurchase(_ context.Context, p Purchase) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchases = append(f.purchases, p)
}

type fakeRoster struct {
	mu  sync.Mutex
	ids []int64
	err error
}

func (f *fakeRoster) IsOperator(userID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.ids {
		if id == userID {
			return true
		}
	}
	return false
}

func (f *fakeRoster) Add(_ context.Context, userID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.IsOperator(userID) {
		return false, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, userID)
	return true, nil
}

func (f *fakeRoster) Remove(_ context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, id := range f.ids {
		if id == userID {
			f.ids = append(f.ids[:i], f.ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoster) List() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.ids...)
}

type fakeMetrics struct {
	mu          sync.Mutex
	transitions []string
}

func (f *fakeMetrics) ObserveTransition(from, to string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions = append(f.transitions, from+">"+to)
}

func (f *fakeMetrics) ObserveEvent(string) {}

type harness struct {
	machine   *Machine
	store     *storage.SessionStore
	messenger *fakeMessenger
	payments  *fakePayments
	notifier  *fakeNotifier
	roster    *fakeRoster
	metrics   *fakeMetrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, catalog.Default(), nil)
}

// newHarnessWith позволяет подменить каталог и хранилище сессий
func newHarnessWith(t *testing.T, cat *catalog.Catalog, sessions session.Store) *harness {
	t.Helper()

	h := &harness{
		store:     storage.NewSessionStore(storage.StorageConfig{}),
		messenger: &fakeMessenger{},
		payments:  &fakePayments{status: payment.StatusPaid},
		notifier:  &fakeNotifier{},
		roster:    &fakeRoster{ids: []int64{1}},
		metrics:   &fakeMetrics{},
	}

	if sessions == nil {
		sessions = h.store
	}

	m, err := NewMachine(Dependencies{
		Catalog:   cat,
		Sessions:  sessions,
		Messenger: h.messenger,
		Payments:  h.payments,
		Notifier:  h.notifier,
		Roster:    h.roster,
		Metrics:   h.metrics,
	})
	require.NoError(t, err)
	h.machine = m
	return h
}

func (h *harness) session(t *testing.T) *session.Session {
	t.Helper()
	s, err := h.store.Get(context.Background(), testChat)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func (h *harness) selectAndExpect(t *testing.T, data string) {
	t.Helper()
	require.NoError(t, h.machine.HandleSelection(context.Background(), testChat, testSender, data))
}

func (h *harness) textAndExpect(t *testing.T, text string) {
	t.Helper()
	require.NoError(t, h.machine.HandleText(context.Background(), testChat, testSender, text))
}

// driveToSignature доводит сессию тарифа 2 / 6 ч до ожидания подписи
func (h *harness) driveToSignature(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.machine.Start(ctx, testChat, testSender))
	h.selectAndExpect(t, "2")
	h.selectAndExpect(t, "6")
	h.textAndExpect(t, testCA)
	h.selectAndExpect(t, CallbackPaid)
	require.Equal(t, session.StageAwaitingTxSignature, h.session(t).Stage)
}

func TestNewMachineRequiresDependencies(t *testing.T) {
	_, err := NewMachine(Dependencies{})
	assert.Error(t, err)

	_, err = NewMachine(Dependencies{
		Catalog:   catalog.Default(),
		Sessions:  storage.NewSessionStore(storage.StorageConfig{}),
		Messenger: &fakeMessenger{},
		Payments:  &fakePayments{},
	})
	assert.Error(t, err, "без списка админов")
}

func TestStartShowsMainMenuAndResets(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.driveToSignature(t)
	before := h.messenger.count()

	require.NoError(t, h.machine.Start(ctx, testChat, testSender))

	s := h.session(t)
	assert.Equal(t, session.StageSelectingService, s.Stage)
	assert.Empty(t, s.TierID)
	assert.Nil(t, s.Duration)
	assert.Nil(t, s.Price)
	assert.Empty(t, s.ContractAddress)
	assert.Len(t, s.PendingMessageIDs, 1, "только новое главное меню")

	// все сообщения прошлого диалога удалены
	assert.Len(t, h.messenger.deleted, before)

	menu := h.messenger.last()
	require.NotNil(t, menu.Keyboard)
	rows := menu.Keyboard.Rows
	require.Len(t, rows, 6)
	assert.Equal(t, "1", rows[0][0].Data)
	assert.Equal(t, "🔹 Basic Volume Boost", rows[0][0].Text)
	assert.Equal(t, CallbackMonthlySub, rows[4][0].Data)
	assert.Equal(t, CallbackPartnership, rows[4][1].Data)
	assert.Equal(t, CallbackHelp, rows[5][0].Data)
	assert.Contains(t, menu.Text, "Welcome to SolBooster Volume Bot")

	assert.Len(t, h.notifier.newUsers, 2)
}

func TestSelectFixedTierGoesToContractAddress(t *testing.T) {
	h := newHarness(t)
	h.selectAndExpect(t, "1")

	s := h.session(t)
	assert.Equal(t, session.StageWaitingForCA, s.Stage)
	assert.Equal(t, "1", s.TierID)
	require.NotNil(t, s.Duration)
	assert.Equal(t, 1, *s.Duration)
	require.NotNil(t, s.Price)
	assert.True(t, s.Price.Equal(decimal.RequireFromString("1.25")))
	assert.Equal(t, catalog.DefaultWallet, s.DestinationAddress)

	text := h.messenger.last().Text
	assert.Contains(t, text, "1-2 buys per minute and 1 sell per minute")
	assert.Contains(t, text, "Moderate Mode")
	assert.Contains(t, text, "*Price:* 1.25 SOL")
}

func TestSelectMultiDurationTier(t *testing.T) {
	h := newHarness(t)
	h.selectAndExpect(t, "2")

	s := h.session(t)
	assert.Equal(t, session.StageSelectingDuration, s.Stage)
	assert.Nil(t, s.Price)

	kb := h.messenger.last().Keyboard
	require.NotNil(t, kb)
	require.Len(t, kb.Rows, 4)
	assert.Equal(t, "3 Hours ⏰ - 2.75 SOL 💸", kb.Rows[0][0].Text)
	assert.Equal(t, "6", kb.Rows[1][0].Data)
	assert.Equal(t, CallbackBack, kb.Rows[3][0].Data)

	h.selectAndExpect(t, "12")
	s = h.session(t)
	assert.Equal(t, session.StageWaitingForCA, s.Stage)
	assert.Equal(t, 12, *s.Duration)
	assert.True(t, s.Price.Equal(decimal.RequireFromString("10.5")))
	assert.Contains(t, h.messenger.last().Text, "Aggressive Mode")
}

func TestSelectCustomTier(t *testing.T) {
	h := newHarness(t)
	h.selectAndExpect(t, "4")

	s := h.session(t)
	assert.Equal(t, session.StageCustomizingService, s.Stage)
	assert.Nil(t, s.Price)

	kb := h.messenger.last().Keyboard
	require.NotNil(t, kb)
	assert.Equal(t, WebsiteURL, kb.Rows[0][0].URL)
	assert.Equal(t, CallbackBack, kb.Rows[1][0].Data)

	// в индивидуальном тарифе работает только "назад"
	err := h.machine.HandleSelection(context.Background(), testChat, testSender, "6")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, session.StageCustomizingService, h.session(t).Stage)
}

func TestUnknownTierLeavesSessionUnchanged(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.machine.Start(ctx, testChat, testSender))
	before := h.session(t)

	err := h.machine.HandleSelection(ctx, testChat, testSender, "99")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, Messages.InvalidService, h.messenger.last().Text)

	after := h.session(t)
	assert.Equal(t, before.Stage, after.Stage)
	assert.Equal(t, before.TierID, after.TierID)
	assert.Equal(t, before.PendingMessageIDs, after.PendingMessageIDs)
}

func TestSelectionWithoutSessionActsAsFresh(t *testing.T) {
	h := newHarness(t)

	err := h.machine.HandleSelection(context.Background(), testChat, testSender, "99")
	assert.ErrorIs(t, err, ErrValidation)

	s, err := h.store.Get(context.Background(), testChat)
	require.NoError(t, err)
	assert.Nil(t, s, "ошибка не должна создавать сессию")

	h.selectAndExpect(t, "3")
	assert.Equal(t, session.StageSelectingDuration, h.session(t).Stage)
}

func TestInvalidDurationStays(t *testing.T) {
	h := newHarness(t)
	h.selectAndExpect(t, "2")

	for _, data := range []string{"24", "abc", "0", "-3"} {
		err := h.machine.HandleSelection(context.Background(), testChat, testSender, data)
		assert.ErrorIs(t, err, ErrValidation, data)
		assert.Equal(t, Messages.InvalidDuration, h.messenger.last().Text)
		assert.Equal(t, session.StageSelectingDuration, h.session(t).Stage)
	}
}

func TestBackFromWaitingForCAClearsFields(t *testing.T) {
	h := newHarness(t)
	h.selectAndExpect(t, "2")
	h.selectAndExpect(t, "3")
	require.Equal(t, session.StageWaitingForCA, h.session(t).Stage)

	h.selectAndExpect(t, CallbackBack)

	s := h.session(t)
	assert.Equal(t, testChat, s.ChatID)
	assert.Equal(t, session.StageSelectingService, s.Stage)
	assert.Empty(t, s.TierID)
	assert.Nil(t, s.Duration)
	assert.Nil(t, s.Price)
	assert.Empty(t, s.DestinationAddress)
	assert.Empty(t, s.ContractAddress)
	assert.Len(t, h.messenger.deleted, 2, "меню длительности и сводка тарифа")
}

func TestContractAddressValidation(t *testing.T) {
	h := newHarness(t)
	h.selectAndExpect(t, "1")

	for _, bad := range []string{"hello", "0" + testCA[1:], strings.Repeat("a", 45)} {
		err := h.machine.HandleText(context.Background(), testChat, testSender, bad)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, Messages.InvalidCA, h.messenger.last().Text)
		assert.Equal(t, session.StageWaitingForCA, h.session(t).Stage)
	}

	h.textAndExpect(t, "  "+testCA+"\n")
	s := h.session(t)
	assert.Equal(t, session.StageAwaitingPaymentConfirmation, s.Stage)
	assert.Equal(t, testCA, s.ContractAddress)

	msg := h.messenger.last()
	assert.Contains(t, msg.Text, "*1.25 SOL*")
	assert.Contains(t, msg.Text, catalog.DefaultWallet)
	require.NotNil(t, msg.Keyboard)
	assert.Equal(t, CallbackPaid, msg.Keyboard.Rows[0][0].Data)
}

func TestDurationTokenTypedAsTextIsAnAddress(t *testing.T) {
	h := newHarness(t)
	h.selectAndExpect(t, "1")

	err := h.machine.HandleText(context.Background(), testChat, testSender, "6")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, Messages.InvalidCA, h.messenger.last().Text)
	assert.Equal(t, 1, *h.session(t).Duration)
}

func TestTierTokenOutsideSelectingServiceIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.selectAndExpect(t, "1")

	err := h.machine.HandleSelection(context.Background(), testChat, testSender, "2")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "1", h.session(t).TierID)
	assert.Equal(t, session.StageWaitingForCA, h.session(t).Stage)
}

func TestPaidOnlyAfterContractAddress(t *testing.T) {
	h := newHarness(t)
	h.selectAndExpect(t, "1")

	err := h.machine.HandleSelection(context.Background(), testChat, testSender, CallbackPaid)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, Messages.SelectServiceFirst, h.messenger.last().Text)
	assert.Equal(t, session.StageWaitingForCA, h.session(t).Stage)

	h.textAndExpect(t, testCA)
	h.textAndExpect(t, "I paid already")
	assert.Equal(t, Messages.PressPaid, h.messenger.last().Text)

	h.selectAndExpect(t, CallbackPaid)
	assert.Equal(t, session.StageAwaitingTxSignature, h.session(t).Stage)
	last := h.messenger.last()
	assert.Equal(t, Messages.AskSignature, last.Text)
	assert.True(t, last.ForceReply)
}

func TestSuccessfulPayment(t *testing.T) {
	h := newHarness(t)
	h.driveToSignature(t)

	h.textAndExpect(t, "https://solscan.io/tx/"+testSignature)

	require.Equal(t, 1, h.payments.callCount())
	req := h.payments.calls[0]
	assert.Equal(t, testSignature, req.Signature)
	assert.Equal(t, catalog.DefaultWallet, req.Wallet)
	assert.True(t, req.Price.Equal(decimal.RequireFromString("5.5")))
	assert.Equal(t, testCA, req.ContractAddress)
	assert.Equal(t, testSender.ID, req.UserID)

	s := h.session(t)
	assert.Equal(t, session.StageCompleted, s.Stage)
	assert.Equal(t, testSignature, s.TxSignature)
	assert.Len(t, s.PendingMessageIDs, 1)

	last := h.messenger.last()
	assert.Equal(t, Messages.PaymentConfirmed, last.Text)
	require.NotNil(t, last.Keyboard)
	assert.Equal(t, ButtonTexts.BackToMain, last.Keyboard.Rows[0][0].Text)

	require.Len(t, h.notifier.purchases, 1)
	p := h.notifier.purchases[0]
	assert.Equal(t, "🔸 Advanced Volume Boost", p.TierName)
	assert.Equal(t, 6, *p.DurationHours)
	assert.NotEmpty(t, p.OrderID)
	assert.Equal(t, testSender, p.Buyer)

	assert.Contains(t, h.metrics.transitions, "awaiting_tx_signature>completed")
}

func TestVerificationFailuresKeepStage(t *testing.T) {
	tests := []struct {
		name   string
		status payment.Status
		err    error
		want   error
		text   string
	}{
		{"not found", payment.StatusNotFound, nil, ErrNotFound, Messages.NotFound},
		{"insufficient", payment.StatusInsufficient, nil, ErrInsufficientPayment, Messages.VerificationFailed},
		{"unparseable", payment.StatusUnparseable, nil, ErrTransient, Messages.VerificationError},
		{"rpc error", payment.StatusError, nil, ErrTransient, Messages.VerificationError},
		{"reused", "", payment.ErrSignatureUsed, ErrAlreadyUsed, Messages.AlreadyUsed},
		{"service failure", "", errors.New("boom"), ErrTransient, Messages.VerificationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.driveToSignature(t)
			h.payments.status = tt.status
			h.payments.err = tt.err

			err := h.machine.HandleText(context.Background(), testChat, testSender, testSignature)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsUserFacing(err))
			assert.Equal(t, tt.text, h.messenger.last().Text)

			s := h.session(t)
			assert.Equal(t, session.StageAwaitingTxSignature, s.Stage)
			assert.Empty(t, s.TxSignature)
			assert.Empty(t, h.notifier.purchases)
		})
	}
}

func TestChargedAmountMatchesDisplayedPrice(t *testing.T) {
	three := 3
	base := decimal.RequireFromString("0.101")
	cat, err := catalog.New([]catalog.ServiceTier{{
		ID:            "9",
		Name:          "Odd Boost",
		FixedDuration: &three,
		BasePrice:     &base,
		BuyStrategy:   "1 buy per minute",
		SellStrategy:  "1 sell per minute",
		Wallet:        catalog.DefaultWallet,
	}})
	require.NoError(t, err)

	h := newHarnessWith(t, cat, nil)
	h.selectAndExpect(t, "9")

	s := h.session(t)
	require.NotNil(t, s.Price)
	assert.Equal(t, "0.3", s.Price.String())

	h.textAndExpect(t, testCA)
	assert.Contains(t, h.messenger.last().Text, "0.30 SOL")

	h.selectAndExpect(t, CallbackPaid)
	h.textAndExpect(t, testSignature)

	require.Equal(t, 1, h.payments.callCount())
	lamports, err := payment.ToBaseUnits(h.payments.calls[0].Price)
	require.NoError(t, err)
	assert.Equal(t, uint64(300000000), lamports)
	assert.Equal(t, session.StageCompleted, h.session(t).Stage)
}

// completionFailingStore отказывает в сохранении завершенной сессии
type completionFailingStore struct {
	*storage.SessionStore
}

func (s completionFailingStore) Save(ctx context.Context, sess *session.Session) error {
	if sess.Stage == session.StageCompleted {
		return errors.New("redis unavailable")
	}
	return s.SessionStore.Save(ctx, sess)
}

func TestPurchaseNotifiedEvenIfSessionSaveFails(t *testing.T) {
	store := storage.NewSessionStore(storage.StorageConfig{})
	h := newHarnessWith(t, catalog.Default(), completionFailingStore{store})
	h.store = store
	h.driveToSignature(t)

	err := h.machine.HandleText(context.Background(), testChat, testSender, testSignature)
	assert.Error(t, err)

	require.Len(t, h.notifier.purchases, 1)
	assert.Equal(t, testSignature, h.notifier.purchases[0].Signature)
	assert.Equal(t, Messages.PaymentConfirmed, h.messenger.last().Text)
}

func TestMalformedSignatureIsRejectedBeforeVerification(t *testing.T) {
	h := newHarness(t)
	h.driveToSignature(t)

	err := h.machine.HandleText(context.Background(), testChat, testSender, "notasignature")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, Messages.InvalidSignature, h.messenger.last().Text)

	err = h.machine.HandleText(context.Background(), testChat, testSender, "ftp://example.com/tx/"+testSignature)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, Messages.InvalidURL, h.messenger.last().Text)

	assert.Zero(t, h.payments.callCount())
	assert.Equal(t, session.StageAwaitingTxSignature, h.session(t).Stage)
}

func TestInfoScreensKeepStage(t *testing.T) {
	h := newHarness(t)
	h.selectAndExpect(t, "2")

	for _, data := range []string{CallbackHelp, CallbackMonthlySub, CallbackPartnership} {
		h.selectAndExpect(t, data)
		assert.Equal(t, session.StageSelectingDuration, h.session(t).Stage)
		kb := h.messenger.last().Keyboard
		require.NotNil(t, kb)
		assert.Equal(t, CallbackBack, kb.Rows[0][0].Data)
	}

	require.NoError(t, h.machine.Help(context.Background(), testChat))
	assert.Contains(t, h.messenger.last().Text, "/start")
}

func TestFreeTextOutsideInputStages(t *testing.T) {
	h := newHarness(t)
	h.textAndExpect(t, "hello")
	assert.Equal(t, Messages.UseMenu, h.messenger.last().Text)

	s, err := h.store.Get(context.Background(), testChat)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSameChatEventsAreSerialized(t *testing.T) {
	h := newHarness(t)
	h.driveToSignature(t)

	h.payments.started = make(chan struct{}, 2)
	h.payments.release = make(chan struct{})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = h.machine.HandleText(context.Background(), testChat, testSender, testSignature)
		}(i)
	}

	<-h.payments.started
	select {
	case <-h.payments.started:
		t.Fatal("вторая проверка началась до завершения первой")
	case <-time.After(50 * time.Millisecond):
	}
	close(h.payments.release)
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&h.payments.overlap))
	// первая завершила заказ, вторая попала в этап completed
	assert.Equal(t, 1, h.payments.callCount())
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, session.StageCompleted, h.session(t).Stage)
	assert.Zero(t, h.machine.locks.size())
}

func TestDifferentChatsRunConcurrently(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for chat := int64(100); chat < 120; chat++ {
		wg.Add(1)
		go func(chat int64) {
			defer wg.Done()
			assert.NoError(t, h.machine.HandleSelection(ctx, chat, testSender, "1"))
			assert.NoError(t, h.machine.HandleText(ctx, chat, testSender, testCA))
		}(chat)
	}
	wg.Wait()

	for chat := int64(100); chat < 120; chat++ {
		s, err := h.store.Get(ctx, chat)
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, session.StageAwaitingPaymentConfirmation, s.Stage)
	}
}

func TestMessengerFailureDoesNotSaveSession(t *testing.T) {
	h := newHarness(t)
	h.messenger.sendErr = errors.New("telegram down")

	err := h.machine.HandleSelection(context.Background(), testChat, testSender, "1")
	require.Error(t, err)
	assert.False(t, IsUserFacing(err))

	s, _ := h.store.Get(context.Background(), testChat)
	assert.Nil(t, s)
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	km := newKeyedMutex()
	unlock := km.Lock(1)
	assert.Equal(t, 1, km.size())
	unlock()
	assert.Zero(t, km.size())
}
