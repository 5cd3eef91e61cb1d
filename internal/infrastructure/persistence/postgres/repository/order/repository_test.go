package order

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"solboost-bot/internal/core/domain/orders"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepository(t *testing.T) (*OrderRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOrderRepository(sqlx.NewDb(db, "postgres")), mock
}

func paidOrder() *orders.Order {
	six := 6
	o := orders.NewPaidOrder()
	o.ChatID = 42
	o.UserID = 7
	o.TierID = "2"
	o.TierName = "🔸 Advanced Volume Boost"
	o.DurationHours = &six
	o.PriceSOL = decimal.RequireFromString("5.5")
	o.Lamports = 5_500_000_000
	o.TxSignature = "sig"
	return o
}

func TestIsSignatureUsed(t *testing.T) {
	repo, mock := newRepository(t)
	query := regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM orders WHERE tx_signature = $1)`)

	mock.ExpectQuery(query).WithArgs("sig").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(query).WithArgs("other").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	used, err := repo.IsSignatureUsed(context.Background(), "sig")
	require.NoError(t, err)
	assert.True(t, used)

	used, err = repo.IsSignatureUsed(context.Background(), "other")
	require.NoError(t, err)
	assert.False(t, used)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordInsertsOrder(t *testing.T) {
	repo, mock := newRepository(t)
	o := paidOrder()

	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(o.ID, o.ChatID, o.UserID, o.Username,
			o.TierID, o.TierName, sqlmock.AnyArg(),
			sqlmock.AnyArg(), int64(5_500_000_000),
			o.ContractAddress, o.Wallet, o.TxSignature,
			orders.StatusPaid, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Record(context.Background(), o))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMapsUniqueViolation(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectExec(`INSERT INTO orders`).
		WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "orders_tx_signature_key"})

	err := repo.Record(context.Background(), paidOrder())
	assert.ErrorIs(t, err, orders.ErrDuplicateSignature)
}

func TestRecordWrapsOtherErrors(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectExec(`INSERT INTO orders`).WillReturnError(errors.New("connection reset"))

	err := repo.Record(context.Background(), paidOrder())
	require.Error(t, err)
	assert.NotErrorIs(t, err, orders.ErrDuplicateSignature)
}
