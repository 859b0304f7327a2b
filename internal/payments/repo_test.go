package payments

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tradedesk/backoffice/pkg/db/models"
	"github.com/tradedesk/backoffice/pkg/enums"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:payments_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`CREATE TABLE IF NOT EXISTS payments (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER,
  bank_account_id INTEGER,
  txn_code TEXT NOT NULL UNIQUE,
  amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'verifying',
  payment_type TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)
	require.NoError(t, conn.Exec(`CREATE TABLE IF NOT EXISTS payment_allocation_lines (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  payment_id INTEGER NOT NULL,
  carton_id INTEGER NOT NULL,
  amount NUMERIC NOT NULL,
  created_at DATETIME
);`).Error)

	return conn
}

func insertPayment(t *testing.T, repo Repository, orderID int64, code string, amount string, status enums.PaymentStatus, paymentType enums.PaymentType) *models.Payment {
	t.Helper()
	p := &models.Payment{
		OrderID:     &orderID,
		TxnCode:     code,
		Amount:      decimal.RequireFromString(amount),
		Status:      status,
		PaymentType: paymentType,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestRepository_TxnCodeExists(t *testing.T) {
	repo := NewRepository(setupPaymentsTestDB(t))
	ctx := context.Background()

	insertPayment(t, repo, 1, "TDX-20260801-abc", "100.00", enums.PaymentStatusVerified, enums.PaymentTypeDeposit)

	exists, err := repo.TxnCodeExists(ctx, "TDX-20260801-abc")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.TxnCodeExists(ctx, "TDX-20260801-xyz")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_SumVerifiedByType(t *testing.T) {
	repo := NewRepository(setupPaymentsTestDB(t))
	ctx := context.Background()

	insertPayment(t, repo, 1, "c1", "100.00", enums.PaymentStatusVerified, enums.PaymentTypeDeposit)
	insertPayment(t, repo, 1, "c2", "50.50", enums.PaymentStatusVerified, enums.PaymentTypeDeposit)
	// Excluded: wrong status, wrong type, wrong order.
	insertPayment(t, repo, 1, "c3", "999.00", enums.PaymentStatusVerifying, enums.PaymentTypeDeposit)
	insertPayment(t, repo, 1, "c4", "999.00", enums.PaymentStatusVerified, enums.PaymentTypeBDFinal)
	insertPayment(t, repo, 2, "c5", "999.00", enums.PaymentStatusVerified, enums.PaymentTypeDeposit)

	sum, err := repo.SumVerifiedByType(ctx, 1, enums.PaymentTypeDeposit)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("150.50")), "got %s", sum)
}

func TestRepository_SumVerifiedByType_NoRows(t *testing.T) {
	repo := NewRepository(setupPaymentsTestDB(t))

	sum, err := repo.SumVerifiedByType(context.Background(), 42, enums.PaymentTypeDeposit)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestRepository_ListByOrder(t *testing.T) {
	repo := NewRepository(setupPaymentsTestDB(t))
	ctx := context.Background()

	first := insertPayment(t, repo, 7, "l1", "10.00", enums.PaymentStatusVerified, enums.PaymentTypeDeposit)
	second := insertPayment(t, repo, 7, "l2", "20.00", enums.PaymentStatusVerified, enums.PaymentTypeBDFinal)
	insertPayment(t, repo, 8, "l3", "30.00", enums.PaymentStatusVerified, enums.PaymentTypeDeposit)

	list, err := repo.ListByOrder(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Newest first; id breaks the tie for rows created in the same instant.
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestRepository_CreateAllocationLines(t *testing.T) {
	conn := setupPaymentsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	p := insertPayment(t, repo, 1, "a1", "70.00", enums.PaymentStatusVerified, enums.PaymentTypeBDFinal)

	require.NoError(t, repo.CreateAllocationLines(ctx, []models.PaymentAllocationLine{
		{PaymentID: p.ID, CartonID: 1, Amount: decimal.RequireFromString("50.00")},
		{PaymentID: p.ID, CartonID: 2, Amount: decimal.RequireFromString("20.00")},
	}))
	// Empty input is a no-op, not an error.
	require.NoError(t, repo.CreateAllocationLines(ctx, nil))

	var count int64
	require.NoError(t, conn.Model(&models.PaymentAllocationLine{}).Where("payment_id = ?", p.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
