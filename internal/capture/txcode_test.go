package capture

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tradedesk/backoffice/internal/payments"
	"github.com/tradedesk/backoffice/pkg/db/models"
	"github.com/tradedesk/backoffice/pkg/enums"
)

type fakePaymentsRepo struct {
	existing map[string]bool
	checks   int
}

func (f *fakePaymentsRepo) WithTx(tx *gorm.DB) payments.Repository { return f }

func (f *fakePaymentsRepo) Create(ctx context.Context, payment *models.Payment) error { return nil }

func (f *fakePaymentsRepo) TxnCodeExists(ctx context.Context, code string) (bool, error) {
	f.checks++
	return f.existing[code], nil
}

func (f *fakePaymentsRepo) CreateAllocationLines(ctx context.Context, lines []models.PaymentAllocationLine) error {
	return nil
}

func (f *fakePaymentsRepo) SumVerifiedByType(ctx context.Context, orderID int64, paymentType enums.PaymentType) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakePaymentsRepo) ListByOrder(ctx context.Context, orderID int64) ([]models.Payment, error) {
	return nil, nil
}

func TestTxnCodeGenerator_Format(t *testing.T) {
	gen := newTxnCodeGenerator("TDX", 5)
	gen.clock = func() time.Time { return time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC) }

	code, err := gen.Next(context.Background(), &fakePaymentsRepo{existing: map[string]bool{}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "TDX-20260830-"), "code = %s", code)
	assert.Len(t, code, len("TDX-20260830-")+8)
}

func TestTxnCodeGenerator_RetriesOnCollision(t *testing.T) {
	gen := newTxnCodeGenerator("TDX", 5)
	gen.clock = func() time.Time { return time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC) }

	suffixes := []string{"AAAAAAAA", "BBBBBBBB"}
	gen.random = func() string {
		s := suffixes[0]
		if len(suffixes) > 1 {
			suffixes = suffixes[1:]
		}
		return s
	}

	repo := &fakePaymentsRepo{existing: map[string]bool{"TDX-20260830-AAAAAAAA": true}}
	code, err := gen.Next(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, "TDX-20260830-BBBBBBBB", code)
	assert.Equal(t, 2, repo.checks)
}

func TestTxnCodeGenerator_TimestampFallback(t *testing.T) {
	gen := newTxnCodeGenerator("TDX", 3)
	now := time.Date(2026, 8, 30, 10, 0, 0, 123, time.UTC)
	gen.clock = func() time.Time { return now }
	gen.random = func() string { return "AAAAAAAA" }

	repo := &fakePaymentsRepo{existing: map[string]bool{"TDX-20260830-AAAAAAAA": true}}
	code, err := gen.Next(context.Background(), repo)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "TDX-20260830-T"), "code = %s", code)
	assert.Equal(t, 3, repo.checks, "retry budget is honored")
}
