package dues

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tradedesk/backoffice/internal/orders"
	"github.com/tradedesk/backoffice/internal/schema"
	"github.com/tradedesk/backoffice/pkg/db/models"
	"github.com/tradedesk/backoffice/pkg/enums"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type stubOrdersRepo struct {
	cartons    []models.Carton
	lockAsked  bool
	gotIDs     []int64
	gotOrderID int64
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }
func (s *stubOrdersRepo) FindByID(ctx context.Context, orderID int64) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubOrdersRepo) UpdateOrder(ctx context.Context, orderID int64, fields map[string]any) error {
	return nil
}
func (s *stubOrdersRepo) UpdateCarton(ctx context.Context, cartonID int64, fields map[string]any) error {
	return nil
}
func (s *stubOrdersRepo) ListCartons(ctx context.Context, orderID int64, cartonIDs []int64, forUpdate bool) ([]models.Carton, error) {
	s.gotOrderID = orderID
	s.gotIDs = cartonIDs
	s.lockAsked = forUpdate
	if len(cartonIDs) == 0 {
		return s.cartons, nil
	}
	wanted := map[int64]bool{}
	for _, id := range cartonIDs {
		wanted[id] = true
	}
	var out []models.Carton
	for _, c := range s.cartons {
		if wanted[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestLineFor_DirectDueColumn(t *testing.T) {
	calc := NewCalculator(schema.Full())
	line := calc.LineFor(models.Carton{
		ID:           1,
		BDTotalPrice: decPtr("100.00"),
		TotalPaid:    decPtr("60.00"),
		TotalDue:     decPtr("40.00"),
	})
	assert.True(t, line.Due.Equal(dec("40.00")), "due = %s", line.Due)
	assert.True(t, line.Paid.Equal(dec("60.00")))
	assert.True(t, line.Bill.Equal(dec("100.00")))
}

func TestLineFor_DueDerivedFromPaid(t *testing.T) {
	caps := schema.Static(map[string][]string{
		schema.TableCartons: {schema.ColumnBDTotalPrice, schema.ColumnTotalPaid, schema.ColumnBDPaymentStatus},
	})
	calc := NewCalculator(caps)
	line := calc.LineFor(models.Carton{
		ID:           2,
		BDTotalPrice: decPtr("100.00"),
		TotalPaid:    decPtr("30.00"),
	})
	assert.True(t, line.Due.Equal(dec("70.00")), "due = %s", line.Due)
}

func TestLineFor_DueDerivedFromStatusFlag(t *testing.T) {
	caps := schema.Static(map[string][]string{
		schema.TableCartons: {schema.ColumnBDTotalPrice, schema.ColumnBDPaymentStatus},
	})
	calc := NewCalculator(caps)

	pending := calc.LineFor(models.Carton{
		ID:              3,
		BDTotalPrice:    decPtr("55.00"),
		BDPaymentStatus: enums.CartonPaymentStatusPending,
	})
	assert.True(t, pending.Due.Equal(dec("55.00")))

	settled := calc.LineFor(models.Carton{
		ID:              4,
		BDTotalPrice:    decPtr("55.00"),
		BDPaymentStatus: enums.CartonPaymentStatusVerified,
	})
	assert.True(t, settled.Due.IsZero())
	assert.True(t, settled.Paid.Equal(dec("55.00")))
}

func TestLineFor_NoTrackingColumnsIsConservative(t *testing.T) {
	caps := schema.Static(map[string][]string{
		schema.TableCartons: {schema.ColumnBDTotalPrice},
	})
	calc := NewCalculator(caps)
	line := calc.LineFor(models.Carton{ID: 5, BDTotalPrice: decPtr("80.00")})
	assert.True(t, line.Due.Equal(dec("80.00")), "nothing is considered pre-paid")
}

func TestLineFor_NoBillColumnMeansNothingPayable(t *testing.T) {
	calc := NewCalculator(schema.Static(nil))
	line := calc.LineFor(models.Carton{ID: 6, BDTotalPrice: decPtr("80.00")})
	assert.True(t, line.Due.IsZero())
	assert.True(t, line.Bill.IsZero())
}

func TestLineFor_NegativeDueClamped(t *testing.T) {
	calc := NewCalculator(schema.Full())
	line := calc.LineFor(models.Carton{
		ID:           7,
		BDTotalPrice: decPtr("20.00"),
		TotalPaid:    decPtr("20.01"),
		TotalDue:     decPtr("-0.01"),
	})
	assert.True(t, line.Due.IsZero(), "due must never be negative, got %s", line.Due)
}

func TestTotalDue_SumsOnlyPositiveDues(t *testing.T) {
	repo := &stubOrdersRepo{cartons: []models.Carton{
		{ID: 1, OrderID: 10, BDTotalPrice: decPtr("50.00"), TotalPaid: decPtr("0"), TotalDue: decPtr("50.00")},
		{ID: 2, OrderID: 10, BDTotalPrice: decPtr("30.00"), TotalPaid: decPtr("30.00"), TotalDue: decPtr("0.00")},
		{ID: 3, OrderID: 10, BDTotalPrice: decPtr("20.00"), TotalPaid: decPtr("20.00"), TotalDue: decPtr("-0.004")},
	}}
	calc := NewCalculator(schema.Full())

	total, err := calc.TotalDue(context.Background(), repo, 10, nil)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("50.00")), "total = %s", total)
	assert.False(t, repo.lockAsked, "TotalDue must not lock rows")
}

func TestTotalDue_RestrictedToIDSubset(t *testing.T) {
	repo := &stubOrdersRepo{cartons: []models.Carton{
		{ID: 1, OrderID: 10, BDTotalPrice: decPtr("50.00"), TotalDue: decPtr("50.00")},
		{ID: 2, OrderID: 10, BDTotalPrice: decPtr("30.00"), TotalDue: decPtr("30.00")},
	}}
	calc := NewCalculator(schema.Full())

	total, err := calc.TotalDue(context.Background(), repo, 10, []int64{2})
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("30.00")), "total = %s", total)
	assert.Equal(t, []int64{2}, repo.gotIDs)
}

func TestPerLineDue_PropagatesLockIntent(t *testing.T) {
	repo := &stubOrdersRepo{}
	calc := NewCalculator(schema.Full())

	_, err := calc.PerLineDue(context.Background(), repo, 10, nil, true)
	require.NoError(t, err)
	assert.True(t, repo.lockAsked)
}
