package payments

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradedesk/backoffice/pkg/db/models"
	"github.com/tradedesk/backoffice/pkg/enums"
)

// Repository persists payments and their per-carton allocation lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	TxnCodeExists(ctx context.Context, code string) (bool, error)
	CreateAllocationLines(ctx context.Context, lines []models.PaymentAllocationLine) error
	SumVerifiedByType(ctx context.Context, orderID int64, paymentType enums.PaymentType) (decimal.Decimal, error)
	ListByOrder(ctx context.Context, orderID int64) ([]models.Payment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) TxnCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("txn_code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CreateAllocationLines(ctx context.Context, lines []models.PaymentAllocationLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

// SumVerifiedByType recomputes the order's settled total for one payment type
// by summation. Callers overwrite cached figures with this value rather than
// incrementing them, which keeps the figure self-healing.
func (r *repository) SumVerifiedByType(ctx context.Context, orderID int64, paymentType enums.PaymentType) (decimal.Decimal, error) {
	var raw *string
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("SUM(amount)").
		Where("order_id = ? AND status = ? AND payment_type = ?",
			orderID, enums.PaymentStatusVerified, paymentType).
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}

func (r *repository) ListByOrder(ctx context.Context, orderID int64) ([]models.Payment, error) {
	var list []models.Payment
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
