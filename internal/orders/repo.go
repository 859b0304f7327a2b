package orders

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradedesk/backoffice/pkg/db/models"
)

// Repository exposes reads and writes for orders and their cartons. Carton
// reads destined for mutation take row locks so concurrent captures against
// the same order serialize instead of double-spending a stale due snapshot.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, orderID int64) (*models.Order, error)
	UpdateOrder(ctx context.Context, orderID int64, fields map[string]any) error
	ListCartons(ctx context.Context, orderID int64, cartonIDs []int64, forUpdate bool) ([]models.Carton, error)
	UpdateCarton(ctx context.Context, cartonID int64, fields map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrder(ctx context.Context, orderID int64, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(fields).Error
}

// ListCartons returns the order's cartons ascending by id, optionally
// restricted to an explicit id set. forUpdate acquires SELECT ... FOR UPDATE
// on dialects that support it; sqlite (tests) serializes at the database
// level instead.
func (r *repository) ListCartons(ctx context.Context, orderID int64, cartonIDs []int64, forUpdate bool) ([]models.Carton, error) {
	q := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC")
	if len(cartonIDs) > 0 {
		q = q.Where("id IN ?", cartonIDs)
	}
	if lock := rowLock(r.db.Dialector.Name(), forUpdate); lock != nil {
		q = q.Clauses(lock)
	}

	var cartons []models.Carton
	if err := q.Find(&cartons).Error; err != nil {
		return nil, err
	}
	return cartons, nil
}

// rowLock returns the FOR UPDATE clause carton reads attach before mutating,
// or nil when the dialect cannot express one. Dropping the clause on sqlite is
// safe: its writers serialize on the database file.
func rowLock(dialect string, forUpdate bool) clause.Expression {
	if !forUpdate || dialect != "postgres" {
		return nil
	}
	return clause.Locking{Strength: "UPDATE"}
}

func (r *repository) UpdateCarton(ctx context.Context, cartonID int64, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Carton{}).
		Where("id = ?", cartonID).
		Updates(fields).Error
}
