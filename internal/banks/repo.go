package banks

import (
	"context"

	"gorm.io/gorm"

	"github.com/tradedesk/backoffice/pkg/db/models"
)

// Repository reads the receiving bank accounts offered to paying customers.
type Repository interface {
	ListActive(ctx context.Context) ([]models.BankAccount, error)
	FindByID(ctx context.Context, id int64) (*models.BankAccount, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a bank account repository bound to the database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActive(ctx context.Context) ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("label ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.BankAccount, error) {
	var account models.BankAccount
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}
