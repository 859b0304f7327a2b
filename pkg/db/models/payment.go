package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradedesk/backoffice/pkg/enums"
)

// Payment records one verified money movement. OrderID is nil for wallet
// top-ups, which fund the wallet without reference to any order. BankAccountID
// is nil for wallet captures; amount is the post-capping applied total.
type Payment struct {
	ID            int64               `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID       *int64              `gorm:"column:order_id;index"`
	BankAccountID *int64              `gorm:"column:bank_account_id"`
	TxnCode       string              `gorm:"column:txn_code;size:32;not null;uniqueIndex"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(14,2);not null"`
	Status        enums.PaymentStatus `gorm:"column:status;size:16;not null;default:'verifying'"`
	PaymentType   enums.PaymentType   `gorm:"column:payment_type;size:16;not null"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
