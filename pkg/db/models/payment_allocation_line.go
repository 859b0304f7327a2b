package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentAllocationLine records how much of one payment landed on one carton.
// The sum of a payment's lines never exceeds the payment amount.
type PaymentAllocationLine struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	PaymentID int64           `gorm:"column:payment_id;not null;index"`
	CartonID  int64           `gorm:"column:carton_id;not null;index"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
