package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradedesk/backoffice/pkg/enums"
)

// Carton is a billable shipping unit under an order. The monetary columns are
// schema-variant: older deployments lack some or all of BDTotalPrice,
// TotalPaid and TotalDue, so every read and write of them must go through the
// schema capabilities check. When both TotalPaid and TotalDue exist,
// total_paid + total_due == bd_total_price holds within rounding epsilon.
type Carton struct {
	ID                  int64                     `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID             int64                     `gorm:"column:order_id;not null;index"`
	BDTotalPrice        *decimal.Decimal          `gorm:"column:bd_total_price;type:numeric(14,2)"`
	TotalPaid           *decimal.Decimal          `gorm:"column:total_paid;type:numeric(14,2)"`
	TotalDue            *decimal.Decimal          `gorm:"column:total_due;type:numeric(14,2)"`
	BDPaymentStatus     enums.CartonPaymentStatus `gorm:"column:bd_payment_status;size:16;not null;default:'pending'"`
	BDPaymentVerifiedAt *time.Time                `gorm:"column:bd_payment_verified_at"`
	CreatedAt           time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
