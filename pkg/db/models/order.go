package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradedesk/backoffice/pkg/enums"
)

// Order is the aggregate charged entity, created from an approved customer
// query. AmountTotal is the remaining sourcing due (legacy semantics: only
// deposit captures decrement it); PaidAmount is recomputed by summation over
// verified deposit payments, never incremented in place.
type Order struct {
	ID            int64                    `gorm:"column:id;primaryKey;autoIncrement"`
	CustomerID    int64                    `gorm:"column:customer_id;not null;index"`
	OrderType     enums.OrderType          `gorm:"column:order_type;size:16;not null"`
	AmountTotal   decimal.Decimal          `gorm:"column:amount_total;type:numeric(14,2);not null"`
	PaidAmount    decimal.Decimal          `gorm:"column:paid_amount;type:numeric(14,2);not null"`
	ProductPrice  *decimal.Decimal         `gorm:"column:product_price;type:numeric(14,2)"`
	Status        enums.OrderStatus        `gorm:"column:status;size:32;not null;default:'pending'"`
	PaymentStatus enums.OrderPaymentStatus `gorm:"column:payment_status;size:32;not null;default:'pending'"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
