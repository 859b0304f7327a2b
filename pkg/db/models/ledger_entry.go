package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradedesk/backoffice/pkg/enums"
)

// LedgerEntry is one immutable signed money event against a wallet. Entries
// are append-only: corrections are new offsetting entries, never updates.
type LedgerEntry struct {
	ID        int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	WalletID  int64                 `gorm:"column:wallet_id;not null;index"`
	EntryType enums.LedgerEntryType `gorm:"column:entry_type;size:32;not null"`
	Amount    decimal.Decimal       `gorm:"column:amount;type:numeric(14,2);not null"`
	Currency  string                `gorm:"column:currency;size:3;not null"`
	OrderID   *int64                `gorm:"column:order_id"`
	CartonID  *int64                `gorm:"column:carton_id"`
	PaymentID *int64                `gorm:"column:payment_id"`
	Notes     *string               `gorm:"column:notes"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}
