package models

import "time"

// Wallet is a customer's prepaid balance account. The balance itself is never
// stored; it is always folded from the wallet's ledger entries.
type Wallet struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	OwnerID   int64     `gorm:"column:owner_id;not null;uniqueIndex"`
	Currency  string    `gorm:"column:currency;size:3;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
