package models

import "time"

// BankAccount is a receiving account offered to customers paying by bank
// transfer. Only the listing surface lives in this service; bank-proof
// verification is handled by the back-office UI.
type BankAccount struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Label     string    `gorm:"column:label;size:128;not null"`
	AccountNo string    `gorm:"column:account_no;size:64;not null"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
