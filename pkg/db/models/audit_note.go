package models

import "time"

// AuditNote is a human-readable trail record appended after captures.
// Best-effort only: capture correctness never depends on these rows.
type AuditNote struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   int64     `gorm:"column:order_id;not null;index"`
	Body      string    `gorm:"column:body;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
