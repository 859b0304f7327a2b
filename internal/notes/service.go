package notes

import (
	"context"

	"gorm.io/gorm"

	"github.com/tradedesk/backoffice/pkg/db/models"
	"github.com/tradedesk/backoffice/pkg/logger"
)

// Service appends human-readable audit notes to orders. Writes are
// best-effort: a failed note is logged and swallowed, never surfaced to the
// capture that triggered it.
type Service struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewService builds the audit note writer.
func NewService(db *gorm.DB, logg *logger.Logger) *Service {
	return &Service{db: db, logg: logg}
}

// AppendAuditNote records one note against an order.
func (s *Service) AppendAuditNote(ctx context.Context, orderID int64, body string) {
	if s == nil || s.db == nil || orderID <= 0 || body == "" {
		return
	}
	note := &models.AuditNote{OrderID: orderID, Body: body}
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, orderID), "audit note write failed: "+err.Error())
	}
}

// ListByOrder returns an order's notes, newest first.
func (s *Service) ListByOrder(ctx context.Context, orderID int64) ([]models.AuditNote, error) {
	var list []models.AuditNote
	if err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
