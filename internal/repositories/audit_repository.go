package repositories

import (
	"context"
	"time"

	"github.com/rohits-web03/sharelink/internal/models"
	"gorm.io/gorm"
)

// AuditFilter narrows an audit query. Empty fields match everything.
type AuditFilter struct {
	EventType    string
	IPAddress    string
	ResourceType string
	ResourceID   string
	Limit        int
}

// AuditRepository persists audit records.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, e *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// Find returns matching records, newest first.
func (r *AuditRepository) Find(ctx context.Context, f AuditFilter) ([]models.AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.EventType != "" {
		q = q.Where("event_type = ?", f.EventType)
	}
	if f.IPAddress != "" {
		q = q.Where("ip_address = ?", f.IPAddress)
	}
	if f.ResourceType != "" {
		q = q.Where("resource_type = ?", f.ResourceType)
	}
	if f.ResourceID != "" {
		q = q.Where("resource_id = ?", f.ResourceID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var logs []models.AuditLog
	err := q.Order("created_at DESC, id DESC").Find(&logs).Error
	return logs, err
}

// DeleteBefore removes records created before cutoff.
func (r *AuditRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	return res.RowsAffected, res.Error
}
