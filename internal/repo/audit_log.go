package repo

import (
	"context"
	"time"

	"epitrello-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditQuery selects a page of an organization's audit trail.
type AuditQuery struct {
	OrganizationID uuid.UUID
	ActionType     string
	Limit          int
	Offset         int
}

type AuditLogRepo struct {
	db *gorm.DB
}

type AuditLogRepoInterface interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
	ListAuditLogs(ctx context.Context, q AuditQuery) ([]models.AuditLogEntry, int64, error)
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepoInterface {
	return &AuditLogRepo{db: db}
}

func (r *AuditLogRepo) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListAuditLogs returns one page, newest first, and the total number of matching rows
func (r *AuditLogRepo) ListAuditLogs(ctx context.Context, q AuditQuery) ([]models.AuditLogEntry, int64, error) {
	db := r.db.WithContext(ctx)

	filter := func(tx *gorm.DB) *gorm.DB {
		tx = tx.Where("al.organization_id = ?", q.OrganizationID)
		if q.ActionType != "" {
			tx = tx.Where("al.action_type = ?", q.ActionType)
		}
		return tx
	}

	var total int64
	if err := filter(db.Table("audit_logs al")).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	logs := []models.AuditLogEntry{}
	err := filter(db.Table("audit_logs al")).
		Select("al.*, u.username AS username, u.name AS user_name, u.email AS user_email").
		Joins("JOIN users u ON u.id = al.user_id").
		Order("al.created_at DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Scan(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
