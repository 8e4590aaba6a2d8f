package repository

import (
	"context"

	auditdomain "github.com/smallbiznis/gymledger/internal/audit/domain"
	"gorm.io/gorm"
)

type repository struct{}

// Provide builds the audit repository.
func Provide() auditdomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, entry *auditdomain.AuditLog) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context, db *gorm.DB, filter auditdomain.ListFilter) ([]*auditdomain.AuditLog, error) {
	q := db.WithContext(ctx).Model(&auditdomain.AuditLog{}).
		Where("account_id = ?", filter.AccountID)

	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.TargetType != "" {
		q = q.Where("target_type = ?", filter.TargetType)
	}
	if filter.TargetID != "" {
		q = q.Where("target_id = ?", filter.TargetID)
	}
	if filter.ActorType != "" {
		q = q.Where("actor_type = ?", filter.ActorType)
	}
	if filter.StartAt != nil {
		q = q.Where("created_at >= ?", *filter.StartAt)
	}
	if filter.EndAt != nil {
		q = q.Where("created_at < ?", *filter.EndAt)
	}
	if filter.Cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", filter.Cursor.CreatedAt, filter.Cursor.ID)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []*auditdomain.AuditLog
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
