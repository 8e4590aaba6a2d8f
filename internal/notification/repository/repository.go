package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	notificationdomain "github.com/smallbiznis/gymledger/internal/notification/domain"
	"gorm.io/gorm"
)

type repository struct{}

// Provide builds the membership notification repository.
func Provide() notificationdomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, record *notificationdomain.MembershipNotification) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repository) SentSince(ctx context.Context, db *gorm.DB, notificationType string, membershipID snowflake.ID, cutoff time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&notificationdomain.MembershipNotification{}).
		Where("notification_type = ? AND membership_id = ? AND sent_at >= ?", notificationType, membershipID, cutoff).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
