package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	membershipdomain "github.com/smallbiznis/gymledger/internal/membership/domain"
	"github.com/smallbiznis/gymledger/pkg/db"
	"gorm.io/gorm"
)

type repository struct{}

// Provide builds the customer membership repository.
func Provide() membershipdomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, tx *gorm.DB, membership *membershipdomain.CustomerMembership) error {
	return tx.WithContext(ctx).Create(membership).Error
}

func (r *repository) FindActiveByCustomer(ctx context.Context, tx *gorm.DB, accountID, customerID snowflake.ID) (*membershipdomain.CustomerMembership, error) {
	var membership membershipdomain.CustomerMembership
	err := db.ForUpdate(tx.WithContext(ctx)).
		Where("account_id = ? AND customer_id = ? AND status = ?",
			accountID, customerID, membershipdomain.MembershipStatusActive).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

func (r *repository) FindLatestByCustomer(ctx context.Context, tx *gorm.DB, accountID, customerID snowflake.ID) (*membershipdomain.CustomerMembership, error) {
	var membership membershipdomain.CustomerMembership
	err := tx.WithContext(ctx).
		Where("account_id = ? AND customer_id = ?", accountID, customerID).
		Order("start_date DESC, id DESC").
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

func (r *repository) FindLatestInactiveByCustomer(ctx context.Context, tx *gorm.DB, accountID, customerID snowflake.ID) (*membershipdomain.CustomerMembership, error) {
	var membership membershipdomain.CustomerMembership
	err := tx.WithContext(ctx).
		Where("account_id = ? AND customer_id = ? AND status IN ?",
			accountID, customerID,
			[]membershipdomain.MembershipStatus{
				membershipdomain.MembershipStatusExpired,
				membershipdomain.MembershipStatusDeactivated,
			}).
		Order("end_date DESC, id DESC").
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

func (r *repository) DeactivateActive(ctx context.Context, tx *gorm.DB, accountID, customerID snowflake.ID) (bool, error) {
	result := tx.WithContext(ctx).
		Model(&membershipdomain.CustomerMembership{}).
		Where("account_id = ? AND customer_id = ? AND status = ?",
			accountID, customerID, membershipdomain.MembershipStatusActive).
		Updates(map[string]any{
			"status":     membershipdomain.MembershipStatusDeactivated,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ExistsActiveStartingOn(ctx context.Context, tx *gorm.DB, accountID, customerID, planID snowflake.ID, startDate time.Time) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&membershipdomain.CustomerMembership{}).
		Where("account_id = ? AND customer_id = ? AND membership_plan_id = ? AND status = ? AND start_date = ?",
			accountID, customerID, planID, membershipdomain.MembershipStatusActive, startDate).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ExpireDue(ctx context.Context, tx *gorm.DB, asOf time.Time, limit int) ([]membershipdomain.CustomerMembership, error) {
	var due []membershipdomain.CustomerMembership
	query := db.ForUpdate(tx.WithContext(ctx)).
		Where("status = ? AND end_date < ?", membershipdomain.MembershipStatusActive, asOf).
		Order("end_date ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&due).Error; err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return nil, nil
	}

	ids := make([]snowflake.ID, 0, len(due))
	for _, membership := range due {
		ids = append(ids, membership.ID)
	}
	err := tx.WithContext(ctx).
		Model(&membershipdomain.CustomerMembership{}).
		Where("id IN ? AND status = ?", ids, membershipdomain.MembershipStatusActive).
		Updates(map[string]any{
			"status":     membershipdomain.MembershipStatusExpired,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return nil, err
	}
	for i := range due {
		due[i].Status = membershipdomain.MembershipStatusExpired
	}
	return due, nil
}

func (r *repository) ListExpiringWithin(ctx context.Context, tx *gorm.DB, asOf time.Time, threshold time.Duration, limit int) ([]membershipdomain.CustomerMembership, error) {
	var expiring []membershipdomain.CustomerMembership
	query := tx.WithContext(ctx).
		Where("status = ? AND end_date >= ? AND end_date <= ?",
			membershipdomain.MembershipStatusActive, asOf, asOf.Add(threshold)).
		Order("end_date ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&expiring).Error; err != nil {
		return nil, err
	}
	return expiring, nil
}

func (r *repository) ListByCustomer(ctx context.Context, tx *gorm.DB, accountID, customerID snowflake.ID) ([]membershipdomain.CustomerMembership, error) {
	var memberships []membershipdomain.CustomerMembership
	err := tx.WithContext(ctx).
		Where("account_id = ? AND customer_id = ?", accountID, customerID).
		Order("start_date DESC, id DESC").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}
