package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/smallbiznis/gymledger/internal/plan/domain"
	"gorm.io/gorm"
)

type repository struct{}

// Provide builds the membership plan repository.
func Provide() plandomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, plan *plandomain.MembershipPlan) error {
	return db.WithContext(ctx).Create(plan).Error
}

func (r *repository) FindByID(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*plandomain.MembershipPlan, error) {
	var plan plandomain.MembershipPlan
	err := db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, id).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB, accountID snowflake.ID, includeArchived bool) ([]plandomain.MembershipPlan, error) {
	query := db.WithContext(ctx).Where("account_id = ?", accountID)
	if !includeArchived {
		query = query.Where("archived = ?", false)
	}
	var plans []plandomain.MembershipPlan
	if err := query.Order("created_at DESC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) Archive(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) error {
	result := db.WithContext(ctx).
		Model(&plandomain.MembershipPlan{}).
		Where("account_id = ? AND id = ? AND archived = ?", accountID, id, false).
		Update("archived", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return plandomain.ErrPlanNotFound
	}
	return nil
}
