package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/smallbiznis/gymledger/internal/billing/domain"
	"github.com/smallbiznis/gymledger/pkg/db"
	"gorm.io/gorm"
)

type repository struct{}

// Provide builds the bill repository.
func Provide() billingdomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, tx *gorm.DB, bill *billingdomain.CustomerBill) error {
	return tx.WithContext(ctx).Create(bill).Error
}

func (r *repository) FindByID(ctx context.Context, tx *gorm.DB, accountID, id snowflake.ID) (*billingdomain.CustomerBill, error) {
	return r.findOne(ctx, tx, accountID, id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, accountID, id snowflake.ID) (*billingdomain.CustomerBill, error) {
	return r.findOne(ctx, db.ForUpdate(tx), accountID, id)
}

func (r *repository) findOne(ctx context.Context, tx *gorm.DB, accountID, id snowflake.ID) (*billingdomain.CustomerBill, error) {
	var bill billingdomain.CustomerBill
	err := tx.WithContext(ctx).
		Where("account_id = ? AND id = ? AND deleted_at IS NULL", accountID, id).
		First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bill, nil
}

func (r *repository) Update(ctx context.Context, tx *gorm.DB, bill *billingdomain.CustomerBill) error {
	return tx.WithContext(ctx).Save(bill).Error
}

func (r *repository) SoftDelete(ctx context.Context, tx *gorm.DB, accountID, id snowflake.ID) error {
	result := tx.WithContext(ctx).
		Model(&billingdomain.CustomerBill{}).
		Where("account_id = ? AND id = ? AND deleted_at IS NULL", accountID, id).
		Updates(map[string]any{
			"deleted_at": time.Now().UTC(),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return billingdomain.ErrBillNotFound
	}
	return nil
}

func (r *repository) VoidByPeriod(ctx context.Context, tx *gorm.DB, accountID, customerID snowflake.ID, period string) (int64, error) {
	result := tx.WithContext(ctx).
		Model(&billingdomain.CustomerBill{}).
		Where("account_id = ? AND customer_id = ? AND billing_period = ?", accountID, customerID, period).
		Where("deleted_at IS NULL AND status <> ?", billingdomain.BillStatusVoided).
		Updates(map[string]any{
			"status":     billingdomain.BillStatusVoided,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) ListByCustomer(ctx context.Context, tx *gorm.DB, accountID, customerID snowflake.ID) ([]billingdomain.CustomerBill, error) {
	var bills []billingdomain.CustomerBill
	err := tx.WithContext(ctx).
		Where("account_id = ? AND customer_id = ? AND deleted_at IS NULL", accountID, customerID).
		Order("bill_date DESC, id DESC").
		Find(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}
