package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/smallbiznis/gymledger/internal/payment/domain"
	"gorm.io/gorm"
)

type repository struct{}

// Provide builds the payment repository.
func Provide() paymentdomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, tx *gorm.DB, payment *paymentdomain.CustomerPayment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *repository) FindByID(ctx context.Context, tx *gorm.DB, accountID, id snowflake.ID) (*paymentdomain.CustomerPayment, error) {
	var payment paymentdomain.CustomerPayment
	err := tx.WithContext(ctx).
		Where("account_id = ? AND id = ? AND deleted_at IS NULL", accountID, id).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) SoftDelete(ctx context.Context, tx *gorm.DB, accountID, id snowflake.ID) error {
	result := tx.WithContext(ctx).
		Model(&paymentdomain.CustomerPayment{}).
		Where("account_id = ? AND id = ? AND deleted_at IS NULL", accountID, id).
		Update("deleted_at", time.Now().UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return paymentdomain.ErrPaymentNotFound
	}
	return nil
}

func (r *repository) ListByBill(ctx context.Context, tx *gorm.DB, accountID, billID snowflake.ID) ([]paymentdomain.CustomerPayment, error) {
	var payments []paymentdomain.CustomerPayment
	err := tx.WithContext(ctx).
		Where("account_id = ? AND customer_bill_id = ? AND deleted_at IS NULL", accountID, billID).
		Order("payment_date ASC, id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
