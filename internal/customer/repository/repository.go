package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/gymledger/internal/customer/domain"
	"gorm.io/gorm"
)

type repository struct{}

// Provide builds the customer repository.
func Provide() customerdomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, customer *customerdomain.Customer) error {
	return db.WithContext(ctx).Create(customer).Error
}

func (r *repository) FindByID(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*customerdomain.Customer, error) {
	var customer customerdomain.Customer
	err := db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, id).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB, accountID snowflake.ID) ([]customerdomain.Customer, error) {
	var customers []customerdomain.Customer
	err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}
