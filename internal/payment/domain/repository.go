package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *CustomerPayment) error

	// FindByID returns the payment, or nil when missing or soft-deleted.
	FindByID(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*CustomerPayment, error)

	// SoftDelete stamps deleted_at. Rows stay for audit.
	SoftDelete(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) error

	ListByBill(ctx context.Context, db *gorm.DB, accountID, billID snowflake.ID) ([]CustomerPayment, error)
}
