package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, bill *CustomerBill) error

	// FindByID returns the bill, or nil when missing or soft-deleted.
	FindByID(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*CustomerBill, error)

	// FindByIDForUpdate locks the bill row for the current transaction
	// on dialects that support row locks.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*CustomerBill, error)

	Update(ctx context.Context, db *gorm.DB, bill *CustomerBill) error

	// SoftDelete stamps deleted_at. Rows stay for audit.
	SoftDelete(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) error

	// VoidByPeriod voids every non-voided bill of the customer in the
	// given billing period and returns the number of bills voided.
	VoidByPeriod(ctx context.Context, db *gorm.DB, accountID, customerID snowflake.ID, period string) (int64, error)

	ListByCustomer(ctx context.Context, db *gorm.DB, accountID, customerID snowflake.ID) ([]CustomerBill, error)
}
