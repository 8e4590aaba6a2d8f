package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, plan *MembershipPlan) error
	FindByID(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*MembershipPlan, error)
	List(ctx context.Context, db *gorm.DB, accountID snowflake.ID, includeArchived bool) ([]MembershipPlan, error)
	Archive(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) error
}
