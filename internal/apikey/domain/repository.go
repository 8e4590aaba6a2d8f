package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, key *APIKey) error

	// FindActiveByHash resolves a usable key by its hash, or nil when
	// missing, inactive or expired.
	FindActiveByHash(ctx context.Context, db *gorm.DB, hash string) (*APIKey, error)

	List(ctx context.Context, db *gorm.DB, accountID snowflake.ID) ([]APIKey, error)
}
