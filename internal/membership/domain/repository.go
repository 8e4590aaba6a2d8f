package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrMembershipNotFound = errors.New("membership_not_found")
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, membership *CustomerMembership) error

	// FindActiveByCustomer returns the customer's active membership, or
	// nil when none exists.
	FindActiveByCustomer(ctx context.Context, db *gorm.DB, accountID, customerID snowflake.ID) (*CustomerMembership, error)

	// FindLatestByCustomer returns the most recent membership regardless
	// of status, or nil.
	FindLatestByCustomer(ctx context.Context, db *gorm.DB, accountID, customerID snowflake.ID) (*CustomerMembership, error)

	// FindLatestInactiveByCustomer returns the most recent expired or
	// deactivated membership, or nil.
	FindLatestInactiveByCustomer(ctx context.Context, db *gorm.DB, accountID, customerID snowflake.ID) (*CustomerMembership, error)

	// DeactivateActive flips the customer's active membership (if any) to
	// deactivated and reports whether a row changed.
	DeactivateActive(ctx context.Context, db *gorm.DB, accountID, customerID snowflake.ID) (bool, error)

	// ExistsActiveStartingOn reports whether an active membership for the
	// plan already starts on the given date. Payment application uses this
	// as its idempotence guard.
	ExistsActiveStartingOn(ctx context.Context, db *gorm.DB, accountID, customerID, planID snowflake.ID, startDate time.Time) (bool, error)

	// ExpireDue flips active memberships whose end date is strictly before
	// asOf to expired and returns the flipped rows.
	ExpireDue(ctx context.Context, db *gorm.DB, asOf time.Time, limit int) ([]CustomerMembership, error)

	// ListExpiringWithin returns active memberships whose end date falls in
	// [asOf, asOf+threshold].
	ListExpiringWithin(ctx context.Context, db *gorm.DB, asOf time.Time, threshold time.Duration, limit int) ([]CustomerMembership, error)

	ListByCustomer(ctx context.Context, db *gorm.DB, accountID, customerID snowflake.ID) ([]CustomerMembership, error)
}
