package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// MembershipStatus is the lifecycle state of a customer membership.
type MembershipStatus string

const (
	MembershipStatusActive      MembershipStatus = "active"
	MembershipStatusExpired     MembershipStatus = "expired"
	MembershipStatusDeactivated MembershipStatus = "deactivated"
)

// CustomerMembership is one paid (or granted) membership interval.
// At most one membership per (account, customer) is active at a time;
// rows are never hard-deleted.
type CustomerMembership struct {
	ID               snowflake.ID     `gorm:"primaryKey" json:"id"`
	AccountID        snowflake.ID     `gorm:"not null;index" json:"account_id"`
	CustomerID       snowflake.ID     `gorm:"not null;index" json:"customer_id"`
	MembershipPlanID snowflake.ID     `gorm:"not null" json:"membership_plan_id"`
	StartDate        time.Time        `gorm:"not null" json:"start_date"`
	EndDate          time.Time        `gorm:"not null" json:"end_date"`
	Status           MembershipStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt        time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (CustomerMembership) TableName() string { return "customer_memberships" }

// Covers reports whether the membership window contains the given date.
// The end date is the boundary of the next period and is excluded.
func (m CustomerMembership) Covers(date time.Time) bool {
	return !date.Before(m.StartDate) && date.Before(m.EndDate)
}
