package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification types sent by the expiry sweeps.
const (
	TypeMembershipExpiring = "membership_expiring"
	TypeMembershipExpired  = "membership_expired"
)

// Message is one reminder to deliver. DedupeKey collapses duplicate
// enqueues at the storage layer.
type Message struct {
	AccountID    snowflake.ID
	Type         string
	MembershipID snowflake.ID
	CustomerID   snowflake.ID
	Payload      map[string]any
	DedupeKey    string
}

// Sender enqueues a message for out-of-band delivery. Implementations
// must not block on external systems; the sweep calls this inside its
// own transaction.
type Sender interface {
	Send(ctx context.Context, tx *gorm.DB, msg Message) error
}

// MembershipNotification records a dispatched reminder. The sweep
// queries these rows for its 24-hour duplicate suppression, so the
// record survives process restarts.
type MembershipNotification struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID        snowflake.ID `gorm:"not null;index" json:"account_id"`
	MembershipID     snowflake.ID `gorm:"not null" json:"membership_id"`
	NotificationType string       `gorm:"type:text;not null" json:"notification_type"`
	SentAt           time.Time    `gorm:"not null" json:"sent_at"`
}

// TableName sets the database table name.
func (MembershipNotification) TableName() string { return "membership_notifications" }

// OutboxRecord is one queued notification awaiting delivery.
type OutboxRecord struct {
	ID               snowflake.ID      `gorm:"primaryKey" json:"id"`
	AccountID        snowflake.ID      `gorm:"not null;uniqueIndex:ux_notification_outbox_dedupe" json:"account_id"`
	NotificationType string            `gorm:"type:text;not null" json:"notification_type"`
	Payload          datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"payload"`
	DedupeKey        *string           `gorm:"type:text;uniqueIndex:ux_notification_outbox_dedupe" json:"dedupe_key,omitempty"`
	Published        bool              `gorm:"not null;default:false" json:"published"`
	CreatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (OutboxRecord) TableName() string { return "notification_outbox" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *MembershipNotification) error

	// SentSince reports whether a notification of the given type went
	// out for the membership after the cutoff.
	SentSince(ctx context.Context, db *gorm.DB, notificationType string, membershipID snowflake.ID, cutoff time.Time) (bool, error)
}
