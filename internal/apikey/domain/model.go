package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// APIKey authenticates one integration. Only the sha256 hash of the key
// is stored.
type APIKey struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID snowflake.ID `gorm:"not null;index" json:"account_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	KeyHash   string       `gorm:"type:text;not null;unique" json:"-"`
	IsActive  bool         `gorm:"not null;default:true" json:"is_active"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (APIKey) TableName() string { return "api_keys" }

// HashAPIKey returns the hex sha256 digest of the raw key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}
