package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Account is one gym (tenant). All billing data hangs off an account.
type Account struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null;unique" json:"slug"`
	IsDefault bool         `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "accounts" }
