package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Customer is the minimal master-data record the ledger needs. Balance is
// the projected outstanding amount over all open bills; only the balance
// projector writes it.
type Customer struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	AccountID snowflake.ID    `gorm:"not null;index" json:"account_id"`
	Name      string          `gorm:"type:text;not null" json:"name"`
	Email     string          `gorm:"type:text;not null" json:"email"`
	Phone     string          `gorm:"type:text" json:"phone"`
	Balance   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"balance"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
