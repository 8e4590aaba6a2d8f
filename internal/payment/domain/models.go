package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PaymentMethod is free-form but the common values are constants.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
)

// CustomerPayment applies money against one bill. Payments are
// soft-deleted on reversal so the ledger keeps its history.
type CustomerPayment struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	AccountID       snowflake.ID    `gorm:"not null;index" json:"account_id"`
	CustomerID      snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	CustomerBillID  snowflake.ID    `gorm:"not null;index" json:"customer_bill_id"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Method          PaymentMethod   `gorm:"type:text;not null;default:'cash'" json:"method"`
	PaymentDate     time.Time       `gorm:"not null" json:"payment_date"`
	ReferenceNumber string          `gorm:"type:text" json:"reference_number,omitempty"`
	DeletedAt       *time.Time      `gorm:"index" json:"-"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (CustomerPayment) TableName() string { return "customer_payments" }
