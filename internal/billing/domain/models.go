package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// BillType classifies what a bill charges for.
type BillType string

const (
	BillTypeMembershipSubscription BillType = "membership_subscription"
	BillTypeReactivationFee        BillType = "reactivation_fee"
	BillTypeCustomAmount           BillType = "custom_amount"
)

// Valid reports whether the bill type is known.
func (t BillType) Valid() bool {
	switch t {
	case BillTypeMembershipSubscription, BillTypeReactivationFee, BillTypeCustomAmount:
		return true
	}
	return false
}

// BillStatus is derived from (net, paid) except for the terminal voided
// override.
type BillStatus string

const (
	BillStatusActive  BillStatus = "active"
	BillStatusPartial BillStatus = "partial"
	BillStatusPaid    BillStatus = "paid"
	BillStatusVoided  BillStatus = "voided"
)

// CustomerBill is one charge against a customer. BillingPeriod is a
// stable key for the cycle the bill belongs to, independent of BillDate;
// the period lock and reactivation voiding operate on it.
type CustomerBill struct {
	ID                 snowflake.ID    `gorm:"primaryKey" json:"id"`
	AccountID          snowflake.ID    `gorm:"not null;index" json:"account_id"`
	CustomerID         snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	BillType           BillType        `gorm:"type:text;not null" json:"bill_type"`
	MembershipPlanID   *snowflake.ID   `gorm:"index" json:"membership_plan_id,omitempty"`
	BillDate           time.Time       `gorm:"not null" json:"bill_date"`
	BillingPeriod      string          `gorm:"type:text;not null;index" json:"billing_period"`
	GrossAmount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"gross_amount"`
	DiscountPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discount_percentage"`
	NetAmount          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"net_amount"`
	PaidAmount         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"paid_amount"`
	Status             BillStatus      `gorm:"type:text;not null;default:'active'" json:"status"`
	DeletedAt          *time.Time      `gorm:"index" json:"-"`
	CreatedAt          time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (CustomerBill) TableName() string { return "customer_bills" }

// Remaining is the unpaid part of the bill.
func (b CustomerBill) Remaining() decimal.Decimal {
	return b.NetAmount.Sub(b.PaidAmount)
}

// DetermineStatus derives the amount-based bill status. Voided is a
// terminal override and is never returned from here.
func DetermineStatus(net, paid decimal.Decimal) BillStatus {
	switch {
	case net.IsPositive() && paid.Equal(net):
		return BillStatusPaid
	case paid.IsPositive() && paid.LessThan(net):
		return BillStatusPartial
	default:
		return BillStatusActive
	}
}

// Void transitions the bill to its terminal voided state. Amounts are
// preserved for audit; only the status changes.
func (b CustomerBill) Void() CustomerBill {
	b.Status = BillStatusVoided
	return b
}

// PeriodKeyFormat renders billing period keys from the governing
// membership start date.
const PeriodKeyFormat = "2006-01-02"

// PeriodKey derives the billing period key for a cycle starting at the
// given date.
func PeriodKey(start time.Time) string {
	return start.Format(PeriodKeyFormat)
}

// NetFromGross applies a percentage discount to the gross amount,
// rounded to cents.
func NetFromGross(gross, discountPct decimal.Decimal) decimal.Decimal {
	if discountPct.IsZero() {
		return gross.Round(2)
	}
	factor := decimal.NewFromInt(1).Sub(discountPct.Div(decimal.NewFromInt(100)))
	return gross.Mul(factor).Round(2)
}
