package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Validation and lookup failures.
var (
	ErrBillNotFound         = errors.New("bill_not_found")
	ErrInvalidBillID        = errors.New("invalid_bill_id")
	ErrInvalidBillType      = errors.New("invalid_bill_type")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidDiscount      = errors.New("invalid_discount")
	ErrPlanRequired         = errors.New("plan_required")
	ErrBillCustomerMismatch = errors.New("bill_customer_mismatch")
)

// Domain-rule violations. The messages are part of the API contract and
// surface to users verbatim.
var (
	ErrClosedPeriodUpdate = errors.New("Cannot update a bill from a previous billing period.")
	ErrPaidBillDeletion   = errors.New("Cannot delete a fully paid bill. Please delete payments instead.")
	ErrBillAlreadyVoided  = errors.New("bill_already_voided")
)

type CreateBillRequest struct {
	CustomerID         string          `json:"customer_id"`
	BillType           BillType        `json:"bill_type"`
	MembershipPlanID   string          `json:"membership_plan_id,omitempty"`
	BillDate           time.Time       `json:"bill_date"`
	GrossAmount        decimal.Decimal `json:"gross_amount,omitempty"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage,omitempty"`
}

type UpdateBillRequest struct {
	MembershipPlanID   *string          `json:"membership_plan_id,omitempty"`
	BillDate           *time.Time       `json:"bill_date,omitempty"`
	GrossAmount        *decimal.Decimal `json:"gross_amount,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreateBillRequest) (*CustomerBill, error)

	// Update applies the period lock: only bills in the customer's
	// current open billing period may change.
	Update(ctx context.Context, id string, req UpdateBillRequest) (*CustomerBill, error)

	// Delete soft-deletes an unpaid or partially paid bill. Fully paid
	// bills are rejected; payments must be deleted first.
	Delete(ctx context.Context, id string) error

	// Void marks the bill voided, a terminal state that keeps amounts
	// for audit but removes the bill from balance projection.
	Void(ctx context.Context, id string) (*CustomerBill, error)

	Get(ctx context.Context, id string) (*CustomerBill, error)
	ListByCustomer(ctx context.Context, customerID string) ([]CustomerBill, error)
}
