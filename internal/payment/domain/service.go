package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrPaymentNotFound  = errors.New("payment_not_found")
	ErrInvalidPaymentID = errors.New("invalid_payment_id")
)

// Domain-rule violations with contract messages.
var (
	ErrInvalidPaymentAmount = errors.New("Payment amount must be positive and cannot exceed the remaining balance.")
	ErrVoidedBillPayment    = errors.New("Cannot add payment to a voided bill.")
)

type AddPaymentRequest struct {
	CustomerBillID string `json:"customer_bill_id"`

	// CustomerID must match the bill's customer; payments cannot be
	// filed against another customer's bill.
	CustomerID      string          `json:"customer_id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          PaymentMethod   `json:"method,omitempty"`
	PaymentDate     time.Time       `json:"payment_date,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
}

type Service interface {
	// AddPayment applies money to a bill and, when the paid bill governs
	// a not-yet-activated period, starts the membership it bought.
	AddPayment(ctx context.Context, req AddPaymentRequest) (*CustomerPayment, error)

	// DeletePayment reverses a payment's amount and soft-deletes it.
	// Memberships an earlier payment activated are left untouched.
	DeletePayment(ctx context.Context, id string) error

	ListByBill(ctx context.Context, billID string) ([]CustomerPayment, error)
}
