package domain

import (
	"time"

	membershipdomain "github.com/smallbiznis/gymledger/internal/membership/domain"
)

// BillingWindow classifies a subscription bill relative to the
// customer's current membership.
type BillingWindow string

const (
	// WindowNewMember covers customers with no active membership,
	// including lapsed customers being reactivated.
	WindowNewMember BillingWindow = "new_member"

	// WindowCurrentPeriod covers bills dated inside the active
	// membership's interval.
	WindowCurrentPeriod BillingWindow = "current_period"

	// WindowFutureRenewal covers bills dated on or after the active
	// membership's end date; paying one starts the next period.
	WindowFutureRenewal BillingWindow = "future_renewal"
)

// ClassifyBillingWindow places a subscription bill into a billing
// window. The membership end date belongs to the next period, so a bill
// dated exactly on it is a future renewal.
func ClassifyBillingWindow(billDate time.Time, current *membershipdomain.CustomerMembership) BillingWindow {
	if current == nil {
		return WindowNewMember
	}
	if billDate.Before(current.EndDate) {
		return WindowCurrentPeriod
	}
	return WindowFutureRenewal
}
