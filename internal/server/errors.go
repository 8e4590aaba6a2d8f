package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/gymledger/internal/accountcontext"
	billingdomain "github.com/smallbiznis/gymledger/internal/billing/domain"
	customerdomain "github.com/smallbiznis/gymledger/internal/customer/domain"
	membershipdomain "github.com/smallbiznis/gymledger/internal/membership/domain"
	membershipservice "github.com/smallbiznis/gymledger/internal/membership/service"
	paymentdomain "github.com/smallbiznis/gymledger/internal/payment/domain"
	plandomain "github.com/smallbiznis/gymledger/internal/plan/domain"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate_limited")
	ErrBadRequest   = errors.New("bad_request")
)

// APIError is the JSON error envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AbortWithError maps domain errors onto HTTP statuses. Domain-rule
// violations surface their messages verbatim with 422.
func AbortWithError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"

	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, accountcontext.ErrMissingAccount):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, ErrRateLimited):
		status, code = http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, billingdomain.ErrInvalidBillID),
		errors.Is(err, billingdomain.ErrInvalidBillType),
		errors.Is(err, billingdomain.ErrInvalidAmount),
		errors.Is(err, billingdomain.ErrInvalidDiscount),
		errors.Is(err, billingdomain.ErrPlanRequired),
		errors.Is(err, customerdomain.ErrInvalidCustomerID),
		errors.Is(err, customerdomain.ErrInvalidName),
		errors.Is(err, customerdomain.ErrInvalidEmail),
		errors.Is(err, plandomain.ErrInvalidPlanID),
		errors.Is(err, plandomain.ErrInvalidPlanName),
		errors.Is(err, plandomain.ErrInvalidPlanPrice),
		errors.Is(err, plandomain.ErrInvalidPlanPeriod),
		errors.Is(err, paymentdomain.ErrInvalidPaymentID),
		errors.Is(err, membershipservice.ErrInvalidCustomerID):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, billingdomain.ErrBillNotFound),
		errors.Is(err, customerdomain.ErrCustomerNotFound),
		errors.Is(err, plandomain.ErrPlanNotFound),
		errors.Is(err, paymentdomain.ErrPaymentNotFound),
		errors.Is(err, membershipdomain.ErrMembershipNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, billingdomain.ErrClosedPeriodUpdate),
		errors.Is(err, billingdomain.ErrPaidBillDeletion),
		errors.Is(err, billingdomain.ErrBillAlreadyVoided),
		errors.Is(err, billingdomain.ErrBillCustomerMismatch),
		errors.Is(err, paymentdomain.ErrInvalidPaymentAmount),
		errors.Is(err, paymentdomain.ErrVoidedBillPayment):
		status, code = http.StatusUnprocessableEntity, "domain_rule_violation"
	}

	c.AbortWithStatusJSON(status, gin.H{"error": APIError{
		Code:    code,
		Message: err.Error(),
	}})
}
