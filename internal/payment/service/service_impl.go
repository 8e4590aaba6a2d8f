package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gymledger/internal/accountcontext"
	auditdomain "github.com/smallbiznis/gymledger/internal/audit/domain"
	auditservice "github.com/smallbiznis/gymledger/internal/audit/service"
	"github.com/smallbiznis/gymledger/internal/balance"
	billingdomain "github.com/smallbiznis/gymledger/internal/billing/domain"
	"github.com/smallbiznis/gymledger/internal/cache"
	"github.com/smallbiznis/gymledger/internal/clock"
	customerdomain "github.com/smallbiznis/gymledger/internal/customer/domain"
	membershipdomain "github.com/smallbiznis/gymledger/internal/membership/domain"
	membershipservice "github.com/smallbiznis/gymledger/internal/membership/service"
	paymentdomain "github.com/smallbiznis/gymledger/internal/payment/domain"
	plandomain "github.com/smallbiznis/gymledger/internal/plan/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const planCacheTTL = 5 * time.Minute

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Payments    paymentdomain.Repository
	Bills       billingdomain.Repository
	Memberships membershipdomain.Repository
	Plans       plandomain.Repository
	PlanCache   cache.Cache[snowflake.ID, plandomain.MembershipPlan]
	Activator   membershipservice.Activator
	Balance     balance.Projector
	Audit       auditservice.Recorder
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	payments    paymentdomain.Repository
	bills       billingdomain.Repository
	memberships membershipdomain.Repository
	plans       plandomain.Repository
	planCache   cache.Cache[snowflake.ID, plandomain.MembershipPlan]
	activator   membershipservice.Activator
	balance     balance.Projector
	audit       auditservice.Recorder
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		payments:    p.Payments,
		bills:       p.Bills,
		memberships: p.Memberships,
		plans:       p.Plans,
		planCache:   p.PlanCache,
		activator:   p.Activator,
		balance:     p.Balance,
		audit:       p.Audit,
	}
}

func (s *Service) AddPayment(ctx context.Context, req paymentdomain.AddPaymentRequest) (*paymentdomain.CustomerPayment, error) {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	billID, err := parseID(req.CustomerBillID, billingdomain.ErrInvalidBillID)
	if err != nil {
		return nil, err
	}
	customerID, err := parseID(req.CustomerID, customerdomain.ErrInvalidCustomerID)
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, paymentdomain.ErrInvalidPaymentAmount
	}

	paymentDate := req.PaymentDate.UTC()
	if req.PaymentDate.IsZero() {
		paymentDate = s.clock.Now()
	}
	method := req.Method
	if method == "" {
		method = paymentdomain.MethodCash
	}

	var payment *paymentdomain.CustomerPayment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The bill row stays locked across read-remaining -> write-paid
		// so concurrent payments cannot both pass the remaining check.
		bill, err := s.bills.FindByIDForUpdate(ctx, tx, accountID, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return billingdomain.ErrBillNotFound
		}
		if customerID != bill.CustomerID {
			return billingdomain.ErrBillCustomerMismatch
		}
		if bill.Status == billingdomain.BillStatusVoided {
			return paymentdomain.ErrVoidedBillPayment
		}
		if req.Amount.GreaterThan(bill.Remaining()) {
			return paymentdomain.ErrInvalidPaymentAmount
		}

		now := s.clock.Now()
		bill.PaidAmount = bill.PaidAmount.Add(req.Amount)
		bill.Status = billingdomain.DetermineStatus(bill.NetAmount, bill.PaidAmount)
		bill.UpdatedAt = now
		if err := s.bills.Update(ctx, tx, bill); err != nil {
			return err
		}

		payment = &paymentdomain.CustomerPayment{
			ID:              s.genID.Generate(),
			AccountID:       accountID,
			CustomerID:      bill.CustomerID,
			CustomerBillID:  bill.ID,
			Amount:          req.Amount.Round(2),
			Method:          method,
			PaymentDate:     paymentDate,
			ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
			CreatedAt:       now,
		}
		if err := s.payments.Insert(ctx, tx, payment); err != nil {
			return err
		}

		if bill.Status == billingdomain.BillStatusPaid {
			if err := s.applyMembershipSideEffect(ctx, tx, accountID, bill, paymentDate); err != nil {
				return err
			}
		}

		if _, err := s.balance.Recompute(ctx, tx, accountID, bill.CustomerID); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, auditservice.Entry{
			AccountID:  accountID,
			Action:     auditdomain.ActionPaymentReceived,
			TargetType: "customer_payment",
			TargetID:   payment.ID.String(),
			Metadata: map[string]any{
				"customer_bill_id": bill.ID.String(),
				"amount":           payment.Amount.String(),
				"bill_status":      string(bill.Status),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// applyMembershipSideEffect runs once a bill reaches fully paid.
// Subscription bills activate the period they govern unless an active
// membership starting on or after the bill date already covers it;
// paying an old bill must never extend the membership. Reactivation
// fees grant exactly one month of the customer's last plan from the
// payment date.
func (s *Service) applyMembershipSideEffect(ctx context.Context, tx *gorm.DB, accountID snowflake.ID, bill *billingdomain.CustomerBill, paymentDate time.Time) error {
	switch bill.BillType {
	case billingdomain.BillTypeMembershipSubscription:
		if bill.MembershipPlanID == nil {
			return nil
		}
		current, err := s.memberships.FindActiveByCustomer(ctx, tx, accountID, bill.CustomerID)
		if err != nil {
			return err
		}
		if current != nil && !current.StartDate.Before(bill.BillDate) {
			return nil
		}
		exists, err := s.memberships.ExistsActiveStartingOn(ctx, tx, accountID, bill.CustomerID, *bill.MembershipPlanID, bill.BillDate)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		plan, err := s.loadPlan(ctx, accountID, *bill.MembershipPlanID)
		if err != nil {
			return err
		}
		membership, err := s.activator.Activate(ctx, tx, accountID, bill.CustomerID, *plan, bill.BillDate)
		if err != nil {
			return err
		}
		return s.recordActivation(ctx, tx, accountID, bill, membership)

	case billingdomain.BillTypeReactivationFee:
		last, err := s.memberships.FindLatestByCustomer(ctx, tx, accountID, bill.CustomerID)
		if err != nil {
			return err
		}
		if last == nil {
			s.log.Warn("reactivation fee paid with no membership history",
				zap.Int64("customer_id", int64(bill.CustomerID)),
				zap.Int64("bill_id", int64(bill.ID)),
			)
			return nil
		}
		plan, err := s.loadPlan(ctx, accountID, last.MembershipPlanID)
		if err != nil {
			return err
		}
		// One month regardless of the plan's own period length.
		monthGrant := *plan
		monthGrant.PeriodLength = 1
		monthGrant.PeriodUnit = plandomain.PeriodUnitMonths
		membership, err := s.activator.Activate(ctx, tx, accountID, bill.CustomerID, monthGrant, paymentDate)
		if err != nil {
			return err
		}
		return s.recordActivation(ctx, tx, accountID, bill, membership)
	}
	return nil
}

func (s *Service) recordActivation(ctx context.Context, tx *gorm.DB, accountID snowflake.ID, bill *billingdomain.CustomerBill, membership *membershipdomain.CustomerMembership) error {
	return s.audit.Record(ctx, tx, auditservice.Entry{
		AccountID:  accountID,
		Action:     auditdomain.ActionMembershipActivated,
		TargetType: "customer_membership",
		TargetID:   membership.ID.String(),
		Metadata: map[string]any{
			"customer_id":      bill.CustomerID.String(),
			"customer_bill_id": bill.ID.String(),
			"start_date":       membership.StartDate.Format(billingdomain.PeriodKeyFormat),
			"end_date":         membership.EndDate.Format(billingdomain.PeriodKeyFormat),
		},
	})
}

func (s *Service) DeletePayment(ctx context.Context, id string) error {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return err
	}
	paymentID, err := parseID(id, paymentdomain.ErrInvalidPaymentID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.payments.FindByID(ctx, tx, accountID, paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return paymentdomain.ErrPaymentNotFound
		}

		bill, err := s.bills.FindByIDForUpdate(ctx, tx, accountID, payment.CustomerBillID)
		if err != nil {
			return err
		}
		// Voided bills stay frozen; the reversal only removes the
		// payment row.
		if bill != nil && bill.Status != billingdomain.BillStatusVoided {
			newPaid := bill.PaidAmount.Sub(payment.Amount)
			if newPaid.IsNegative() {
				newPaid = decimal.Zero
			}
			bill.PaidAmount = newPaid
			bill.Status = billingdomain.DetermineStatus(bill.NetAmount, newPaid)
			bill.UpdatedAt = s.clock.Now()
			if err := s.bills.Update(ctx, tx, bill); err != nil {
				return err
			}
		}

		if err := s.payments.SoftDelete(ctx, tx, accountID, paymentID); err != nil {
			return err
		}
		if _, err := s.balance.Recompute(ctx, tx, accountID, payment.CustomerID); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, auditservice.Entry{
			AccountID:  accountID,
			Action:     auditdomain.ActionPaymentReversed,
			TargetType: "customer_payment",
			TargetID:   payment.ID.String(),
			Metadata: map[string]any{
				"customer_bill_id": payment.CustomerBillID.String(),
				"amount":           payment.Amount.String(),
			},
		})
	})
}

func (s *Service) ListByBill(ctx context.Context, billID string) ([]paymentdomain.CustomerPayment, error) {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(billID, billingdomain.ErrInvalidBillID)
	if err != nil {
		return nil, err
	}
	return s.payments.ListByBill(ctx, s.db, accountID, id)
}

func (s *Service) loadPlan(ctx context.Context, accountID, planID snowflake.ID) (*plandomain.MembershipPlan, error) {
	if cached, ok := s.planCache.Get(planID); ok && cached.AccountID == accountID {
		return &cached, nil
	}
	plan, err := s.plans.FindByID(ctx, s.db, accountID, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, plandomain.ErrPlanNotFound
	}
	s.planCache.Set(planID, *plan, planCacheTTL)
	return plan, nil
}

func parseID(raw string, invalid error) (snowflake.ID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, invalid
	}
	return snowflake.ID(value), nil
}
