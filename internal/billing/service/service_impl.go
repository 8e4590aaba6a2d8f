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
	Bills       billingdomain.Repository
	Memberships membershipdomain.Repository
	Plans       plandomain.Repository
	PlanCache   cache.Cache[snowflake.ID, plandomain.MembershipPlan]
	Customers   customerdomain.Repository
	Activator   membershipservice.Activator
	Balance     balance.Projector
	Audit       auditservice.Recorder
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	bills       billingdomain.Repository
	memberships membershipdomain.Repository
	plans       plandomain.Repository
	planCache   cache.Cache[snowflake.ID, plandomain.MembershipPlan]
	customers   customerdomain.Repository
	activator   membershipservice.Activator
	balance     balance.Projector
	audit       auditservice.Recorder
}

func NewService(p Params) billingdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("billing.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		bills:       p.Bills,
		memberships: p.Memberships,
		plans:       p.Plans,
		planCache:   p.PlanCache,
		customers:   p.Customers,
		activator:   p.Activator,
		balance:     p.Balance,
		audit:       p.Audit,
	}
}

func (s *Service) Create(ctx context.Context, req billingdomain.CreateBillRequest) (*billingdomain.CustomerBill, error) {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	customerID, err := parseID(req.CustomerID, customerdomain.ErrInvalidCustomerID)
	if err != nil {
		return nil, err
	}
	if !req.BillType.Valid() {
		return nil, billingdomain.ErrInvalidBillType
	}
	discount := req.DiscountPercentage
	if discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(100)) {
		return nil, billingdomain.ErrInvalidDiscount
	}

	billDate := req.BillDate.UTC()
	if req.BillDate.IsZero() {
		billDate = s.clock.Now()
	}

	customer, err := s.customers.FindByID(ctx, s.db, accountID, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, customerdomain.ErrCustomerNotFound
	}

	var plan *plandomain.MembershipPlan
	gross := req.GrossAmount
	if req.BillType == billingdomain.BillTypeMembershipSubscription {
		if strings.TrimSpace(req.MembershipPlanID) == "" {
			return nil, billingdomain.ErrPlanRequired
		}
		planID, err := parseID(req.MembershipPlanID, plandomain.ErrInvalidPlanID)
		if err != nil {
			return nil, err
		}
		plan, err = s.loadPlan(ctx, accountID, planID)
		if err != nil {
			return nil, err
		}
		if gross.IsZero() {
			gross = plan.Price
		}
	}
	if !gross.IsPositive() {
		return nil, billingdomain.ErrInvalidAmount
	}
	net := billingdomain.NetFromGross(gross, discount)

	now := s.clock.Now()
	bill := &billingdomain.CustomerBill{
		ID:                 s.genID.Generate(),
		AccountID:          accountID,
		CustomerID:         customerID,
		BillType:           req.BillType,
		BillDate:           billDate,
		BillingPeriod:      billingdomain.PeriodKey(billDate),
		GrossAmount:        gross.Round(2),
		DiscountPercentage: discount,
		NetAmount:          net,
		PaidAmount:         decimal.Zero,
		Status:             billingdomain.DetermineStatus(net, decimal.Zero),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if plan != nil {
		planID := plan.ID
		bill.MembershipPlanID = &planID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		metadata := map[string]any{
			"bill_type":      string(bill.BillType),
			"net_amount":     bill.NetAmount.String(),
			"billing_period": bill.BillingPeriod,
		}

		switch bill.BillType {
		case billingdomain.BillTypeReactivationFee:
			// Reactivation clears the stale balance of the lapsed
			// period before the new bill lands.
			lapsed, err := s.memberships.FindLatestInactiveByCustomer(ctx, tx, accountID, customerID)
			if err != nil {
				return err
			}
			if lapsed != nil {
				voided, err := s.bills.VoidByPeriod(ctx, tx, accountID, customerID, billingdomain.PeriodKey(lapsed.StartDate))
				if err != nil {
					return err
				}
				metadata["voided_bills"] = voided
			}

		case billingdomain.BillTypeMembershipSubscription:
			current, err := s.memberships.FindActiveByCustomer(ctx, tx, accountID, customerID)
			if err != nil {
				return err
			}
			window := billingdomain.ClassifyBillingWindow(billDate, current)
			metadata["billing_window"] = string(window)
			if err := s.bills.Insert(ctx, tx, bill); err != nil {
				return err
			}
			// New-member and current-period bills activate synchronously;
			// future renewals wait for payment.
			if window != billingdomain.WindowFutureRenewal {
				membership, err := s.activator.Activate(ctx, tx, accountID, customerID, *plan, billDate)
				if err != nil {
					return err
				}
				if err := s.audit.Record(ctx, tx, auditservice.Entry{
					AccountID:  accountID,
					Action:     auditdomain.ActionMembershipActivated,
					TargetType: "customer_membership",
					TargetID:   membership.ID.String(),
					Metadata: map[string]any{
						"customer_id": customerID.String(),
						"start_date":  membership.StartDate.Format(billingdomain.PeriodKeyFormat),
						"end_date":    membership.EndDate.Format(billingdomain.PeriodKeyFormat),
					},
				}); err != nil {
					return err
				}
			}

		case billingdomain.BillTypeCustomAmount:
			// Custom charges attach to the cycle they fall into.
			current, err := s.memberships.FindActiveByCustomer(ctx, tx, accountID, customerID)
			if err != nil {
				return err
			}
			if current != nil && current.Covers(billDate) {
				bill.BillingPeriod = billingdomain.PeriodKey(current.StartDate)
			}
		}

		if bill.BillType != billingdomain.BillTypeMembershipSubscription {
			if err := s.bills.Insert(ctx, tx, bill); err != nil {
				return err
			}
		}

		if _, err := s.balance.Recompute(ctx, tx, accountID, customerID); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, auditservice.Entry{
			AccountID:  accountID,
			Action:     auditdomain.ActionBillCreated,
			TargetType: "customer_bill",
			TargetID:   bill.ID.String(),
			Metadata:   metadata,
		})
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *Service) Update(ctx context.Context, id string, req billingdomain.UpdateBillRequest) (*billingdomain.CustomerBill, error) {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	billID, err := parseID(id, billingdomain.ErrInvalidBillID)
	if err != nil {
		return nil, err
	}

	var updated *billingdomain.CustomerBill
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bill, err := s.bills.FindByIDForUpdate(ctx, tx, accountID, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return billingdomain.ErrBillNotFound
		}
		if bill.Status == billingdomain.BillStatusVoided {
			return billingdomain.ErrClosedPeriodUpdate
		}

		current, err := s.memberships.FindActiveByCustomer(ctx, tx, accountID, bill.CustomerID)
		if err != nil {
			return err
		}
		// Lapsed customers have no active membership; their latest
		// membership still anchors the open period so settled cycles
		// stay locked.
		anchor := current
		if anchor == nil {
			anchor, err = s.memberships.FindLatestByCustomer(ctx, tx, accountID, bill.CustomerID)
			if err != nil {
				return err
			}
		}
		// Period keys are YYYY-MM-DD, so lexicographic order is date
		// order.
		if anchor != nil && bill.BillingPeriod < billingdomain.PeriodKey(anchor.StartDate) {
			return billingdomain.ErrClosedPeriodUpdate
		}

		var newPlan *plandomain.MembershipPlan
		if req.MembershipPlanID != nil {
			if bill.BillType != billingdomain.BillTypeMembershipSubscription {
				return billingdomain.ErrInvalidBillType
			}
			planID, err := parseID(*req.MembershipPlanID, plandomain.ErrInvalidPlanID)
			if err != nil {
				return err
			}
			if bill.MembershipPlanID == nil || *bill.MembershipPlanID != planID {
				newPlan, err = s.loadPlan(ctx, accountID, planID)
				if err != nil {
					return err
				}
				bill.MembershipPlanID = &newPlan.ID
				if req.GrossAmount == nil {
					bill.GrossAmount = newPlan.Price
				}
			}
		}
		if req.BillDate != nil {
			bill.BillDate = req.BillDate.UTC()
			bill.BillingPeriod = billingdomain.PeriodKey(bill.BillDate)
		}
		if req.GrossAmount != nil {
			if !req.GrossAmount.IsPositive() {
				return billingdomain.ErrInvalidAmount
			}
			bill.GrossAmount = req.GrossAmount.Round(2)
		}
		if req.DiscountPercentage != nil {
			if req.DiscountPercentage.IsNegative() || req.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
				return billingdomain.ErrInvalidDiscount
			}
			bill.DiscountPercentage = *req.DiscountPercentage
		}

		bill.NetAmount = billingdomain.NetFromGross(bill.GrossAmount, bill.DiscountPercentage)
		if bill.PaidAmount.GreaterThan(bill.NetAmount) {
			return billingdomain.ErrInvalidAmount
		}
		bill.Status = billingdomain.DetermineStatus(bill.NetAmount, bill.PaidAmount)
		bill.UpdatedAt = s.clock.Now()

		if err := s.bills.Update(ctx, tx, bill); err != nil {
			return err
		}

		// A plan change re-runs activation for the bill's cycle under
		// the same classification as bill creation: a future renewal
		// stays inert until it is paid.
		if newPlan != nil {
			window := billingdomain.ClassifyBillingWindow(bill.BillDate, current)
			if window != billingdomain.WindowFutureRenewal {
				if _, err := s.activator.Activate(ctx, tx, accountID, bill.CustomerID, *newPlan, bill.BillDate); err != nil {
					return err
				}
			}
		}

		if _, err := s.balance.Recompute(ctx, tx, accountID, bill.CustomerID); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, auditservice.Entry{
			AccountID:  accountID,
			Action:     auditdomain.ActionBillUpdated,
			TargetType: "customer_bill",
			TargetID:   bill.ID.String(),
			Metadata: map[string]any{
				"net_amount":     bill.NetAmount.String(),
				"billing_period": bill.BillingPeriod,
				"status":         string(bill.Status),
			},
		}); err != nil {
			return err
		}
		updated = bill
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return err
	}
	billID, err := parseID(id, billingdomain.ErrInvalidBillID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bill, err := s.bills.FindByIDForUpdate(ctx, tx, accountID, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return billingdomain.ErrBillNotFound
		}
		if bill.Status == billingdomain.BillStatusPaid {
			return billingdomain.ErrPaidBillDeletion
		}

		if err := s.bills.SoftDelete(ctx, tx, accountID, billID); err != nil {
			return err
		}
		if _, err := s.balance.Recompute(ctx, tx, accountID, bill.CustomerID); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, auditservice.Entry{
			AccountID:  accountID,
			Action:     auditdomain.ActionBillDeleted,
			TargetType: "customer_bill",
			TargetID:   bill.ID.String(),
			Metadata: map[string]any{
				"net_amount":  bill.NetAmount.String(),
				"paid_amount": bill.PaidAmount.String(),
			},
		})
	})
}

func (s *Service) Void(ctx context.Context, id string) (*billingdomain.CustomerBill, error) {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	billID, err := parseID(id, billingdomain.ErrInvalidBillID)
	if err != nil {
		return nil, err
	}

	var voided *billingdomain.CustomerBill
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bill, err := s.bills.FindByIDForUpdate(ctx, tx, accountID, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return billingdomain.ErrBillNotFound
		}
		if bill.Status == billingdomain.BillStatusVoided {
			return billingdomain.ErrBillAlreadyVoided
		}

		next := bill.Void()
		next.UpdatedAt = s.clock.Now()
		if err := s.bills.Update(ctx, tx, &next); err != nil {
			return err
		}
		if _, err := s.balance.Recompute(ctx, tx, accountID, bill.CustomerID); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, auditservice.Entry{
			AccountID:  accountID,
			Action:     auditdomain.ActionBillVoided,
			TargetType: "customer_bill",
			TargetID:   bill.ID.String(),
			Metadata: map[string]any{
				"net_amount": bill.NetAmount.String(),
			},
		}); err != nil {
			return err
		}
		voided = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return voided, nil
}

func (s *Service) Get(ctx context.Context, id string) (*billingdomain.CustomerBill, error) {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	billID, err := parseID(id, billingdomain.ErrInvalidBillID)
	if err != nil {
		return nil, err
	}
	bill, err := s.bills.FindByID(ctx, s.db, accountID, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, billingdomain.ErrBillNotFound
	}
	return bill, nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]billingdomain.CustomerBill, error) {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(customerID, customerdomain.ErrInvalidCustomerID)
	if err != nil {
		return nil, err
	}
	return s.bills.ListByCustomer(ctx, s.db, accountID, id)
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
