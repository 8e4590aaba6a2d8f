package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	membershipdomain "github.com/smallbiznis/gymledger/internal/membership/domain"
	plandomain "github.com/smallbiznis/gymledger/internal/plan/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Activator replaces a customer's active membership inside the caller's
// transaction. Deactivation of the prior membership and insertion of the
// new one commit together, which keeps the one-active-membership
// invariant.
type Activator interface {
	// Activate deactivates any active membership and starts a new one
	// covering [startDate, plan end). Returns the new membership.
	Activate(ctx context.Context, tx *gorm.DB, accountID, customerID snowflake.ID, plan plandomain.MembershipPlan, startDate time.Time) (*membershipdomain.CustomerMembership, error)
}

type ActivatorParams struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  membershipdomain.Repository
}

type activator struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  membershipdomain.Repository
}

func NewActivator(p ActivatorParams) Activator {
	return &activator{
		log:   p.Log.Named("membership.activator"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (a *activator) Activate(ctx context.Context, tx *gorm.DB, accountID, customerID snowflake.ID, plan plandomain.MembershipPlan, startDate time.Time) (*membershipdomain.CustomerMembership, error) {
	deactivated, err := a.repo.DeactivateActive(ctx, tx, accountID, customerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	membership := &membershipdomain.CustomerMembership{
		ID:               a.genID.Generate(),
		AccountID:        accountID,
		CustomerID:       customerID,
		MembershipPlanID: plan.ID,
		StartDate:        startDate,
		EndDate:          plan.CalculateEndDate(startDate),
		Status:           membershipdomain.MembershipStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := a.repo.Insert(ctx, tx, membership); err != nil {
		return nil, err
	}

	a.log.Info("membership activated",
		zap.Int64("customer_id", int64(customerID)),
		zap.Int64("plan_id", int64(plan.ID)),
		zap.Time("start_date", membership.StartDate),
		zap.Time("end_date", membership.EndDate),
		zap.Bool("replaced_active", deactivated),
	)
	return membership, nil
}
