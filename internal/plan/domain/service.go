package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CreatePlanRequest struct {
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	PeriodLength int             `json:"period_length"`
	PeriodUnit   PeriodUnit      `json:"period_unit"`
}

type Service interface {
	Create(ctx context.Context, req CreatePlanRequest) (*MembershipPlan, error)
	Get(ctx context.Context, id string) (*MembershipPlan, error)
	List(ctx context.Context, includeArchived bool) ([]MembershipPlan, error)
	Archive(ctx context.Context, id string) error
}

var (
	ErrPlanNotFound      = errors.New("plan_not_found")
	ErrInvalidPlanName   = errors.New("invalid_plan_name")
	ErrInvalidPlanPrice  = errors.New("invalid_plan_price")
	ErrInvalidPlanPeriod = errors.New("invalid_plan_period")
	ErrInvalidPlanID     = errors.New("invalid_plan_id")
)
