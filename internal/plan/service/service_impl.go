package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymledger/internal/accountcontext"
	"github.com/smallbiznis/gymledger/internal/cache"
	plandomain "github.com/smallbiznis/gymledger/internal/plan/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const planCacheTTL = 5 * time.Minute

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  plandomain.Repository
	Cache cache.Cache[snowflake.ID, plandomain.MembershipPlan]
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  plandomain.Repository
	cache cache.Cache[snowflake.ID, plandomain.MembershipPlan]
}

func NewService(p Params) plandomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("plan.service"),
		genID: p.GenID,
		repo:  p.Repo,
		cache: p.Cache,
	}
}

func (s *Service) Create(ctx context.Context, req plandomain.CreatePlanRequest) (*plandomain.MembershipPlan, error) {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, plandomain.ErrInvalidPlanName
	}
	if req.Price.IsNegative() {
		return nil, plandomain.ErrInvalidPlanPrice
	}
	if req.PeriodLength <= 0 || !req.PeriodUnit.Valid() {
		return nil, plandomain.ErrInvalidPlanPeriod
	}

	plan := &plandomain.MembershipPlan{
		ID:           s.genID.Generate(),
		AccountID:    accountID,
		Name:         name,
		Price:        req.Price.Round(2),
		PeriodLength: req.PeriodLength,
		PeriodUnit:   req.PeriodUnit,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) Get(ctx context.Context, id string) (*plandomain.MembershipPlan, error) {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	planID, err := parseID(id)
	if err != nil {
		return nil, plandomain.ErrInvalidPlanID
	}

	if cached, ok := s.cache.Get(planID); ok && cached.AccountID == accountID {
		return &cached, nil
	}

	plan, err := s.repo.FindByID(ctx, s.db, accountID, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, plandomain.ErrPlanNotFound
	}
	s.cache.Set(planID, *plan, planCacheTTL)
	return plan, nil
}

func (s *Service) List(ctx context.Context, includeArchived bool) ([]plandomain.MembershipPlan, error) {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, s.db, accountID, includeArchived)
}

func (s *Service) Archive(ctx context.Context, id string) error {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return err
	}
	planID, err := parseID(id)
	if err != nil {
		return plandomain.ErrInvalidPlanID
	}
	if err := s.repo.Archive(ctx, s.db, accountID, planID); err != nil {
		return err
	}
	s.cache.Delete(planID)
	return nil
}

func parseID(raw string) (snowflake.ID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, plandomain.ErrInvalidPlanID
	}
	return snowflake.ID(value), nil
}
