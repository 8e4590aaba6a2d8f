package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymledger/internal/accountcontext"
	membershipdomain "github.com/smallbiznis/gymledger/internal/membership/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidCustomerID = errors.New("invalid_customer_id")

// QueryService serves membership reads for the HTTP boundary.
type QueryService interface {
	ListByCustomer(ctx context.Context, customerID string) ([]membershipdomain.CustomerMembership, error)

	// Current returns the customer's active membership or
	// ErrMembershipNotFound.
	Current(ctx context.Context, customerID string) (*membershipdomain.CustomerMembership, error)
}

type QueryParams struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo membershipdomain.Repository
}

type queryService struct {
	db   *gorm.DB
	log  *zap.Logger
	repo membershipdomain.Repository
}

func NewQueryService(p QueryParams) QueryService {
	return &queryService{
		db:   p.DB,
		log:  p.Log.Named("membership.query"),
		repo: p.Repo,
	}
}

func (s *queryService) ListByCustomer(ctx context.Context, customerID string) ([]membershipdomain.CustomerMembership, error) {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseCustomerID(customerID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByCustomer(ctx, s.db, accountID, id)
}

func (s *queryService) Current(ctx context.Context, customerID string) (*membershipdomain.CustomerMembership, error) {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseCustomerID(customerID)
	if err != nil {
		return nil, err
	}
	current, err := s.repo.FindActiveByCustomer(ctx, s.db, accountID, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, membershipdomain.ErrMembershipNotFound
	}
	return current, nil
}

func parseCustomerID(raw string) (snowflake.ID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, ErrInvalidCustomerID
	}
	return snowflake.ID(value), nil
}
