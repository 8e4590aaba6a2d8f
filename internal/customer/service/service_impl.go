package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gymledger/internal/accountcontext"
	customerdomain "github.com/smallbiznis/gymledger/internal/customer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  customerdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  customerdomain.Repository
}

func NewService(p Params) customerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req customerdomain.CreateCustomerRequest) (*customerdomain.Customer, error) {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, customerdomain.ErrInvalidName
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, customerdomain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	customer := &customerdomain.Customer{
		ID:        s.genID.Generate(),
		AccountID: accountID,
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *Service) Get(ctx context.Context, id string) (*customerdomain.Customer, error) {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	customerID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	customer, err := s.repo.FindByID(ctx, s.db, accountID, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, customerdomain.ErrCustomerNotFound
	}
	return customer, nil
}

func (s *Service) List(ctx context.Context) ([]customerdomain.Customer, error) {
	accountID, err := accountcontext.AccountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, s.db, accountID)
}

func parseID(raw string) (snowflake.ID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, customerdomain.ErrInvalidCustomerID
	}
	return snowflake.ID(value), nil
}
