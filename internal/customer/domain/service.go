package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error)
	Get(ctx context.Context, id string) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, accountID snowflake.ID) ([]Customer, error)
}

var (
	ErrCustomerNotFound  = errors.New("customer_not_found")
	ErrInvalidCustomerID = errors.New("invalid_customer_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidEmail      = errors.New("invalid_email")
)
