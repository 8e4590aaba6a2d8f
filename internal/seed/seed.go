package seed

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/gymledger/internal/account/domain"
	apikeydomain "github.com/smallbiznis/gymledger/internal/apikey/domain"
	plandomain "github.com/smallbiznis/gymledger/internal/plan/domain"
	"gorm.io/gorm"
)

const (
	defaultAccountName = "Main"
	defaultAccountSlug = "main"
	defaultAPIKeyName  = "bootstrap"

	// Development fallback; override with GYMLEDGER_BOOTSTRAP_API_KEY.
	defaultDevAPIKey = "gymledger-dev-key"
)

// EnsureMainAccount seeds the default account, a bootstrap API key and
// starter membership plans. Safe to run on every startup.
func EnsureMainAccount(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := ensureMainAccountTx(ctx, tx, node)
		if err != nil {
			return err
		}
		if err := ensureBootstrapAPIKey(ctx, tx, node, account.ID); err != nil {
			return err
		}
		return ensureStarterPlans(ctx, tx, node, account.ID)
	})
}

func ensureMainAccountTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (accountdomain.Account, error) {
	var account accountdomain.Account
	err := tx.WithContext(ctx).Where("slug = ?", defaultAccountSlug).First(&account).Error
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return account, err
	}
	now := time.Now().UTC()
	account = accountdomain.Account{
		ID:        node.Generate(),
		Name:      defaultAccountName,
		Slug:      defaultAccountSlug,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&account).Error; err != nil {
		return account, err
	}
	return account, nil
}

func ensureBootstrapAPIKey(ctx context.Context, tx *gorm.DB, node *snowflake.Node, accountID snowflake.ID) error {
	raw := strings.TrimSpace(os.Getenv("GYMLEDGER_BOOTSTRAP_API_KEY"))
	if raw == "" {
		raw = defaultDevAPIKey
	}
	hash := apikeydomain.HashAPIKey(raw)

	var existing apikeydomain.APIKey
	err := tx.WithContext(ctx).Where("key_hash = ?", hash).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	key := apikeydomain.APIKey{
		ID:        node.Generate(),
		AccountID: accountID,
		Name:      defaultAPIKeyName,
		KeyHash:   hash,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&key).Error
}

func ensureStarterPlans(ctx context.Context, tx *gorm.DB, node *snowflake.Node, accountID snowflake.ID) error {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&plandomain.MembershipPlan{}).
		Where("account_id = ?", accountID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	plans := []plandomain.MembershipPlan{
		{
			ID:           node.Generate(),
			AccountID:    accountID,
			Name:         "Monthly",
			Price:        decimal.NewFromInt(1000),
			PeriodLength: 1,
			PeriodUnit:   plandomain.PeriodUnitMonths,
			CreatedAt:    now,
		},
		{
			ID:           node.Generate(),
			AccountID:    accountID,
			Name:         "Quarterly",
			Price:        decimal.NewFromInt(2700),
			PeriodLength: 3,
			PeriodUnit:   plandomain.PeriodUnitMonths,
			CreatedAt:    now,
		},
		{
			ID:           node.Generate(),
			AccountID:    accountID,
			Name:         "Annual",
			Price:        decimal.NewFromInt(9600),
			PeriodLength: 1,
			PeriodUnit:   plandomain.PeriodUnitYears,
			CreatedAt:    now,
		},
	}
	return tx.WithContext(ctx).Create(&plans).Error
}
