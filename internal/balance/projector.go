package balance

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	billingdomain "github.com/smallbiznis/gymledger/internal/billing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Projector maintains the denormalized customer balance. The balance is
// the sum of (net - paid) over bills that are not voided, not deleted
// and not fully paid. Callers run Recompute inside the same transaction
// that mutated the bills so the projection never drifts from the rows
// it summarizes.
type Projector interface {
	Recompute(ctx context.Context, tx *gorm.DB, accountID, customerID snowflake.ID) (decimal.Decimal, error)
}

type Params struct {
	fx.In

	Log *zap.Logger
}

type projector struct {
	log *zap.Logger
}

func NewProjector(p Params) Projector {
	return &projector{log: p.Log.Named("balance.projector")}
}

func (pr *projector) Recompute(ctx context.Context, tx *gorm.DB, accountID, customerID snowflake.ID) (decimal.Decimal, error) {
	var bills []billingdomain.CustomerBill
	err := tx.WithContext(ctx).
		Where("account_id = ? AND customer_id = ?", accountID, customerID).
		Where("deleted_at IS NULL").
		Where("status NOT IN ?", []billingdomain.BillStatus{billingdomain.BillStatusVoided, billingdomain.BillStatusPaid}).
		Find(&bills).Error
	if err != nil {
		return decimal.Zero, err
	}

	// Summed in Go so decimal arithmetic stays exact across database
	// engines.
	total := decimal.Zero
	for _, bill := range bills {
		total = total.Add(bill.NetAmount.Sub(bill.PaidAmount))
	}

	err = tx.WithContext(ctx).
		Table("customers").
		Where("account_id = ? AND id = ?", accountID, customerID).
		Update("balance", total).Error
	if err != nil {
		return decimal.Zero, err
	}

	pr.log.Debug("balance recomputed",
		zap.Int64("customer_id", int64(customerID)),
		zap.String("balance", total.String()),
	)
	return total, nil
}

var Module = fx.Module("balance.projector",
	fx.Provide(NewProjector),
)
