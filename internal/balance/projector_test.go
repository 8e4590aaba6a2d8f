package balance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	billingdomain "github.com/smallbiznis/gymledger/internal/billing/domain"
	customerdomain "github.com/smallbiznis/gymledger/internal/customer/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&customerdomain.Customer{}, &billingdomain.CustomerBill{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return d
}

func TestRecomputeSumsOpenBillsOnly(t *testing.T) {
	db := newTestDB(t)
	node, err := snowflake.NewNode(4)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	projector := NewProjector(Params{Log: zap.NewNop()})
	ctx := context.Background()

	accountID := node.Generate()
	customer := customerdomain.Customer{
		ID:        node.Generate(),
		AccountID: accountID,
		Name:      "Robin Vale",
		Email:     "robin@example.com",
		Balance:   decimal.Zero,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	billDate := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	deletedAt := billDate
	bills := []billingdomain.CustomerBill{
		{NetAmount: mustDecimal(t, "1000"), PaidAmount: mustDecimal(t, "400"), Status: billingdomain.BillStatusPartial},
		{NetAmount: mustDecimal(t, "250"), PaidAmount: decimal.Zero, Status: billingdomain.BillStatusActive},
		{NetAmount: mustDecimal(t, "500"), PaidAmount: mustDecimal(t, "500"), Status: billingdomain.BillStatusPaid},
		{NetAmount: mustDecimal(t, "900"), PaidAmount: decimal.Zero, Status: billingdomain.BillStatusVoided},
		{NetAmount: mustDecimal(t, "75"), PaidAmount: decimal.Zero, Status: billingdomain.BillStatusActive, DeletedAt: &deletedAt},
	}
	for i := range bills {
		bills[i].ID = node.Generate()
		bills[i].AccountID = accountID
		bills[i].CustomerID = customer.ID
		bills[i].BillType = billingdomain.BillTypeCustomAmount
		bills[i].BillDate = billDate
		bills[i].BillingPeriod = billingdomain.PeriodKey(billDate)
		bills[i].GrossAmount = bills[i].NetAmount
		if err := db.Create(&bills[i]).Error; err != nil {
			t.Fatalf("seed bill %d: %v", i, err)
		}
	}

	// 600 remaining on the partial bill plus the open 250.
	total, err := projector.Recompute(ctx, db, accountID, customer.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if !total.Equal(mustDecimal(t, "850")) {
		t.Fatalf("expected 850, got %s", total)
	}

	var reloaded customerdomain.Customer
	if err := db.Where("id = ?", customer.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reload customer: %v", err)
	}
	if !reloaded.Balance.Equal(mustDecimal(t, "850")) {
		t.Fatalf("expected persisted balance 850, got %s", reloaded.Balance)
	}
}

func TestRecomputeZeroWhenNoOpenBills(t *testing.T) {
	db := newTestDB(t)
	node, err := snowflake.NewNode(5)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	projector := NewProjector(Params{Log: zap.NewNop()})

	accountID := node.Generate()
	customer := customerdomain.Customer{
		ID:        node.Generate(),
		AccountID: accountID,
		Name:      "Robin Vale",
		Email:     "robin@example.com",
		Balance:   mustDecimal(t, "123.45"),
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	total, err := projector.Recompute(context.Background(), db, accountID, customer.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if !total.IsZero() {
		t.Fatalf("expected zero, got %s", total)
	}
}
