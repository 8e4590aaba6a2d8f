package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/gymledger/internal/account/domain"
	"github.com/smallbiznis/gymledger/internal/accountcontext"
	auditdomain "github.com/smallbiznis/gymledger/internal/audit/domain"
	auditrepository "github.com/smallbiznis/gymledger/internal/audit/repository"
	auditservice "github.com/smallbiznis/gymledger/internal/audit/service"
	"github.com/smallbiznis/gymledger/internal/balance"
	billingdomain "github.com/smallbiznis/gymledger/internal/billing/domain"
	billingrepository "github.com/smallbiznis/gymledger/internal/billing/repository"
	"github.com/smallbiznis/gymledger/internal/cache"
	"github.com/smallbiznis/gymledger/internal/clock"
	customerdomain "github.com/smallbiznis/gymledger/internal/customer/domain"
	customerrepository "github.com/smallbiznis/gymledger/internal/customer/repository"
	membershipdomain "github.com/smallbiznis/gymledger/internal/membership/domain"
	membershiprepository "github.com/smallbiznis/gymledger/internal/membership/repository"
	membershipservice "github.com/smallbiznis/gymledger/internal/membership/service"
	notificationdomain "github.com/smallbiznis/gymledger/internal/notification/domain"
	paymentdomain "github.com/smallbiznis/gymledger/internal/payment/domain"
	plandomain "github.com/smallbiznis/gymledger/internal/plan/domain"
	planrepository "github.com/smallbiznis/gymledger/internal/plan/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	clock     *clock.Fixed
	service   billingdomain.Service
	bills     billingdomain.Repository
	members   membershipdomain.Repository
	plans     plandomain.Repository
	customers customerdomain.Repository
	balance   balance.Projector
	accountID snowflake.ID
	ctx       context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&accountdomain.Account{},
		&customerdomain.Customer{},
		&plandomain.MembershipPlan{},
		&membershipdomain.CustomerMembership{},
		&billingdomain.CustomerBill{},
		&paymentdomain.CustomerPayment{},
		&notificationdomain.MembershipNotification{},
		&notificationdomain.OutboxRecord{},
		&auditdomain.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	log := zap.NewNop()
	fixedClock := &clock.Fixed{At: date(2026, time.January, 15)}

	account := accountdomain.Account{
		ID:   node.Generate(),
		Name: "Test Gym",
		Slug: "test-gym",
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}

	bills := billingrepository.Provide()
	members := membershiprepository.Provide()
	plans := planrepository.Provide()
	customers := customerrepository.Provide()
	planCache := cache.NewTTLCache[snowflake.ID, plandomain.MembershipPlan]()
	projector := balance.NewProjector(balance.Params{Log: log})
	activator := membershipservice.NewActivator(membershipservice.ActivatorParams{
		Log:   log,
		GenID: node,
		Repo:  members,
	})
	recorder := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fixedClock,
		Repo:  auditrepository.Provide(),
	})

	svc := NewService(Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       fixedClock,
		Bills:       bills,
		Memberships: members,
		Plans:       plans,
		PlanCache:   planCache,
		Customers:   customers,
		Activator:   activator,
		Balance:     projector,
		Audit:       recorder,
	})

	return &fixture{
		db:        db,
		node:      node,
		clock:     fixedClock,
		service:   svc,
		bills:     bills,
		members:   members,
		plans:     plans,
		customers: customers,
		balance:   projector,
		accountID: account.ID,
		ctx:       accountcontext.WithAccountID(context.Background(), account.ID),
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) createCustomer(t *testing.T) *customerdomain.Customer {
	t.Helper()
	customer := &customerdomain.Customer{
		ID:        f.node.Generate(),
		AccountID: f.accountID,
		Name:      "Jamie Rivers",
		Email:     "jamie@example.com",
		Balance:   decimal.Zero,
	}
	if err := f.customers.Insert(f.ctx, f.db, customer); err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	return customer
}

func (f *fixture) createPlan(t *testing.T, price string, length int, unit plandomain.PeriodUnit) *plandomain.MembershipPlan {
	t.Helper()
	plan := &plandomain.MembershipPlan{
		ID:           f.node.Generate(),
		AccountID:    f.accountID,
		Name:         "Test Plan",
		Price:        mustDecimal(t, price),
		PeriodLength: length,
		PeriodUnit:   unit,
	}
	if err := f.plans.Insert(f.ctx, f.db, plan); err != nil {
		t.Fatalf("insert plan: %v", err)
	}
	return plan
}

func (f *fixture) activeMembership(t *testing.T, customerID snowflake.ID) *membershipdomain.CustomerMembership {
	t.Helper()
	m, err := f.members.FindActiveByCustomer(f.ctx, f.db, f.accountID, customerID)
	if err != nil {
		t.Fatalf("find active membership: %v", err)
	}
	return m
}

func (f *fixture) customerBalance(t *testing.T, customerID snowflake.ID) decimal.Decimal {
	t.Helper()
	var customer customerdomain.Customer
	if err := f.db.Where("id = ?", customerID).First(&customer).Error; err != nil {
		t.Fatalf("load customer: %v", err)
	}
	return customer.Balance
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return d
}

func TestCreateSubscriptionBillNewMemberActivatesImmediately(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t)
	plan := f.createPlan(t, "1000", 1, plandomain.PeriodUnitMonths)
	billDate := date(2026, time.January, 15)

	bill, err := f.service.Create(f.ctx, billingdomain.CreateBillRequest{
		CustomerID:       customer.ID.String(),
		BillType:         billingdomain.BillTypeMembershipSubscription,
		MembershipPlanID: plan.ID.String(),
		BillDate:         billDate,
	})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}

	if !bill.NetAmount.Equal(mustDecimal(t, "1000")) {
		t.Fatalf("expected net 1000, got %s", bill.NetAmount)
	}
	if bill.Status != billingdomain.BillStatusActive {
		t.Fatalf("expected active status, got %s", bill.Status)
	}

	membership := f.activeMembership(t, customer.ID)
	if membership == nil {
		t.Fatal("expected an active membership")
	}
	if !membership.StartDate.Equal(billDate) {
		t.Fatalf("expected start %s, got %s", billDate, membership.StartDate)
	}
	if !membership.EndDate.Equal(date(2026, time.February, 15)) {
		t.Fatalf("expected end 2026-02-15, got %s", membership.EndDate)
	}

	if got := f.customerBalance(t, customer.ID); !got.Equal(mustDecimal(t, "1000")) {
		t.Fatalf("expected balance 1000, got %s", got)
	}
}

func TestCreateFutureRenewalBillDefersActivation(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t)
	plan := f.createPlan(t, "1000", 1, plandomain.PeriodUnitMonths)

	_, err := f.service.Create(f.ctx, billingdomain.CreateBillRequest{
		CustomerID:       customer.ID.String(),
		BillType:         billingdomain.BillTypeMembershipSubscription,
		MembershipPlanID: plan.ID.String(),
		BillDate:         date(2026, time.January, 1),
	})
	if err != nil {
		t.Fatalf("create first bill: %v", err)
	}
	first := f.activeMembership(t, customer.ID)
	if first == nil || !first.EndDate.Equal(date(2026, time.February, 1)) {
		t.Fatalf("expected membership ending 2026-02-01, got %+v", first)
	}

	// Renewal dated on the end date is a future renewal.
	_, err = f.service.Create(f.ctx, billingdomain.CreateBillRequest{
		CustomerID:       customer.ID.String(),
		BillType:         billingdomain.BillTypeMembershipSubscription,
		MembershipPlanID: plan.ID.String(),
		BillDate:         date(2026, time.February, 1),
	})
	if err != nil {
		t.Fatalf("create renewal bill: %v", err)
	}

	after := f.activeMembership(t, customer.ID)
	if after == nil {
		t.Fatal("expected the original membership to remain active")
	}
	if after.ID != first.ID {
		t.Fatal("renewal bill must not replace the membership before payment")
	}
	if !after.EndDate.Equal(date(2026, time.February, 1)) {
		t.Fatalf("membership end date changed: %s", after.EndDate)
	}
}

func TestCreateBillWithDiscount(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t)
	plan := f.createPlan(t, "1000", 1, plandomain.PeriodUnitMonths)

	bill, err := f.service.Create(f.ctx, billingdomain.CreateBillRequest{
		CustomerID:         customer.ID.String(),
		BillType:           billingdomain.BillTypeMembershipSubscription,
		MembershipPlanID:   plan.ID.String(),
		BillDate:           date(2026, time.January, 15),
		DiscountPercentage: mustDecimal(t, "10"),
	})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	if !bill.NetAmount.Equal(mustDecimal(t, "900")) {
		t.Fatalf("expected net 900, got %s", bill.NetAmount)
	}
}

func TestReactivationBillVoidsLapsedPeriodBills(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t)
	plan := f.createPlan(t, "1000", 1, plandomain.PeriodUnitMonths)

	// Lapsed membership with an unpaid bill from its period.
	start := date(2025, time.November, 1)
	lapsed := &membershipdomain.CustomerMembership{
		ID:               f.node.Generate(),
		AccountID:        f.accountID,
		CustomerID:       customer.ID,
		MembershipPlanID: plan.ID,
		StartDate:        start,
		EndDate:          date(2025, time.December, 1),
		Status:           membershipdomain.MembershipStatusExpired,
	}
	if err := f.members.Insert(f.ctx, f.db, lapsed); err != nil {
		t.Fatalf("insert lapsed membership: %v", err)
	}
	oldBill := &billingdomain.CustomerBill{
		ID:            f.node.Generate(),
		AccountID:     f.accountID,
		CustomerID:    customer.ID,
		BillType:      billingdomain.BillTypeMembershipSubscription,
		BillDate:      start,
		BillingPeriod: billingdomain.PeriodKey(start),
		GrossAmount:   mustDecimal(t, "1000"),
		NetAmount:     mustDecimal(t, "1000"),
		PaidAmount:    decimal.Zero,
		Status:        billingdomain.BillStatusActive,
	}
	if err := f.bills.Insert(f.ctx, f.db, oldBill); err != nil {
		t.Fatalf("insert old bill: %v", err)
	}

	_, err := f.service.Create(f.ctx, billingdomain.CreateBillRequest{
		CustomerID:  customer.ID.String(),
		BillType:    billingdomain.BillTypeReactivationFee,
		BillDate:    date(2026, time.January, 15),
		GrossAmount: mustDecimal(t, "500"),
	})
	if err != nil {
		t.Fatalf("create reactivation bill: %v", err)
	}

	reloaded, err := f.bills.FindByID(f.ctx, f.db, f.accountID, oldBill.ID)
	if err != nil {
		t.Fatalf("reload old bill: %v", err)
	}
	if reloaded.Status != billingdomain.BillStatusVoided {
		t.Fatalf("expected old bill voided, got %s", reloaded.Status)
	}
	if !reloaded.NetAmount.Equal(mustDecimal(t, "1000")) {
		t.Fatalf("voiding must not change amounts, got %s", reloaded.NetAmount)
	}

	// Only the reactivation fee remains owed.
	if got := f.customerBalance(t, customer.ID); !got.Equal(mustDecimal(t, "500")) {
		t.Fatalf("expected balance 500, got %s", got)
	}
}

func TestUpdateBillPeriodLock(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t)
	plan := f.createPlan(t, "1000", 1, plandomain.PeriodUnitMonths)

	oldDate := date(2025, time.December, 1)
	oldBill := &billingdomain.CustomerBill{
		ID:            f.node.Generate(),
		AccountID:     f.accountID,
		CustomerID:    customer.ID,
		BillType:      billingdomain.BillTypeMembershipSubscription,
		BillDate:      oldDate,
		BillingPeriod: billingdomain.PeriodKey(oldDate),
		GrossAmount:   mustDecimal(t, "1000"),
		NetAmount:     mustDecimal(t, "1000"),
		PaidAmount:    decimal.Zero,
		Status:        billingdomain.BillStatusActive,
	}
	if err := f.bills.Insert(f.ctx, f.db, oldBill); err != nil {
		t.Fatalf("insert old bill: %v", err)
	}

	// Current period starts 2026-01-01.
	_, err := f.service.Create(f.ctx, billingdomain.CreateBillRequest{
		CustomerID:       customer.ID.String(),
		BillType:         billingdomain.BillTypeMembershipSubscription,
		MembershipPlanID: plan.ID.String(),
		BillDate:         date(2026, time.January, 1),
	})
	if err != nil {
		t.Fatalf("create current bill: %v", err)
	}

	newAmount := mustDecimal(t, "1200")
	_, err = f.service.Update(f.ctx, oldBill.ID.String(), billingdomain.UpdateBillRequest{
		GrossAmount: &newAmount,
	})
	if !errors.Is(err, billingdomain.ErrClosedPeriodUpdate) {
		t.Fatalf("expected closed period error, got %v", err)
	}
	if err.Error() != "Cannot update a bill from a previous billing period." {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestUpdateCurrentPeriodBill(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t)
	plan := f.createPlan(t, "1000", 1, plandomain.PeriodUnitMonths)

	bill, err := f.service.Create(f.ctx, billingdomain.CreateBillRequest{
		CustomerID:       customer.ID.String(),
		BillType:         billingdomain.BillTypeMembershipSubscription,
		MembershipPlanID: plan.ID.String(),
		BillDate:         date(2026, time.January, 1),
	})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}

	discount := mustDecimal(t, "20")
	updated, err := f.service.Update(f.ctx, bill.ID.String(), billingdomain.UpdateBillRequest{
		DiscountPercentage: &discount,
	})
	if err != nil {
		t.Fatalf("update bill: %v", err)
	}
	if !updated.NetAmount.Equal(mustDecimal(t, "800")) {
		t.Fatalf("expected net 800, got %s", updated.NetAmount)
	}
	if got := f.customerBalance(t, customer.ID); !got.Equal(mustDecimal(t, "800")) {
		t.Fatalf("expected balance 800, got %s", got)
	}
}

func TestUpdateVoidedBillRejected(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t)
	plan := f.createPlan(t, "1000", 1, plandomain.PeriodUnitMonths)

	bill, err := f.service.Create(f.ctx, billingdomain.CreateBillRequest{
		CustomerID:       customer.ID.String(),
		BillType:         billingdomain.BillTypeMembershipSubscription,
		MembershipPlanID: plan.ID.String(),
		BillDate:         date(2026, time.January, 1),
	})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	if _, err := f.service.Void(f.ctx, bill.ID.String()); err != nil {
		t.Fatalf("void bill: %v", err)
	}

	amount := mustDecimal(t, "1")
	_, err = f.service.Update(f.ctx, bill.ID.String(), billingdomain.UpdateBillRequest{
		GrossAmount: &amount,
	})
	if !errors.Is(err, billingdomain.ErrClosedPeriodUpdate) {
		t.Fatalf("expected closed period error, got %v", err)
	}
}

func TestDeletePaidBillRejected(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t)

	bill := &billingdomain.CustomerBill{
		ID:            f.node.Generate(),
		AccountID:     f.accountID,
		CustomerID:    customer.ID,
		BillType:      billingdomain.BillTypeCustomAmount,
		BillDate:      date(2026, time.January, 10),
		BillingPeriod: billingdomain.PeriodKey(date(2026, time.January, 10)),
		GrossAmount:   mustDecimal(t, "100"),
		NetAmount:     mustDecimal(t, "100"),
		PaidAmount:    mustDecimal(t, "100"),
		Status:        billingdomain.BillStatusPaid,
	}
	if err := f.bills.Insert(f.ctx, f.db, bill); err != nil {
		t.Fatalf("insert bill: %v", err)
	}

	err := f.service.Delete(f.ctx, bill.ID.String())
	if !errors.Is(err, billingdomain.ErrPaidBillDeletion) {
		t.Fatalf("expected paid bill deletion error, got %v", err)
	}
	if err.Error() != "Cannot delete a fully paid bill. Please delete payments instead." {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestDeleteUnpaidBillRecomputesBalance(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t)

	bill, err := f.service.Create(f.ctx, billingdomain.CreateBillRequest{
		CustomerID:  customer.ID.String(),
		BillType:    billingdomain.BillTypeCustomAmount,
		BillDate:    date(2026, time.January, 10),
		GrossAmount: mustDecimal(t, "250"),
	})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	if got := f.customerBalance(t, customer.ID); !got.Equal(mustDecimal(t, "250")) {
		t.Fatalf("expected balance 250, got %s", got)
	}

	if err := f.service.Delete(f.ctx, bill.ID.String()); err != nil {
		t.Fatalf("delete bill: %v", err)
	}
	if got := f.customerBalance(t, customer.ID); !got.IsZero() {
		t.Fatalf("expected zero balance after delete, got %s", got)
	}
	if _, err := f.service.Get(f.ctx, bill.ID.String()); !errors.Is(err, billingdomain.ErrBillNotFound) {
		t.Fatalf("expected bill not found after delete, got %v", err)
	}
}

func TestCreateBillValidation(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t)

	_, err := f.service.Create(f.ctx, billingdomain.CreateBillRequest{
		CustomerID: customer.ID.String(),
		BillType:   billingdomain.BillType("unknown"),
		BillDate:   date(2026, time.January, 10),
	})
	if !errors.Is(err, billingdomain.ErrInvalidBillType) {
		t.Fatalf("expected invalid bill type, got %v", err)
	}

	_, err = f.service.Create(f.ctx, billingdomain.CreateBillRequest{
		CustomerID: customer.ID.String(),
		BillType:   billingdomain.BillTypeMembershipSubscription,
		BillDate:   date(2026, time.January, 10),
	})
	if !errors.Is(err, billingdomain.ErrPlanRequired) {
		t.Fatalf("expected plan required, got %v", err)
	}

	_, err = f.service.Create(f.ctx, billingdomain.CreateBillRequest{
		CustomerID: customer.ID.String(),
		BillType:   billingdomain.BillTypeCustomAmount,
		BillDate:   date(2026, time.January, 10),
	})
	if !errors.Is(err, billingdomain.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestUpdatePlanChangeOnFutureRenewalDoesNotActivate(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t)
	plan := f.createPlan(t, "1000", 1, plandomain.PeriodUnitMonths)

	_, err := f.service.Create(f.ctx, billingdomain.CreateBillRequest{
		CustomerID:       customer.ID.String(),
		BillType:         billingdomain.BillTypeMembershipSubscription,
		MembershipPlanID: plan.ID.String(),
		BillDate:         date(2026, time.January, 1),
	})
	if err != nil {
		t.Fatalf("create first bill: %v", err)
	}
	first := f.activeMembership(t, customer.ID)

	renewal, err := f.service.Create(f.ctx, billingdomain.CreateBillRequest{
		CustomerID:       customer.ID.String(),
		BillType:         billingdomain.BillTypeMembershipSubscription,
		MembershipPlanID: plan.ID.String(),
		BillDate:         date(2026, time.February, 1),
	})
	if err != nil {
		t.Fatalf("create renewal bill: %v", err)
	}

	upgrade := f.createPlan(t, "1200", 1, plandomain.PeriodUnitMonths)
	upgradeID := upgrade.ID.String()
	updated, err := f.service.Update(f.ctx, renewal.ID.String(), billingdomain.UpdateBillRequest{
		MembershipPlanID: &upgradeID,
	})
	if err != nil {
		t.Fatalf("update renewal plan: %v", err)
	}
	if updated.MembershipPlanID == nil || *updated.MembershipPlanID != upgrade.ID {
		t.Fatal("expected the bill to reference the new plan")
	}
	if !updated.NetAmount.Equal(mustDecimal(t, "1200")) {
		t.Fatalf("expected net 1200 from the new plan, got %s", updated.NetAmount)
	}

	// The renewal is unpaid; swapping its plan must not touch the
	// membership.
	after := f.activeMembership(t, customer.ID)
	if after == nil || after.ID != first.ID {
		t.Fatal("plan change on an unpaid renewal must not replace the membership")
	}
	if !after.EndDate.Equal(date(2026, time.February, 1)) {
		t.Fatalf("membership end date changed: %s", after.EndDate)
	}
}

func TestUpdatePlanChangeOnCurrentPeriodBillReactivates(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t)
	plan := f.createPlan(t, "1000", 1, plandomain.PeriodUnitMonths)

	bill, err := f.service.Create(f.ctx, billingdomain.CreateBillRequest{
		CustomerID:       customer.ID.String(),
		BillType:         billingdomain.BillTypeMembershipSubscription,
		MembershipPlanID: plan.ID.String(),
		BillDate:         date(2026, time.January, 1),
	})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}

	quarterly := f.createPlan(t, "2700", 3, plandomain.PeriodUnitMonths)
	quarterlyID := quarterly.ID.String()
	if _, err := f.service.Update(f.ctx, bill.ID.String(), billingdomain.UpdateBillRequest{
		MembershipPlanID: &quarterlyID,
	}); err != nil {
		t.Fatalf("update plan: %v", err)
	}

	m := f.activeMembership(t, customer.ID)
	if m == nil {
		t.Fatal("expected an active membership")
	}
	if m.MembershipPlanID != quarterly.ID {
		t.Fatal("expected the membership to follow the new plan")
	}
	if !m.EndDate.Equal(date(2026, time.April, 1)) {
		t.Fatalf("expected end 2026-04-01, got %s", m.EndDate)
	}
}

func TestUpdateBillPeriodLockForLapsedCustomer(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t)
	plan := f.createPlan(t, "1000", 1, plandomain.PeriodUnitMonths)

	lapsedStart := date(2025, time.December, 1)
	lapsed := &membershipdomain.CustomerMembership{
		ID:               f.node.Generate(),
		AccountID:        f.accountID,
		CustomerID:       customer.ID,
		MembershipPlanID: plan.ID,
		StartDate:        lapsedStart,
		EndDate:          date(2026, time.January, 1),
		Status:           membershipdomain.MembershipStatusExpired,
	}
	if err := f.members.Insert(f.ctx, f.db, lapsed); err != nil {
		t.Fatalf("insert lapsed membership: %v", err)
	}

	priorDate := date(2025, time.November, 1)
	prior := &billingdomain.CustomerBill{
		ID:            f.node.Generate(),
		AccountID:     f.accountID,
		CustomerID:    customer.ID,
		BillType:      billingdomain.BillTypeMembershipSubscription,
		BillDate:      priorDate,
		BillingPeriod: billingdomain.PeriodKey(priorDate),
		GrossAmount:   mustDecimal(t, "1000"),
		NetAmount:     mustDecimal(t, "1000"),
		PaidAmount:    decimal.Zero,
		Status:        billingdomain.BillStatusActive,
	}
	if err := f.bills.Insert(f.ctx, f.db, prior); err != nil {
		t.Fatalf("insert prior bill: %v", err)
	}
	lastCycle := &billingdomain.CustomerBill{
		ID:            f.node.Generate(),
		AccountID:     f.accountID,
		CustomerID:    customer.ID,
		BillType:      billingdomain.BillTypeMembershipSubscription,
		BillDate:      lapsedStart,
		BillingPeriod: billingdomain.PeriodKey(lapsedStart),
		GrossAmount:   mustDecimal(t, "1000"),
		NetAmount:     mustDecimal(t, "1000"),
		PaidAmount:    decimal.Zero,
		Status:        billingdomain.BillStatusActive,
	}
	if err := f.bills.Insert(f.ctx, f.db, lastCycle); err != nil {
		t.Fatalf("insert last cycle bill: %v", err)
	}

	// With no active membership the latest membership still anchors the
	// lock: cycles before it stay frozen.
	amount := mustDecimal(t, "900")
	_, err := f.service.Update(f.ctx, prior.ID.String(), billingdomain.UpdateBillRequest{
		GrossAmount: &amount,
	})
	if !errors.Is(err, billingdomain.ErrClosedPeriodUpdate) {
		t.Fatalf("expected closed period error, got %v", err)
	}

	// The latest cycle itself remains editable.
	if _, err := f.service.Update(f.ctx, lastCycle.ID.String(), billingdomain.UpdateBillRequest{
		GrossAmount: &amount,
	}); err != nil {
		t.Fatalf("update last cycle bill: %v", err)
	}
}
