package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateEndDateOneMonth(t *testing.T) {
	plan := MembershipPlan{Price: decimal.NewFromInt(1000), PeriodLength: 1, PeriodUnit: PeriodUnitMonths}
	got := plan.CalculateEndDate(date(2026, time.January, 15))
	want := date(2026, time.February, 15)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCalculateEndDateClampsMonthEnd(t *testing.T) {
	plan := MembershipPlan{PeriodLength: 1, PeriodUnit: PeriodUnitMonths}
	got := plan.CalculateEndDate(date(2026, time.January, 31))
	want := date(2026, time.February, 28)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCalculateEndDateLeapYear(t *testing.T) {
	plan := MembershipPlan{PeriodLength: 1, PeriodUnit: PeriodUnitMonths}
	got := plan.CalculateEndDate(date(2028, time.January, 31))
	want := date(2028, time.February, 29)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCalculateEndDateQuarterRollsOverYear(t *testing.T) {
	plan := MembershipPlan{PeriodLength: 3, PeriodUnit: PeriodUnitMonths}
	got := plan.CalculateEndDate(date(2026, time.November, 10))
	want := date(2027, time.February, 10)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCalculateEndDateWeeksAndDays(t *testing.T) {
	weekly := MembershipPlan{PeriodLength: 2, PeriodUnit: PeriodUnitWeeks}
	if got, want := weekly.CalculateEndDate(date(2026, time.March, 1)), date(2026, time.March, 15); !got.Equal(want) {
		t.Fatalf("weeks: expected %v, got %v", want, got)
	}

	daily := MembershipPlan{PeriodLength: 10, PeriodUnit: PeriodUnitDays}
	if got, want := daily.CalculateEndDate(date(2026, time.March, 25)), date(2026, time.April, 4); !got.Equal(want) {
		t.Fatalf("days: expected %v, got %v", want, got)
	}
}

func TestCalculateEndDateYears(t *testing.T) {
	annual := MembershipPlan{PeriodLength: 1, PeriodUnit: PeriodUnitYears}
	if got, want := annual.CalculateEndDate(date(2026, time.June, 30)), date(2027, time.June, 30); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAddPeriodNonPositiveLength(t *testing.T) {
	start := date(2026, time.January, 1)
	if got := AddPeriod(start, 0, PeriodUnitMonths); !got.Equal(start) {
		t.Fatalf("expected start unchanged, got %v", got)
	}
}

func TestPeriodUnitValid(t *testing.T) {
	for _, unit := range []PeriodUnit{PeriodUnitDays, PeriodUnitWeeks, PeriodUnitMonths, PeriodUnitYears} {
		if !unit.Valid() {
			t.Fatalf("expected %q to be valid", unit)
		}
	}
	if PeriodUnit("fortnights").Valid() {
		t.Fatalf("expected unknown unit to be invalid")
	}
}
