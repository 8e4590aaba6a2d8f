package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PeriodUnit is the calendar unit a plan's period is measured in.
type PeriodUnit string

const (
	PeriodUnitDays   PeriodUnit = "days"
	PeriodUnitWeeks  PeriodUnit = "weeks"
	PeriodUnitMonths PeriodUnit = "months"
	PeriodUnitYears  PeriodUnit = "years"
)

// Valid reports whether the unit is one of the known period units.
func (u PeriodUnit) Valid() bool {
	switch u {
	case PeriodUnitDays, PeriodUnitWeeks, PeriodUnitMonths, PeriodUnitYears:
		return true
	}
	return false
}

// MembershipPlan prices a membership period. Plans are immutable once a
// bill references them; pricing changes create new rows.
type MembershipPlan struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	AccountID    snowflake.ID    `gorm:"not null;index" json:"account_id"`
	Name         string          `gorm:"type:text;not null" json:"name"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	PeriodLength int             `gorm:"not null" json:"period_length"`
	PeriodUnit   PeriodUnit      `gorm:"type:text;not null" json:"period_unit"`
	Archived     bool            `gorm:"not null;default:false" json:"archived"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (MembershipPlan) TableName() string { return "membership_plans" }

// CalculateEndDate returns the membership end date for a period starting
// at start. An end date equal to the next period's start date is the
// boundary: the membership covers [start, end).
func (p MembershipPlan) CalculateEndDate(start time.Time) time.Time {
	return AddPeriod(start, p.PeriodLength, p.PeriodUnit)
}

// AddPeriod advances start by length units of the given calendar unit.
// Month and year arithmetic clamps to the last valid day of the target
// month so Jan 31 + 1 month lands on Feb 28/29, not Mar 2/3.
func AddPeriod(start time.Time, length int, unit PeriodUnit) time.Time {
	if length <= 0 {
		return start
	}
	switch unit {
	case PeriodUnitDays:
		return addClampedDate(start, 0, 0, length)
	case PeriodUnitWeeks:
		return addClampedDate(start, 0, 0, 7*length)
	case PeriodUnitMonths:
		return addClampedDate(start, 0, length, 0)
	case PeriodUnitYears:
		return addClampedDate(start, length, 0, 0)
	default:
		return start
	}
}

func addClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	newY := y + years
	newM := time.Month(int(m) + months)
	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	firstOfNextMonth := time.Date(newY, newM+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNextMonth.Add(-24 * time.Hour).Day()

	newD := d + days
	if days == 0 && newD > lastDay {
		newD = lastDay
	}

	return time.Date(newY, newM, newD, h, min, sec, t.Nanosecond(), t.Location())
}
