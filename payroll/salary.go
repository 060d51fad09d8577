package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// NewSalaryChange validates and builds a new company-wide rate.
//
// Rules:
//   - amount must be >= 0
//   - effective date is required
//   - a rate equal to the current (latest-effective) rate is rejected
func NewSalaryChange(amount decimal.Decimal, effective generic.TimePoint, current *SalarySeries) (SalaryChange, error) {
	if amount.IsNegative() {
		return SalaryChange{}, ErrInvalidAmount
	}
	if effective.IsZero() {
		return SalaryChange{}, generic.Required("effectiveDate")
	}
	if latest, ok := current.Current(); ok && latest.Equal(amount) {
		return SalaryChange{}, ErrSalaryUnchanged
	}
	return SalaryChange{
		ID:            uuid.NewString(),
		EffectiveDate: effective,
		Amount:        amount,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// CurrentSalary is the latest-effective rate, or zero when none is set.
func CurrentSalary(series *SalarySeries) decimal.Decimal {
	amount, _ := series.Current()
	return amount
}
