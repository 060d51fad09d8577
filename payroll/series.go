package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// SalarySeries answers "what monthly rate was in force on date D?".
// Built once per calculation run and shared read-only across employees.
type SalarySeries struct {
	series *generic.EffectiveSeries[decimal.Decimal]
}

// NewSalarySeries orders changes by effective date; for equal dates the
// change listed later wins.
func NewSalarySeries(changes []SalaryChange) *SalarySeries {
	records := make([]generic.Effective[decimal.Decimal], len(changes))
	for i, c := range changes {
		records[i] = generic.Effective[decimal.Decimal]{At: c.EffectiveDate, Value: c.Amount}
	}
	return &SalarySeries{series: generic.NewEffectiveSeries(records)}
}

// AmountEffectiveAt returns the rate in force at monthStart. ok is false
// when no change is effective yet, which is not the same as a zero rate.
func (s *SalarySeries) AmountEffectiveAt(monthStart generic.TimePoint) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Zero, false
	}
	return s.series.ValueAt(monthStart)
}

// Current returns the rate of the latest-effective change.
func (s *SalarySeries) Current() (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Zero, false
	}
	return s.series.Latest()
}

// Len returns the number of salary changes.
func (s *SalarySeries) Len() int {
	if s == nil {
		return 0
	}
	return s.series.Len()
}
