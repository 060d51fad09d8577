/*
accrual.go - Per-employee monthly salary accrual

PURPOSE:
  Walks every calendar month from the employee's joining month through the
  month containing "today" and produces one MonthlyAccrual per month that
  has a salary rate in force.

ALGORITHM (per month):
  rate        = series.AmountEffectiveAt(1st of month)   (none -> skip month)
  dailyRate   = rate / daysInMonth
  deductions  = count of "Not Done" days recorded in that month
  gross       = rate
                joining month, joined after the 1st:
                gross = (daysInMonth - joinDay + 1) * dailyRate
  net         = gross - deductions * dailyRate            (may be negative)

  "Half Done" days carry no salary consequence. Only "Not Done" deducts.

EXAMPLE:
  Rate 3000, employee joins 10 June (30 days):
    dailyRate = 100, gross = 21 * 100 = 2100
  One Not Done and one Half Done day in a later 30-day month:
    deductionDays = 1, net = 3000 - 100 = 2900

ORDERING:
  Computed oldest-first, returned most-recent-first.

SEE ALSO:
  - aggregate.go: reuses AccrueMonth for the company report
  - series.go: rate lookup
*/
package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// ComputeHistory returns the employee's salary history, most recent month
// first. It returns nil when the joining date is missing or unparsable, or
// when the series has no records.
func ComputeHistory(emp Employee, series *SalarySeries, today generic.TimePoint) []MonthlyAccrual {
	joined, ok := emp.JoinedOn()
	if !ok || series.Len() == 0 {
		return nil
	}

	var history []MonthlyAccrual
	current := generic.MonthOf(today)
	for m := generic.MonthOf(joined); !current.Before(m); m = m.Next() {
		if acc, ok := AccrueMonth(emp, joined, m, series); ok {
			history = append(history, acc)
		}
	}
	reverse(history)
	return history
}

// AccrueMonth computes a single month for an employee who joined on joined.
// ok is false when no rate is in force at the start of m.
func AccrueMonth(emp Employee, joined generic.TimePoint, m generic.Month, series *SalarySeries) (MonthlyAccrual, bool) {
	rate, ok := series.AmountEffectiveAt(m.Start())
	if !ok {
		return MonthlyAccrual{}, false
	}

	daysInMonth := decimal.NewFromInt(int64(m.Days()))
	dailyRate := rate.Div(daysInMonth)
	deductionDays := DeductionDays(emp.Attendance, m)

	gross := rate
	if m == generic.MonthOf(joined) && joined.Day() > 1 {
		workedDays := int64(m.Days() - joined.Day() + 1)
		gross = decimal.NewFromInt(workedDays).Mul(dailyRate)
	}
	net := gross.Sub(decimal.NewFromInt(int64(deductionDays)).Mul(dailyRate))

	return MonthlyAccrual{
		Month:         m,
		GrossSalary:   gross,
		DeductionDays: deductionDays,
		NetSalary:     net,
	}, true
}

// DeductionDays counts "Not Done" entries dated within m. Keys are compared
// by parsed year and month; unparsable keys are ignored.
func DeductionDays(attendance map[string]AttendanceEntry, m generic.Month) int {
	n := 0
	for key, entry := range attendance {
		if !entry.Status.Deducts() {
			continue
		}
		day, err := generic.ParseDate(key)
		if err != nil {
			continue
		}
		if m.Contains(day) {
			n++
		}
	}
	return n
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
