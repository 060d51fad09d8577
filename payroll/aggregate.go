package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// COMPANY REPORT - Monthly salary expense across all employees
// =============================================================================

// ComputeCompanyExpenses sums max(net, 0) per month over all employees,
// most recent month first.
//
// The walk starts at the earliest valid joining month and ends at the month
// containing today. Employees with an unparsable joining date are ignored
// entirely. A month with a rate but no joined employee is reported as zero;
// a month with no rate in force is left out.
func ComputeCompanyExpenses(employees []Employee, series *SalarySeries, today generic.TimePoint) []CompanyMonthlyExpense {
	if len(employees) == 0 || series.Len() == 0 {
		return nil
	}

	active := make([]joinedEmployee, 0, len(employees))
	var earliest generic.TimePoint
	for _, emp := range employees {
		joined, ok := emp.JoinedOn()
		if !ok {
			continue
		}
		if len(active) == 0 || joined.Before(earliest) {
			earliest = joined
		}
		active = append(active, joinedEmployee{Employee: emp, joined: joined})
	}
	if len(active) == 0 {
		return nil
	}

	var report []CompanyMonthlyExpense
	current := generic.MonthOf(today)
	for m := generic.MonthOf(earliest); !current.Before(m); m = m.Next() {
		if _, ok := series.AmountEffectiveAt(m.Start()); !ok {
			continue
		}
		total := decimal.Zero
		for _, e := range active {
			if e.joined.After(m.End()) {
				continue
			}
			if acc, ok := AccrueMonth(e.Employee, e.joined, m, series); ok {
				total = total.Add(generic.FloorZero(acc.NetSalary))
			}
		}
		report = append(report, CompanyMonthlyExpense{Month: m, TotalExpense: total})
	}
	reverse(report)
	return report
}

type joinedEmployee struct {
	Employee
	joined generic.TimePoint
}
