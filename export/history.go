package export

import (
	"fmt"

	"github.com/warp/payroll-engine/payroll"
)

var historyHeader = []string{"Month", "Gross Salary (Rs.)", "Deduction Days", "Net Salary (Rs.)"}

// SalaryHistory renders one employee's history, most recent month first.
func SalaryHistory(emp payroll.Employee, history []payroll.MonthlyAccrual, format Format) ([]byte, error) {
	t := table{
		title:  fmt.Sprintf("Salary History for %s", emp.FullName),
		sheet:  "Salary History",
		header: historyHeader,
		widths: []float64{50, 45, 35, 45},
	}
	for _, acc := range history {
		t.rows = append(t.rows, []any{
			acc.Month.String(),
			cellAmount(acc.GrossSalary),
			acc.DeductionDays,
			cellAmount(acc.NetSalary),
		})
	}
	return t.render(format)
}

// SalaryHistoryFilename is the download name for an employee's history.
func SalaryHistoryFilename(emp payroll.Employee, format Format) string {
	return format.Filename("SalaryHistory_" + emp.IndexNo)
}
