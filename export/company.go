package export

import (
	"github.com/warp/payroll-engine/payroll"
)

var companyHeader = []string{"Month", "Total Expense (Rs.)"}

// CompanyExpenses renders the company monthly expense report.
func CompanyExpenses(report []payroll.CompanyMonthlyExpense, format Format) ([]byte, error) {
	t := table{
		title:  "Company Monthly Salary Expenses",
		sheet:  "Company Expenses",
		header: companyHeader,
		widths: []float64{60, 60},
	}
	for _, row := range report {
		t.rows = append(t.rows, []any{row.Month.String(), cellAmount(row.TotalExpense)})
	}
	return t.render(format)
}

// CompanyExpensesFilename is the download name for the company report.
func CompanyExpensesFilename(format Format) string {
	return format.Filename("CompanyExpenses")
}
