package payroll

import (
	"sort"
	"strconv"
	"strings"

	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// EMPLOYEE RECORDS - onboarding and roster helpers
// =============================================================================

// ValidateEmployee checks the onboarding form's required fields. Only the
// presence of JoiningDate is checked: an unparsable date is kept as entered
// and the employee is simply left out of accrual.
func ValidateEmployee(e Employee) error {
	required := []struct {
		field string
		value string
	}{
		{"indexNo", e.IndexNo},
		{"joiningDate", e.JoiningDate},
		{"idNumber", e.IDNumber},
		{"fullName", e.FullName},
		{"whatsappNumber", e.WhatsappNumber},
		{"address", e.Address},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return generic.Required(r.field)
		}
	}
	return nil
}

// SortByIndexNo orders employees by numeric index number. Non-numeric
// index numbers sort as 0.
func SortByIndexNo(employees []Employee) {
	sort.SliceStable(employees, func(i, j int) bool {
		return indexNo(employees[i]) < indexNo(employees[j])
	})
}

func indexNo(e Employee) int {
	n, err := strconv.Atoi(strings.TrimSpace(e.IndexNo))
	if err != nil {
		return 0
	}
	return n
}

// FilterEmployees keeps employees whose name, index number or ID number
// contains query, case-insensitively. An empty query keeps everyone.
func FilterEmployees(employees []Employee, query string) []Employee {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return employees
	}
	var out []Employee
	for _, e := range employees {
		for _, field := range []string{e.FullName, e.IndexNo, e.IDNumber} {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
