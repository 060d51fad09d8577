/*
Package payroll reconstructs monthly salary accruals from effective-dated
company rates, employee joining dates and a sparse attendance ledger.

PURPOSE:
  Given
    (a) a series of company-wide salary-rate changes,
    (b) each employee's joining date, and
    (c) a per-day attendance map,
  compute for every month an employee has been active the gross salary that
  applied, the attendance deduction and the resulting net salary, both per
  employee and summed company-wide.

KEY CONCEPTS IN THIS FILE (types.go):
  - SalaryChange: an immutable (effective date, amount) record
  - AttendanceEntry: one day's status; unlisted days are Full Completed
  - Employee: profile, raw joining date, sparse attendance
  - MonthlyAccrual / CompanyMonthlyExpense: computed, read-only results

DESIGN PRINCIPLES:
  1. Pure: the engine reads a Snapshot and returns fresh values, no I/O
  2. Explicit "today": callers pass the reference date
  3. Degrade by omission: bad joining dates and uncovered months are left
     out, never zero-filled and never fatal
  4. Precision: decimal.Decimal for every amount

SEE ALSO:
  - series.go: rate lookup
  - accrual.go: per-employee history
  - aggregate.go: company-wide report
*/
package payroll

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// SALARY CHANGE - Company-wide rate, effective from a calendar day
// =============================================================================

// SalaryChange is never edited; a new rate is a new record.
type SalaryChange struct {
	ID            string
	EffectiveDate generic.TimePoint
	Amount        decimal.Decimal
	CreatedAt     time.Time
}

// =============================================================================
// ATTENDANCE
// =============================================================================

type AttendanceStatus string

const (
	StatusFullCompleted AttendanceStatus = "Full Completed" // default for unlisted days
	StatusHalfDone      AttendanceStatus = "Half Done"      // informational only, no deduction
	StatusNotDone       AttendanceStatus = "Not Done"       // one deduction day
)

// ParseAttendanceStatus maps any unrecognized value to StatusFullCompleted.
func ParseAttendanceStatus(s string) AttendanceStatus {
	switch AttendanceStatus(strings.TrimSpace(s)) {
	case StatusHalfDone:
		return StatusHalfDone
	case StatusNotDone:
		return StatusNotDone
	default:
		return StatusFullCompleted
	}
}

// Deducts reports whether the status costs a day's pay.
func (s AttendanceStatus) Deducts() bool { return s == StatusNotDone }

type AttendanceEntry struct {
	Status  AttendanceStatus
	Details string
}

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee keeps JoiningDate as entered ("DD/MM/YYYY"). Attendance is keyed
// by "YYYY-MM-DD"; a missing key means Full Completed.
type Employee struct {
	ID             string
	IndexNo        string
	FullName       string
	JoiningDate    string
	IDNumber       string
	WhatsappNumber string
	Address        string
	BankHolderName string
	AccountNumber  string
	BankName       string
	Attendance     map[string]AttendanceEntry
}

// JoinedOn parses JoiningDate. ok is false when it is absent or invalid.
func (e Employee) JoinedOn() (generic.TimePoint, bool) {
	return ParseJoiningDate(e.JoiningDate)
}

// =============================================================================
// RESULTS
// =============================================================================

// MonthlyAccrual is one row of an employee's salary history. NetSalary may
// be negative when deductions exceed the prorated gross.
type MonthlyAccrual struct {
	Month         generic.Month
	GrossSalary   decimal.Decimal
	DeductionDays int
	NetSalary     decimal.Decimal
}

// CompanyMonthlyExpense is the sum of max(net, 0) over active employees.
type CompanyMonthlyExpense struct {
	Month        generic.Month
	TotalExpense decimal.Decimal
}
