package payroll

import (
	"errors"
	"fmt"

	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// ATTENDANCE DAY - one date, every employee
// =============================================================================

// DayMark is one employee's status on the day being recorded. A blank
// status means Full Completed.
type DayMark struct {
	EmployeeID string
	Status     AttendanceStatus
	Details    string
}

// DayRow is an employee's entry on a day sheet. Recorded is false when
// nothing is stored for the date; Entry then shows Full Completed.
type DayRow struct {
	Employee Employee
	Entry    AttendanceEntry
	Recorded bool
}

// DaySheet lists every employee's entry for day, ordered by index number.
func DaySheet(employees []Employee, day generic.TimePoint) []DayRow {
	sorted := make([]Employee, len(employees))
	copy(sorted, employees)
	SortByIndexNo(sorted)

	rows := make([]DayRow, len(sorted))
	for i, emp := range sorted {
		entry, ok := emp.Attendance[day.String()]
		if !ok {
			entry = AttendanceEntry{Status: StatusFullCompleted}
		}
		rows[i] = DayRow{Employee: emp, Entry: entry, Recorded: ok}
	}
	return rows
}

// BuildDay returns one entry per employee. Employees without a mark are
// Full Completed. Every invalid mark is reported in the joined error and no
// entries are returned unless all of them are valid. A mark for an unknown
// employee fails with ErrEmployeeNotFound.
func BuildDay(employees []Employee, marks []DayMark) (map[string]AttendanceEntry, error) {
	byID := make(map[string]Employee, len(employees))
	entries := make(map[string]AttendanceEntry, len(employees))
	for _, emp := range employees {
		byID[emp.ID] = emp
		entries[emp.ID] = AttendanceEntry{Status: StatusFullCompleted}
	}

	seen := make(map[string]bool, len(marks))
	var errs []error
	for _, mark := range marks {
		emp, ok := byID[mark.EmployeeID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, mark.EmployeeID)
		}
		if seen[mark.EmployeeID] {
			errs = append(errs, fmt.Errorf("index no %s: %w", emp.IndexNo,
				&generic.FieldError{Field: "employee_id", Message: "listed more than once"}))
			continue
		}
		seen[mark.EmployeeID] = true

		status := mark.Status
		switch status {
		case "":
			status = StatusFullCompleted
		case StatusFullCompleted, StatusHalfDone, StatusNotDone:
		default:
			errs = append(errs, fmt.Errorf("index no %s: %w", emp.IndexNo,
				&generic.FieldError{Field: "status", Message: fmt.Sprintf("unknown value %q", mark.Status)}))
			continue
		}

		entry, err := NewAttendanceEntry(status, mark.Details)
		if err != nil {
			errs = append(errs, fmt.Errorf("index no %s: %w", emp.IndexNo, err))
			continue
		}
		entries[mark.EmployeeID] = entry
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return entries, nil
}
