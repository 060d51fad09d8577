/*
store.go - Persistence interface for salary changes, employees and attendance

PURPOSE:
  Defines the boundary between the payroll domain and the record store.
  The accrual engine never talks to a Store directly: LoadSnapshot reads
  both inputs up front and the engine runs over that snapshot.

APPEND-ONLY SALARY HISTORY:
  Salary changes are only ever appended. There is no update or delete for
  them; a correction is a newer record.

ATTENDANCE:
  One entry per (employee, date), upsert semantics. RecordDay writes a
  whole day's sheet atomically: every entry lands or none does.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - payroll/store/memory.go: In-memory for testing
*/
package payroll

import (
	"context"

	"github.com/warp/payroll-engine/generic"
)

// Store handles persistence of payroll inputs.
type Store interface {
	// AppendSalaryChange persists a new rate. This is the only write for
	// salary history.
	AppendSalaryChange(ctx context.Context, change SalaryChange) error

	// SalaryChanges returns all changes in insertion order.
	SalaryChanges(ctx context.Context) ([]SalaryChange, error)

	// SaveEmployee inserts or updates an employee profile. Attendance on
	// the argument is ignored; use UpsertAttendance.
	SaveEmployee(ctx context.Context, emp Employee) error

	// GetEmployee returns ErrEmployeeNotFound for an unknown ID.
	GetEmployee(ctx context.Context, id string) (Employee, error)

	// ListEmployees returns every employee with attendance loaded.
	ListEmployees(ctx context.Context) ([]Employee, error)

	// DeleteEmployee removes an employee and their attendance.
	DeleteEmployee(ctx context.Context, id string) error

	// UpsertAttendance records one day for an employee.
	UpsertAttendance(ctx context.Context, employeeID string, day generic.TimePoint, entry AttendanceEntry) error

	// RecordDay upserts entries (keyed by employee ID) for day, all or
	// nothing. An unknown employee fails with ErrEmployeeNotFound.
	RecordDay(ctx context.Context, day generic.TimePoint, entries map[string]AttendanceEntry) error
}

// Snapshot is one consistent view of both engine inputs.
type Snapshot struct {
	SalaryChanges []SalaryChange
	Employees     []Employee
}

// Series builds the salary series for this snapshot.
func (s Snapshot) Series() *SalarySeries {
	return NewSalarySeries(s.SalaryChanges)
}

// SnapshotReader is implemented by stores that can read both inputs in a
// single transaction.
type SnapshotReader interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// LoadSnapshot reads salary history and employees. Any store error aborts
// the load; the engine is only ever run on a complete snapshot.
func LoadSnapshot(ctx context.Context, store Store) (Snapshot, error) {
	if r, ok := store.(SnapshotReader); ok {
		return r.Snapshot(ctx)
	}
	changes, err := store.SalaryChanges(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	employees, err := store.ListEmployees(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{SalaryChanges: changes, Employees: employees}, nil
}
